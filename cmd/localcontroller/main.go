package main

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ocpp-platform/ocpp-runtime/internal/config"
	"github.com/ocpp-platform/ocpp-runtime/internal/localcontroller"
	"github.com/ocpp-platform/ocpp-runtime/internal/logger"
	"github.com/ocpp-platform/ocpp-runtime/internal/storage/sqlite"
)

func main() {
	// 1. load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. init logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
		Async:  cfg.Log.Async,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log.Info("Logger initialized")

	// 3. init the charge point credential store used for the CP-facing
	// identification passthrough
	store, err := sqlite.Open(cfg.Storage.DSN)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	log.Info("Storage initialized")

	// 4. init the proxy
	proxy := localcontroller.NewProxy(*cfg, log, credentialValidator(store, cfg))
	log.Info("Local controller proxy initialized")

	// 5. start metrics server (gauges/counters self-register via promauto)
	go startMetricsServer(cfg.Monitoring.MetricsAddr, log)

	// 6. start the charge point-facing server
	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Server.BasePath+"/", proxy.ServeHTTP)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Infof("Local controller listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Local controller server failed: %v", err)
		}
	}()

	log.Info("Local controller started successfully")

	// 7. graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down local controller...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorf("Error shutting down HTTP server: %v", err)
	}
	if err := store.Close(); err != nil {
		log.Errorf("Error closing storage: %v", err)
	}
	log.Info("Local controller stopped.")
}

func startMetricsServer(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Infof("Metrics server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("Metrics server failed: %v", err)
	}
}

// credentialValidator checks the Basic-auth credentials a charge point
// presents against the same charge-point-record table the Central
// System uses, giving the Local Controller its own authentication
// boundary independent of whatever the Central System would separately
// accept from this process's own dial-out credentials. Profile 0
// accepts everything.
func credentialValidator(store *sqlite.Store, cfg *config.Config) localcontroller.CredentialValidator {
	if cfg.Security.Profile == 0 {
		return nil
	}
	return func(chargePointID string, r *http.Request) bool {
		username, password, ok := r.BasicAuth()
		if !ok || username != chargePointID {
			return false
		}
		record, found, err := store.ChargePointGet(r.Context(), chargePointID)
		if err != nil || !found {
			return false
		}
		return subtle.ConstantTimeCompare([]byte(password), []byte(record.AuthenticationKey)) == 1
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ocpp-platform/ocpp-runtime/internal/centralsystem"
	"github.com/ocpp-platform/ocpp-runtime/internal/config"
	"github.com/ocpp-platform/ocpp-runtime/internal/convert"
	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
	"github.com/ocpp-platform/ocpp-runtime/internal/eventbus"
	"github.com/ocpp-platform/ocpp-runtime/internal/logger"
	"github.com/ocpp-platform/ocpp-runtime/internal/ocpperr"
	"github.com/ocpp-platform/ocpp-runtime/internal/storage"
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

	// 3. init sqlite store
	store, err := sqlite.Open(cfg.Storage.DSN)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	log.Info("Storage initialized")

	// 4. init cross-instance connection affinity registry
	var affinity storage.ConnectionStorage
	if cfg.Redis.Addr != "" {
		redisStorage, err := storage.NewRedisStorage(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to initialize connection affinity registry: %v", err)
		}
		affinity = redisStorage
		log.Info("Connection affinity registry initialized")
	}

	// 5. init central system session manager
	handler := &chargePointHandler{store: store, log: log, previousStatus: make(map[string]ocpp16.ChargePointStatus)}
	server := centralsystem.NewServer(*cfg, store, affinity, log, func(chargePointID string, version convert.Version) centralsystem.ChargePointRequestHandler {
		return handler
	})
	handler.server = server
	log.Info("Central system session manager initialized")

	// 6. init the integration event bus: publish lifecycle events
	// upstream, accept remote commands downstream
	var producer *eventbus.Producer
	var consumer *eventbus.Consumer
	if cfg.EventBus.Enabled {
		producer, err = eventbus.NewProducer(cfg.EventBus.Brokers, cfg.EventBus.UpstreamTopic, cfg.InstanceID, uuid.NewString, log)
		if err != nil {
			log.Fatalf("Failed to initialize event bus producer: %v", err)
		}
		handler.events = producer
		log.Info("Event bus producer initialized")

		consumer, err = eventbus.NewConsumer(cfg.EventBus.Brokers, cfg.EventBus.ConsumerGroup, cfg.EventBus.DownstreamTopic, func(chargePointID string) (eventbus.ChargePoint, bool) {
			return server.ChargePoint(chargePointID)
		}, log)
		if err != nil {
			log.Fatalf("Failed to initialize event bus consumer: %v", err)
		}
		consumer.Start()
		log.Info("Event bus consumer initialized")
	}

	// 7. start metrics server (gauges/counters self-register via promauto)
	go startMetricsServer(cfg.Monitoring.MetricsAddr, log)

	// 8. start the charge point-facing server
	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Server.BasePath+"/", server.ServeHTTP)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Infof("Central system listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Central system server failed: %v", err)
		}
	}()

	log.Info("Central system started successfully")

	// 9. graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down central system...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorf("Error shutting down HTTP server: %v", err)
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			log.Errorf("Error closing event bus consumer: %v", err)
		}
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Errorf("Error closing event bus producer: %v", err)
		}
	}
	if affinity != nil {
		if err := affinity.Close(); err != nil {
			log.Errorf("Error closing connection affinity registry: %v", err)
		}
	}
	if err := store.Close(); err != nil {
		log.Errorf("Error closing storage: %v", err)
	}
	log.Info("Central system stopped.")
}

func startMetricsServer(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Infof("Metrics server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("Metrics server failed: %v", err)
	}
}

// chargePointHandler answers CP-originated Calls by persisting what the
// store needs to track (charge point identity) and accepting everything
// else. The session manager's job stops at delivering the typed
// request; transaction/authorization business rules belong to a
// backend this process would call out to in a full deployment.
type chargePointHandler struct {
	store  *sqlite.Store
	log    *logger.Logger
	events *eventbus.Producer
	server *centralsystem.Server

	statusMu       sync.Mutex
	previousStatus map[string]ocpp16.ChargePointStatus
}

// publish fires event on the bus if one is configured; errors are logged
// rather than returned since a failed publish must never fail the OCPP
// Call it rode in on.
func (h *chargePointHandler) publish(chargePointID string, event eventbus.Event) {
	if h.events == nil {
		return
	}
	if err := h.events.Publish(event); err != nil {
		h.log.Errorf("centralsystem: publish event for %s: %v", chargePointID, err)
	}
}

func (h *chargePointHandler) OnBootNotification(ctx context.Context, chargePointID string, req *ocpp16.BootNotificationRequest) (*ocpp16.BootNotificationResponse, *ocpperr.CallError) {
	if err := h.store.ChargePointUpsert(ctx, sqlite.ChargePointRecord{
		Identifier: chargePointID,
		Vendor:     req.ChargePointVendor,
		Model:      req.ChargePointModel,
	}); err != nil {
		h.log.Errorf("centralsystem: persist boot notification for %s: %v", chargePointID, err)
	}

	h.publish(chargePointID, eventbus.NewEvent(eventbus.EventTypeBootNotification, chargePointID, time.Now(), eventbus.BootNotificationPayload{
		Vendor: req.ChargePointVendor,
		Model:  req.ChargePointModel,
	}))

	return &ocpp16.BootNotificationResponse{
		Status:      ocpp16.RegistrationStatusAccepted,
		CurrentTime: ocpp16.DateTime{Time: time.Now()},
		Interval:    300,
	}, nil
}

func (h *chargePointHandler) OnHeartbeat(ctx context.Context, chargePointID string, req *ocpp16.HeartbeatRequest) (*ocpp16.HeartbeatResponse, *ocpperr.CallError) {
	if h.server != nil {
		h.server.Touch(chargePointID)
	}
	return &ocpp16.HeartbeatResponse{CurrentTime: ocpp16.DateTime{Time: time.Now()}}, nil
}

func (h *chargePointHandler) OnStatusNotification(ctx context.Context, chargePointID string, req *ocpp16.StatusNotificationRequest) (*ocpp16.StatusNotificationResponse, *ocpperr.CallError) {
	h.log.Infof("centralsystem: %s connector %d status -> %s", chargePointID, req.ConnectorId, req.Status)

	key := fmt.Sprintf("%s/%d", chargePointID, req.ConnectorId)
	h.statusMu.Lock()
	previous := h.previousStatus[key]
	h.previousStatus[key] = req.Status
	h.statusMu.Unlock()

	payload := eventbus.ConnectorStatusChangedPayload{
		ConnectorID:    req.ConnectorId,
		Status:         string(req.Status),
		PreviousStatus: string(previous),
	}
	if req.VendorErrorCode != nil {
		payload.ErrorCode = *req.VendorErrorCode
	}
	h.publish(chargePointID, eventbus.NewEvent(eventbus.EventTypeConnectorStatusChanged, chargePointID, time.Now(), payload))

	return &ocpp16.StatusNotificationResponse{}, nil
}

func (h *chargePointHandler) OnAuthorize(ctx context.Context, chargePointID string, req *ocpp16.AuthorizeRequest) (*ocpp16.AuthorizeResponse, *ocpperr.CallError) {
	return &ocpp16.AuthorizeResponse{IdTagInfo: ocpp16.IdTagInfo{Status: ocpp16.AuthorizationStatusAccepted}}, nil
}

func (h *chargePointHandler) OnStartTransaction(ctx context.Context, chargePointID string, req *ocpp16.StartTransactionRequest) (*ocpp16.StartTransactionResponse, *ocpperr.CallError) {
	transactionID := int(time.Now().Unix())

	h.publish(chargePointID, eventbus.NewEvent(eventbus.EventTypeTransactionStarted, chargePointID, time.Now(), eventbus.TransactionStartedPayload{
		ConnectorID:   req.ConnectorId,
		TransactionID: transactionID,
		IDTag:         req.IdTag,
		MeterStartWh:  req.MeterStart,
	}))

	return &ocpp16.StartTransactionResponse{
		IdTagInfo:     ocpp16.IdTagInfo{Status: ocpp16.AuthorizationStatusAccepted},
		TransactionId: transactionID,
	}, nil
}

func (h *chargePointHandler) OnStopTransaction(ctx context.Context, chargePointID string, req *ocpp16.StopTransactionRequest) (*ocpp16.StopTransactionResponse, *ocpperr.CallError) {
	payload := eventbus.TransactionStoppedPayload{
		TransactionID: req.TransactionId,
		MeterStopWh:   req.MeterStop,
	}
	if req.Reason != nil {
		payload.Reason = string(*req.Reason)
	}
	h.publish(chargePointID, eventbus.NewEvent(eventbus.EventTypeTransactionStopped, chargePointID, time.Now(), payload))

	return &ocpp16.StopTransactionResponse{}, nil
}

func (h *chargePointHandler) OnMeterValues(ctx context.Context, chargePointID string, req *ocpp16.MeterValuesRequest) (*ocpp16.MeterValuesResponse, *ocpperr.CallError) {
	var samples []eventbus.SampledValue
	for _, mv := range req.MeterValue {
		for _, sv := range mv.SampledValue {
			measurand := ""
			if sv.Measurand != nil {
				measurand = string(*sv.Measurand)
			}
			unit := ""
			if sv.Unit != nil {
				unit = string(*sv.Unit)
			}
			samples = append(samples, eventbus.SampledValue{
				Timestamp: mv.Timestamp.Time,
				Measurand: measurand,
				Value:     sv.Value,
				Unit:      unit,
			})
		}
	}

	h.publish(chargePointID, eventbus.NewEvent(eventbus.EventTypeMeterValuesReceived, chargePointID, time.Now(), eventbus.MeterValuesReceivedPayload{
		ConnectorID:   req.ConnectorId,
		TransactionID: req.TransactionId,
		SampledValues: samples,
	}))

	return &ocpp16.MeterValuesResponse{}, nil
}

func (h *chargePointHandler) OnDataTransfer(ctx context.Context, chargePointID string, req *ocpp16.DataTransferRequest) (*ocpp16.DataTransferResponse, *ocpperr.CallError) {
	return &ocpp16.DataTransferResponse{Status: ocpp16.DataTransferStatusAccepted}, nil
}

func (h *chargePointHandler) OnSecurityEventNotification(ctx context.Context, chargePointID string, req *ocpp16.SecurityEventNotificationRequest) (*ocpp16.SecurityEventNotificationResponse, *ocpperr.CallError) {
	h.log.Warnf("centralsystem: security event from %s: %s", chargePointID, req.Type)

	techInfo := ""
	if req.TechInfo != nil {
		techInfo = *req.TechInfo
	}
	h.publish(chargePointID, eventbus.NewEvent(eventbus.EventTypeSecurityEventLogged, chargePointID, time.Now(), eventbus.SecurityEventLoggedPayload{
		EventType: string(req.Type),
		TechInfo:  techInfo,
	}))

	return &ocpp16.SecurityEventNotificationResponse{}, nil
}

func (h *chargePointHandler) OnSignCertificate(ctx context.Context, chargePointID string, req *ocpp16.SignCertificateRequest) (*ocpp16.SignCertificateResponse, *ocpperr.CallError) {
	return &ocpp16.SignCertificateResponse{Status: ocpp16.GenericStatusAccepted}, nil
}

package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ocpp-platform/ocpp-runtime/internal/chargepoint"
	"github.com/ocpp-platform/ocpp-runtime/internal/config"
	"github.com/ocpp-platform/ocpp-runtime/internal/connector"
	"github.com/ocpp-platform/ocpp-runtime/internal/convert"
	"github.com/ocpp-platform/ocpp-runtime/internal/dispatch"
	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
	"github.com/ocpp-platform/ocpp-runtime/internal/domain/validation"
	"github.com/ocpp-platform/ocpp-runtime/internal/fifo"
	"github.com/ocpp-platform/ocpp-runtime/internal/logger"
	"github.com/ocpp-platform/ocpp-runtime/internal/ocpperr"
	"github.com/ocpp-platform/ocpp-runtime/internal/rpc"
	"github.com/ocpp-platform/ocpp-runtime/internal/rpcmsg"
	"github.com/ocpp-platform/ocpp-runtime/internal/storage/sqlite"
	"github.com/ocpp-platform/ocpp-runtime/internal/workerpool"
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

	// 3. init durable storage
	store, err := sqlite.Open(cfg.Storage.DSN)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	log.Info("Storage initialized")

	chargePointID := cfg.App.Name
	timers := workerpool.NewTimerPool()
	connectors := connector.NewTable(cfg.OCPP.ConnectorCount, func(row connector.Row) error {
		return store.SaveConnector(context.Background(), row)
	})
	queue := fifo.New(store, chargePointID)

	// 4. dial the central system
	header := buildAuthHeader(cfg, chargePointID)
	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.WebSocket.HandshakeTimeout,
		Subprotocols:     cfg.OCPP.SupportedVersions,
	}
	wsConn, _, err := dialer.Dial(cfg.Server.DialURL+"/"+chargePointID, header)
	if err != nil {
		log.Fatalf("Failed to dial central system: %v", err)
	}
	log.Infof("Connected to central system at %s", cfg.Server.DialURL)

	version := convert.V16
	if wsConn.Subprotocol() == "ocpp2.0.1" {
		version = convert.V201
	}

	conn := rpc.NewConnection(chargePointID, wsConn, rpc.DefaultConfig(), log, nil)
	pool := rpc.NewPool(conn, "charge_point", cfg.OCPP.CallRequestTimeout)
	call := chargepoint.CallFunc(pool.Call)

	// 5. build the charge-point-side managers
	boot := chargepoint.NewBootManager(chargepoint.BootConfig{
		Vendor:                cfg.App.Name,
		Model:                 cfg.App.Version,
		HeartbeatInterval:     cfg.OCPP.HeartbeatInterval,
		RegistrationRetryWait: 10 * time.Second,
	}, call, timers, log)
	auth := chargepoint.NewAuthManager(store, chargePointID, cfg.OCPP.AuthorizationCacheEnabled, cfg.OCPP.LocalAuthListEnabled)
	transactions := chargepoint.NewTransactionManager(connectors, queue, call)
	reservations := chargepoint.NewReservationManager(connectors, timers, cfg.OCPP.ReservationScanInterval)
	security := chargepoint.NewSecurityManager(store, chargePointID, cfg.OCPP.SecurityLogCap, call)
	profiles := newProfileStore()

	// 6. build the dispatcher that answers Calls the central system sends
	registry := convert.NewRegistry(validation.NewValidator())
	convert.RegisterOCPP16(registry)
	convert.RegisterOCPP201(registry)
	d := dispatch.New(registry, version, log)
	registerCentralSystemHandlers(d, store, connectors, auth, transactions, reservations, security, profiles)

	conn.SetHandler(func(decoded *rpcmsg.Decoded) {
		if decoded.Type == rpcmsg.CallResult || decoded.Type == rpcmsg.CallError {
			pool.Resolve(decoded)
			return
		}
		boot.NoteOutboundActivity()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		reply := d.HandleDecoded(ctx, chargePointID, decoded)
		cancel()
		if reply != nil {
			_ = conn.Send(reply)
		}
	})

	go conn.Serve()

	// 7. boot handshake
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := boot.Boot(bootCtx); err != nil {
		log.Errorf("Boot notification failed: %v", err)
	}
	bootCancel()

	log.Info("Charge point started successfully")

	// 8. graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down charge point...")

	boot.Stop()
	reservations.Stop()
	pool.Close()
	conn.Close()
	if err := store.Close(); err != nil {
		log.Errorf("Error closing storage: %v", err)
	}
	log.Info("Charge point stopped.")
}

func buildAuthHeader(cfg *config.Config, chargePointID string) map[string][]string {
	if cfg.Security.AuthorizationKey == "" {
		return nil
	}
	creds := chargePointID + ":" + cfg.Security.AuthorizationKey
	return map[string][]string{
		"Authorization": {"Basic " + base64.StdEncoding.EncodeToString([]byte(creds))},
	}
}

// profileStore is the charge point's in-memory charging-profile table,
// keyed by connector id; SetChargingProfile/ClearChargingProfile mutate
// it and GetCompositeSchedule reads from it via
// chargepoint.SelectActiveProfiles/CompositeSchedule.
type profileStore struct {
	mu       sync.Mutex
	byConn map[int][]ocpp16.ChargingProfile
}

func newProfileStore() *profileStore {
	return &profileStore{byConn: make(map[int][]ocpp16.ChargingProfile)}
}

func (p *profileStore) set(connectorID int, profile ocpp16.ChargingProfile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	existing := p.byConn[connectorID]
	for i, pr := range existing {
		if pr.ChargingProfileId == profile.ChargingProfileId {
			existing[i] = profile
			return
		}
	}
	p.byConn[connectorID] = append(existing, profile)
}

func (p *profileStore) clear(req ocpp16.ClearChargingProfileRequest) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	removed := 0
	for connID, profiles := range p.byConn {
		if req.ConnectorId != nil && *req.ConnectorId != connID {
			continue
		}
		kept := profiles[:0]
		for _, pr := range profiles {
			if req.Id != nil && pr.ChargingProfileId == *req.Id {
				removed++
				continue
			}
			if req.ChargingProfilePurpose != nil && pr.ChargingProfilePurpose == *req.ChargingProfilePurpose {
				removed++
				continue
			}
			if req.StackLevel != nil && pr.StackLevel == *req.StackLevel {
				removed++
				continue
			}
			if req.Id == nil && req.ChargingProfilePurpose == nil && req.StackLevel == nil {
				removed++
				continue
			}
			kept = append(kept, pr)
		}
		p.byConn[connID] = kept
	}
	return removed
}

func (p *profileStore) get(connectorID int) []ocpp16.ChargingProfile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ocpp16.ChargingProfile(nil), p.byConn[connectorID]...)
}

// registerCentralSystemHandlers wires every CS->CP Action the Central
// System session manager's IChargePoint interface (internal/centralsystem)
// may issue into this process's managers and connector table.
func registerCentralSystemHandlers(
	d *dispatch.Dispatcher,
	store *sqlite.Store,
	connectors *connector.Table,
	auth *chargepoint.AuthManager,
	transactions *chargepoint.TransactionManager,
	reservations *chargepoint.ReservationManager,
	security *chargepoint.SecurityManager,
	profiles *profileStore,
) {
	reg := func(action string, h dispatch.Handler) { d.RegisterHandler(action, h) }

	reg(string(ocpp16.ActionReset), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return &ocpp16.ResetResponse{Status: ocpp16.ResetStatusAccepted}, nil
	})

	reg(string(ocpp16.ActionChangeAvailability), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		r := req.(*ocpp16.ChangeAvailabilityRequest)
		c := connectors.Get(r.ConnectorId)
		if c == nil {
			return &ocpp16.ChangeAvailabilityResponse{Status: ocpp16.AvailabilityStatusRejected}, nil
		}
		if r.Type == ocpp16.AvailabilityTypeInoperative {
			c.SetStatus(ocpp16.ChargePointStatusUnavailable)
		} else {
			c.SetStatus(ocpp16.ChargePointStatusAvailable)
		}
		_ = connectors.Save(c)
		return &ocpp16.ChangeAvailabilityResponse{Status: ocpp16.AvailabilityStatusAccepted}, nil
	})

	reg(string(ocpp16.ActionUnlockConnector), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return &ocpp16.UnlockConnectorResponse{Status: ocpp16.UnlockStatusUnlocked}, nil
	})

	reg(string(ocpp16.ActionGetConfiguration), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		r := req.(*ocpp16.GetConfigurationRequest)
		resp := &ocpp16.GetConfigurationResponse{}
		if len(r.Key) == 0 {
			all, err := store.ConfigAll(ctx)
			if err != nil {
				return nil, ocpperr.Internal(err.Error())
			}
			for k, v := range all {
				value := v
				resp.ConfigurationKey = append(resp.ConfigurationKey, ocpp16.KeyValue{Key: k, Value: &value})
			}
			return resp, nil
		}
		for _, key := range r.Key {
			value, readonly, ok, err := store.ConfigGet(ctx, key)
			if err != nil {
				return nil, ocpperr.Internal(err.Error())
			}
			if !ok {
				resp.UnknownKey = append(resp.UnknownKey, key)
				continue
			}
			v := value
			resp.ConfigurationKey = append(resp.ConfigurationKey, ocpp16.KeyValue{Key: key, Readonly: readonly, Value: &v})
		}
		return resp, nil
	})

	reg(string(ocpp16.ActionChangeConfiguration), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		r := req.(*ocpp16.ChangeConfigurationRequest)
		_, readonly, ok, err := store.ConfigGet(ctx, r.Key)
		if err != nil {
			return nil, ocpperr.Internal(err.Error())
		}
		if ok && readonly {
			return &ocpp16.ChangeConfigurationResponse{Status: ocpp16.ConfigurationStatusRejected}, nil
		}
		if err := store.ConfigSet(ctx, r.Key, r.Value, false); err != nil {
			return nil, ocpperr.Internal(err.Error())
		}
		return &ocpp16.ChangeConfigurationResponse{Status: ocpp16.ConfigurationStatusAccepted}, nil
	})

	reg(string(ocpp16.ActionReserveNow), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		r := req.(*ocpp16.ReserveNowRequest)
		return &ocpp16.ReserveNowResponse{Status: reservations.ReserveNow(*r)}, nil
	})

	reg(string(ocpp16.ActionCancelReservation), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		r := req.(*ocpp16.CancelReservationRequest)
		return &ocpp16.CancelReservationResponse{Status: reservations.CancelReservation(r.ReservationId)}, nil
	})

	reg(string(ocpp16.ActionDataTransfer), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return &ocpp16.DataTransferResponse{Status: ocpp16.DataTransferStatusUnknownVendorId}, nil
	})

	reg(string(ocpp16.ActionTriggerMessage), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return &ocpp16.TriggerMessageResponse{Status: ocpp16.TriggerMessageStatusAccepted}, nil
	})

	reg(string(ocpp16.ActionSetChargingProfile), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		r := req.(*ocpp16.SetChargingProfileRequest)
		profiles.set(r.ConnectorId, r.CsChargingProfiles)
		return &ocpp16.SetChargingProfileResponse{Status: ocpp16.ChargingProfileStatusAccepted}, nil
	})

	reg(string(ocpp16.ActionClearChargingProfile), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		r := req.(*ocpp16.ClearChargingProfileRequest)
		if profiles.clear(*r) == 0 {
			return &ocpp16.ClearChargingProfileResponse{Status: ocpp16.ClearChargingProfileStatusUnknown}, nil
		}
		return &ocpp16.ClearChargingProfileResponse{Status: ocpp16.ClearChargingProfileStatusAccepted}, nil
	})

	reg(string(ocpp16.ActionGetCompositeSchedule), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		r := req.(*ocpp16.GetCompositeScheduleRequest)
		unit := ocpp16.ChargingRateUnitW
		if r.ChargingRateUnit != nil {
			unit = *r.ChargingRateUnit
		}
		maxP, txDefault, txP := chargepoint.SelectActiveProfiles(profiles.get(r.ConnectorId), time.Now())
		schedule := chargepoint.CompositeSchedule(maxP, txDefault, txP, time.Duration(r.Duration)*time.Second, unit)
		connID := r.ConnectorId
		return &ocpp16.GetCompositeScheduleResponse{
			Status:           ocpp16.GetCompositeScheduleStatusAccepted,
			ConnectorId:      &connID,
			ScheduleStart:    &ocpp16.DateTime{Time: time.Now()},
			ChargingSchedule: &schedule,
		}, nil
	})

	reg(string(ocpp16.ActionSendLocalList), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		r := req.(*ocpp16.SendLocalListRequest)
		status, err := auth.ApplyLocalList(ctx, r.ListVersion, r.UpdateType, r.LocalAuthorizationList)
		if err != nil {
			return nil, ocpperr.Internal(err.Error())
		}
		return &ocpp16.SendLocalListResponse{Status: status}, nil
	})

	reg(string(ocpp16.ActionGetLocalListVersion), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		v, err := auth.LocalListVersion(ctx)
		if err != nil {
			return nil, ocpperr.Internal(err.Error())
		}
		return &ocpp16.GetLocalListVersionResponse{ListVersion: v}, nil
	})

	reg(string(ocpp16.ActionClearCache), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		if err := auth.ClearCache(ctx); err != nil {
			return nil, ocpperr.Internal(err.Error())
		}
		return &ocpp16.ClearCacheResponse{Status: ocpp16.ClearCacheStatusAccepted}, nil
	})

	reg(string(ocpp16.ActionRemoteStartTransaction), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		r := req.(*ocpp16.RemoteStartTransactionRequest)
		connID := 1
		if r.ConnectorId != nil {
			connID = *r.ConnectorId
		}
		resp, err := transactions.StartTransaction(ctx, connID, r.IdTag, 0, nil)
		if err != nil {
			return &ocpp16.RemoteStartTransactionResponse{Status: ocpp16.RemoteStartStopStatusRejected}, nil
		}
		_ = resp
		return &ocpp16.RemoteStartTransactionResponse{Status: ocpp16.RemoteStartStopStatusAccepted}, nil
	})

	reg(string(ocpp16.ActionRemoteStopTransaction), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		r := req.(*ocpp16.RemoteStopTransactionRequest)
		if err := transactions.StopTransaction(ctx, r.TransactionId, 0, nil, nil, nil); err != nil {
			return &ocpp16.RemoteStopTransactionResponse{Status: ocpp16.RemoteStartStopStatusRejected}, nil
		}
		return &ocpp16.RemoteStopTransactionResponse{Status: ocpp16.RemoteStartStopStatusAccepted}, nil
	})

	reg(string(ocpp16.ActionGetDiagnostics), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return &ocpp16.GetDiagnosticsResponse{}, nil
	})

	reg(string(ocpp16.ActionUpdateFirmware), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return &ocpp16.UpdateFirmwareResponse{}, nil
	})

	reg(string(ocpp16.ActionSignCertificate), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return &ocpp16.SignCertificateResponse{Status: ocpp16.GenericStatusAccepted}, nil
	})

	reg(string(ocpp16.ActionCertificateSigned), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		r := req.(*ocpp16.CertificateSignedRequest)
		if err := security.InstallSignedCertificate(ctx, "", r.CertificateChain); err != nil {
			return &ocpp16.CertificateSignedResponse{Status: ocpp16.CertificateSignedStatusRejected}, nil
		}
		return &ocpp16.CertificateSignedResponse{Status: ocpp16.CertificateSignedStatusAccepted}, nil
	})

	reg(string(ocpp16.ActionGetInstalledCertificateIds), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return &ocpp16.GetInstalledCertificateIdsResponse{Status: ocpp16.GetInstalledCertificateStatusNotFound}, nil
	})

	reg(string(ocpp16.ActionDeleteCertificate), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return &ocpp16.DeleteCertificateResponse{Status: ocpp16.DeleteCertificateStatusNotFound}, nil
	})

	reg(string(ocpp16.ActionInstallCertificate), func(ctx context.Context, cpID string, req any) (any, *ocpperr.CallError) {
		return &ocpp16.InstallCertificateResponse{Status: ocpp16.InstallCertificateStatusAccepted}, nil
	})
}

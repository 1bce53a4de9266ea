// Package dispatch implements the Action-keyed CALL pipeline: parse a
// wire frame, look up its converter, deserialize and validate the
// payload, look up the registered handler, invoke it, and serialize
// the response back to a CallResult or CallError frame.
//
// Grounded on the registry+stats+RWMutex shape of
// gateway.DefaultMessageDispatcher, generalized from a
// protocol-version-keyed handler map (one ProtocolHandler per OCPP
// version) to an Action-keyed one, since every session already pins
// its own protocol version at connect time. The CallError wire
// construction mirrors the error-frame shape used throughout the
// JoseRFJuniorLLMs-EV-IA OCPP 1.6 server adapter.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/ocpp-platform/ocpp-runtime/internal/convert"
	"github.com/ocpp-platform/ocpp-runtime/internal/domain/validation"
	"github.com/ocpp-platform/ocpp-runtime/internal/logger"
	"github.com/ocpp-platform/ocpp-runtime/internal/metrics"
	"github.com/ocpp-platform/ocpp-runtime/internal/ocpperr"
	"github.com/ocpp-platform/ocpp-runtime/internal/rpcmsg"
)

// Handler processes one decoded Call request and returns either a
// populated response value (ready for the registered response type)
// or a CallError describing why it could not.
type Handler func(ctx context.Context, chargePointID string, req any) (resp any, callErr *ocpperr.CallError)

// Stats tracks aggregate throughput for a Dispatcher, mirroring
// DispatcherStats.
type Stats struct {
	TotalMessages      int64
	SuccessfulMessages int64
	FailedMessages     int64
	MessagesByAction   map[string]int64
	StartTime          time.Time
}

// Dispatcher routes decoded Call frames for one OCPP version to
// registered Handlers and re-encodes their result as a reply frame.
type Dispatcher struct {
	registry *convert.Registry
	version  convert.Version
	log      *logger.Logger

	mu       sync.RWMutex
	handlers map[string]Handler

	statsMu sync.RWMutex
	stats   Stats
}

// New builds a Dispatcher for one protocol version, backed by the
// given converter registry.
func New(registry *convert.Registry, version convert.Version, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		version:  version,
		log:      log,
		handlers: make(map[string]Handler),
		stats: Stats{
			MessagesByAction: make(map[string]int64),
			StartTime:        time.Now(),
		},
	}
}

// RegisterHandler installs the Handler for one Action. Registering the
// same Action twice replaces the previous handler.
func (d *Dispatcher) RegisterHandler(action string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[action] = h
}

// HandlerFor reports whether an Action has a registered Handler.
func (d *Dispatcher) HandlerFor(action string) (Handler, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[action]
	return h, ok
}

// Stats returns a snapshot of the dispatcher's running counters.
func (d *Dispatcher) Stats() Stats {
	d.statsMu.RLock()
	defer d.statsMu.RUnlock()
	out := d.stats
	out.MessagesByAction = make(map[string]int64, len(d.stats.MessagesByAction))
	for action, n := range d.stats.MessagesByAction {
		out.MessagesByAction[action] = n
	}
	return out
}

func (d *Dispatcher) recordResult(action string, success bool) {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	d.stats.TotalMessages++
	if success {
		d.stats.SuccessfulMessages++
	} else {
		d.stats.FailedMessages++
	}
	d.stats.MessagesByAction[action]++
}

// HandleCall runs the full pipeline for one inbound frame and returns
// the raw bytes of the reply frame (CallResult or CallError), or nil
// if the frame could not even be parsed well enough to answer (no
// unique id to address a reply to) or is not a Call frame at all —
// CallResult/CallError frames belong to the RPC pool's correlation
// path, not this pipeline.
func (d *Dispatcher) HandleCall(ctx context.Context, chargePointID string, frame []byte) []byte {
	decoded, err := rpcmsg.Decode(frame)
	if err != nil {
		if d.log != nil {
			d.log.Errorf("dispatch: malformed frame from %s: %v", chargePointID, err)
		}
		return nil
	}
	if decoded.Type != rpcmsg.Call {
		return nil
	}

	return d.HandleDecoded(ctx, chargePointID, decoded)
}

// HandleDecoded runs the pipeline for a frame the caller has already
// decoded — used by acceptors (internal/centralsystem,
// internal/chargepoint, internal/localcontroller) whose transport
// layer decodes once and routes CallResult/CallError to an rpc.Pool
// before a Call frame ever reaches the dispatcher. decoded.Type must
// be rpcmsg.Call.
func (d *Dispatcher) HandleDecoded(ctx context.Context, chargePointID string, decoded *rpcmsg.Decoded) []byte {
	start := time.Now()
	metrics.MessagesReceived.WithLabelValues(string(d.version), decoded.Action).Inc()

	resp, callErr := d.process(ctx, chargePointID, decoded)

	d.recordResult(decoded.Action, callErr == nil)
	metrics.MessageProcessingDuration.WithLabelValues(decoded.Action).Observe(time.Since(start).Seconds())

	if callErr != nil {
		metrics.CallErrorsSent.WithLabelValues(string(callErr.Code)).Inc()
		out, encErr := rpcmsg.EncodeCallError(decoded.UniqueID, callErr)
		if encErr != nil {
			if d.log != nil {
				d.log.Errorf("dispatch: encode CallError for %s: %v", decoded.Action, encErr)
			}
			return nil
		}
		return out
	}

	out, err := rpcmsg.EncodeCallResult(decoded.UniqueID, resp)
	if err != nil {
		if d.log != nil {
			d.log.Errorf("dispatch: encode CallResult for %s: %v", decoded.Action, err)
		}
		ce := ocpperr.Internal("failed to encode response")
		metrics.CallErrorsSent.WithLabelValues(string(ce.Code)).Inc()
		out, _ = rpcmsg.EncodeCallError(decoded.UniqueID, ce)
		return out
	}

	metrics.MessagesSent.WithLabelValues(string(d.version), decoded.Action).Inc()
	return out
}

// process runs steps 2 through 6 of the pipeline: lookup converter,
// deserialize+validate, lookup handler, invoke.
func (d *Dispatcher) process(ctx context.Context, chargePointID string, decoded *rpcmsg.Decoded) (any, *ocpperr.CallError) {
	if _, ok := d.registry.Lookup(d.version, decoded.Action); !ok {
		return nil, ocpperr.Newf(ocpperr.NotImplemented, "unrecognized action %q", decoded.Action)
	}

	req, err := d.registry.DecodeRequest(d.version, decoded.Action, decoded.Payload)
	if err != nil {
		if verrs, ok := err.(validation.ValidationErrors); ok {
			return nil, ocpperr.New(ocpperr.FormationViolation, verrs.Error()).WithDetails(map[string]any{"validation": verrs})
		}
		return nil, ocpperr.New(ocpperr.FormationViolation, err.Error())
	}

	h, ok := d.HandlerFor(decoded.Action)
	if !ok {
		return nil, ocpperr.Newf(ocpperr.NotSupported, "no handler registered for action %q", decoded.Action)
	}

	resp, callErr := h(ctx, chargePointID, req)
	if callErr != nil {
		return nil, callErr
	}
	return resp, nil
}

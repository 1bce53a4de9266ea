package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ocpp-platform/ocpp-runtime/internal/metrics"
	"github.com/ocpp-platform/ocpp-runtime/internal/ocpperr"
	"github.com/ocpp-platform/ocpp-runtime/internal/rpcmsg"
)

// pendingCall is one outbound Call awaiting its CallResult/CallError.
// Adapted from protocol/ocpp16.Processor's PendingRequest, generalized
// away from the Action-keyed response-type registry (that decoding step
// now belongs to internal/convert, invoked by the caller of Call).
type pendingCall struct {
	action   string
	result   chan json.RawMessage
	errCh    chan *ocpperr.CallError
	deadline time.Time
}

// Pool correlates outbound Call frames on one Connection with their
// eventual CallResult/CallError, enforcing the "no two live calls share
// an id" invariant and a per-call deadline.
type Pool struct {
	conn *Connection
	role string

	mu      sync.Mutex
	pending map[string]*pendingCall

	defaultTimeout time.Duration

	stopJanitor context.CancelFunc
}

// NewPool builds a Pool bound to conn. role labels the PendingCalls
// metric ("charge_point", "central_system", "local_controller").
func NewPool(conn *Connection, role string, defaultTimeout time.Duration) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		conn:           conn,
		role:           role,
		pending:        make(map[string]*pendingCall),
		defaultTimeout: defaultTimeout,
		stopJanitor:    cancel,
	}
	go p.janitor(ctx)
	return p
}

// Call sends action/payload as a Call frame and blocks until a matching
// CallResult/CallError arrives, ctx is done, or the per-call deadline
// elapses. On success, result holds the raw CallResult payload; on a
// protocol-level failure it returns the peer's CallError.
func (p *Pool) Call(ctx context.Context, action string, payload any) (json.RawMessage, *ocpperr.CallError, error) {
	uniqueID := uuid.NewString()
	frame, err := rpcmsg.EncodeCall(uniqueID, action, payload)
	if err != nil {
		return nil, nil, fmt.Errorf("rpc: encode %s: %w", action, err)
	}

	deadline := time.Now().Add(p.defaultTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	call := &pendingCall{
		action:   action,
		result:   make(chan json.RawMessage, 1),
		errCh:    make(chan *ocpperr.CallError, 1),
		deadline: deadline,
	}

	p.mu.Lock()
	p.pending[uniqueID] = call
	p.mu.Unlock()
	metrics.PendingCalls.WithLabelValues(p.role).Set(float64(p.Count()))

	defer p.drop(uniqueID)

	if err := p.conn.Send(frame); err != nil {
		return nil, nil, err
	}

	select {
	case result := <-call.result:
		return result, nil, nil
	case callErr := <-call.errCh:
		return nil, callErr, nil
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case <-p.conn.Done():
		return nil, nil, fmt.Errorf("rpc: connection closed while awaiting %s", action)
	case <-time.After(time.Until(deadline)):
		metrics.CallTimeouts.WithLabelValues(action).Inc()
		return nil, nil, fmt.Errorf("rpc: %s timed out after %s", action, p.defaultTimeout)
	}
}

// Resolve delivers an inbound CallResult/CallError to its waiter. It is
// the dispatcher's job to call this after recognizing a frame's unique
// id doesn't belong to a fresh inbound Call.
func (p *Pool) Resolve(decoded *rpcmsg.Decoded) bool {
	p.mu.Lock()
	call, ok := p.pending[decoded.UniqueID]
	p.mu.Unlock()
	if !ok {
		return false
	}

	switch decoded.Type {
	case rpcmsg.CallResult:
		call.result <- decoded.Payload
	case rpcmsg.CallError:
		call.errCh <- &ocpperr.CallError{
			Code:        ocpperr.Code(decoded.ErrorCode),
			Description: decoded.ErrorDesc,
		}
	default:
		return false
	}
	return true
}

func (p *Pool) drop(uniqueID string) {
	p.mu.Lock()
	delete(p.pending, uniqueID)
	p.mu.Unlock()
	metrics.PendingCalls.WithLabelValues(p.role).Set(float64(p.Count()))
}

func (p *Pool) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Close stops the Pool's background janitor; it does not close the
// underlying Connection.
func (p *Pool) Close() {
	p.stopJanitor()
}

// janitor periodically sweeps pending calls past their deadline so a
// silently-dropped frame doesn't leak a goroutine's caller forever; the
// Call method's own time.After also catches this, this is a backstop
// for calls whose context never completes.
func (p *Pool) janitor(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			p.mu.Lock()
			for id, call := range p.pending {
				if now.After(call.deadline) {
					delete(p.pending, id)
				}
			}
			p.mu.Unlock()
		}
	}
}

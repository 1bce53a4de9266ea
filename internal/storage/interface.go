// Package storage holds the cross-instance connection affinity registry:
// which centralsystem process currently owns the live websocket
// connection for a given charge point. This is separate from the
// durable per-charge-point state in internal/storage/sqlite — affinity
// entries are deliberately short-lived (bounded by the OCPP WebSocket
// ping/pong idle timeout, not by anything transactional) and only
// matter while multiple centralsystem replicas share one fleet of
// charge points behind a load balancer, so a command for CP-1 can be
// routed to the replica actually holding its socket.
package storage

import (
	"context"
	"time"
)

// ConnectionStorage maps a charge point identifier to the instance ID
// currently holding its connection. Every entry carries a TTL so a
// replica that crashes without running its shutdown path doesn't leave
// a stale owner behind forever — the entry simply expires and the next
// routing lookup sees the charge point as unconnected until it
// reconnects somewhere.
type ConnectionStorage interface {
	// SetConnection registers chargePointID's owning instance on
	// connection accept, expiring after ttl.
	SetConnection(ctx context.Context, chargePointID string, instanceID string, ttl time.Duration) error

	// RefreshConnection extends an existing entry's TTL, called on
	// every OCPP Heartbeat so a charge point that goes quiet between
	// heartbeats but stays below the configured idle timeout never
	// loses its affinity entry. instanceID is used to recreate the
	// entry if it already expired; it is otherwise not rewritten.
	RefreshConnection(ctx context.Context, chargePointID string, instanceID string, ttl time.Duration) error

	// GetConnection returns the instance ID owning chargePointID's
	// connection. Returns redis.Nil if no entry exists.
	GetConnection(ctx context.Context, chargePointID string) (string, error)

	// DeleteConnection removes the affinity entry, e.g. on graceful
	// disconnect.
	DeleteConnection(ctx context.Context, chargePointID string) error

	Close() error
}

// Package chargepoint holds the Charge-Point-side managers: boot and
// heartbeat, authentication, transaction lifecycle, reservations, smart
// charging's composite schedule, security event logging, and the ISO
// 15118 Plug-and-Charge DataTransfer bridge. Each concern lives in its
// own file and depends only on the primitives lower layers already
// provide (internal/connector, internal/fifo, internal/rpc,
// internal/storage/sqlite, internal/cache) rather than on each other,
// keeping lifecycle concerns and transaction handling in independent
// files of this one package.
package chargepoint

import (
	"context"
	"encoding/json"

	"github.com/ocpp-platform/ocpp-runtime/internal/ocpperr"
)

// CallFunc is the shape of rpc.Pool.Call, injected rather than imported
// directly so these managers stay testable without a live connection.
type CallFunc func(ctx context.Context, action string, payload any) (json.RawMessage, *ocpperr.CallError, error)

// decodeInto unmarshals a CallResult payload into a typed response.
func decodeInto(raw json.RawMessage, v any) error {
	return json.Unmarshal(raw, v)
}

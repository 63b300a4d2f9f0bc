package types

import "github.com/google/uuid"

// NewConnectionID mints a unique identifier for a control-plane connection.
// The edit protocol's per-connection ordering guarantee (§5) is keyed on
// this value: replies for commands submitted on the same connection are
// observed in submission order.
func NewConnectionID() string {
	return uuid.NewString()
}

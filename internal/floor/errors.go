package floor

import "errors"

// Rejections are ordinary outcomes here, not failures: guards protect staff
// from losing or double-sending an order, so every operation reports them
// explicitly instead of silently doing nothing.
var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrTableNotFound = errors.New("table not found")
	ErrItemNotFound  = errors.New("order item not found")

	ErrNameRequired = errors.New("item name is required")
	ErrBadQuantity  = errors.New("quantity must be at least 1")
	ErrBadPrice     = errors.New("price must not be negative")

	ErrNoPendingItems = errors.New("no pending items to command")
	ErrPendingItems   = errors.New("pending items must be commanded before billing")
	ErrNotOrdered     = errors.New("only an ordered table can be billed")
	ErrNotBilled      = errors.New("table still has an unbilled order")
	ErrTargetOccupied = errors.New("target table is not available")
)

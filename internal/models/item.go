package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// OrderItemStatus represents the lifecycle state of a single order line
type OrderItemStatus string

const (
	// ItemPending marks a line that has not been sent to the kitchen or bar yet
	ItemPending OrderItemStatus = "pending"
	// ItemCommanded marks a line that was already sent with a previous command
	ItemCommanded OrderItemStatus = "commanded"
)

// ItemID identifies an order line. A bare id is a monotonic millisecond
// timestamp; a dotted id ("base.suffix") marks a pending addition layered on
// top of an already commanded batch, where base is the batch's own id.
// Suffix 0 means the id is bare.
type ItemID struct {
	Base   int64
	Suffix int64
}

// Child returns the dotted id for a new addition under the same base.
func (id ItemID) Child(suffix int64) ItemID {
	return ItemID{Base: id.Base, Suffix: suffix}
}

// IsZero reports whether the id has not been assigned.
func (id ItemID) IsZero() bool {
	return id.Base == 0 && id.Suffix == 0
}

// String serializes the id for display and persistence.
func (id ItemID) String() string {
	if id.Suffix == 0 {
		return strconv.FormatInt(id.Base, 10)
	}
	return strconv.FormatInt(id.Base, 10) + "." + strconv.FormatInt(id.Suffix, 10)
}

// ParseItemID parses the string form of an id, bare or dotted.
func ParseItemID(s string) (ItemID, error) {
	basePart, suffixPart, dotted := strings.Cut(s, ".")
	base, err := strconv.ParseInt(basePart, 10, 64)
	if err != nil || base <= 0 {
		return ItemID{}, fmt.Errorf("invalid item id %q", s)
	}
	if !dotted {
		return ItemID{Base: base}, nil
	}
	suffix, err := strconv.ParseInt(suffixPart, 10, 64)
	if err != nil || suffix <= 0 {
		return ItemID{}, fmt.Errorf("invalid item id %q", s)
	}
	return ItemID{Base: base, Suffix: suffix}, nil
}

// MarshalJSON writes the id in its string form.
func (id ItemID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON reads the id from its string form.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseItemID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// OrderItem represents a single line of a table's order
type OrderItem struct {
	ID        ItemID          `json:"id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     float64         `json:"price"`
	Status    OrderItemStatus `json:"status"`
	Timestamp int64           `json:"timestamp"` // epoch ms, refreshed when a pending line absorbs an addition
	Note      string          `json:"note,omitempty"`
	Guest     int             `json:"guest"`
}

// MergeKey is the identity under which two order lines count as the same
// thing: matching pending lines have their quantities summed instead of
// producing duplicate rows.
type MergeKey struct {
	Name  string
	Price float64
	Note  string
	Guest int
}

// Key returns the item's merge key.
func (it OrderItem) Key() MergeKey {
	return MergeKey{Name: it.Name, Price: it.Price, Note: it.Note, Guest: it.Guest}
}

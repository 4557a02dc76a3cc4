package models

import "sort"

// TableStatus represents the aggregate state of a table, derived from its
// order lines
type TableStatus string

const (
	// TableAvailable means the table has no order
	TableAvailable TableStatus = "available"
	// TablePending means at least one order line has not been commanded
	TablePending TableStatus = "pending"
	// TableOrdered means every line was sent to the kitchen or bar
	TableOrdered TableStatus = "ordered"
	// TableBilled means the bill was printed and no lines changed since
	TableBilled TableStatus = "billed"
)

// TableShape represents how a table is drawn on the floor plan
type TableShape string

const (
	ShapeSquare TableShape = "square"
	ShapeRound  TableShape = "round"
	ShapeDouble TableShape = "double"
)

// Table represents one table on the restaurant floor. X and Y are percentage
// positions within the room; only the layout editor writes them.
type Table struct {
	ID     int         `json:"id"`
	Name   string      `json:"name"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Shape  TableShape  `json:"shape,omitempty"`
	Status TableStatus `json:"status"`
	Order  []OrderItem `json:"order"`
}

// HasPendingItems reports whether any line of the order is still pending.
func HasPendingItems(order []OrderItem) bool {
	for _, it := range order {
		if it.Status == ItemPending {
			return true
		}
	}
	return false
}

// DeriveStatus computes a table's status from its order lines. An empty
// order is Available, any pending line makes the table Pending, and a fully
// commanded order is Ordered. Billed is never derived: the bill command sets
// it explicitly, and any later change to the order drops the table back here
// because the printed bill no longer matches.
func DeriveStatus(order []OrderItem) TableStatus {
	if len(order) == 0 {
		return TableAvailable
	}
	if HasPendingItems(order) {
		return TablePending
	}
	return TableOrdered
}

// Subtotal returns the sum of quantity times price over all lines.
func Subtotal(order []OrderItem) float64 {
	var sum float64
	for _, it := range order {
		sum += float64(it.Quantity) * it.Price
	}
	return sum
}

// GuestShare is one guest's part of a shared table's bill.
type GuestShare struct {
	Guest    int     `json:"guest"`
	Subtotal float64 `json:"subtotal"`
}

// Bill is the computed settlement for a table.
type Bill struct {
	Subtotal   float64      `json:"subtotal"`
	TipPercent float64      `json:"tip_percent"`
	Tip        float64      `json:"tip"`
	Total      float64      `json:"total"`
	Guests     []GuestShare `json:"guests"`
}

// ComputeBill totals an order and splits the subtotal per guest. Lines
// without a guest tag count towards guest 1.
func ComputeBill(order []OrderItem, tipPercent float64) Bill {
	shares := make(map[int]float64)
	for _, it := range order {
		guest := it.Guest
		if guest < 1 {
			guest = 1
		}
		shares[guest] += float64(it.Quantity) * it.Price
	}

	guests := make([]GuestShare, 0, len(shares))
	for guest, subtotal := range shares {
		guests = append(guests, GuestShare{Guest: guest, Subtotal: subtotal})
	}
	sort.Slice(guests, func(i, j int) bool { return guests[i].Guest < guests[j].Guest })

	subtotal := Subtotal(order)
	tip := subtotal * tipPercent / 100
	return Bill{
		Subtotal:   subtotal,
		TipPercent: tipPercent,
		Tip:        tip,
		Total:      subtotal + tip,
		Guests:     guests,
	}
}

// NextGuest returns the number the next guest at the table should get:
// one past the highest guest already present, or 1 for an empty order.
// It is recomputed from the live order on purpose, so removing a guest's
// lines frees their number.
func NextGuest(order []OrderItem) int {
	max := 0
	for _, it := range order {
		guest := it.Guest
		if guest < 1 {
			guest = 1
		}
		if guest > max {
			max = guest
		}
	}
	return max + 1
}

// SummaryLine aggregates an order by item name, for the kitchen-facing
// overview that ignores guests and notes.
type SummaryLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Summarize folds an order into per-name quantities sorted by name.
func Summarize(order []OrderItem) []SummaryLine {
	totals := make(map[string]int)
	for _, it := range order {
		totals[it.Name] += it.Quantity
	}
	lines := make([]SummaryLine, 0, len(totals))
	for name, qty := range totals {
		lines = append(lines, SummaryLine{Name: name, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Name < lines[j].Name })
	return lines
}

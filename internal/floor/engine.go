package floor

import (
	"log"
	"sync"
	"time"

	"comandero/internal/models"
)

// layoutKey is the snapshot key the floor persists under.
const layoutKey = "layout"

// Store is the persistence the engine needs: opaque keyed snapshots, loaded
// at startup and saved best-effort after every change.
type Store interface {
	// Load unmarshals the snapshot stored under key into out. It returns
	// false when no snapshot exists yet.
	Load(key string, out interface{}) (bool, error)
	// Save marshals v and stores it under key, replacing any previous value.
	Save(key string, v interface{}) error
}

// ItemRequest carries the fields of an order line to add. When SourceItemID
// is set the named line's identity is cloned with quantity 1 instead (the
// "+1" quick-add) and the other fields are ignored.
type ItemRequest struct {
	Name         string
	Quantity     int
	Price        float64
	Note         string
	Guest        int
	SourceItemID models.ItemID
}

// TableAlert flags a table whose pending items have been waiting too long.
type TableAlert struct {
	Room    string `json:"room"`
	TableID int    `json:"table_id"`
	Name    string `json:"name"`
}

// Engine owns the floor state: every room's tables and their orders. It is
// the only writer of order lines and table status. All operations run under
// one mutex so the id contract and the per-table invariants survive the
// concurrent HTTP host.
type Engine struct {
	mu        sync.Mutex
	ids       *IDGenerator
	now       func() time.Time
	roomOrder []string
	rooms     map[string][]models.Table
	store     Store

	// OnChange, when set, is invoked with a copy of the mutated room's
	// tables after every successful change. It runs under the engine lock
	// and must not call back into the engine.
	OnChange func(room string, tables []models.Table)

	// OnPersistError, when set, is invoked whenever a best-effort snapshot
	// save fails. Same locking caveat as OnChange.
	OnPersistError func(err error)
}

// NewEngine builds an engine from the persisted layout, falling back to the
// built-in floor plan when the snapshot is absent, unreadable, or from a
// different schema version. The store may be nil for purely in-memory use.
func NewEngine(store Store, ids *IDGenerator) *Engine {
	e := &Engine{
		ids:   ids,
		now:   time.Now,
		store: store,
	}

	layout := DefaultLayout()
	if store != nil {
		var saved Layout
		found, err := store.Load(layoutKey, &saved)
		switch {
		case err != nil:
			log.Printf("floor: could not load layout snapshot, using default: %v", err)
		case found && saved.SchemaVersion != layoutSchemaVersion:
			log.Printf("floor: layout snapshot has schema version %d, want %d; using default", saved.SchemaVersion, layoutSchemaVersion)
		case found:
			layout = &saved
		}
	}

	e.roomOrder = layout.RoomOrder
	e.rooms = layout.Rooms
	return e
}

// Rooms returns the room ids in display order.
func (e *Engine) Rooms() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.roomOrder...)
}

// Tables returns a copy of a room's tables.
func (e *Engine) Tables(room string) ([]models.Table, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tables, ok := e.rooms[room]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return copyTables(tables), nil
}

// Table returns a copy of one table.
func (e *Engine) Table(room string, tableID int) (models.Table, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.findTable(room, tableID)
	if err != nil {
		return models.Table{}, err
	}
	return copyTable(*t), nil
}

// AddItem adds an order line to a table. A pending line with the same merge
// key absorbs the quantity and has its timestamp refreshed; otherwise a new
// pending line is inserted, layered under the most recent commanded batch of
// the same merge key when one exists.
func (e *Engine) AddItem(room string, tableID int, req ItemRequest) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.findTable(room, tableID)
	if err != nil {
		return err
	}

	item := models.OrderItem{
		Name:     req.Name,
		Quantity: req.Quantity,
		Price:    req.Price,
		Note:     req.Note,
		Guest:    req.Guest,
	}
	if !req.SourceItemID.IsZero() {
		source := findItem(t.Order, req.SourceItemID)
		if source == nil {
			return ErrItemNotFound
		}
		item = models.OrderItem{
			Name:     source.Name,
			Quantity: 1,
			Price:    source.Price,
			Note:     source.Note,
			Guest:    source.Guest,
		}
	}
	if item.Guest < 1 {
		item.Guest = 1
	}

	if item.Name == "" {
		return ErrNameRequired
	}
	if item.Quantity <= 0 {
		return ErrBadQuantity
	}
	if item.Price < 0 {
		return ErrBadPrice
	}

	nowMillis := e.now().UnixMilli()

	if existing := findPendingByKey(t.Order, item.Key()); existing != nil {
		existing.Quantity += item.Quantity
		existing.Timestamp = nowMillis
	} else {
		item.ID = e.newLineID(t.Order, item.Key())
		item.Status = models.ItemPending
		item.Timestamp = nowMillis
		t.Order = append(t.Order, item)
	}

	t.Status = models.DeriveStatus(t.Order)
	e.changed(room)
	return nil
}

// newLineID picks the id for a brand-new pending line. If a commanded line
// with the same merge key exists, the new line gets a dotted id under the
// most recent such batch, so the commanded record stays untouched while the
// addition shows up as its own row. Otherwise a fresh bare id is minted.
func (e *Engine) newLineID(order []models.OrderItem, key models.MergeKey) models.ItemID {
	var latest *models.OrderItem
	for i := range order {
		it := &order[i]
		if it.Status != models.ItemCommanded || it.Key() != key {
			continue
		}
		if latest == nil || it.ID.Base > latest.ID.Base {
			latest = it
		}
	}
	if latest == nil {
		return models.ItemID{Base: e.ids.Next()}
	}

	base := latest.ID.Base
	var maxSuffix int64
	for _, it := range order {
		if it.ID.Base == base && it.ID.Suffix > maxSuffix {
			maxSuffix = it.ID.Suffix
		}
	}
	return latest.ID.Child(maxSuffix + 1)
}

// DecrementItem lowers a line's quantity by one, removing the line when it
// would hit zero. Quantities never persist at zero or below.
func (e *Engine) DecrementItem(room string, tableID int, itemID models.ItemID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.findTable(room, tableID)
	if err != nil {
		return err
	}

	for i := range t.Order {
		if t.Order[i].ID != itemID {
			continue
		}
		if t.Order[i].Quantity > 1 {
			t.Order[i].Quantity--
		} else {
			t.Order = append(t.Order[:i], t.Order[i+1:]...)
		}
		t.Status = models.DeriveStatus(t.Order)
		e.changed(room)
		return nil
	}
	return ErrItemNotFound
}

// DeleteItem removes a line outright. Confirmation is the caller's business.
func (e *Engine) DeleteItem(room string, tableID int, itemID models.ItemID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.findTable(room, tableID)
	if err != nil {
		return err
	}

	for i := range t.Order {
		if t.Order[i].ID != itemID {
			continue
		}
		t.Order = append(t.Order[:i], t.Order[i+1:]...)
		t.Status = models.DeriveStatus(t.Order)
		e.changed(room)
		return nil
	}
	return ErrItemNotFound
}

// UpdateItemNote replaces a line's note. The table status is untouched.
func (e *Engine) UpdateItemNote(room string, tableID int, itemID models.ItemID, note string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.findTable(room, tableID)
	if err != nil {
		return err
	}

	item := findItem(t.Order, itemID)
	if item == nil {
		return ErrItemNotFound
	}
	item.Note = note
	e.changed(room)
	return nil
}

// Command commits the table's pending lines. Pending lines are consolidated
// by merge key; each consolidated group either folds into the commanded line
// with the same key (which is reassigned a fresh bare id, marking it as the
// newest batch for future layering) or becomes a commanded line of its own.
func (e *Engine) Command(room string, tableID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.findTable(room, tableID)
	if err != nil {
		return err
	}
	if !models.HasPendingItems(t.Order) {
		return ErrNoPendingItems
	}

	var commanded []models.OrderItem
	var groups []models.OrderItem
	groupIndex := make(map[models.MergeKey]int)

	for _, it := range t.Order {
		if it.Status == models.ItemCommanded {
			commanded = append(commanded, it)
			continue
		}
		if i, ok := groupIndex[it.Key()]; ok {
			groups[i].Quantity += it.Quantity
			groups[i].ID = it.ID
		} else {
			groupIndex[it.Key()] = len(groups)
			groups = append(groups, it)
		}
	}

	for _, group := range groups {
		if existing := findCommandedByKey(commanded, group.Key()); existing != nil {
			existing.Quantity += group.Quantity
			existing.ID = models.ItemID{Base: e.ids.Next()}
		} else {
			group.Status = models.ItemCommanded
			commanded = append(commanded, group)
		}
	}

	t.Order = commanded
	t.Status = models.DeriveStatus(t.Order)
	e.changed(room)
	return nil
}

// PrintBill marks an ordered table as billed. Tables with pending lines
// cannot be billed: unsent items would be lost on the printed total.
func (e *Engine) PrintBill(room string, tableID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.findTable(room, tableID)
	if err != nil {
		return err
	}
	if models.HasPendingItems(t.Order) {
		return ErrPendingItems
	}
	if t.Status != models.TableOrdered {
		return ErrNotOrdered
	}

	t.Status = models.TableBilled
	e.changed(room)
	return nil
}

// Bill computes the current settlement for a table without changing state.
func (e *Engine) Bill(room string, tableID int, tipPercent float64) (models.Bill, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.findTable(room, tableID)
	if err != nil {
		return models.Bill{}, err
	}
	return models.ComputeBill(t.Order, tipPercent), nil
}

// CloseTable frees a billed (or already empty) table. Anything else is
// rejected so an unbilled order cannot be wiped by accident.
func (e *Engine) CloseTable(room string, tableID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.findTable(room, tableID)
	if err != nil {
		return err
	}
	if t.Status != models.TableBilled && len(t.Order) > 0 {
		return ErrNotBilled
	}

	t.Order = []models.OrderItem{}
	t.Status = models.TableAvailable
	e.changed(room)
	return nil
}

// Transfer moves a table's whole order and status onto an available table,
// possibly in another room, and frees the source. An occupied target is
// never overwritten.
func (e *Engine) Transfer(sourceRoom string, sourceID int, targetRoom string, targetID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	source, err := e.findTable(sourceRoom, sourceID)
	if err != nil {
		return err
	}
	target, err := e.findTable(targetRoom, targetID)
	if err != nil {
		return err
	}
	if target.Status != models.TableAvailable {
		return ErrTargetOccupied
	}

	target.Order = source.Order
	target.Status = source.Status
	source.Order = []models.OrderItem{}
	source.Status = models.TableAvailable

	e.changed(sourceRoom)
	if targetRoom != sourceRoom {
		e.changed(targetRoom)
	}
	return nil
}

// Alerts lists tables that have had pending items sitting longer than the
// threshold. Timestamps refresh whenever a pending line absorbs an addition,
// so only genuinely idle tables alert.
func (e *Engine) Alerts(threshold time.Duration) []TableAlert {
	e.mu.Lock()
	defer e.mu.Unlock()

	nowMillis := e.now().UnixMilli()
	cutoff := threshold.Milliseconds()

	var alerts []TableAlert
	for _, room := range e.roomOrder {
		for _, t := range e.rooms[room] {
			if t.Status != models.TablePending {
				continue
			}
			for _, it := range t.Order {
				if it.Status == models.ItemPending && nowMillis-it.Timestamp > cutoff {
					alerts = append(alerts, TableAlert{Room: room, TableID: t.ID, Name: t.Name})
					break
				}
			}
		}
	}
	return alerts
}

// OccupiedCount returns how many tables currently hold an order.
func (e *Engine) OccupiedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	count := 0
	for _, tables := range e.rooms {
		for _, t := range tables {
			if t.Status != models.TableAvailable {
				count++
			}
		}
	}
	return count
}

func (e *Engine) findTable(room string, tableID int) (*models.Table, error) {
	tables, ok := e.rooms[room]
	if !ok {
		return nil, ErrRoomNotFound
	}
	for i := range tables {
		if tables[i].ID == tableID {
			return &tables[i], nil
		}
	}
	return nil, ErrTableNotFound
}

// changed persists the floor and fans the mutated room out to observers.
// Persistence is best-effort: a failed save is logged and the in-memory
// state stays authoritative for the session.
func (e *Engine) changed(room string) {
	if e.store != nil {
		snapshot := Layout{
			SchemaVersion: layoutSchemaVersion,
			RoomOrder:     append([]string(nil), e.roomOrder...),
			Rooms:         e.rooms,
		}
		if err := e.store.Save(layoutKey, &snapshot); err != nil {
			log.Printf("floor: could not save layout snapshot: %v", err)
			if e.OnPersistError != nil {
				e.OnPersistError(err)
			}
		}
	}
	if e.OnChange != nil {
		e.OnChange(room, copyTables(e.rooms[room]))
	}
}

func findItem(order []models.OrderItem, id models.ItemID) *models.OrderItem {
	for i := range order {
		if order[i].ID == id {
			return &order[i]
		}
	}
	return nil
}

func findPendingByKey(order []models.OrderItem, key models.MergeKey) *models.OrderItem {
	for i := range order {
		if order[i].Status == models.ItemPending && order[i].Key() == key {
			return &order[i]
		}
	}
	return nil
}

func findCommandedByKey(order []models.OrderItem, key models.MergeKey) *models.OrderItem {
	for i := range order {
		if order[i].Status == models.ItemCommanded && order[i].Key() == key {
			return &order[i]
		}
	}
	return nil
}

func copyTable(t models.Table) models.Table {
	t.Order = append([]models.OrderItem(nil), t.Order...)
	return t
}

func copyTables(tables []models.Table) []models.Table {
	out := make([]models.Table, len(tables))
	for i, t := range tables {
		out[i] = copyTable(t)
	}
	return out
}

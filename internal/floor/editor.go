package floor

import "comandero/internal/models"

// Layout editing. These operations only ever touch position, shape, and
// table existence; orders and statuses stay with the engine's order
// operations, except that restoring a room carries active orders over.

// MoveTable repositions a table on the floor plan. Coordinates are
// percentages and get clamped into the room.
func (e *Engine) MoveTable(room string, tableID int, x, y float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.findTable(room, tableID)
	if err != nil {
		return err
	}
	t.X = clampPercent(x)
	t.Y = clampPercent(y)
	e.changed(room)
	return nil
}

// AddTable creates an empty table in a room. Ids are unique across all
// rooms so tables can be transferred between them.
func (e *Engine) AddTable(room string, name string, shape models.TableShape) (models.Table, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.rooms[room]; !ok {
		return models.Table{}, ErrRoomNotFound
	}

	maxID := 0
	for _, tables := range e.rooms {
		for _, t := range tables {
			if t.ID > maxID {
				maxID = t.ID
			}
		}
	}

	table := models.Table{
		ID:     maxID + 1,
		Name:   name,
		X:      45,
		Y:      45,
		Shape:  shape,
		Status: models.TableAvailable,
		Order:  []models.OrderItem{},
	}
	if table.Name == "" {
		return models.Table{}, ErrNameRequired
	}
	if table.Shape == "" {
		table.Shape = models.ShapeSquare
	}

	e.rooms[room] = append(e.rooms[room], table)
	e.changed(room)
	return table, nil
}

// DeleteTable removes a table from the floor plan. Confirmation is the
// caller's business, as with item deletion.
func (e *Engine) DeleteTable(room string, tableID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tables, ok := e.rooms[room]
	if !ok {
		return ErrRoomNotFound
	}
	for i := range tables {
		if tables[i].ID == tableID {
			e.rooms[room] = append(tables[:i], tables[i+1:]...)
			e.changed(room)
			return nil
		}
	}
	return ErrTableNotFound
}

// RestoreRoom puts a room's tables back on their built-in positions. Tables
// with an active order keep that order and status; everything else resets.
func (e *Engine) RestoreRoom(room string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, ok := e.rooms[room]
	if !ok {
		return ErrRoomNotFound
	}
	defaults, ok := DefaultLayout().Rooms[room]
	if !ok {
		return ErrRoomNotFound
	}

	restored := make([]models.Table, 0, len(defaults))
	for _, def := range defaults {
		for _, cur := range current {
			if cur.ID == def.ID && len(cur.Order) > 0 {
				def.Order = cur.Order
				def.Status = cur.Status
				break
			}
		}
		restored = append(restored, def)
	}

	e.rooms[room] = restored
	e.changed(room)
	return nil
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

package floor

import (
	"errors"
	"testing"

	"comandero/internal/models"
)

func TestMoveTableClampsIntoRoom(t *testing.T) {
	e, _ := newTestEngine()

	if err := e.MoveTable("principal", 10, 150, -20); err != nil {
		t.Fatal(err)
	}
	table := mustTable(t, e, "principal", 10)
	if table.X != 100 || table.Y != 0 {
		t.Errorf("position = (%v, %v), want (100, 0)", table.X, table.Y)
	}

	if err := e.MoveTable("principal", 999, 10, 10); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("MoveTable on missing table error = %v, want %v", err, ErrTableNotFound)
	}
}

func TestAddTableAssignsUniqueIDAcrossRooms(t *testing.T) {
	e, _ := newTestEngine()

	added, err := e.AddTable("terraza", "55", models.ShapeRound)
	if err != nil {
		t.Fatalf("AddTable returned error: %v", err)
	}
	// The default layout's highest id is 54, in terraza.
	if added.ID != 55 {
		t.Errorf("new table id = %d, want 55", added.ID)
	}
	if added.Status != models.TableAvailable || len(added.Order) != 0 {
		t.Errorf("new table = %+v, want available and empty", added)
	}

	if _, err := e.AddTable("terraza", "", models.ShapeRound); !errors.Is(err, ErrNameRequired) {
		t.Errorf("AddTable without name error = %v, want %v", err, ErrNameRequired)
	}
	if _, err := e.AddTable("sotano", "1", models.ShapeRound); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("AddTable in missing room error = %v, want %v", err, ErrRoomNotFound)
	}
}

func TestDeleteTable(t *testing.T) {
	e, _ := newTestEngine()

	if err := e.DeleteTable("principal", 10); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Table("principal", 10); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("deleted table still present, error = %v", err)
	}
	if err := e.DeleteTable("principal", 10); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("second delete error = %v, want %v", err, ErrTableNotFound)
	}
}

func TestRestoreRoomKeepsActiveOrders(t *testing.T) {
	e, _ := newTestEngine()

	if err := e.AddItem("principal", 10, mojito(2)); err != nil {
		t.Fatal(err)
	}
	if err := e.MoveTable("principal", 10, 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.MoveTable("principal", 11, 99, 99); err != nil {
		t.Fatal(err)
	}

	if err := e.RestoreRoom("principal"); err != nil {
		t.Fatalf("RestoreRoom returned error: %v", err)
	}

	occupied := mustTable(t, e, "principal", 10)
	if occupied.X != 81 || occupied.Y != 10 {
		t.Errorf("occupied table position = (%v, %v), want the default (81, 10)", occupied.X, occupied.Y)
	}
	if len(occupied.Order) != 1 || occupied.Status != models.TablePending {
		t.Errorf("occupied table lost its order on restore: %+v", occupied)
	}

	empty := mustTable(t, e, "principal", 11)
	if empty.X != 62 || empty.Y != 10 {
		t.Errorf("empty table position = (%v, %v), want the default (62, 10)", empty.X, empty.Y)
	}
}

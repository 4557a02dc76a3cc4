package floor

import "comandero/internal/models"

// layoutSchemaVersion is bumped whenever the persisted layout shape changes,
// so an old snapshot is rejected instead of silently misread.
const layoutSchemaVersion = 1

// Layout is the persisted form of the whole floor: every room with its
// tables, plus the order rooms are presented in.
type Layout struct {
	SchemaVersion int                       `json:"schema_version"`
	RoomOrder     []string                  `json:"room_order"`
	Rooms         map[string][]models.Table `json:"rooms"`
}

func square(id int, name string, x, y float64) models.Table {
	return models.Table{ID: id, Name: name, X: x, Y: y, Shape: models.ShapeSquare, Status: models.TableAvailable, Order: []models.OrderItem{}}
}

func round(id int, name string, x, y float64) models.Table {
	return models.Table{ID: id, Name: name, X: x, Y: y, Shape: models.ShapeRound, Status: models.TableAvailable, Order: []models.OrderItem{}}
}

func double(id int, name string, x, y float64) models.Table {
	return models.Table{ID: id, Name: name, X: x, Y: y, Shape: models.ShapeDouble, Status: models.TableAvailable, Order: []models.OrderItem{}}
}

// DefaultLayout returns the built-in floor plan, used on first start and as
// the fallback when the persisted snapshot is missing or unreadable.
func DefaultLayout() *Layout {
	return &Layout{
		SchemaVersion: layoutSchemaVersion,
		RoomOrder:     []string{"principal", "terraza"},
		Rooms: map[string][]models.Table{
			"principal": {
				square(15, "15", 5, 10),
				square(14, "14", 24, 10),
				square(12, "12", 43, 10),
				square(11, "11", 62, 10),
				square(10, "10", 81, 10),
				square(24, "24", 5, 35),
				square(23, "23", 24, 35),
				square(22, "22", 43, 35),
				square(21, "21", 62, 35),
				square(20, "20", 81, 35),
				round(5, "B5", 5, 60),
				round(4, "B4", 16, 60),
				round(3, "B3", 27, 60),
				round(2, "B2", 38, 60),
				round(1, "B1", 49, 60),
				square(31, "31", 62, 60),
				square(30, "30", 81, 60),
			},
			"terraza": {
				square(54, "54", 2, 15),
				square(53, "53", 18, 15),
				double(52, "52", 34, 15),
				square(51, "51", 62, 15),
				square(50, "50", 78, 15),
				square(43, "43", 10, 50),
				square(42, "42", 30, 50),
				square(41, "41", 50, 50),
				square(40, "40", 70, 50),
			},
		},
	}
}

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"comandero/internal/catalog"
	"comandero/internal/config"
	"comandero/internal/floor"
	"comandero/internal/models"
	"comandero/internal/monitoring"
)

// FloorAPI represents the main API handler for the restaurant floor
type FloorAPI struct {
	Router  *gin.Engine
	engine  *floor.Engine
	catalog *catalog.Catalog
	metrics *monitoring.Metrics
	hub     *Hub
	cfg     *config.Config
}

// NewFloorAPI creates a new floor API instance and wires the engine's
// change feed into the websocket hub and metrics.
func NewFloorAPI(engine *floor.Engine, cat *catalog.Catalog, metrics *monitoring.Metrics, cfg *config.Config) *FloorAPI {
	f := &FloorAPI{
		Router:  gin.Default(),
		engine:  engine,
		catalog: cat,
		metrics: metrics,
		hub:     NewHub(),
		cfg:     cfg,
	}

	engine.OnChange = f.hub.BroadcastRoom
	engine.OnPersistError = func(error) { metrics.RecordPersistFailure() }

	go f.hub.Run()
	f.setupRoutes()
	return f
}

// setupRoutes configures all API endpoints
func (f *FloorAPI) setupRoutes() {
	// Health check
	f.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Comandero API is running"})
	})

	f.Router.POST("/api/v1/auth/login", f.handleLogin)
	f.Router.GET("/ws", f.handleWebSocket)

	v1 := f.Router.Group("/api/v1")
	v1.Use(AuthMiddleware(f.cfg.Auth.Secret))
	{
		// Floor layout
		v1.GET("/rooms", f.GetRooms)
		v1.GET("/rooms/:room/tables", f.GetTables)
		v1.POST("/rooms/:room/tables", f.AddTable)
		v1.GET("/rooms/:room/tables/:table", f.GetTable)
		v1.DELETE("/rooms/:room/tables/:table", f.DeleteTable)
		v1.PUT("/rooms/:room/tables/:table/position", f.MoveTable)
		v1.POST("/rooms/:room/restore", f.RestoreRoom)

		// Order lifecycle
		v1.POST("/rooms/:room/tables/:table/items", f.AddItem)
		v1.POST("/rooms/:room/tables/:table/items/:item/decrement", f.DecrementItem)
		v1.DELETE("/rooms/:room/tables/:table/items/:item", f.DeleteItem)
		v1.PUT("/rooms/:room/tables/:table/items/:item/note", f.UpdateItemNote)
		v1.POST("/rooms/:room/tables/:table/command", f.Command)
		v1.GET("/rooms/:room/tables/:table/bill", f.GetBill)
		v1.POST("/rooms/:room/tables/:table/bill", f.PrintBill)
		v1.POST("/rooms/:room/tables/:table/close", f.CloseTable)
		v1.POST("/transfer", f.Transfer)
		v1.GET("/alerts", f.GetAlerts)

		// Catalog
		v1.GET("/products", f.SearchProducts)
		v1.GET("/products/categories", f.GetCategories)
		v1.GET("/products/category/:category", f.GetProductsByCategory)
		v1.POST("/products", f.AddProduct)
		v1.PUT("/products/:product/price", f.UpdateProductPrice)
		v1.PUT("/products/:product/availability", f.SetProductAvailability)
	}
}

// tableParams pulls the room id and table id out of the request path.
func tableParams(c *gin.Context) (string, int, bool) {
	room := c.Param("room")
	tableID, err := strconv.Atoi(c.Param("table"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid table id"})
		return "", 0, false
	}
	return room, tableID, true
}

// itemParam parses the order-item id out of the request path.
func itemParam(c *gin.Context) (models.ItemID, bool) {
	id, err := models.ParseItemID(c.Param("item"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.ItemID{}, false
	}
	return id, true
}

// engineError answers an engine rejection with the matching status code.
// Guard rejections are conflicts, not failures; bad input is the caller's
// fault; everything the engine cannot find is a 404.
func (f *FloorAPI) engineError(c *gin.Context, operation string, err error) {
	f.metrics.RecordRejection(operation)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, floor.ErrRoomNotFound),
		errors.Is(err, floor.ErrTableNotFound),
		errors.Is(err, floor.ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, floor.ErrNameRequired),
		errors.Is(err, floor.ErrBadQuantity),
		errors.Is(err, floor.ErrBadPrice):
		status = http.StatusBadRequest
	case errors.Is(err, floor.ErrNoPendingItems),
		errors.Is(err, floor.ErrPendingItems),
		errors.Is(err, floor.ErrNotOrdered),
		errors.Is(err, floor.ErrNotBilled),
		errors.Is(err, floor.ErrTargetOccupied):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// completed records a successful mutation.
func (f *FloorAPI) completed(operation string) {
	f.metrics.RecordOperation(operation)
	f.metrics.SetOccupiedTables(f.engine.OccupiedCount())
}

// Floor layout handlers

func (f *FloorAPI) GetRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": f.engine.Rooms()})
}

func (f *FloorAPI) GetTables(c *gin.Context) {
	tables, err := f.engine.Tables(c.Param("room"))
	if err != nil {
		f.engineError(c, "get_tables", err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

func (f *FloorAPI) GetTable(c *gin.Context) {
	room, tableID, ok := tableParams(c)
	if !ok {
		return
	}
	table, err := f.engine.Table(room, tableID)
	if err != nil {
		f.engineError(c, "get_table", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"table":      table,
		"next_guest": models.NextGuest(table.Order),
		"summary":    models.Summarize(table.Order),
	})
}

func (f *FloorAPI) AddTable(c *gin.Context) {
	var req struct {
		Name  string `json:"name"`
		Shape string `json:"shape"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	table, err := f.engine.AddTable(c.Param("room"), req.Name, models.TableShape(req.Shape))
	if err != nil {
		f.engineError(c, "add_table", err)
		return
	}
	f.completed("add_table")
	c.JSON(http.StatusCreated, table)
}

func (f *FloorAPI) DeleteTable(c *gin.Context) {
	room, tableID, ok := tableParams(c)
	if !ok {
		return
	}
	if err := f.engine.DeleteTable(room, tableID); err != nil {
		f.engineError(c, "delete_table", err)
		return
	}
	f.completed("delete_table")
	c.JSON(http.StatusOK, gin.H{"message": "Table deleted"})
}

func (f *FloorAPI) MoveTable(c *gin.Context) {
	room, tableID, ok := tableParams(c)
	if !ok {
		return
	}
	var req struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := f.engine.MoveTable(room, tableID, req.X, req.Y); err != nil {
		f.engineError(c, "move_table", err)
		return
	}
	f.completed("move_table")
	c.JSON(http.StatusOK, gin.H{"message": "Table moved"})
}

func (f *FloorAPI) RestoreRoom(c *gin.Context) {
	if err := f.engine.RestoreRoom(c.Param("room")); err != nil {
		f.engineError(c, "restore_room", err)
		return
	}
	f.completed("restore_room")
	c.JSON(http.StatusOK, gin.H{"message": "Room layout restored"})
}

// Order lifecycle handlers

func (f *FloorAPI) AddItem(c *gin.Context) {
	room, tableID, ok := tableParams(c)
	if !ok {
		return
	}
	var req struct {
		Name         string  `json:"name"`
		Quantity     int     `json:"quantity"`
		Price        float64 `json:"price"`
		Note         string  `json:"note"`
		Guest        int     `json:"guest"`
		SourceItemID string  `json:"source_item_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := floor.ItemRequest{
		Name:     req.Name,
		Quantity: req.Quantity,
		Price:    req.Price,
		Note:     req.Note,
		Guest:    req.Guest,
	}
	if req.SourceItemID != "" {
		sourceID, err := models.ParseItemID(req.SourceItemID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		item.SourceItemID = sourceID
	}

	if err := f.engine.AddItem(room, tableID, item); err != nil {
		f.engineError(c, "add_item", err)
		return
	}
	f.completed("add_item")
	c.JSON(http.StatusOK, gin.H{"message": "Item added"})
}

func (f *FloorAPI) DecrementItem(c *gin.Context) {
	room, tableID, ok := tableParams(c)
	if !ok {
		return
	}
	itemID, ok := itemParam(c)
	if !ok {
		return
	}
	if err := f.engine.DecrementItem(room, tableID, itemID); err != nil {
		f.engineError(c, "decrement_item", err)
		return
	}
	f.completed("decrement_item")
	c.JSON(http.StatusOK, gin.H{"message": "Item decremented"})
}

func (f *FloorAPI) DeleteItem(c *gin.Context) {
	room, tableID, ok := tableParams(c)
	if !ok {
		return
	}
	itemID, ok := itemParam(c)
	if !ok {
		return
	}
	if err := f.engine.DeleteItem(room, tableID, itemID); err != nil {
		f.engineError(c, "delete_item", err)
		return
	}
	f.completed("delete_item")
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted"})
}

func (f *FloorAPI) UpdateItemNote(c *gin.Context) {
	room, tableID, ok := tableParams(c)
	if !ok {
		return
	}
	itemID, ok := itemParam(c)
	if !ok {
		return
	}
	var req struct {
		Note string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := f.engine.UpdateItemNote(room, tableID, itemID, req.Note); err != nil {
		f.engineError(c, "update_note", err)
		return
	}
	f.completed("update_note")
	c.JSON(http.StatusOK, gin.H{"message": "Note updated"})
}

func (f *FloorAPI) Command(c *gin.Context) {
	room, tableID, ok := tableParams(c)
	if !ok {
		return
	}
	if err := f.engine.Command(room, tableID); err != nil {
		f.engineError(c, "command", err)
		return
	}
	f.completed("command")
	c.JSON(http.StatusOK, gin.H{"message": "Pending items commanded"})
}

func (f *FloorAPI) GetBill(c *gin.Context) {
	room, tableID, ok := tableParams(c)
	if !ok {
		return
	}
	bill, err := f.engine.Bill(room, tableID, f.cfg.Floor.TipPercent)
	if err != nil {
		f.engineError(c, "get_bill", err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func (f *FloorAPI) PrintBill(c *gin.Context) {
	room, tableID, ok := tableParams(c)
	if !ok {
		return
	}
	if err := f.engine.PrintBill(room, tableID); err != nil {
		f.engineError(c, "print_bill", err)
		return
	}
	f.completed("print_bill")
	c.JSON(http.StatusOK, gin.H{"message": "Bill printed"})
}

func (f *FloorAPI) CloseTable(c *gin.Context) {
	room, tableID, ok := tableParams(c)
	if !ok {
		return
	}
	if err := f.engine.CloseTable(room, tableID); err != nil {
		f.engineError(c, "close_table", err)
		return
	}
	f.completed("close_table")
	c.JSON(http.StatusOK, gin.H{"message": "Table closed"})
}

func (f *FloorAPI) Transfer(c *gin.Context) {
	var req struct {
		SourceRoom  string `json:"source_room"`
		SourceTable int    `json:"source_table"`
		TargetRoom  string `json:"target_room"`
		TargetTable int    `json:"target_table"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := f.engine.Transfer(req.SourceRoom, req.SourceTable, req.TargetRoom, req.TargetTable); err != nil {
		f.engineError(c, "transfer", err)
		return
	}
	f.completed("transfer")
	c.JSON(http.StatusOK, gin.H{"message": "Table transferred"})
}

func (f *FloorAPI) GetAlerts(c *gin.Context) {
	threshold := time.Duration(f.cfg.Floor.AlertThresholdMinutes) * time.Minute
	alerts := f.engine.Alerts(threshold)
	if alerts == nil {
		alerts = []floor.TableAlert{}
	}
	c.JSON(http.StatusOK, alerts)
}

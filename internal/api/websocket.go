package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"comandero/internal/models"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Floor devices connect from the local network
	},
}

// roomUpdate is the message pushed to every connected floor device after a
// room's tables change.
type roomUpdate struct {
	Room   string         `json:"room"`
	Tables []models.Table `json:"tables"`
}

// Hub fans room updates out to the connected floor devices.
type Hub struct {
	clients    map[*wsClient]bool
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan []byte
}

// NewHub creates an idle hub; call Run on its own goroutine to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*wsClient]bool),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan []byte, 64),
	}
}

// Run owns the client set; all membership changes and sends go through here.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer: drop it rather than stall the floor.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// BroadcastRoom pushes a room's tables to every connected device. It never
// blocks, so it is safe to call from the engine's change hook.
func (h *Hub) BroadcastRoom(room string, tables []models.Table) {
	message, err := json.Marshal(roomUpdate{Room: room, Tables: tables})
	if err != nil {
		log.Printf("api: could not encode room update: %v", err)
		return
	}
	select {
	case h.broadcast <- message:
	default:
		log.Printf("api: dropping room update, broadcast queue full")
	}
}

// wsClient maintains one device's WebSocket connection.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// handleWebSocket handles WebSocket connections
func (f *FloorAPI) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("api: failed to upgrade connection: %v", err)
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  f.hub,
	}
	f.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection; devices only listen, so inbound frames
// are discarded, but reading is what notices a dropped connection.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("api: websocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps updates from the hub to the device.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

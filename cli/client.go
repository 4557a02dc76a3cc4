package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ApiClient handles API requests to the Comandero API
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
	Token      string
}

// NewApiClient creates a new API client
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("COMANDERO_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client := &ApiClient{
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
		BaseURL: baseURL,
	}

	if !client.ping() {
		fmt.Printf("Warning: API server at %s is not available.\n", baseURL)
	}

	return client
}

// ping checks if the API server is available
func (c *ApiClient) ping() bool {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Login exchanges a staff PIN for a session token and stores it on the client.
func (c *ApiClient) Login(pin string) error {
	data, err := json.Marshal(map[string]string{"pin": pin})
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Post(c.BaseURL+"/api/v1/auth/login", "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with status code: %d", resp.StatusCode)
	}

	var response struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return err
	}

	c.Token = response.Token
	return nil
}

// Table represents a table on the floor
type Table struct {
	ID     int         `json:"id"`
	Name   string      `json:"name"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Shape  string      `json:"shape"`
	Status string      `json:"status"`
	Order  []OrderItem `json:"order"`
}

// OrderItem represents a line in a table's order
type OrderItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Status    string  `json:"status"`
	Timestamp int64   `json:"timestamp"`
	Note      string  `json:"note,omitempty"`
	Guest     int     `json:"guest"`
}

// SummaryLine is a per-name quantity in the kitchen-facing overview
type SummaryLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// TableDetail is the table view with derived helpers
type TableDetail struct {
	Table     Table         `json:"table"`
	NextGuest int           `json:"next_guest"`
	Summary   []SummaryLine `json:"summary"`
}

// GuestShare is one guest's part of a shared bill
type GuestShare struct {
	Guest    int     `json:"guest"`
	Subtotal float64 `json:"subtotal"`
}

// Bill represents a computed bill for a table
type Bill struct {
	Subtotal   float64      `json:"subtotal"`
	TipPercent float64      `json:"tip_percent"`
	Tip        float64      `json:"tip"`
	Total      float64      `json:"total"`
	Guests     []GuestShare `json:"guests"`
}

// Product represents a catalog product
type Product struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

func (c *ApiClient) do(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// GetRooms retrieves the room names in display order
func (c *ApiClient) GetRooms() ([]string, error) {
	var response struct {
		Rooms []string `json:"rooms"`
	}
	if err := c.do("GET", "/api/v1/rooms", nil, &response); err != nil {
		return nil, err
	}
	return response.Rooms, nil
}

// GetTables retrieves all tables in a room
func (c *ApiClient) GetTables(room string) ([]Table, error) {
	var tables []Table
	if err := c.do("GET", "/api/v1/rooms/"+room+"/tables", nil, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

// GetTable retrieves a single table with its derived helpers
func (c *ApiClient) GetTable(room string, tableID int) (*TableDetail, error) {
	var detail TableDetail
	path := fmt.Sprintf("/api/v1/rooms/%s/tables/%d", room, tableID)
	if err := c.do("GET", path, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// AddItem adds an item to a table's order
func (c *ApiClient) AddItem(room string, tableID int, name string, quantity int, price float64, note string, guest int) error {
	path := fmt.Sprintf("/api/v1/rooms/%s/tables/%d/items", room, tableID)
	return c.do("POST", path, map[string]interface{}{
		"name":     name,
		"quantity": quantity,
		"price":    price,
		"note":     note,
		"guest":    guest,
	}, nil)
}

// Command sends the table's pending items to the kitchen
func (c *ApiClient) Command(room string, tableID int) error {
	path := fmt.Sprintf("/api/v1/rooms/%s/tables/%d/command", room, tableID)
	return c.do("POST", path, nil, nil)
}

// GetBill retrieves the computed bill for a table
func (c *ApiClient) GetBill(room string, tableID int) (*Bill, error) {
	var bill Bill
	path := fmt.Sprintf("/api/v1/rooms/%s/tables/%d/bill", room, tableID)
	if err := c.do("GET", path, nil, &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

// PrintBill marks the table as billed
func (c *ApiClient) PrintBill(room string, tableID int) error {
	path := fmt.Sprintf("/api/v1/rooms/%s/tables/%d/bill", room, tableID)
	return c.do("POST", path, nil, nil)
}

// CloseTable clears the table and frees it
func (c *ApiClient) CloseTable(room string, tableID int) error {
	path := fmt.Sprintf("/api/v1/rooms/%s/tables/%d/close", room, tableID)
	return c.do("POST", path, nil, nil)
}

// Transfer moves a table's order to a free table
func (c *ApiClient) Transfer(sourceRoom string, sourceTable int, targetRoom string, targetTable int) error {
	return c.do("POST", "/api/v1/transfer", map[string]interface{}{
		"source_room":  sourceRoom,
		"source_table": sourceTable,
		"target_room":  targetRoom,
		"target_table": targetTable,
	}, nil)
}

// SearchProducts searches the catalog by name
func (c *ApiClient) SearchProducts(query string) ([]Product, error) {
	var products []Product
	if err := c.do("GET", "/api/v1/products?query="+query, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

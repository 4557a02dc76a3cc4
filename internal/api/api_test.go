package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"comandero/internal/api"
	"comandero/internal/catalog"
	"comandero/internal/config"
	"comandero/internal/floor"
	"comandero/internal/models"
	"comandero/internal/monitoring"
)

func newTestServer() *api.FloorAPI {
	gin.SetMode(gin.TestMode)

	engine := floor.NewEngine(nil, floor.NewIDGenerator())
	cat := catalog.New(nil)
	metrics := monitoring.New(prometheus.NewRegistry())
	return api.NewFloorAPI(engine, cat, metrics, config.Default())
}

func doJSON(t *testing.T, server *api.FloorAPI, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	assert.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, server *api.FloorAPI) string {
	t.Helper()

	w := doJSON(t, server, "POST", "/api/v1/auth/login", "", gin.H{"pin": "1234"})
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response["token"])
	return response["token"]
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer()

	w := doJSON(t, server, "GET", "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestAuthRequired(t *testing.T) {
	server := newTestServer()

	// No token at all.
	w := doJSON(t, server, "GET", "/api/v1/rooms", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token.
	w = doJSON(t, server, "GET", "/api/v1/rooms", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Wrong PIN never yields a token.
	w = doJSON(t, server, "POST", "/api/v1/auth/login", "", gin.H{"pin": "0000"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetRooms(t *testing.T) {
	server := newTestServer()
	token := login(t, server)

	w := doJSON(t, server, "GET", "/api/v1/rooms", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string][]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, []string{"principal", "terraza"}, response["rooms"])
}

func TestOrderLifecycle(t *testing.T) {
	server := newTestServer()
	token := login(t, server)

	addItem := gin.H{"name": "Mojito", "quantity": 2, "price": 110, "guest": 1}

	// Two identical additions merge into one pending line.
	w := doJSON(t, server, "POST", "/api/v1/rooms/principal/tables/10/items", token, addItem)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, server, "POST", "/api/v1/rooms/principal/tables/10/items", token, addItem)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, server, "GET", "/api/v1/rooms/principal/tables/10", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var detail struct {
		Table     models.Table `json:"table"`
		NextGuest int          `json:"next_guest"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Len(t, detail.Table.Order, 1)
	assert.Equal(t, 4, detail.Table.Order[0].Quantity)
	assert.Equal(t, models.TablePending, detail.Table.Status)
	assert.Equal(t, 2, detail.NextGuest)

	// Billing before commanding is a conflict.
	w = doJSON(t, server, "POST", "/api/v1/rooms/principal/tables/10/bill", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, server, "POST", "/api/v1/rooms/principal/tables/10/command", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// The computed bill carries the configured tip.
	w = doJSON(t, server, "GET", "/api/v1/rooms/principal/tables/10/bill", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var bill models.Bill
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &bill))
	assert.Equal(t, 440.0, bill.Subtotal)
	assert.Equal(t, 44.0, bill.Tip)
	assert.Equal(t, 484.0, bill.Total)

	w = doJSON(t, server, "POST", "/api/v1/rooms/principal/tables/10/bill", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, server, "POST", "/api/v1/rooms/principal/tables/10/close", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, server, "GET", "/api/v1/rooms/principal/tables/10", token, nil)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Empty(t, detail.Table.Order)
	assert.Equal(t, models.TableAvailable, detail.Table.Status)
}

func TestAddItemValidation(t *testing.T) {
	server := newTestServer()
	token := login(t, server)

	w := doJSON(t, server, "POST", "/api/v1/rooms/principal/tables/10/items", token,
		gin.H{"name": "", "quantity": 1, "price": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, server, "POST", "/api/v1/rooms/principal/tables/10/items", token,
		gin.H{"name": "Mojito", "quantity": 0, "price": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, server, "POST", "/api/v1/rooms/nowhere/tables/10/items", token,
		gin.H{"name": "Mojito", "quantity": 1, "price": 10})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransferGuardsOccupiedTarget(t *testing.T) {
	server := newTestServer()
	token := login(t, server)

	addItem := gin.H{"name": "Margarita", "quantity": 1, "price": 120, "guest": 1}
	w := doJSON(t, server, "POST", "/api/v1/rooms/principal/tables/10/items", token, addItem)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, server, "POST", "/api/v1/rooms/principal/tables/11/items", token, addItem)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, server, "POST", "/api/v1/transfer", token, gin.H{
		"source_room": "principal", "source_table": 10,
		"target_room": "principal", "target_table": 11,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, server, "POST", "/api/v1/transfer", token, gin.H{
		"source_room": "principal", "source_table": 10,
		"target_room": "terraza", "target_table": 40,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var detail struct {
		Table models.Table `json:"table"`
	}
	w = doJSON(t, server, "GET", "/api/v1/rooms/terraza/tables/40", token, nil)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Len(t, detail.Table.Order, 1)
	assert.Equal(t, models.TablePending, detail.Table.Status)
}

func TestProductEndpoints(t *testing.T) {
	server := newTestServer()
	token := login(t, server)

	w := doJSON(t, server, "GET", "/api/v1/products?query=agua", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var products []models.Product
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	assert.Len(t, products, 2)

	// Marking a product unavailable removes it from search.
	w = doJSON(t, server, "PUT", "/api/v1/products/p2/availability", token, gin.H{"available": false})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, server, "GET", "/api/v1/products?query=agua", token, nil)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	assert.Len(t, products, 1)

	w = doJSON(t, server, "POST", "/api/v1/products", token,
		gin.H{"name": "Paloma", "category": "cocteles", "price": 125})
	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.Product
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	w = doJSON(t, server, "PUT", "/api/v1/products/"+created.ID+"/price", token, gin.H{"price": 130})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, server, "PUT", "/api/v1/products/missing/price", token, gin.H{"price": 130})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAlertsEndpoint(t *testing.T) {
	server := newTestServer()
	token := login(t, server)

	w := doJSON(t, server, "GET", "/api/v1/alerts", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var alerts []floor.TableAlert
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &alerts))
	assert.Empty(t, alerts)
}

package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	couponadapters "pooja-supplies/internal/coupons/adapters"
	"pooja-supplies/internal/orders/adapters"
	"pooja-supplies/internal/orders/application"
	"pooja-supplies/internal/orders/ports"
	"pooja-supplies/pkg/auth"
	"pooja-supplies/pkg/db"
	"pooja-supplies/pkg/errors"
	"pooja-supplies/pkg/logger"
	"pooja-supplies/pkg/middleware"
	"pooja-supplies/pkg/money"
)

var testSecret = []byte("orders-test-secret")

type stubCatalog struct {
	stock map[string]int
}

func (s *stubCatalog) GetProduct(ctx context.Context, id string) (*ports.ProductInfo, error) {
	if _, ok := s.stock[id]; !ok {
		return nil, errors.NewNotFound("product", id)
	}
	return &ports.ProductInfo{ID: id, Name: "Rudraksha mala", Price: money.FromRupees(350), Stock: s.stock[id]}, nil
}

func (s *stubCatalog) DecrementStock(ctx context.Context, id string, qty int, ref string) (int, error) {
	s.stock[id] = max(s.stock[id]-qty, 0)
	return s.stock[id], nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *stubCatalog) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.New("test", "debug")

	conn, err := db.NewInMemory()
	require.NoError(t, err)
	orders := adapters.NewGormOrderRepository(conn)
	require.NoError(t, orders.Migrate())
	coupons := couponadapters.NewGormCouponRepository(conn)
	require.NoError(t, coupons.Migrate())

	catalog := &stubCatalog{stock: map[string]int{"mala": 4}}
	useCase := application.NewOrderUseCase(orders, coupons, catalog, nil, log, application.Options{})
	handler := NewHTTPHandler(useCase, time.UTC)

	r := gin.New()
	r.Use(middleware.TraceID(), middleware.ErrorHandler(log))
	api := r.Group("/api/v1", auth.Middleware(testSecret))
	handler.RegisterRoutes(api, api.Group("/admin", auth.RequireAdmin()))
	return r, catalog
}

func do(t *testing.T, r *gin.Engine, method, path, user string, admin bool, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	token, err := auth.IssueToken(testSecret, user, admin, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func placeBody(method string) map[string]interface{} {
	return map[string]interface{}{
		"items":          []map[string]interface{}{{"product_id": "mala", "quantity": 3}},
		"payment_method": method,
		"expected_total": "1050.00",
		"shipping_address": map[string]interface{}{
			"name": "Anand Rao", "phone": "9988776655", "line1": "7 Gandhi Bazaar",
			"city": "Bengaluru", "state": "Karnataka", "pincode": "560004",
		},
	}
}

type orderEnvelope struct {
	Data OrderResponse `json:"data"`
}

func decodeOrder(t *testing.T, w *httptest.ResponseRecorder) OrderResponse {
	t.Helper()
	var env orderEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Data
}

func TestPlaceAndDeliverOrder(t *testing.T) {
	r, catalog := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/orders", "buyer-1", false, placeBody("COD"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decodeOrder(t, w)
	assert.Equal(t, "Pending", order.Status)
	assert.Equal(t, money.FromRupees(1050), order.TotalAmount)

	w = do(t, r, http.MethodGet, "/api/v1/orders/"+order.ID, "buyer-2", false, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status", "buyer-1", false, map[string]string{"status": "Shipped"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	for _, status := range []string{"Shipped", "Delivered"} {
		w = do(t, r, http.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status", "admin", true, map[string]string{"status": status})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	delivered := decodeOrder(t, w)
	assert.True(t, delivered.StockApplied)
	assert.Equal(t, 1, catalog.stock["mala"])

	w = do(t, r, http.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status", "admin", true, map[string]string{"status": "Delivered"})
	assert.Equal(t, http.StatusConflict, w.Code)
	var body errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "TERMINAL_STATE", body.Error.Reason)
	assert.Equal(t, 1, catalog.stock["mala"])
}

func TestCancelShippedOrderRejected(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/orders", "buyer-1", false, placeBody("UPI"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decodeOrder(t, w)

	w = do(t, r, http.MethodPost, "/api/v1/orders/"+order.ID+"/utr", "buyer-1", false, map[string]string{"utr": "412345678901"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "UnderReview", decodeOrder(t, w).PaymentStatus)

	w = do(t, r, http.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status", "admin", true, map[string]string{"status": "Shipped"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/orders/"+order.ID+"/cancel", "buyer-1", false, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPlaceOrder_PriceChanged(t *testing.T) {
	r, _ := newTestRouter(t)
	body := placeBody("COD")
	body["expected_total"] = 999

	w := do(t, r, http.MethodPost, "/api/v1/orders", "buyer-1", false, body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPlaceOrder_QuantityOverLimit(t *testing.T) {
	r, _ := newTestRouter(t)
	body := placeBody("COD")
	body["items"] = []map[string]interface{}{{"product_id": "mala", "quantity": 922337203685478}}

	w := do(t, r, http.MethodPost, "/api/v1/orders", "buyer-1", false, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/orders", "buyer-1", false, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", string(mustData(t, w)))
}

func mustData(t *testing.T, w *httptest.ResponseRecorder) json.RawMessage {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Data
}

func TestListOrders_AdminFilters(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, user := range []string{"buyer-1", "buyer-2"} {
		w := do(t, r, http.MethodPost, "/api/v1/orders", user, false, placeBody("COD"))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := do(t, r, http.MethodGet, "/api/v1/admin/orders?user_id=buyer-2", "admin", true, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data []OrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, "buyer-2", env.Data[0].UserID)

	w = do(t, r, http.MethodGet, "/api/v1/admin/orders?status=returned", "admin", true, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/orders?limit=0", "buyer-1", false, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSalesReport(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(t, r, http.MethodPost, "/api/v1/orders", "buyer-1", false, placeBody("COD"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/admin/reports/sales", "admin", true, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data application.SalesReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, 1, env.Data.TotalOrders)
	assert.Equal(t, money.FromRupees(1050), env.Data.TotalRevenue)
}

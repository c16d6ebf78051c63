package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"quick-kirana/internal/domain"
	"quick-kirana/internal/middleware"
	"quick-kirana/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Mock state repository for testing
type mockStateRepository struct {
	products []domain.Product
	orders   []domain.Order
	found    bool
}

func (m *mockStateRepository) LoadProducts(ctx context.Context) ([]domain.Product, bool, error) {
	return m.products, m.found, nil
}

func (m *mockStateRepository) SaveProducts(ctx context.Context, products []domain.Product) error {
	m.products = products
	m.found = true
	return nil
}

func (m *mockStateRepository) LoadOrders(ctx context.Context) ([]domain.Order, bool, error) {
	return m.orders, m.orders != nil, nil
}

func (m *mockStateRepository) SaveOrders(ctx context.Context, orders []domain.Order) error {
	m.orders = orders
	return nil
}

func (m *mockStateRepository) Reset(ctx context.Context) error {
	m.products = nil
	m.orders = nil
	m.found = false
	return nil
}

func newTestRouter(t *testing.T) (chi.Router, service.MarketService) {
	t.Helper()

	logger := zap.NewNop()
	market, err := service.NewMarketService(context.Background(), &mockStateRepository{}, "1", logger)
	if err != nil {
		t.Fatalf("NewMarketService failed: %v", err)
	}

	handler := NewMarketHandler(market, logger)
	guard := middleware.RequireShopkeeper(market.Role, logger)

	router := chi.NewRouter()
	handler.RegisterRoutes(router, guard)
	return router, market
}

func doJSON(t *testing.T, router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeApplied(t *testing.T, w *httptest.ResponseRecorder) bool {
	t.Helper()

	var resp AppliedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return resp.Applied
}

func TestListStores(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/stores", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/stores status = %d, want 200", w.Code)
	}

	var stores []domain.Store
	if err := json.Unmarshal(w.Body.Bytes(), &stores); err != nil {
		t.Fatalf("Failed to decode stores: %v", err)
	}
	if len(stores) != 3 {
		t.Errorf("Expected 3 canonical stores, got %d", len(stores))
	}
}

func TestSessionRoundTrip(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/session/role", SetRoleRequest{Role: "customer"})
	if w.Code != http.StatusOK || !decodeApplied(t, w) {
		t.Fatalf("Setting the customer role failed: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/api/session/store", SelectStoreRequest{StoreID: "2"})
	if !decodeApplied(t, w) {
		t.Fatal("SelectStore should be applied for a known store")
	}

	w = doJSON(t, router, http.MethodGet, "/api/session", nil)
	var session SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &session); err != nil {
		t.Fatalf("Failed to decode session: %v", err)
	}
	if session.Role != "customer" {
		t.Errorf("Session role = %q, want customer", session.Role)
	}
	if session.ActiveStore == nil || session.ActiveStore.ID != "2" {
		t.Errorf("Session active store = %v, want store 2", session.ActiveStore)
	}

	w = doJSON(t, router, http.MethodDelete, "/api/session/store", nil)
	if !decodeApplied(t, w) {
		t.Fatal("ExitStore should always be applied")
	}
}

func TestSelectUnknownStoreRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/session/store", SelectStoreRequest{StoreID: "42"})
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}
	if decodeApplied(t, w) {
		t.Error("Selecting an unknown store should be a rejected no-op")
	}
}

func TestSetRoleRejectsUnknownRole(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/session/role", map[string]string{"role": "admin"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Unknown role status = %d, want 400", w.Code)
	}
}

func TestProductsScopedToActiveStore(t *testing.T) {
	router, _ := newTestRouter(t)

	// No active store: empty list, not an error.
	w := doJSON(t, router, http.MethodGet, "/api/products", nil)
	var products []domain.Product
	if err := json.Unmarshal(w.Body.Bytes(), &products); err != nil {
		t.Fatalf("Failed to decode products: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("Expected no products without an active store, got %d", len(products))
	}

	doJSON(t, router, http.MethodPost, "/api/session/store", SelectStoreRequest{StoreID: "3"})
	w = doJSON(t, router, http.MethodGet, "/api/products", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &products); err != nil {
		t.Fatalf("Failed to decode products: %v", err)
	}
	if len(products) != 3 {
		t.Errorf("Expected 3 products in store 3, got %d", len(products))
	}
	for _, p := range products {
		if p.StoreID != "3" {
			t.Errorf("Product %q leaked from store %q", p.Barcode, p.StoreID)
		}
	}
}

func TestShopkeeperRoutesGuarded(t *testing.T) {
	router, _ := newTestRouter(t)

	// A customer must not reach the restock route.
	doJSON(t, router, http.MethodPost, "/api/session/role", SetRoleRequest{Role: "customer"})
	w := doJSON(t, router, http.MethodPost, "/api/products/1111/restock", RestockRequest{Amount: 1})
	if w.Code != http.StatusForbidden {
		t.Errorf("Customer restock status = %d, want 403", w.Code)
	}

	// The shopkeeper can.
	doJSON(t, router, http.MethodPost, "/api/session/role", SetRoleRequest{Role: "shopkeeper"})
	w = doJSON(t, router, http.MethodPost, "/api/products/1111/restock", RestockRequest{Amount: 1})
	if w.Code != http.StatusOK || !decodeApplied(t, w) {
		t.Errorf("Shopkeeper restock failed: %d %s", w.Code, w.Body.String())
	}
}

func TestAddProductFlow(t *testing.T) {
	router, _ := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/api/session/role", SetRoleRequest{Role: "shopkeeper"})

	w := doJSON(t, router, http.MethodPost, "/api/products", AddProductRequest{
		Barcode: "9999", Name: "Choco Bar", Price: 25,
	})
	if w.Code != http.StatusCreated || !decodeApplied(t, w) {
		t.Fatalf("AddProduct failed: %d %s", w.Code, w.Body.String())
	}

	// Idempotent re-add reports rejection.
	w = doJSON(t, router, http.MethodPost, "/api/products", AddProductRequest{
		Barcode: "9999", Name: "Other", Price: 99,
	})
	if w.Code != http.StatusOK || decodeApplied(t, w) {
		t.Errorf("Repeated AddProduct should report a rejected no-op: %d %s", w.Code, w.Body.String())
	}
}

func TestRestockUnknownBarcodeReportsRejection(t *testing.T) {
	router, _ := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/api/session/role", SetRoleRequest{Role: "shopkeeper"})

	w := doJSON(t, router, http.MethodPost, "/api/products/0000/restock", RestockRequest{})
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}
	if decodeApplied(t, w) {
		t.Error("Restocking an unknown barcode should be a rejected no-op")
	}
}

func TestCartEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/api/session/store", SelectStoreRequest{StoreID: "1"})

	for i := 0; i < 2; i++ {
		w := doJSON(t, router, http.MethodPost, "/api/cart/items", AddToCartRequest{Barcode: "1111"})
		if !decodeApplied(t, w) {
			t.Fatalf("AddToCart %d should be applied", i+1)
		}
	}

	w := doJSON(t, router, http.MethodGet, "/api/cart", nil)
	var cart CartResponse
	if err := json.Unmarshal(w.Body.Bytes(), &cart); err != nil {
		t.Fatalf("Failed to decode cart: %v", err)
	}
	if cart.Count != 2 || cart.Total != 28 {
		t.Errorf("Cart count/total = %d/%v, want 2/28", cart.Count, cart.Total)
	}

	w = doJSON(t, router, http.MethodPost, "/api/cart/items/1111/decrease", nil)
	if !decodeApplied(t, w) {
		t.Fatal("DecreaseQuantity should be applied")
	}

	w = doJSON(t, router, http.MethodDelete, "/api/cart/items/1111", nil)
	if !decodeApplied(t, w) {
		t.Fatal("RemoveFromCart should be applied")
	}

	w = doJSON(t, router, http.MethodGet, "/api/cart", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &cart); err != nil {
		t.Fatalf("Failed to decode cart: %v", err)
	}
	if cart.Count != 0 {
		t.Errorf("Cart count after removal = %d, want 0", cart.Count)
	}
}

func TestOrderFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	// Empty cart: placement is a rejected no-op.
	w := doJSON(t, router, http.MethodPost, "/api/orders", nil)
	var rejected PlaceOrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &rejected); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if rejected.Applied {
		t.Error("Placing an order with an empty cart should be rejected")
	}

	doJSON(t, router, http.MethodPost, "/api/session/store", SelectStoreRequest{StoreID: "1"})
	doJSON(t, router, http.MethodPost, "/api/cart/items", AddToCartRequest{Barcode: "1111"})
	doJSON(t, router, http.MethodPost, "/api/cart/items", AddToCartRequest{Barcode: "1111"})

	w = doJSON(t, router, http.MethodPost, "/api/orders", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("PlaceOrder status = %d, want 201", w.Code)
	}
	var placed PlaceOrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &placed); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !placed.Applied || placed.Order == nil {
		t.Fatalf("PlaceOrder should return the created order: %s", w.Body.String())
	}
	if placed.Order.Total != 28 {
		t.Errorf("Order total = %v, want 28", placed.Order.Total)
	}

	// Dispatch as the shopkeeper (store 1 is the shopkeeper's store).
	doJSON(t, router, http.MethodPost, "/api/session/role", SetRoleRequest{Role: "shopkeeper"})
	w = doJSON(t, router, http.MethodPost, "/api/orders/"+placed.Order.ID+"/dispatch", nil)
	if !decodeApplied(t, w) {
		t.Fatal("Dispatch of a pending order should be applied")
	}

	// A second dispatch is a rejected no-op.
	w = doJSON(t, router, http.MethodPost, "/api/orders/"+placed.Order.ID+"/dispatch", nil)
	if decodeApplied(t, w) {
		t.Error("Dispatch of a completed order should be rejected")
	}

	w = doJSON(t, router, http.MethodGet, "/api/orders", nil)
	var orders []domain.Order
	if err := json.Unmarshal(w.Body.Bytes(), &orders); err != nil {
		t.Fatalf("Failed to decode orders: %v", err)
	}
	if len(orders) != 1 || orders[0].Status != domain.OrderStatusCompleted {
		t.Errorf("Expected one completed order, got %v", orders)
	}
}

func TestResetEndpoint(t *testing.T) {
	router, market := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/api/session/role", SetRoleRequest{Role: "shopkeeper"})
	doJSON(t, router, http.MethodPost, "/api/products", AddProductRequest{Barcode: "9999", Name: "Choco Bar", Price: 25})

	w := doJSON(t, router, http.MethodPost, "/api/reset", nil)
	if w.Code != http.StatusOK || !decodeApplied(t, w) {
		t.Fatalf("Reset failed: %d %s", w.Code, w.Body.String())
	}

	if market.Role() != domain.RoleNone {
		t.Error("Reset should clear the session role")
	}
}

func TestDispatchUnknownOrder(t *testing.T) {
	router, _ := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/api/session/role", SetRoleRequest{Role: "shopkeeper"})

	w := doJSON(t, router, http.MethodPost, "/api/orders/no-such-id/dispatch", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}
	if decodeApplied(t, w) {
		t.Error("Dispatching an unknown order id should be a rejected no-op")
	}
}

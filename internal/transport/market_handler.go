package transport

import (
	"net/http"

	"quick-kirana/internal/domain"
	"quick-kirana/internal/middleware"
	"quick-kirana/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SetRoleRequest selects the active session role
type SetRoleRequest struct {
	Role string `json:"role" validate:"omitempty,oneof=customer shopkeeper"`
}

// SelectStoreRequest selects the active store
type SelectStoreRequest struct {
	StoreID string `json:"store_id" validate:"required"`
}

// AddProductRequest creates a product from a scanned barcode
type AddProductRequest struct {
	Barcode string  `json:"barcode" validate:"required"`
	Name    string  `json:"name" validate:"required"`
	Price   float64 `json:"price" validate:"gte=0"`
}

// RestockRequest increments a product's stock
type RestockRequest struct {
	Amount int `json:"amount" validate:"omitempty,gt=0"`
}

// AddToCartRequest puts one unit of a product into the cart
type AddToCartRequest struct {
	Barcode string `json:"barcode" validate:"required"`
}

// AppliedResponse reports whether a mutating operation was applied. A false
// value is the observable form of the core's rejected no-ops.
type AppliedResponse struct {
	Applied bool `json:"applied"`
}

// SessionResponse describes the current session context
type SessionResponse struct {
	Role        string        `json:"role"`
	ActiveStore *domain.Store `json:"active_store,omitempty"`
}

// CartResponse is the cart with its derived figures
type CartResponse struct {
	Items []domain.CartItem `json:"items"`
	Total float64           `json:"total"`
	Count int               `json:"count"`
}

// PlaceOrderResponse returns the created order
type PlaceOrderResponse struct {
	Applied bool          `json:"applied"`
	Order   *domain.Order `json:"order,omitempty"`
}

// MarketHandler handles HTTP requests for the market service
type MarketHandler struct {
	market service.MarketService
	logger *zap.Logger
}

// NewMarketHandler creates a new MarketHandler
func NewMarketHandler(market service.MarketService, logger *zap.Logger) *MarketHandler {
	return &MarketHandler{
		market: market,
		logger: logger,
	}
}

// RegisterRoutes registers all market routes. Shopkeeper-only routes are
// wrapped with the given role guard.
func (h *MarketHandler) RegisterRoutes(r chi.Router, shopkeeperOnly func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/stores", h.ListStores)

		r.Get("/session", h.GetSession)
		r.Post("/session/role", h.SetRole)
		r.Post("/session/store", h.SelectStore)
		r.Delete("/session/store", h.ExitStore)

		r.Get("/products", h.ListProducts)
		r.Get("/orders", h.ListOrders)

		r.Get("/cart", h.GetCart)
		r.Post("/cart/items", h.AddToCart)
		r.Post("/cart/items/{barcode}/decrease", h.DecreaseQuantity)
		r.Delete("/cart/items/{barcode}", h.RemoveFromCart)
		r.Post("/orders", h.PlaceOrder)

		// Shopkeeper routes
		r.Group(func(r chi.Router) {
			r.Use(shopkeeperOnly)
			r.Post("/products", h.AddProduct)
			r.Post("/products/{barcode}/restock", h.Restock)
			r.Post("/orders/{id}/dispatch", h.DispatchOrder)
		})

		r.Post("/reset", h.Reset)
	})
}

// ListStores returns the canonical store list
func (h *MarketHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.market.Stores())
}

// GetSession returns the active role and store
func (h *MarketHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	resp := SessionResponse{Role: string(h.market.Role())}
	if store, ok := h.market.ActiveStore(); ok {
		resp.ActiveStore = &store
	}
	middleware.RespondWithJSON(w, http.StatusOK, resp)
}

// SetRole switches the session role
func (h *MarketHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req SetRoleRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.respondInvalid(w, err)
		return
	}

	applied := h.market.SetRole(r.Context(), domain.Role(req.Role))
	if applied {
		h.logger.Info("Session role changed", zap.String("role", req.Role))
	}
	middleware.RespondWithJSON(w, http.StatusOK, AppliedResponse{Applied: applied})
}

// SelectStore sets the active store and clears the cart
func (h *MarketHandler) SelectStore(w http.ResponseWriter, r *http.Request) {
	var req SelectStoreRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.respondInvalid(w, err)
		return
	}

	applied := h.market.SelectStore(r.Context(), req.StoreID)
	if applied {
		h.logger.Info("Store selected", zap.String("store_id", req.StoreID))
	}
	middleware.RespondWithJSON(w, http.StatusOK, AppliedResponse{Applied: applied})
}

// ExitStore clears the active store and the cart
func (h *MarketHandler) ExitStore(w http.ResponseWriter, r *http.Request) {
	h.market.ExitStore(r.Context())
	middleware.RespondWithJSON(w, http.StatusOK, AppliedResponse{Applied: true})
}

// ListProducts returns the active store's products
func (h *MarketHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.market.Products())
}

// ListOrders returns the active store's orders, newest first
func (h *MarketHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.market.Orders())
}

// AddProduct creates a product from a scanned unknown barcode
func (h *MarketHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req AddProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.respondInvalid(w, err)
		return
	}

	applied := h.market.AddProduct(r.Context(), req.Barcode, req.Name, req.Price)
	if applied {
		h.logger.Info("Product created",
			zap.String("barcode", req.Barcode),
			zap.String("name", req.Name),
		)
		middleware.RespondWithJSON(w, http.StatusCreated, AppliedResponse{Applied: true})
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, AppliedResponse{Applied: false})
}

// Restock increments a product's stock by the given amount (default 1)
func (h *MarketHandler) Restock(w http.ResponseWriter, r *http.Request) {
	var req RestockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.respondInvalid(w, err)
		return
	}
	if req.Amount == 0 {
		req.Amount = 1
	}

	barcode := chi.URLParam(r, "barcode")
	applied := h.market.IncrementStock(r.Context(), barcode, req.Amount)
	if !applied {
		// Unknown barcode: the client routes to the new-product flow.
		h.logger.Debug("Restock rejected", zap.String("barcode", barcode))
	}
	middleware.RespondWithJSON(w, http.StatusOK, AppliedResponse{Applied: applied})
}

// GetCart returns the cart and its derived totals
func (h *MarketHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items: h.market.Cart(),
		Total: h.market.CartTotal(),
		Count: h.market.CartCount(),
	})
}

// AddToCart adds one unit of a product, subject to the stock ceiling
func (h *MarketHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.respondInvalid(w, err)
		return
	}

	applied := h.market.AddToCart(req.Barcode)
	middleware.RespondWithJSON(w, http.StatusOK, AppliedResponse{Applied: applied})
}

// DecreaseQuantity decrements one unit, removing the item at zero
func (h *MarketHandler) DecreaseQuantity(w http.ResponseWriter, r *http.Request) {
	applied := h.market.DecreaseQuantity(chi.URLParam(r, "barcode"))
	middleware.RespondWithJSON(w, http.StatusOK, AppliedResponse{Applied: applied})
}

// RemoveFromCart drops an item regardless of quantity
func (h *MarketHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	applied := h.market.RemoveFromCart(chi.URLParam(r, "barcode"))
	middleware.RespondWithJSON(w, http.StatusOK, AppliedResponse{Applied: applied})
}

// PlaceOrder snapshots the cart into a pending order
func (h *MarketHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	order, applied := h.market.PlaceOrder(r.Context())
	if !applied {
		middleware.RespondWithJSON(w, http.StatusOK, PlaceOrderResponse{Applied: false})
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("store_id", order.StoreID),
		zap.Float64("total", order.Total),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, PlaceOrderResponse{Applied: true, Order: &order})
}

// DispatchOrder completes a pending order and deducts stock
func (h *MarketHandler) DispatchOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	applied := h.market.DispatchOrder(r.Context(), orderID)
	if applied {
		h.logger.Info("Order dispatched", zap.String("order_id", orderID))
	}
	middleware.RespondWithJSON(w, http.StatusOK, AppliedResponse{Applied: applied})
}

// Reset restores the canonical catalog and erases all persisted records
func (h *MarketHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.market.Reset(r.Context()); err != nil {
		h.logger.Error("Reset failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to reset market state")
		return
	}

	h.logger.Info("Market state reset")
	middleware.RespondWithJSON(w, http.StatusOK, AppliedResponse{Applied: true})
}

func (h *MarketHandler) respondInvalid(w http.ResponseWriter, err error) {
	h.logger.Debug("Request validation failed", zap.Error(err))

	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}

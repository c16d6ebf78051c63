package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"quick-kirana/internal/catalog"
	"quick-kirana/internal/domain"
	"quick-kirana/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MarketService owns the market state for one session: the inventory across
// all stores, the active cart, the order history, and the session context
// (role and active store). It is constructed once and passed to consumers;
// nothing else holds mutable market state.
//
// Mutating operations report whether they were applied. A false return is a
// rejected no-op, never a failure: callers can always re-read current state
// afterwards. Persistence writes are fire-and-forget; failures are logged
// and never surfaced to the caller.
type MarketService interface {
	// Session context
	SetRole(ctx context.Context, role domain.Role) bool
	Role() domain.Role
	SelectStore(ctx context.Context, storeID string) bool
	ExitStore(ctx context.Context)
	ActiveStore() (domain.Store, bool)
	Stores() []domain.Store

	// Inventory, scoped to the active store
	Products() []domain.Product
	AddProduct(ctx context.Context, barcode, name string, price float64) bool
	IncrementStock(ctx context.Context, barcode string, amount int) bool

	// Cart
	Cart() []domain.CartItem
	CartTotal() float64
	CartCount() int
	AddToCart(barcode string) bool
	DecreaseQuantity(barcode string) bool
	RemoveFromCart(barcode string) bool

	// Orders
	Orders() []domain.Order
	PlaceOrder(ctx context.Context) (domain.Order, bool)
	DispatchOrder(ctx context.Context, orderID string) bool

	// Reset restores the canonical catalog, empties orders and cart, and
	// erases all persisted records.
	Reset(ctx context.Context) error
}

type marketService struct {
	mu sync.Mutex

	products []domain.Product
	orders   []domain.Order // newest first
	cart     []domain.CartItem

	role          domain.Role
	activeStoreID string

	shopkeeperStoreID string

	repo   repository.StateRepository
	logger *zap.Logger
}

// NewMarketService loads persisted state, reconciles the inventory against
// the canonical catalog definitions, and persists the reconciled set. An
// absent or malformed products record falls back to the canonical catalog;
// an absent orders record falls back to an empty history.
func NewMarketService(
	ctx context.Context,
	repo repository.StateRepository,
	shopkeeperStoreID string,
	logger *zap.Logger,
) (MarketService, error) {
	persisted, _, err := repo.LoadProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products record: %w", err)
	}

	products := catalog.Reconcile(persisted, catalog.Definitions())

	orders, _, err := repo.LoadOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders record: %w", err)
	}

	s := &marketService{
		products:          products,
		orders:            orders,
		shopkeeperStoreID: shopkeeperStoreID,
		repo:              repo,
		logger:            logger,
	}

	// Write the reconciled set back so retired SKUs do not linger in the
	// persisted record.
	s.persistProducts(ctx)

	return s, nil
}

// --- Session context ---

func (s *marketService) SetRole(ctx context.Context, role domain.Role) bool {
	if !role.Valid() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.role = role
	switch role {
	case domain.RoleShopkeeper:
		// The shopkeeper's store is fixed in this deployment, not chosen.
		s.activeStoreID = s.shopkeeperStoreID
		s.cart = nil
	case domain.RoleNone:
		s.activeStoreID = ""
		s.cart = nil
	}
	return true
}

func (s *marketService) Role() domain.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

func (s *marketService) SelectStore(ctx context.Context, storeID string) bool {
	if _, ok := catalog.FindStore(storeID); !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeStoreID = storeID
	s.cart = nil
	return true
}

func (s *marketService) ExitStore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeStoreID = ""
	s.cart = nil
}

func (s *marketService) ActiveStore() (domain.Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeStoreID == "" {
		return domain.Store{}, false
	}
	return catalog.FindStore(s.activeStoreID)
}

func (s *marketService) Stores() []domain.Store {
	return catalog.Stores()
}

// --- Inventory ---

func (s *marketService) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.Product{}
	if s.activeStoreID == "" {
		return out
	}
	for _, p := range s.products {
		if p.StoreID == s.activeStoreID {
			out = append(out, p)
		}
	}
	return out
}

func (s *marketService) AddProduct(ctx context.Context, barcode, name string, price float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeStoreID == "" {
		return false
	}
	if s.findProduct(s.activeStoreID, barcode) != nil {
		// Idempotent: the existing product keeps its name and price.
		return false
	}

	s.products = append(s.products, domain.Product{
		Barcode: barcode,
		Name:    name,
		Price:   price,
		Stock:   1,
		StoreID: s.activeStoreID,
		Image:   catalog.DefaultProductImage,
	})
	s.persistProducts(ctx)
	return true
}

func (s *marketService) IncrementStock(ctx context.Context, barcode string, amount int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeStoreID == "" || amount <= 0 {
		return false
	}

	p := s.findProduct(s.activeStoreID, barcode)
	if p == nil {
		// Unknown barcode on a restock scan: the caller routes to the
		// new-product flow instead.
		return false
	}

	p.Stock += amount
	s.persistProducts(ctx)
	return true
}

// --- Cart ---

func (s *marketService) Cart() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CartItem, len(s.cart))
	copy(out, s.cart)
	return out
}

func (s *marketService) CartTotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, item := range s.cart {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

func (s *marketService) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	for _, item := range s.cart {
		count += item.Quantity
	}
	return count
}

func (s *marketService) AddToCart(barcode string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeStoreID == "" {
		return false
	}

	// The ceiling is always checked against live stock, not the snapshot
	// taken when the item entered the cart.
	live := s.findProduct(s.activeStoreID, barcode)
	if live == nil {
		return false
	}

	for i := range s.cart {
		if s.cart[i].Barcode == barcode {
			if s.cart[i].Quantity >= live.Stock {
				return false
			}
			s.cart[i].Quantity++
			return true
		}
	}

	if live.Stock < 1 {
		return false
	}
	s.cart = append(s.cart, domain.CartItem{Product: *live, Quantity: 1})
	return true
}

func (s *marketService) DecreaseQuantity(barcode string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].Barcode != barcode {
			continue
		}
		if s.cart[i].Quantity > 1 {
			s.cart[i].Quantity--
		} else {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
		}
		return true
	}
	return false
}

func (s *marketService) RemoveFromCart(barcode string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].Barcode == barcode {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			return true
		}
	}
	return false
}

// --- Orders ---

func (s *marketService) Orders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.Order{}
	if s.activeStoreID == "" {
		return out
	}
	for _, o := range s.orders {
		if o.StoreID == s.activeStoreID {
			out = append(out, o.Clone())
		}
	}
	return out
}

func (s *marketService) PlaceOrder(ctx context.Context) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cart) == 0 || s.activeStoreID == "" {
		return domain.Order{}, false
	}

	items := make([]domain.CartItem, len(s.cart))
	copy(items, s.cart)

	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}

	order := domain.Order{
		ID:        uuid.New().String(),
		Items:     items,
		Total:     total,
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now(),
		StoreID:   s.activeStoreID,
	}

	s.orders = append([]domain.Order{order}, s.orders...)
	s.cart = nil
	s.persistOrders(ctx)

	return order.Clone(), true
}

func (s *marketService) DispatchOrder(ctx context.Context, orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var order *domain.Order
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			order = &s.orders[i]
			break
		}
	}
	if order == nil {
		return false
	}
	if order.Status == domain.OrderStatusCompleted {
		// Already dispatched; stock is deducted exactly once per order.
		return false
	}

	for _, item := range order.Items {
		p := s.findProduct(order.StoreID, item.Barcode)
		if p == nil {
			// Inventory may have changed since placement; the order record
			// itself is never adjusted.
			continue
		}
		p.Stock -= item.Quantity
		if p.Stock < 0 {
			p.Stock = 0
		}
	}

	order.Status = domain.OrderStatusCompleted
	s.persistProducts(ctx)
	s.persistOrders(ctx)
	return true
}

// --- Reset ---

func (s *marketService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Reset(ctx); err != nil {
		return fmt.Errorf("failed to erase persisted records: %w", err)
	}

	s.products = catalog.Definitions()
	s.orders = nil
	s.cart = nil
	s.role = domain.RoleNone
	s.activeStoreID = ""
	return nil
}

// --- Internal helpers (callers hold the lock) ---

func (s *marketService) findProduct(storeID, barcode string) *domain.Product {
	for i := range s.products {
		if s.products[i].StoreID == storeID && s.products[i].Barcode == barcode {
			return &s.products[i]
		}
	}
	return nil
}

func (s *marketService) persistProducts(ctx context.Context) {
	if err := s.repo.SaveProducts(ctx, s.products); err != nil {
		s.logger.Error("Failed to persist products record", zap.Error(err))
	}
}

func (s *marketService) persistOrders(ctx context.Context) {
	if err := s.repo.SaveOrders(ctx, s.orders); err != nil {
		s.logger.Error("Failed to persist orders record", zap.Error(err))
	}
}

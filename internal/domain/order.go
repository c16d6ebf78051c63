package domain

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
)

// Order is an immutable record of a placed cart. Items and Total are fixed
// at placement time and never recomputed, even when product prices or stock
// change afterwards.
type Order struct {
	ID        string      `json:"id"`
	Items     []CartItem  `json:"items"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	StoreID   string      `json:"store_id"`
}

// Clone returns a deep copy of the order so callers can hand out order
// records without exposing the internal item slice.
func (o Order) Clone() Order {
	items := make([]CartItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

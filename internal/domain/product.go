package domain

// Product is a catalog entry identified by its (StoreID, Barcode) pair.
// At most one product exists per pair within the inventory.
type Product struct {
	Barcode string  `json:"barcode"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Stock   int     `json:"stock"`
	StoreID string  `json:"store_id"`
	Image   string  `json:"image,omitempty"`
}

// Key returns the composite identity used to match products across the
// persisted inventory and the canonical catalog definitions.
func (p Product) Key() ProductKey {
	return ProductKey{StoreID: p.StoreID, Barcode: p.Barcode}
}

// ProductKey is the composite identity of a product.
type ProductKey struct {
	StoreID string
	Barcode string
}

// CartItem is a product snapshot plus the quantity selected by the customer.
// The snapshot is taken at add time; only the quantity ceiling is checked
// against live stock.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

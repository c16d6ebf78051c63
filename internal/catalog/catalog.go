// Package catalog holds the canonical product definitions per store and the
// reconciliation of persisted inventory against them.
package catalog

import "quick-kirana/internal/domain"

// Product image references keyed by item.
const (
	imgMaggi    = "https://images.unsplash.com/photo-1612929633738-8fe44f7ec841?auto=format&fit=crop&w=400&q=80"
	imgMilk     = "https://images.unsplash.com/photo-1550583724-b2692b85b150?auto=format&fit=crop&w=400&q=80"
	imgJuice    = "https://images.unsplash.com/photo-1620916566398-39f1143ab7be?auto=format&fit=crop&w=400&q=80"
	imgCoke     = "https://images.unsplash.com/photo-1622483767028-3f66f32aef97?auto=format&fit=crop&w=400&q=80"
	imgBiscuits = "https://images.unsplash.com/photo-1590080875515-8a3a8dc5735e?auto=format&fit=crop&w=400&q=80"
	imgRice     = "https://images.unsplash.com/photo-1586201375761-83865001e31c?auto=format&fit=crop&w=400&q=80"
	imgKetchup  = "https://images.unsplash.com/photo-1607301406259-dfb186e15de8?auto=format&fit=crop&w=400&q=80"
	imgChips    = "https://images.unsplash.com/photo-1566478989037-eec170784d0b?auto=format&fit=crop&w=400&q=80"

	// DefaultProductImage is assigned to products created from an unknown
	// barcode scan, which carry no image of their own.
	DefaultProductImage = "https://images.unsplash.com/photo-1542838132-92c53300491e?auto=format&fit=crop&w=400&q=80"
)

var stores = []domain.Store{
	{
		ID:           "1",
		Name:         "Raju General Store",
		DeliveryTime: "10 mins",
		Rating:       4.8,
		Image:        "https://images.unsplash.com/photo-1601599561096-f87c95fff1e9?auto=format&fit=crop&q=80&w=800",
	},
	{
		ID:           "2",
		Name:         "Green Valley Mart",
		DeliveryTime: "25 mins",
		Rating:       4.2,
		Image:        "https://images.unsplash.com/photo-1578916171728-46686eac8d58?auto=format&fit=crop&q=80&w=800",
	},
	{
		ID:           "3",
		Name:         "Aapka Nukkad",
		DeliveryTime: "15 mins",
		Rating:       4.5,
		Image:        "https://images.unsplash.com/photo-1583258292688-d0213dc5a3a8?auto=format&fit=crop&q=80&w=800",
	},
}

var definitions = []domain.Product{
	// Store 1: Raju General Store
	{Barcode: "1111", Name: "Maggi Noodles", Price: 14, Stock: 20, StoreID: "1", Image: imgMaggi},
	{Barcode: "2222", Name: "Amul Taaza Milk", Price: 54, Stock: 10, StoreID: "1", Image: imgMilk},
	{Barcode: "3334", Name: "Tropicana Slice", Price: 95, Stock: 12, StoreID: "1", Image: imgJuice},
	{Barcode: "8888", Name: "Coke 1L", Price: 60, Stock: 24, StoreID: "1", Image: imgCoke},

	// Store 2: Green Valley Mart
	{Barcode: "1111", Name: "Maggi Noodles", Price: 14, Stock: 100, StoreID: "2", Image: imgMaggi},
	{Barcode: "4444", Name: "Britannia Biscuits", Price: 35, Stock: 15, StoreID: "2", Image: imgBiscuits},
	{Barcode: "6666", Name: "India Gate Rice", Price: 450, Stock: 15, StoreID: "2", Image: imgRice},

	// Store 3: Aapka Nukkad
	{Barcode: "2222", Name: "Amul Taaza Milk", Price: 54, Stock: 2, StoreID: "3", Image: imgMilk},
	{Barcode: "5555", Name: "Kissan Ketchup", Price: 120, Stock: 8, StoreID: "3", Image: imgKetchup},
	{Barcode: "7777", Name: "Lays Chips", Price: 20, Stock: 50, StoreID: "3", Image: imgChips},
}

// Stores returns a copy of the canonical store list.
func Stores() []domain.Store {
	out := make([]domain.Store, len(stores))
	copy(out, stores)
	return out
}

// FindStore looks up a canonical store by id.
func FindStore(id string) (domain.Store, bool) {
	for _, s := range stores {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Store{}, false
}

// Definitions returns a copy of the canonical product definitions across
// all stores. These seed the inventory on first start and override display
// fields of persisted products on every start.
func Definitions() []domain.Product {
	out := make([]domain.Product, len(definitions))
	copy(out, definitions)
	return out
}

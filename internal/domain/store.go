package domain

// Store represents an independently stocked retail entity. The store set is
// fixed at process start; stores are never created or removed at runtime.
type Store struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	DeliveryTime string  `json:"delivery_time"`
	Rating       float64 `json:"rating"`
	Image        string  `json:"image"`
}

// Role identifies which side of the counter the active session is on.
type Role string

const (
	RoleNone       Role = ""
	RoleCustomer   Role = "customer"
	RoleShopkeeper Role = "shopkeeper"
)

// Valid reports whether the role is one of the known session roles.
func (r Role) Valid() bool {
	switch r {
	case RoleNone, RoleCustomer, RoleShopkeeper:
		return true
	}
	return false
}

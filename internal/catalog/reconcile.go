package catalog

import "quick-kirana/internal/domain"

// Reconcile merges persisted inventory with the canonical definitions and
// returns the product set to start the session with:
//
//  1. Persisted products whose (storeID, barcode) is no longer defined
//     canonically are dropped (retired SKUs).
//  2. Canonical definitions with no persisted match are inserted verbatim
//     (SKUs introduced since the last session).
//  3. Persisted products with a canonical match keep their stock but take
//     name, price and image from the definition.
//
// The result contains exactly one product per canonically offered
// (storeID, barcode) pair, ordered by the canonical definition order.
// Reconcile is pure and idempotent; neither input slice is modified.
func Reconcile(persisted, canonical []domain.Product) []domain.Product {
	byKey := make(map[domain.ProductKey]domain.Product, len(persisted))
	for _, p := range persisted {
		// Last write wins on duplicate keys; duplicates only appear in
		// malformed persisted data and are collapsed here.
		byKey[p.Key()] = p
	}

	merged := make([]domain.Product, 0, len(canonical))
	for _, def := range canonical {
		if prev, ok := byKey[def.Key()]; ok {
			def.Stock = prev.Stock
		}
		merged = append(merged, def)
	}
	return merged
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"quick-kirana/internal/domain"
)

// Record names for the two persisted collections.
const (
	RecordProducts = "products"
	RecordOrders   = "orders"
)

// StateRepository persists the market state as two named records, each
// rewritten in full on every change. A missing record is not an error;
// loads report absence through their found return so callers can fall back
// to defaults. Malformed payloads are treated the same as absent records.
type StateRepository interface {
	LoadProducts(ctx context.Context) (products []domain.Product, found bool, err error)
	SaveProducts(ctx context.Context, products []domain.Product) error
	LoadOrders(ctx context.Context) (orders []domain.Order, found bool, err error)
	SaveOrders(ctx context.Context, orders []domain.Order) error

	// Reset erases all persisted records.
	Reset(ctx context.Context) error
}

type stateRepository struct {
	db *sql.DB
}

// NewStateRepository creates a StateRepository backed by the state_records
// table.
func NewStateRepository(db *sql.DB) StateRepository {
	return &stateRepository{db: db}
}

func (r *stateRepository) LoadProducts(ctx context.Context) ([]domain.Product, bool, error) {
	var products []domain.Product
	found, err := r.load(ctx, RecordProducts, &products)
	if err != nil || !found {
		return nil, false, err
	}
	return products, true, nil
}

func (r *stateRepository) SaveProducts(ctx context.Context, products []domain.Product) error {
	return r.save(ctx, RecordProducts, products)
}

func (r *stateRepository) LoadOrders(ctx context.Context) ([]domain.Order, bool, error) {
	var orders []domain.Order
	found, err := r.load(ctx, RecordOrders, &orders)
	if err != nil || !found {
		return nil, false, err
	}
	return orders, true, nil
}

func (r *stateRepository) SaveOrders(ctx context.Context, orders []domain.Order) error {
	return r.save(ctx, RecordOrders, orders)
}

func (r *stateRepository) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM state_records`); err != nil {
		return fmt.Errorf("failed to reset state records: %w", err)
	}
	return nil
}

// load reads one named record into v. A missing row or a payload that does
// not unmarshal both report found=false; only query failures are errors.
func (r *stateRepository) load(ctx context.Context, name string, v interface{}) (bool, error) {
	query := `SELECT payload FROM state_records WHERE name = $1`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, name).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to load record %q: %w", name, err)
	}

	if err := json.Unmarshal(payload, v); err != nil {
		return false, nil
	}
	return true, nil
}

// save rewrites one named record in full.
func (r *stateRepository) save(ctx context.Context, name string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record %q: %w", name, err)
	}

	query := `
		INSERT INTO state_records (name, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, name, payload); err != nil {
		return fmt.Errorf("failed to save record %q: %w", name, err)
	}
	return nil
}

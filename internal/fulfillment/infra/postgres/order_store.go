package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dwikikusuma/fulfillment/internal/fulfillment/domain"
)

type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

func (s *OrderStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'PENDING',
			total_amount BIGINT NOT NULL,
			items JSONB NOT NULL DEFAULT '[]',
			bonus_awarded BIGINT NOT NULL DEFAULT 0,
			commission_paid BIGINT NOT NULL DEFAULT 0,
			commission_user_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`)
	if err != nil {
		return fmt.Errorf("create orders index: %w", err)
	}
	return nil
}

// Create persists a new pending order. The checkout flow that produces
// orders lives outside this service; this exists for fixtures and tooling.
func (s *OrderStore) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	items, err := json.Marshal(rawItems(o.Items))
	if err != nil {
		return domain.Order{}, fmt.Errorf("marshal items: %w", err)
	}

	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO orders (id, user_id, status, total_amount, items)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		o.ID, o.UserID, domain.StatusPending, o.TotalAmount, items)

	if err := row.Scan(&o.CreatedAt, &o.UpdatedAt); err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}
	o.Status = domain.StatusPending
	return o, nil
}

func (s *OrderStore) Get(ctx context.Context, id string) (domain.Order, error) {
	var (
		o      domain.Order
		status string
		items  []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, status, total_amount, items,
		       bonus_awarded, commission_paid, commission_user_id,
		       created_at, updated_at
		FROM orders WHERE id = $1`, id).Scan(
		&o.ID, &o.UserID, &status, &o.TotalAmount, &items,
		&o.BonusAwarded, &o.CommissionPaid, &o.CommissionUserID,
		&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, domain.ErrOrderNotFound)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %s: %w", id, err)
	}

	o.Status, err = domain.ParseStatus(status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, err)
	}

	// Historical payloads use inconsistent field names; normalize here so
	// the engine only ever sees the canonical shape.
	var raw []map[string]any
	if err := json.Unmarshal(items, &raw); err != nil {
		return domain.Order{}, fmt.Errorf("order %s items: %w", id, err)
	}
	o.Items = make([]domain.LineItem, 0, len(raw))
	for _, r := range raw {
		item, err := domain.NormalizeLineItem(r)
		if err != nil {
			return domain.Order{}, fmt.Errorf("order %s: %w", id, err)
		}
		o.Items = append(o.Items, item)
	}
	return o, nil
}

func (s *OrderStore) UpdateStatusCAS(ctx context.Context, id string, from, to domain.Status) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE orders SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return fmt.Errorf("update order %s status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the order vanished or someone else moved it first.
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("order %s no longer %s: %w", id, from, domain.ErrInvalidTransition)
	}
	return nil
}

func (s *OrderStore) SetAwards(ctx context.Context, id string, bonus, commission int64, commissionUserID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE orders
		SET bonus_awarded = $2, commission_paid = $3, commission_user_id = $4, updated_at = NOW()
		WHERE id = $1`, id, bonus, commission, commissionUserID)
	if err != nil {
		return fmt.Errorf("set awards for order %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", id, domain.ErrOrderNotFound)
	}
	return nil
}

func (s *OrderStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", id, domain.ErrOrderNotFound)
	}
	return nil
}

func rawItems(items []domain.LineItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		m := map[string]any{
			"product_id":  it.ProductID,
			"quantity":    it.Quantity,
			"unit_amount": it.UnitAmount,
		}
		if it.Color != "" {
			m["color"] = it.Color
		}
		if it.Size != "" {
			m["size"] = it.Size
		}
		out = append(out, m)
	}
	return out
}

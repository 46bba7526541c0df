package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dwikikusuma/fulfillment/internal/inventory/domain"
)

type ProductStore struct {
	pool *pgxpool.Pool
}

func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

func (s *ProductStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			stock BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS product_variants (
			product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			color TEXT NOT NULL,
			size TEXT NOT NULL,
			stock BIGINT NOT NULL DEFAULT 0,
			UNIQUE (product_id, color, size)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_variants_normalized
			ON product_variants(product_id, lower(trim(color)), lower(trim(size)))`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("inventory schema: %w", err)
		}
	}
	return nil
}

func (s *ProductStore) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, stock, created_at, updated_at
		FROM products WHERE id = $1`, id).Scan(
		&p.ID, &p.Name, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrProductNotFound)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT color, size, stock
		FROM product_variants WHERE product_id = $1
		ORDER BY color, size`, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("get variants for %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var v domain.Variant
		if err := rows.Scan(&v.Color, &v.Size, &v.Stock); err != nil {
			return domain.Product{}, fmt.Errorf("scan variant: %w", err)
		}
		p.Variants = append(p.Variants, v)
	}
	if err := rows.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("read variants for %s: %w", id, err)
	}
	return p, nil
}

// AdjustStock applies the delta inside the UPDATE so concurrent writers
// serialize on the row instead of overwriting a stale read. Stock is
// clamped at zero in the same statement.
func (s *ProductStore) AdjustStock(ctx context.Context, id string, delta int64) (before, after int64, err error) {
	err = s.pool.QueryRow(ctx, `
		WITH prev AS (SELECT stock FROM products WHERE id = $1)
		UPDATE products
		SET stock = GREATEST(products.stock + $2, 0), updated_at = NOW()
		FROM prev
		WHERE products.id = $1
		RETURNING prev.stock, products.stock`, id, delta).Scan(&before, &after)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, fmt.Errorf("product %s: %w", id, domain.ErrProductNotFound)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("adjust stock for %s: %w", id, err)
	}
	return before, after, nil
}

// AdjustVariantStock touches exactly one variant row; sibling variants are
// never rewritten.
func (s *ProductStore) AdjustVariantStock(ctx context.Context, id string, key domain.VariantKey, delta int64) (before, after int64, err error) {
	err = s.pool.QueryRow(ctx, `
		WITH prev AS (
			SELECT stock FROM product_variants
			WHERE product_id = $1 AND lower(trim(color)) = $2 AND lower(trim(size)) = $3
		)
		UPDATE product_variants
		SET stock = GREATEST(product_variants.stock + $4, 0)
		FROM prev
		WHERE product_id = $1 AND lower(trim(color)) = $2 AND lower(trim(size)) = $3
		RETURNING prev.stock, product_variants.stock`,
		id, key.Color, key.Size, delta).Scan(&before, &after)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, fmt.Errorf("product %s variant %s/%s: %w", id, key.Color, key.Size, domain.ErrVariantNotFound)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("adjust variant stock for %s: %w", id, err)
	}
	return before, after, nil
}

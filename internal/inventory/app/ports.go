package app

import (
	"context"

	"github.com/dwikikusuma/fulfillment/internal/inventory/domain"
)

type ProductStore interface {
	Get(ctx context.Context, id string) (domain.Product, error)
	// AdjustStock applies a signed delta to a simple product's flat stock
	// in one atomic write, clamping at zero, and reports the before/after
	// values. Concurrent deductions must not lose each other's writes.
	AdjustStock(ctx context.Context, id string, delta int64) (before, after int64, err error)
	// AdjustVariantStock does the same for a single variant without
	// touching its siblings.
	AdjustVariantStock(ctx context.Context, id string, key domain.VariantKey, delta int64) (before, after int64, err error)
}

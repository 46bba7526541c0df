package app

import (
	"context"
	"fmt"

	"github.com/dwikikusuma/fulfillment/internal/inventory/domain"
)

// Ledger applies stock deltas to simple and variant products.
type Ledger struct {
	store ProductStore
}

func NewLedger(store ProductStore) *Ledger {
	return &Ledger{store: store}
}

// Deduct removes quantity from the product's stock, clamped at zero. Stock
// is not hard-reserved at checkout time, so an approval may race an already
// depleted variant; the policy is best-effort decrement, never negative.
func (l *Ledger) Deduct(ctx context.Context, productID string, key *domain.VariantKey, quantity int64) (domain.StockChange, error) {
	if quantity <= 0 {
		return domain.StockChange{}, fmt.Errorf("deduct quantity must be positive, got %d", quantity)
	}
	return l.apply(ctx, productID, key, -quantity)
}

// Restore adds quantity back, used when reversing a prior deduction. It is
// deliberately not clamped against any baseline: repeated partial restores
// can legitimately push stock past its original value.
func (l *Ledger) Restore(ctx context.Context, productID string, key *domain.VariantKey, quantity int64) (domain.StockChange, error) {
	if quantity <= 0 {
		return domain.StockChange{}, fmt.Errorf("restore quantity must be positive, got %d", quantity)
	}
	return l.apply(ctx, productID, key, quantity)
}

func (l *Ledger) apply(ctx context.Context, productID string, key *domain.VariantKey, delta int64) (domain.StockChange, error) {
	p, err := l.store.Get(ctx, productID)
	if err != nil {
		return domain.StockChange{}, fmt.Errorf("get product %s: %w", productID, err)
	}

	if p.HasVariants() {
		if key == nil {
			return domain.StockChange{}, fmt.Errorf("product %s has variants, selector required: %w", productID, domain.ErrVariantNotFound)
		}
		v, ok := p.FindVariant(*key)
		if !ok {
			return domain.StockChange{}, fmt.Errorf("product %s variant %s/%s: %w", productID, key.Color, key.Size, domain.ErrVariantNotFound)
		}

		before, after, err := l.store.AdjustVariantStock(ctx, p.ID, v.Key(), delta)
		if err != nil {
			return domain.StockChange{}, fmt.Errorf("update variant stock: %w", err)
		}
		return domain.StockChange{
			ProductID: p.ID,
			Product:   p.Name,
			Variant:   v.Label(),
			Before:    before,
			After:     after,
		}, nil
	}

	before, after, err := l.store.AdjustStock(ctx, p.ID, delta)
	if err != nil {
		return domain.StockChange{}, fmt.Errorf("update stock: %w", err)
	}
	return domain.StockChange{
		ProductID: p.ID,
		Product:   p.Name,
		Before:    before,
		After:     after,
	}, nil
}

// TotalStock reports current availability across the whole product.
func (l *Ledger) TotalStock(ctx context.Context, productID string) (int64, error) {
	p, err := l.store.Get(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("get product %s: %w", productID, err)
	}
	return p.TotalStock(), nil
}

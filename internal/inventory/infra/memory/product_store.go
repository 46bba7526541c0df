package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dwikikusuma/fulfillment/internal/inventory/domain"
)

// ProductStore is a mutex-guarded map implementation of the inventory
// record store, used in tests and single-node dev setups.
type ProductStore struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

func NewProductStore() *ProductStore {
	return &ProductStore{products: make(map[string]domain.Product)}
}

func (s *ProductStore) Put(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = cloneProduct(p)
}

func (s *ProductStore) Get(ctx context.Context, id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrProductNotFound)
	}
	return cloneProduct(p), nil
}

// AdjustStock applies the delta under the store lock so concurrent callers
// never overwrite each other. Stock is clamped at zero.
func (s *ProductStore) AdjustStock(ctx context.Context, id string, delta int64) (before, after int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return 0, 0, fmt.Errorf("product %s: %w", id, domain.ErrProductNotFound)
	}
	before = p.Stock
	p.Stock = clamp(p.Stock + delta)
	s.products[id] = p
	return before, p.Stock, nil
}

func (s *ProductStore) AdjustVariantStock(ctx context.Context, id string, key domain.VariantKey, delta int64) (before, after int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return 0, 0, fmt.Errorf("product %s: %w", id, domain.ErrProductNotFound)
	}
	for i, v := range p.Variants {
		if v.Key() == key {
			before = v.Stock
			p.Variants[i].Stock = clamp(v.Stock + delta)
			s.products[id] = p
			return before, p.Variants[i].Stock, nil
		}
	}
	return 0, 0, fmt.Errorf("product %s variant %s/%s: %w", id, key.Color, key.Size, domain.ErrVariantNotFound)
}

func clamp(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

func cloneProduct(p domain.Product) domain.Product {
	out := p
	out.Variants = make([]domain.Variant, len(p.Variants))
	copy(out.Variants, p.Variants)
	return out
}

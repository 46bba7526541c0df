package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dwikikusuma/fulfillment/internal/fulfillment/domain"
)

type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]domain.Order)}
}

func (s *OrderStore) Put(o domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = cloneOrder(o)
}

func (s *OrderStore) Get(ctx context.Context, id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, domain.ErrOrderNotFound)
	}
	return cloneOrder(o), nil
}

// UpdateStatusCAS flips the status only when it still matches the expected
// value, mirroring the conditional UPDATE the Postgres store issues.
func (s *OrderStore) UpdateStatusCAS(ctx context.Context, id string, from, to domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, domain.ErrOrderNotFound)
	}
	if o.Status != from {
		return fmt.Errorf("order %s status is %s, expected %s: %w", id, o.Status, from, domain.ErrInvalidTransition)
	}
	o.Status = to
	s.orders[id] = o
	return nil
}

func (s *OrderStore) SetAwards(ctx context.Context, id string, bonus, commission int64, commissionUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, domain.ErrOrderNotFound)
	}
	o.BonusAwarded = bonus
	o.CommissionPaid = commission
	o.CommissionUserID = commissionUserID
	s.orders[id] = o
	return nil
}

func (s *OrderStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return fmt.Errorf("order %s: %w", id, domain.ErrOrderNotFound)
	}
	delete(s.orders, id)
	return nil
}

func cloneOrder(o domain.Order) domain.Order {
	out := o
	out.Items = make([]domain.LineItem, len(o.Items))
	copy(out.Items, o.Items)
	return out
}

package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dwikikusuma/fulfillment/internal/loyalty/domain"
)

type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]domain.Account)}
}

func (s *AccountStore) Put(a domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
}

func (s *AccountStore) Get(ctx context.Context, id string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, fmt.Errorf("account %s: %w", id, domain.ErrAccountNotFound)
	}
	return a, nil
}

func (s *AccountStore) FindByReferralCode(ctx context.Context, code string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.ReferralCode == code {
			return a, nil
		}
	}
	return domain.Account{}, fmt.Errorf("referral code %q: %w", code, domain.ErrAccountNotFound)
}

// AdjustBonusPoints applies the delta under the store lock so concurrent
// callers never overwrite each other. The balance is clamped at zero.
func (s *AccountStore) AdjustBonusPoints(ctx context.Context, id string, delta int64) (before, after int64, err error) {
	err = s.update(id, func(a *domain.Account) {
		before = a.BonusPoints
		a.BonusPoints += delta
		if a.BonusPoints < 0 {
			a.BonusPoints = 0
		}
		after = a.BonusPoints
	})
	return before, after, err
}

func (s *AccountStore) RecordReferral(ctx context.Context, id string, amount int64) (balance, referralCount int64, err error) {
	err = s.update(id, func(a *domain.Account) {
		a.BonusPoints += amount
		a.ReferralCount++
		balance = a.BonusPoints
		referralCount = a.ReferralCount
	})
	return balance, referralCount, err
}

func (s *AccountStore) SetReferralRewarded(ctx context.Context, id string, rewarded bool) error {
	return s.update(id, func(a *domain.Account) { a.ReferralRewarded = rewarded })
}

func (s *AccountStore) update(id string, fn func(*domain.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return fmt.Errorf("account %s: %w", id, domain.ErrAccountNotFound)
	}
	fn(&a)
	s.accounts[id] = a
	return nil
}

package app

import (
	"context"
	"fmt"

	"github.com/dwikikusuma/fulfillment/internal/loyalty/domain"
)

// Accountant applies signed bonus-point deltas to buyer and referrer
// balances. All mutations go through the AccountStore one record at a time;
// callers decide what to do when a sub-step fails.
type Accountant struct {
	store AccountStore
}

func NewAccountant(store AccountStore) *Accountant {
	return &Accountant{store: store}
}

// CreditPurchaseBonus awards rate% of the order total to the buyer and
// returns the amount credited, which callers persist so a later reversal
// can debit exactly the same value.
func (a *Accountant) CreditPurchaseBonus(ctx context.Context, userID string, orderTotal int64, rate float64) (int64, error) {
	points := domain.PercentOf(orderTotal, rate)
	if points <= 0 {
		return 0, nil
	}

	if _, _, err := a.store.AdjustBonusPoints(ctx, userID, points); err != nil {
		return 0, fmt.Errorf("credit %d points to %s: %w", points, userID, err)
	}
	return points, nil
}

// DebitPoints removes points from the buyer's balance, clamping the stored
// value at zero. The returned shortfall is how far the debit exceeded the
// balance; callers log it as debt rather than persisting a negative value.
func (a *Accountant) DebitPoints(ctx context.Context, userID string, points int64) (int64, error) {
	if points <= 0 {
		return 0, nil
	}

	before, after, err := a.store.AdjustBonusPoints(ctx, userID, -points)
	if err != nil {
		return 0, fmt.Errorf("debit %d points from %s: %w", points, userID, err)
	}
	return points - (before - after), nil
}

// ReferralFor resolves the buyer's referrer account. Returns ErrNoReferrer
// when the buyer carries no referral code and ErrReferrerNotFound when the
// code does not resolve; alreadyRewarded reports whether a commission has
// been paid for this buyer before.
func (a *Accountant) ReferralFor(ctx context.Context, buyerID string) (referrer domain.Account, alreadyRewarded bool, err error) {
	buyer, err := a.store.Get(ctx, buyerID)
	if err != nil {
		return domain.Account{}, false, fmt.Errorf("get account %s: %w", buyerID, err)
	}
	if buyer.ReferredBy == "" {
		return domain.Account{}, false, domain.ErrNoReferrer
	}

	ref, err := a.store.FindByReferralCode(ctx, buyer.ReferredBy)
	if err != nil {
		return domain.Account{}, false, fmt.Errorf("referral code %q: %w", buyer.ReferredBy, domain.ErrReferrerNotFound)
	}
	return ref, buyer.ReferralRewarded, nil
}

// CreditReferralCommission pays rate% of the order total to the referrer
// and bumps their referral count. Returns the amount paid and the new
// count for the reward notification.
func (a *Accountant) CreditReferralCommission(ctx context.Context, referrerID string, orderTotal int64, rate float64) (amount, referralCount int64, err error) {
	amount = domain.PercentOf(orderTotal, rate)
	if amount <= 0 {
		return 0, 0, nil
	}

	_, referralCount, err = a.store.RecordReferral(ctx, referrerID, amount)
	if err != nil {
		return 0, 0, fmt.Errorf("credit commission %d to %s: %w", amount, referrerID, err)
	}
	return amount, referralCount, nil
}

// MarkReferralRewarded flags the buyer so a first-order-only policy pays at
// most one commission per referred account.
func (a *Accountant) MarkReferralRewarded(ctx context.Context, buyerID string) error {
	if err := a.store.SetReferralRewarded(ctx, buyerID, true); err != nil {
		return fmt.Errorf("mark referral rewarded for %s: %w", buyerID, err)
	}
	return nil
}

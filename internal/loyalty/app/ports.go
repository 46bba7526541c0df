package app

import (
	"context"

	"github.com/dwikikusuma/fulfillment/internal/loyalty/domain"
)

type AccountStore interface {
	Get(ctx context.Context, id string) (domain.Account, error)
	FindByReferralCode(ctx context.Context, code string) (domain.Account, error)
	// AdjustBonusPoints applies a signed delta as a single atomic write,
	// clamping the stored balance at zero, and reports the before/after
	// values. Relative updates keep concurrent credits from losing each
	// other's writes.
	AdjustBonusPoints(ctx context.Context, id string, delta int64) (before, after int64, err error)
	// RecordReferral credits a commission and bumps the referral count in
	// one atomic write, returning the new balance and count.
	RecordReferral(ctx context.Context, id string, amount int64) (balance, referralCount int64, err error)
	SetReferralRewarded(ctx context.Context, id string, rewarded bool) error
}

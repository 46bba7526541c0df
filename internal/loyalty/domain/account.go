package domain

import (
	"errors"
	"math"
	"time"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrNoReferrer       = errors.New("account has no referrer")
	ErrReferrerNotFound = errors.New("referrer not found")
)

type Account struct {
	ID          string
	Name        string
	BonusPoints int64

	ReferralCode string
	// ReferredBy holds the referral code of the account that recruited this
	// one, empty when the account signed up directly.
	ReferredBy    string
	ReferralCount int64
	// ReferralRewarded is set once a commission has been paid out for this
	// account's qualifying order.
	ReferralRewarded bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PercentOf computes round(amount * rate / 100), half away from zero. Both
// purchase bonuses and referral commissions use this.
func PercentOf(amount int64, rate float64) int64 {
	return int64(math.Round(float64(amount) * rate / 100))
}

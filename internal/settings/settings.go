package settings

import (
	"context"
	"fmt"
)

// Settings are the admin-mutable business knobs. They are re-read at the
// start of every approve/reject rather than cached, so a rate change takes
// effect on the next operation.
type Settings struct {
	PurchaseBonusRate      float64 `json:"purchase_bonus_rate"`
	ReferralCommissionRate float64 `json:"referral_commission_rate"`
	LowStockThreshold      int64   `json:"low_stock_threshold"`
	// ReferralFirstOrderOnly limits commission to the referred buyer's first
	// approved order. Business policy, not a hard rule.
	ReferralFirstOrderOnly bool `json:"referral_first_order_only"`
}

func Default() Settings {
	return Settings{
		PurchaseBonusRate:      0,
		ReferralCommissionRate: 0,
		LowStockThreshold:      10,
		ReferralFirstOrderOnly: true,
	}
}

func (s Settings) Validate() error {
	if s.PurchaseBonusRate < 0 || s.PurchaseBonusRate > 100 {
		return fmt.Errorf("purchase bonus rate out of range: %v", s.PurchaseBonusRate)
	}
	if s.ReferralCommissionRate < 0 || s.ReferralCommissionRate > 100 {
		return fmt.Errorf("referral commission rate out of range: %v", s.ReferralCommissionRate)
	}
	if s.LowStockThreshold < 0 {
		return fmt.Errorf("low stock threshold must not be negative: %d", s.LowStockThreshold)
	}
	return nil
}

type Store interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}

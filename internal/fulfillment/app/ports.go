package app

import (
	"context"

	"github.com/dwikikusuma/fulfillment/internal/fulfillment/domain"
	invdomain "github.com/dwikikusuma/fulfillment/internal/inventory/domain"
	loydomain "github.com/dwikikusuma/fulfillment/internal/loyalty/domain"
	"github.com/dwikikusuma/fulfillment/internal/settings"
)

type OrderStore interface {
	Get(ctx context.Context, id string) (domain.Order, error)
	// UpdateStatusCAS flips the order's status only if it still holds the
	// expected value; a lost race surfaces as ErrInvalidTransition so a
	// concurrent double-approve cannot apply twice.
	UpdateStatusCAS(ctx context.Context, id string, from, to domain.Status) error
	// SetAwards persists what approval credited so reversal can debit the
	// exact stored amounts.
	SetAwards(ctx context.Context, id string, bonus, commission int64, commissionUserID string) error
	Delete(ctx context.Context, id string) error
}

type InventoryLedger interface {
	Deduct(ctx context.Context, productID string, key *invdomain.VariantKey, quantity int64) (invdomain.StockChange, error)
	Restore(ctx context.Context, productID string, key *invdomain.VariantKey, quantity int64) (invdomain.StockChange, error)
}

type Accountant interface {
	CreditPurchaseBonus(ctx context.Context, userID string, orderTotal int64, rate float64) (int64, error)
	DebitPoints(ctx context.Context, userID string, points int64) (int64, error)
	ReferralFor(ctx context.Context, buyerID string) (loydomain.Account, bool, error)
	CreditReferralCommission(ctx context.Context, referrerID string, orderTotal int64, rate float64) (int64, int64, error)
	MarkReferralRewarded(ctx context.Context, buyerID string) error
}

// Notifier is fire-and-forget: delivery failures are logged by the engine
// and never block a state transition.
type Notifier interface {
	NotifyOrderStatus(ctx context.Context, order domain.Order, status domain.Status) error
	NotifyReferralReward(ctx context.Context, userID string, amount, totalReferrals int64) error
	NotifyLowStock(ctx context.Context, change invdomain.StockChange, alert invdomain.Alert) error
}

type SettingsSource interface {
	Load(ctx context.Context) (settings.Settings, error)
}

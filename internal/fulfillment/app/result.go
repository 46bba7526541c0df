package app

import (
	"github.com/dwikikusuma/fulfillment/internal/fulfillment/domain"
	invdomain "github.com/dwikikusuma/fulfillment/internal/inventory/domain"
)

// Warning records a non-fatal sub-step failure. Warnings ride along on the
// result instead of aborting the transition.
type Warning struct {
	Step   string `json:"step"`
	Detail string `json:"detail"`
}

type StockAlert struct {
	ProductID string `json:"product_id"`
	Variant   string `json:"variant,omitempty"`
	Alert     string `json:"alert"`
}

type Result struct {
	OrderID       string        `json:"order_id"`
	Status        domain.Status `json:"status"`
	BonusCredited int64         `json:"bonus_credited,omitempty"`
	BonusDebited  int64         `json:"bonus_debited,omitempty"`
	Commission    int64         `json:"commission,omitempty"`
	Alerts        []StockAlert  `json:"alerts,omitempty"`
	Warnings      []Warning     `json:"warnings,omitempty"`
}

func (r *Result) warn(step, detail string) {
	r.Warnings = append(r.Warnings, Warning{Step: step, Detail: detail})
}

func (r *Result) addAlert(change invdomain.StockChange, alert invdomain.Alert) {
	r.Alerts = append(r.Alerts, StockAlert{
		ProductID: change.ProductID,
		Variant:   change.Variant,
		Alert:     alert.String(),
	})
}

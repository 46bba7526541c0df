package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dwikikusuma/fulfillment/internal/fulfillment/domain"
	invdomain "github.com/dwikikusuma/fulfillment/internal/inventory/domain"
	loydomain "github.com/dwikikusuma/fulfillment/internal/loyalty/domain"
)

// Engine drives an order through its lifecycle while keeping stock, bonus
// balances and referral payouts reconciled. The record store offers no
// cross-record transactions, so side effects run as compensating pairs and
// the status write goes last: if it fails, the caller never sees the
// operation as completed.
type Engine struct {
	orders   OrderStore
	ledger   InventoryLedger
	accounts Accountant
	settings SettingsSource
	notifier Notifier
	log      *slog.Logger

	locks       *orderLocks
	bulkWorkers int
}

func NewEngine(orders OrderStore, ledger InventoryLedger, accounts Accountant, settings SettingsSource, notifier Notifier, log *slog.Logger, bulkWorkers int) *Engine {
	if bulkWorkers <= 0 {
		bulkWorkers = 8
	}
	return &Engine{
		orders:      orders,
		ledger:      ledger,
		accounts:    accounts,
		settings:    settings,
		notifier:    notifier,
		log:         log,
		locks:       newOrderLocks(),
		bulkWorkers: bulkWorkers,
	}
}

type pendingAlert struct {
	change invdomain.StockChange
	alert  invdomain.Alert
}

// Approve moves a pending order to APPROVED: stock out, purchase bonus in,
// referral commission in, then the status flip. Per-item and per-account
// failures are recorded as warnings; only an illegal transition or the
// final status write abort.
func (e *Engine) Approve(ctx context.Context, orderID string) (Result, error) {
	mu := e.locks.acquire(orderID)
	defer e.locks.release(orderID, mu)

	order, err := e.orders.Get(ctx, orderID)
	if err != nil {
		return Result{}, err
	}
	if order.Status != domain.StatusPending {
		return Result{}, fmt.Errorf("approve %s from %s: %w", orderID, order.Status, domain.ErrInvalidTransition)
	}

	cfg, err := e.settings.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load settings: %w", err)
	}

	res := Result{OrderID: orderID, Status: domain.StatusApproved}

	// Stock first: a dead item must surface before any bonus credit, so a
	// failed deduction never hides behind a dangling award.
	var alerts []pendingAlert
	for _, item := range order.Items {
		change, err := e.ledger.Deduct(ctx, item.ProductID, variantKey(item), item.Quantity)
		if err != nil {
			res.warn("inventory", fmt.Sprintf("product %s: %v", item.ProductID, err))
			e.log.Warn("stock deduction skipped",
				slog.String("order_id", orderID),
				slog.String("product_id", item.ProductID),
				slog.Any("err", err))
			continue
		}
		if a := invdomain.ClassifyStockChange(change.Before, change.After, cfg.LowStockThreshold); a != invdomain.AlertNone {
			alerts = append(alerts, pendingAlert{change: change, alert: a})
			res.addAlert(change, a)
		}
	}

	// Bonus is computed on the order total, not per item, so it proceeds
	// even when individual deductions were skipped.
	bonus, err := e.accounts.CreditPurchaseBonus(ctx, order.UserID, order.TotalAmount, cfg.PurchaseBonusRate)
	if err != nil {
		res.warn("bonus", err.Error())
		e.log.Warn("purchase bonus not credited", slog.String("order_id", orderID), slog.Any("err", err))
	} else {
		res.BonusCredited = bonus
	}

	var referrer loydomain.Account
	var referralCount int64
	referrer, res.Commission, referralCount = e.payReferral(ctx, order, cfg.ReferralCommissionRate, cfg.ReferralFirstOrderOnly, &res)

	if err := e.orders.SetAwards(ctx, orderID, res.BonusCredited, res.Commission, referrer.ID); err != nil {
		res.warn("bonus", fmt.Sprintf("persist awards: %v", err))
		e.log.Warn("award amounts not persisted", slog.String("order_id", orderID), slog.Any("err", err))
	}

	if err := e.orders.UpdateStatusCAS(ctx, orderID, domain.StatusPending, domain.StatusApproved); err != nil {
		return Result{}, fmt.Errorf("approve %s: %w", orderID, err)
	}
	order.Status = domain.StatusApproved
	order.BonusAwarded = res.BonusCredited
	order.CommissionPaid = res.Commission
	order.CommissionUserID = referrer.ID

	e.notifyStatus(ctx, &res, order)
	if res.Commission > 0 {
		if err := e.notifier.NotifyReferralReward(ctx, referrer.ID, res.Commission, referralCount); err != nil {
			res.warn("notify", fmt.Sprintf("referral reward: %v", err))
			e.log.Warn("referral notification failed", slog.String("referrer_id", referrer.ID), slog.Any("err", err))
		}
	}
	e.notifyAlerts(ctx, &res, alerts)

	return res, nil
}

func (e *Engine) payReferral(ctx context.Context, order domain.Order, rate float64, firstOnly bool, res *Result) (loydomain.Account, int64, int64) {
	referrer, alreadyRewarded, err := e.accounts.ReferralFor(ctx, order.UserID)
	switch {
	case errors.Is(err, loydomain.ErrNoReferrer):
		return loydomain.Account{}, 0, 0
	case err != nil:
		res.warn("referral", err.Error())
		e.log.Warn("referral lookup failed", slog.String("order_id", order.ID), slog.Any("err", err))
		return loydomain.Account{}, 0, 0
	case firstOnly && alreadyRewarded:
		return loydomain.Account{}, 0, 0
	}

	amount, count, err := e.accounts.CreditReferralCommission(ctx, referrer.ID, order.TotalAmount, rate)
	if err != nil {
		res.warn("referral", err.Error())
		e.log.Warn("referral commission not credited",
			slog.String("order_id", order.ID),
			slog.String("referrer_id", referrer.ID),
			slog.Any("err", err))
		return loydomain.Account{}, 0, 0
	}
	if amount == 0 {
		return loydomain.Account{}, 0, 0
	}

	if err := e.accounts.MarkReferralRewarded(ctx, order.UserID); err != nil {
		res.warn("referral", err.Error())
	}
	return referrer, amount, count
}

// Reject moves a pending order to REJECTED. When an earlier approval left
// credits behind (admin reversal flow), the stored amounts are debited and
// the stock deductions restored; a straight reject of a never-approved
// order compensates nothing.
func (e *Engine) Reject(ctx context.Context, orderID string) (Result, error) {
	mu := e.locks.acquire(orderID)
	defer e.locks.release(orderID, mu)

	order, err := e.orders.Get(ctx, orderID)
	if err != nil {
		return Result{}, err
	}
	if order.Status != domain.StatusPending {
		return Result{}, fmt.Errorf("reject %s from %s: %w", orderID, order.Status, domain.ErrInvalidTransition)
	}

	res := Result{OrderID: orderID, Status: domain.StatusRejected}

	var alerts []pendingAlert
	if order.BonusAwarded > 0 {
		shortfall, err := e.accounts.DebitPoints(ctx, order.UserID, order.BonusAwarded)
		if err != nil {
			res.warn("bonus", err.Error())
			e.log.Warn("bonus refund failed", slog.String("order_id", orderID), slog.Any("err", err))
		} else {
			res.BonusDebited = order.BonusAwarded
			if shortfall > 0 {
				res.warn("bonus", fmt.Sprintf("balance short by %d, clamped at zero", shortfall))
				e.log.Warn("bonus debit exceeded balance",
					slog.String("user_id", order.UserID),
					slog.Int64("shortfall", shortfall))
			}
		}

		// The deductions only ran if an approval did; give the stock back.
		// Alerts need the real threshold, so when settings cannot be read
		// the restores still run but no alert is classified.
		cfg, cfgErr := e.settings.Load(ctx)
		if cfgErr != nil {
			res.warn("inventory", fmt.Sprintf("load settings: %v", cfgErr))
			e.log.Warn("stock alerts skipped", slog.String("order_id", orderID), slog.Any("err", cfgErr))
		}
		for _, item := range order.Items {
			change, err := e.ledger.Restore(ctx, item.ProductID, variantKey(item), item.Quantity)
			if err != nil {
				res.warn("inventory", fmt.Sprintf("product %s: %v", item.ProductID, err))
				continue
			}
			if cfgErr != nil {
				continue
			}
			if a := invdomain.ClassifyStockChange(change.Before, change.After, cfg.LowStockThreshold); a != invdomain.AlertNone {
				alerts = append(alerts, pendingAlert{change: change, alert: a})
				res.addAlert(change, a)
			}
		}
	}

	if err := e.orders.UpdateStatusCAS(ctx, orderID, domain.StatusPending, domain.StatusRejected); err != nil {
		return Result{}, fmt.Errorf("reject %s: %w", orderID, err)
	}
	order.Status = domain.StatusRejected

	e.notifyStatus(ctx, &res, order)
	e.notifyAlerts(ctx, &res, alerts)
	return res, nil
}

// UpdateStatus covers the side-effect-free edges APPROVED→SHIPPED and
// SHIPPED→DELIVERED, and dispatches to Approve/Reject for the edges that
// carry reconciliation work.
func (e *Engine) UpdateStatus(ctx context.Context, orderID string, next domain.Status) (Result, error) {
	switch next {
	case domain.StatusApproved:
		return e.Approve(ctx, orderID)
	case domain.StatusRejected:
		return e.Reject(ctx, orderID)
	}

	mu := e.locks.acquire(orderID)
	defer e.locks.release(orderID, mu)

	order, err := e.orders.Get(ctx, orderID)
	if err != nil {
		return Result{}, err
	}
	if !order.Status.CanTransitionTo(next) {
		return Result{}, fmt.Errorf("update %s from %s to %s: %w", orderID, order.Status, next, domain.ErrInvalidTransition)
	}

	if err := e.orders.UpdateStatusCAS(ctx, orderID, order.Status, next); err != nil {
		return Result{}, fmt.Errorf("update %s: %w", orderID, err)
	}
	order.Status = next

	res := Result{OrderID: orderID, Status: next}
	e.notifyStatus(ctx, &res, order)
	return res, nil
}

// Delete removes an order that has finished its lifecycle. Active orders
// are still subject to reconciliation and stay put.
func (e *Engine) Delete(ctx context.Context, orderID string) error {
	mu := e.locks.acquire(orderID)
	defer e.locks.release(orderID, mu)

	order, err := e.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.Deletable() {
		return fmt.Errorf("delete %s with status %s: %w", orderID, order.Status, domain.ErrOrderNotDeletable)
	}
	return e.orders.Delete(ctx, orderID)
}

func (e *Engine) notifyStatus(ctx context.Context, res *Result, order domain.Order) {
	if err := e.notifier.NotifyOrderStatus(ctx, order, order.Status); err != nil {
		res.warn("notify", fmt.Sprintf("order status: %v", err))
		e.log.Warn("status notification failed", slog.String("order_id", order.ID), slog.Any("err", err))
	}
}

func (e *Engine) notifyAlerts(ctx context.Context, res *Result, alerts []pendingAlert) {
	for _, pa := range alerts {
		if err := e.notifier.NotifyLowStock(ctx, pa.change, pa.alert); err != nil {
			res.warn("notify", fmt.Sprintf("low stock %s: %v", pa.change.ProductID, err))
			e.log.Warn("low stock notification failed",
				slog.String("product_id", pa.change.ProductID),
				slog.Any("err", err))
		}
	}
}

func variantKey(item domain.LineItem) *invdomain.VariantKey {
	if !item.HasVariant() {
		return nil
	}
	k := invdomain.NewVariantKey(item.Color, item.Size)
	return &k
}

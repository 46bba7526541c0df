package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/fulfillment/internal/fulfillment/domain"
)

type BulkOp string

const (
	BulkApprove BulkOp = "approve"
	BulkReject  BulkOp = "reject"
	BulkShip    BulkOp = "ship"
	BulkDeliver BulkOp = "deliver"
)

func ParseBulkOp(s string) (BulkOp, error) {
	switch BulkOp(s) {
	case BulkApprove, BulkReject, BulkShip, BulkDeliver:
		return BulkOp(s), nil
	}
	return "", fmt.Errorf("unknown bulk operation %q", s)
}

type BulkError struct {
	OrderID string `json:"order_id"`
	Error   string `json:"error"`
}

type BulkResult struct {
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Errors    []BulkError `json:"errors,omitempty"`
}

// RunBulk applies one operation to every order in the list, each outcome
// isolated: a batch of 50 approvals with 3 concurrently deleted orders
// still processes the other 47. Errors come back in input order.
func (e *Engine) RunBulk(ctx context.Context, orderIDs []string, op BulkOp) (BulkResult, error) {
	if _, err := ParseBulkOp(string(op)); err != nil {
		return BulkResult{}, err
	}

	outcomes := make([]error, len(orderIDs))

	var g errgroup.Group
	g.SetLimit(e.bulkWorkers)

	for idx := range orderIDs {
		idx := idx
		g.Go(func() error {
			outcomes[idx] = e.runOne(ctx, orderIDs[idx], op)
			return nil
		})
	}
	// Workers never return errors; failures land in outcomes.
	_ = g.Wait()

	var res BulkResult
	for idx, err := range outcomes {
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, BulkError{OrderID: orderIDs[idx], Error: err.Error()})
			continue
		}
		res.Succeeded++
	}
	return res, nil
}

func (e *Engine) runOne(ctx context.Context, orderID string, op BulkOp) error {
	var err error
	switch op {
	case BulkApprove:
		_, err = e.Approve(ctx, orderID)
	case BulkReject:
		_, err = e.Reject(ctx, orderID)
	case BulkShip:
		_, err = e.UpdateStatus(ctx, orderID, domain.StatusShipped)
	case BulkDeliver:
		_, err = e.UpdateStatus(ctx, orderID, domain.StatusDelivered)
	}
	return err
}

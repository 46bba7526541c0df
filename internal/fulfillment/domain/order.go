package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrOrderNotDeletable  = errors.New("order not deletable")
	ErrUnknownOrderStatus = errors.New("unknown order status")
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusRejected  Status = "REJECTED"
)

var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusShipped},
	StatusShipped:  {StatusDelivered},
	// DELIVERED and REJECTED are terminal.
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusShipped, StatusDelivered, StatusRejected:
		return Status(s), nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownOrderStatus)
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusRejected
}

type Order struct {
	ID          string
	UserID      string
	Status      Status
	TotalAmount int64
	Items       []LineItem

	// BonusAwarded and CommissionPaid record what approval actually
	// credited, so a reversal debits the stored amounts instead of
	// recomputing from whatever the rates happen to be at reject time.
	BonusAwarded     int64
	CommissionPaid   int64
	CommissionUserID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Deletable orders have finished their lifecycle; everything else is still
// subject to reconciliation and must not be removed.
func (o Order) Deletable() bool {
	return o.Status.Terminal()
}

type LineItem struct {
	ProductID  string
	Color      string
	Size       string
	Quantity   int64
	UnitAmount int64
}

// HasVariant reports whether the item targets a (color, size) entry rather
// than the product's flat stock.
func (li LineItem) HasVariant() bool {
	return li.Color != "" || li.Size != ""
}

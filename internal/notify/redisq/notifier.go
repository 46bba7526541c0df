package redisq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dwikikusuma/fulfillment/internal/fulfillment/domain"
	invdomain "github.com/dwikikusuma/fulfillment/internal/inventory/domain"
)

const queueKey = "fulfillment:notifications"

// Notifier pushes JSON messages onto a Redis list consumed by the outbound
// messaging workers. Delivery is fire-and-forget: the engine logs push
// failures and moves on.
type Notifier struct {
	client *redis.Client
}

func New(redisURL string) (*Notifier, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Notifier{client: client}, nil
}

func (n *Notifier) Close() error {
	return n.client.Close()
}

type message struct {
	Kind           string    `json:"kind"`
	OrderID        string    `json:"order_id,omitempty"`
	UserID         string    `json:"user_id,omitempty"`
	Status         string    `json:"status,omitempty"`
	Amount         int64     `json:"amount,omitempty"`
	TotalReferrals int64     `json:"total_referrals,omitempty"`
	ProductID      string    `json:"product_id,omitempty"`
	Product        string    `json:"product,omitempty"`
	Variant        string    `json:"variant,omitempty"`
	Stock          int64     `json:"stock,omitempty"`
	Alert          string    `json:"alert,omitempty"`
	At             time.Time `json:"at"`
}

func (n *Notifier) NotifyOrderStatus(ctx context.Context, order domain.Order, status domain.Status) error {
	return n.push(ctx, message{
		Kind:    "order_status",
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  string(status),
	})
}

func (n *Notifier) NotifyReferralReward(ctx context.Context, userID string, amount, totalReferrals int64) error {
	return n.push(ctx, message{
		Kind:           "referral_reward",
		UserID:         userID,
		Amount:         amount,
		TotalReferrals: totalReferrals,
	})
}

func (n *Notifier) NotifyLowStock(ctx context.Context, change invdomain.StockChange, alert invdomain.Alert) error {
	return n.push(ctx, message{
		Kind:      "low_stock",
		ProductID: change.ProductID,
		Product:   change.Product,
		Variant:   change.Variant,
		Stock:     change.After,
		Alert:     alert.String(),
	})
}

func (n *Notifier) push(ctx context.Context, m message) error {
	m.At = time.Now().UTC()
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := n.client.RPush(ctx, queueKey, data).Err(); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

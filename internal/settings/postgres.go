package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the single authoritative settings row shared by all
// admin instances.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS settings (
			id SMALLINT PRIMARY KEY CHECK (id = 1),
			purchase_bonus_rate DOUBLE PRECISION NOT NULL,
			referral_commission_rate DOUBLE PRECISION NOT NULL,
			low_stock_threshold BIGINT NOT NULL,
			referral_first_order_only BOOLEAN NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("settings schema: %w", err)
	}

	def := Default()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO settings (id, purchase_bonus_rate, referral_commission_rate, low_stock_threshold, referral_first_order_only)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`,
		def.PurchaseBonusRate, def.ReferralCommissionRate, def.LowStockThreshold, def.ReferralFirstOrderOnly)
	if err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (Settings, error) {
	var out Settings
	err := s.pool.QueryRow(ctx, `
		SELECT purchase_bonus_rate, referral_commission_rate, low_stock_threshold, referral_first_order_only
		FROM settings WHERE id = 1`).Scan(
		&out.PurchaseBonusRate, &out.ReferralCommissionRate, &out.LowStockThreshold, &out.ReferralFirstOrderOnly)
	if errors.Is(err, pgx.ErrNoRows) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Save(ctx context.Context, in Settings) error {
	if err := in.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO settings (id, purchase_bonus_rate, referral_commission_rate, low_stock_threshold, referral_first_order_only)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			purchase_bonus_rate = EXCLUDED.purchase_bonus_rate,
			referral_commission_rate = EXCLUDED.referral_commission_rate,
			low_stock_threshold = EXCLUDED.low_stock_threshold,
			referral_first_order_only = EXCLUDED.referral_first_order_only,
			updated_at = NOW()`,
		in.PurchaseBonusRate, in.ReferralCommissionRate, in.LowStockThreshold, in.ReferralFirstOrderOnly)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

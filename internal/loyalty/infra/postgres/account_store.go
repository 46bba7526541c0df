package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dwikikusuma/fulfillment/internal/loyalty/domain"
)

type AccountStore struct {
	pool *pgxpool.Pool
}

func NewAccountStore(pool *pgxpool.Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

func (s *AccountStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL DEFAULT '',
			bonus_points BIGINT NOT NULL DEFAULT 0,
			referral_code TEXT NOT NULL DEFAULT '',
			referred_by TEXT NOT NULL DEFAULT '',
			referral_count BIGINT NOT NULL DEFAULT 0,
			referral_rewarded BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_referral_code
			ON accounts(referral_code) WHERE referral_code <> ''`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("accounts schema: %w", err)
		}
	}
	return nil
}

func (s *AccountStore) Get(ctx context.Context, id string) (domain.Account, error) {
	return s.getBy(ctx, `id = $1`, id)
}

func (s *AccountStore) FindByReferralCode(ctx context.Context, code string) (domain.Account, error) {
	return s.getBy(ctx, `referral_code = $1`, code)
}

func (s *AccountStore) getBy(ctx context.Context, where string, arg any) (domain.Account, error) {
	var a domain.Account
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, bonus_points, referral_code, referred_by,
		       referral_count, referral_rewarded, created_at, updated_at
		FROM accounts WHERE `+where, arg).Scan(
		&a.ID, &a.Name, &a.BonusPoints, &a.ReferralCode, &a.ReferredBy,
		&a.ReferralCount, &a.ReferralRewarded, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, fmt.Errorf("account %v: %w", arg, domain.ErrAccountNotFound)
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("get account %v: %w", arg, err)
	}
	return a, nil
}

// AdjustBonusPoints pushes the delta into the UPDATE itself so concurrent
// writers serialize on the row instead of overwriting a stale read. The
// clamp at zero happens in the same statement.
func (s *AccountStore) AdjustBonusPoints(ctx context.Context, id string, delta int64) (before, after int64, err error) {
	err = s.pool.QueryRow(ctx, `
		WITH prev AS (SELECT bonus_points FROM accounts WHERE id = $1)
		UPDATE accounts
		SET bonus_points = GREATEST(accounts.bonus_points + $2, 0), updated_at = NOW()
		FROM prev
		WHERE accounts.id = $1
		RETURNING prev.bonus_points, accounts.bonus_points`, id, delta).Scan(&before, &after)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, fmt.Errorf("account %s: %w", id, domain.ErrAccountNotFound)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("adjust points for %s: %w", id, err)
	}
	return before, after, nil
}

func (s *AccountStore) RecordReferral(ctx context.Context, id string, amount int64) (balance, referralCount int64, err error) {
	err = s.pool.QueryRow(ctx, `
		UPDATE accounts
		SET bonus_points = bonus_points + $2, referral_count = referral_count + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING bonus_points, referral_count`, id, amount).Scan(&balance, &referralCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, fmt.Errorf("account %s: %w", id, domain.ErrAccountNotFound)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("record referral for %s: %w", id, err)
	}
	return balance, referralCount, nil
}

func (s *AccountStore) SetReferralRewarded(ctx context.Context, id string, rewarded bool) error {
	return s.exec(ctx, id, `
		UPDATE accounts SET referral_rewarded = $2, updated_at = NOW() WHERE id = $1`, rewarded)
}

func (s *AccountStore) exec(ctx context.Context, id, query string, args ...any) error {
	tag, err := s.pool.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("update account %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", id, domain.ErrAccountNotFound)
	}
	return nil
}

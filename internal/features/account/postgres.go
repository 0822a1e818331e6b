// Package account — postgres.go is the production Repository on
// PostgreSQL. One row per user: ledger totals as NUMERIC columns,
// subscription and both histories as JSONB documents.
package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"seashell.io/investment-backend/internal/common"
)

// PostgresRepository implements Repository on a pgx pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `
	id, email, referral_code, referred_by, verification_status, is_verified,
	wallet_address, subscription, withdrawal_history, referral_earnings,
	total_referral_earnings, total_withdrawn, total_balance,
	version, created_at, updated_at
`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.ReferralCode, &u.ReferredBy,
		&u.VerificationStatus, &u.IsVerified, &u.WalletAddress,
		&u.Subscription, &u.WithdrawalHistory, &u.ReferralEarnings,
		&u.TotalReferralEarnings, &u.TotalWithdrawn, &u.TotalBalance,
		&u.Version, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	if u.WithdrawalHistory == nil {
		u.WithdrawalHistory = []WithdrawalRequest{}
	}
	if u.ReferralEarnings == nil {
		u.ReferralEarnings = []CommissionRecord{}
	}
	return &u, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *PostgresRepository) FindByReferralCode(ctx context.Context, code string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE referral_code = $1`
	return scanUser(r.db.QueryRow(ctx, query, code))
}

// FindByWithdrawalID locates the owner of a withdrawal request via JSONB
// containment on the history column (covered by a GIN index).
func (r *PostgresRepository) FindByWithdrawalID(ctx context.Context, withdrawalID string) (*User, error) {
	probe, err := json.Marshal([]map[string]string{{"withdrawalId": withdrawalID}})
	if err != nil {
		return nil, fmt.Errorf("building withdrawal probe: %w", err)
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE withdrawal_history @> $1::jsonb`
	u, err := scanUser(r.db.QueryRow(ctx, query, string(probe)))
	if errors.Is(err, common.ErrUserNotFound) {
		return nil, common.ErrWithdrawalNotFound
	}
	return u, err
}

func (r *PostgresRepository) FindEligibleForAccrual(ctx context.Context, cutoff time.Time) ([]*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE verification_status = 'approved'
		  AND is_verified = TRUE
		  AND subscription IS NOT NULL
		  AND (subscription->>'isActive')::boolean = TRUE
		  AND (
			subscription->>'lastProfitDate' IS NULL
			OR (subscription->>'lastProfitDate')::timestamptz < $1
		  )
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("selecting accrual candidates: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) CountReferred(ctx context.Context, code string) (int, int, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE (subscription->>'isActive')::boolean = TRUE)
		FROM users
		WHERE referred_by = $1
	`
	var total, active int
	if err := r.db.QueryRow(ctx, query, code).Scan(&total, &active); err != nil {
		return 0, 0, fmt.Errorf("counting referred users: %w", err)
	}
	return total, active, nil
}

func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (
			id, email, referral_code, referred_by, verification_status,
			is_verified, wallet_address, subscription, withdrawal_history,
			referral_earnings, total_referral_earnings, total_withdrawn,
			total_balance, version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 1, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		u.ID, u.Email, u.ReferralCode, u.ReferredBy, u.VerificationStatus,
		u.IsVerified, u.WalletAddress, u.Subscription, u.WithdrawalHistory,
		u.ReferralEarnings, u.TotalReferralEarnings, u.TotalWithdrawn,
		u.TotalBalance,
	)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	u.Version = 1
	return nil
}

// Save writes the whole aggregate back, conditional on the version the
// caller read. Zero affected rows means a concurrent writer got there
// first.
func (r *PostgresRepository) Save(ctx context.Context, u *User) error {
	query := `
		UPDATE users SET
			email = $2,
			referral_code = $3,
			referred_by = $4,
			verification_status = $5,
			is_verified = $6,
			wallet_address = $7,
			subscription = $8,
			withdrawal_history = $9,
			referral_earnings = $10,
			total_referral_earnings = $11,
			total_withdrawn = $12,
			total_balance = $13,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $14
	`
	tag, err := r.db.Exec(ctx, query,
		u.ID, u.Email, u.ReferralCode, u.ReferredBy, u.VerificationStatus,
		u.IsVerified, u.WalletAddress, u.Subscription, u.WithdrawalHistory,
		u.ReferralEarnings, u.TotalReferralEarnings, u.TotalWithdrawn,
		u.TotalBalance, u.Version,
	)
	if err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrVersionConflict
	}
	u.Version++
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrUserNotFound
	}
	return nil
}

// Package app initializes all application components.
// app.go is the assembly point: database pool, repositories, services,
// scheduler and the notification sink, in dependency order.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"seashell.io/investment-backend/internal/common"
	"seashell.io/investment-backend/internal/config"
	"seashell.io/investment-backend/internal/db/postgres"
	"seashell.io/investment-backend/internal/features/account"
	"seashell.io/investment-backend/internal/features/accrual"
	"seashell.io/investment-backend/internal/features/approval"
	"seashell.io/investment-backend/internal/features/plan"
	"seashell.io/investment-backend/internal/features/referral"
	"seashell.io/investment-backend/internal/features/withdrawal"
	"seashell.io/investment-backend/internal/jobs"
	"seashell.io/investment-backend/internal/notify"
)

// App holds all application components.
type App struct {
	DB        *pgxpool.Pool
	Scheduler *jobs.Scheduler

	Accounts    *account.Service
	Approvals   *approval.Service
	Referrals   *referral.Service
	Accruals    *accrual.Service
	Withdrawals *withdrawal.Service
}

// New creates and initializes the application.
// Initialization order matters: components depend on each other.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Database ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	// === 2. Shared pieces ===
	clock := common.NewSystemClock(cfg.AppTimezone)
	catalog := plan.Default()
	repo := account.NewPostgresRepository(pool)

	// === 3. Services ===
	accountService := account.NewService(repo, catalog, clock)
	referralService := referral.NewService(repo, catalog, clock)

	policy := accrual.EveryDay
	if cfg.AccrualWeekdaysOnly {
		policy = accrual.WeekdaysOnly
	}
	accrualService := accrual.NewService(repo, referralService, policy)

	minAmount, err := cfg.WithdrawalMinAmountValue()
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("withdrawal minimum: %w", err)
	}
	withdrawalService := withdrawal.NewService(repo, clock, withdrawal.Policy{
		MinAmount:    minAmount,
		Weekday:      cfg.WithdrawalWeekdayValue(),
		CooldownDays: cfg.WithdrawalCooldownDays,
	})
	approvalService := approval.NewService(repo, referralService, clock)

	// === 4. Notification sink ===
	var sink notify.Sink = notify.Nop{}
	if cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramOperatorChat)
		if err != nil {
			log.WithError(err).Warn("Telegram sink unavailable, notifications disabled")
		} else {
			sink = tg
		}
	}

	// === 5. Scheduler ===
	scheduler := jobs.NewScheduler(accrualService, sink, clock, cfg)

	return &App{
		DB:          pool,
		Scheduler:   scheduler,
		Accounts:    accountService,
		Approvals:   approvalService,
		Referrals:   referralService,
		Accruals:    accrualService,
		Withdrawals: withdrawalService,
	}, nil
}

// runMigrations applies all SQL migrations.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.EnsureMigrationTable(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Users},
		{2, migration002UserIndexes},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		log.Infof("Migration %d applied", m.version)
	}
	return nil
}

// SQL migrations are embedded in the binary to simplify deployment.

var migration001Users = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT UNIQUE NOT NULL,
    referral_code TEXT UNIQUE,
    referred_by TEXT NOT NULL DEFAULT '',
    verification_status TEXT NOT NULL DEFAULT 'pending',
    is_verified BOOLEAN NOT NULL DEFAULT FALSE,
    wallet_address TEXT NOT NULL DEFAULT '',
    subscription JSONB,
    withdrawal_history JSONB NOT NULL DEFAULT '[]',
    referral_earnings JSONB NOT NULL DEFAULT '[]',
    total_referral_earnings NUMERIC(15,2) NOT NULL DEFAULT 0,
    total_withdrawn NUMERIC(15,2) NOT NULL DEFAULT 0,
    total_balance NUMERIC(15,2) NOT NULL DEFAULT 0,
    version BIGINT NOT NULL DEFAULT 1,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

var migration002UserIndexes = `
CREATE INDEX IF NOT EXISTS idx_users_referred_by ON users(referred_by);
CREATE INDEX IF NOT EXISTS idx_users_verification_status ON users(verification_status);
CREATE INDEX IF NOT EXISTS idx_users_withdrawal_history ON users USING GIN (withdrawal_history jsonb_path_ops);
CREATE INDEX IF NOT EXISTS idx_users_last_profit_date ON users ((subscription->>'lastProfitDate'));
`

// Package account — service.go covers signup-time account creation and
// ledger snapshot reads. Verification and money movement live in the
// approval, referral, accrual and withdrawal services.
package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"seashell.io/investment-backend/internal/common"
	"seashell.io/investment-backend/internal/features/plan"
)

// Service creates accounts and serves ledger snapshots.
type Service struct {
	repo    Repository
	catalog *plan.Catalog
	clock   common.Clock
}

func NewService(repo Repository, catalog *plan.Catalog, clock common.Clock) *Service {
	return &Service{repo: repo, catalog: catalog, clock: clock}
}

// Register creates a pending account enrolled in the chosen plan.
// The subscription stays inactive until an admin approves the account.
// referredByCode is optional; when present it must resolve to an
// existing user.
func (s *Service) Register(ctx context.Context, email, planName, referredByCode string) (*User, error) {
	tier, err := s.catalog.Tier(planName)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email %s: account already exists", email)
	}

	if referredByCode != "" {
		if _, err := s.repo.FindByReferralCode(ctx, referredByCode); err != nil {
			return nil, fmt.Errorf("referral code %s: %w", referredByCode, err)
		}
	}

	now := s.clock.Now()
	id := uuid.NewString()
	u := &User{
		ID:                 id,
		Email:              email,
		ReferralCode:       GenerateReferralCode(email, id),
		ReferredBy:         referredByCode,
		VerificationStatus: StatusPending,
		Subscription: &Subscription{
			PlanName:         tier.Name,
			InvestmentAmount: tier.InvestmentAmount,
			DailyReturn:      tier.DailyReturn,
			WeeklyIncome:     tier.WeeklyIncome,
			MonthlyIncome:    tier.MonthlyIncome,
			Duration:         tier.Duration,
		},
		WithdrawalHistory: []WithdrawalRequest{},
		ReferralEarnings:  []CommissionRecord{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	u.RecomputeBalance()

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user":  u.ID,
		"email": u.Email,
		"plan":  tier.Name,
	}).Info("Account registered, awaiting verification")
	return u, nil
}

// Snapshot returns the user's current ledger totals.
func (s *Service) Snapshot(ctx context.Context, userID string) (*LedgerSnapshot, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	snap := u.Snapshot()
	return &snap, nil
}

// Package approval handles the admin verification decision. Approving
// activates the subscription and backdates the profit clock so the next
// scheduled run credits the first day; rejecting deletes the account.
package approval

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"seashell.io/investment-backend/internal/common"
	"seashell.io/investment-backend/internal/features/account"
	"seashell.io/investment-backend/internal/features/referral"
)

// Result summarizes an approval.
type Result struct {
	UserID       string
	Email        string
	Subscription *account.Subscription
	Bonus        *referral.BonusResult
}

// Service applies verification decisions.
type Service struct {
	repo    account.Repository
	bonuses *referral.Service
	clock   common.Clock
}

func NewService(repo account.Repository, bonuses *referral.Service, clock common.Clock) *Service {
	return &Service{repo: repo, bonuses: bonuses, clock: clock}
}

// Approve marks a pending account approved and verified, activates its
// subscription and pays the referrer's signup bonus once.
func (s *Service) Approve(ctx context.Context, userID string) (*Result, error) {
	now := s.clock.Now()

	updated, err := account.Mutate(ctx, s.repo, userID, func(u *account.User) error {
		if u.VerificationStatus != account.StatusPending {
			return common.ErrNotPending
		}
		u.VerificationStatus = account.StatusApproved
		u.IsVerified = true
		if u.Subscription != nil {
			start := now
			// one day back, so today's batch already counts this user
			lastProfit := now.Add(-24 * time.Hour)
			u.Subscription.IsActive = true
			u.Subscription.StartDate = &start
			u.Subscription.LastProfitDate = &lastProfit
		}
		u.RecomputeBalance()
		return nil
	})
	if err != nil {
		return nil, err
	}

	bonus, err := s.bonuses.AwardSignupBonus(ctx, updated)
	if err != nil {
		// the account is approved either way; the bonus failure is
		// reported, not rolled back
		log.WithError(err).WithField("user", userID).Error("Signup bonus failed after approval")
		bonus = &referral.BonusResult{Outcome: referral.BonusNoReferrer}
	}

	log.WithFields(log.Fields{
		"user":  userID,
		"email": updated.Email,
		"bonus": string(bonus.Outcome),
	}).Info("Account approved")
	return &Result{
		UserID:       updated.ID,
		Email:        updated.Email,
		Subscription: updated.Subscription,
		Bonus:        bonus,
	}, nil
}

// Reject removes the account and its entire ledger history. Referral
// bonuses already paid out for this account stay with the referrer.
func (s *Service) Reject(ctx context.Context, userID string) error {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.ReferredBy != "" {
		log.WithFields(log.Fields{
			"user": userID,
			"code": u.ReferredBy,
		}).Warn("Rejecting referred account; paid referral bonuses are not reclaimed")
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	log.WithFields(log.Fields{"user": userID, "email": u.Email}).Info("Account rejected and removed")
	return nil
}

// Package referral is the commission engine: the one-time signup bonus
// paid when a referred account is approved, and the recurring cut of
// every daily profit accrual. Both append to the referrer's earnings
// history and rebuild the balance from the ledger totals.
package referral

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"seashell.io/investment-backend/internal/common"
	"seashell.io/investment-backend/internal/features/account"
	"seashell.io/investment-backend/internal/features/plan"
)

const (
	// signupBonusPercent of the referred user's plan investment, paid once.
	signupBonusPercent = 3
	// dailyCommissionPercent of every daily profit the referred user earns.
	dailyCommissionPercent = 20
)

// BonusOutcome tells the caller what the signup-bonus attempt did.
type BonusOutcome string

const (
	BonusAwarded        BonusOutcome = "awarded"
	BonusAlreadyAwarded BonusOutcome = "already_awarded"
	BonusNoReferrer     BonusOutcome = "no_referrer"
)

// BonusResult describes an AwardSignupBonus call.
type BonusResult struct {
	Outcome       BonusOutcome
	ReferrerEmail string
	Amount        decimal.Decimal
}

// Stats is the referrer-facing summary.
type Stats struct {
	ReferralCode    string
	TotalReferred   int
	ActiveReferred  int
	TotalEarnings   decimal.Decimal
	RecentEarnings  []account.CommissionRecord
}

// Service pays referral commissions.
type Service struct {
	repo    account.Repository
	catalog *plan.Catalog
	clock   common.Clock
}

func NewService(repo account.Repository, catalog *plan.Catalog, clock common.Clock) *Service {
	return &Service{repo: repo, catalog: catalog, clock: clock}
}

// errBonusAlreadyAwarded aborts the mutation without saving; it never
// leaves this package.
var errBonusAlreadyAwarded = errors.New("signup bonus already awarded")

// AwardSignupBonus pays the referrer 3% of the approved user's plan
// investment, exactly once per referred account. A missing or
// unresolvable referral code is a no-op, not an error.
func (s *Service) AwardSignupBonus(ctx context.Context, approved *account.User) (*BonusResult, error) {
	if approved.ReferredBy == "" {
		return &BonusResult{Outcome: BonusNoReferrer}, nil
	}
	referrer, err := s.repo.FindByReferralCode(ctx, approved.ReferredBy)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			log.WithFields(log.Fields{
				"user": approved.ID,
				"code": approved.ReferredBy,
			}).Warn("Referral code does not resolve, skipping signup bonus")
			return &BonusResult{Outcome: BonusNoReferrer}, nil
		}
		return nil, err
	}

	if approved.Subscription == nil {
		return &BonusResult{Outcome: BonusNoReferrer}, nil
	}
	investment, err := common.ParseAmount(approved.Subscription.InvestmentAmount)
	if err != nil {
		return nil, fmt.Errorf("plan %s investment amount: %w", approved.Subscription.PlanName, err)
	}
	bonus := common.Percent(investment, signupBonusPercent)

	updated, err := account.Mutate(ctx, s.repo, referrer.ID, func(r *account.User) error {
		if r.HasSignupBonusFrom(approved.ID) {
			return errBonusAlreadyAwarded
		}
		r.ReferralEarnings = append(r.ReferralEarnings, account.CommissionRecord{
			FromUserID:           approved.ID,
			FromUserEmail:        approved.Email,
			FromUserPlan:         approved.Subscription.PlanName,
			CommissionAmount:     bonus,
			CommissionPercentage: 0,
			OriginalAmount:       investment,
			EarnedAt:             s.clock.Now(),
			Status:               "paid",
		})
		r.TotalReferralEarnings = r.TotalReferralEarnings.Add(bonus)
		r.RecomputeBalance()
		return nil
	})
	if err != nil {
		if errors.Is(err, errBonusAlreadyAwarded) {
			return &BonusResult{Outcome: BonusAlreadyAwarded, ReferrerEmail: referrer.Email}, nil
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"referrer": updated.ID,
		"from":     approved.ID,
		"amount":   bonus.String(),
	}).Info("Signup bonus paid")
	return &BonusResult{Outcome: BonusAwarded, ReferrerEmail: updated.Email, Amount: bonus}, nil
}

// AwardDailyCommission pays the referrer a flat 20% of the referred
// user's daily profit. Silent no-op when there is no referrer or the
// referrer's own account is not active. Returns the amount paid.
func (s *Service) AwardDailyCommission(ctx context.Context, referred *account.User, dailyProfit decimal.Decimal) (decimal.Decimal, error) {
	if referred.ReferredBy == "" || !dailyProfit.IsPositive() {
		return decimal.Zero, nil
	}
	referrer, err := s.repo.FindByReferralCode(ctx, referred.ReferredBy)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	if !eligibleReferrer(referrer) {
		log.WithFields(log.Fields{
			"referrer": referrer.ID,
			"from":     referred.ID,
		}).Debug("Referrer not active, daily commission skipped")
		return decimal.Zero, nil
	}

	commission := common.Percent(dailyProfit, dailyCommissionPercent)
	planName := ""
	if referred.Subscription != nil {
		planName = referred.Subscription.PlanName
	}

	_, err = account.Mutate(ctx, s.repo, referrer.ID, func(r *account.User) error {
		r.ReferralEarnings = append(r.ReferralEarnings, account.CommissionRecord{
			FromUserID:           referred.ID,
			FromUserEmail:        referred.Email,
			FromUserPlan:         planName,
			CommissionAmount:     commission,
			CommissionPercentage: dailyCommissionPercent,
			OriginalAmount:       dailyProfit,
			EarnedAt:             s.clock.Now(),
			Status:               "paid",
		})
		r.TotalReferralEarnings = r.TotalReferralEarnings.Add(commission)
		r.RecomputeBalance()
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	log.WithFields(log.Fields{
		"referrer": referrer.ID,
		"from":     referred.ID,
		"amount":   commission.String(),
	}).Debug("Daily commission paid")
	return commission, nil
}

func eligibleReferrer(u *account.User) bool {
	return u.VerificationStatus == account.StatusApproved &&
		u.IsVerified &&
		u.Subscription != nil &&
		u.Subscription.IsActive
}

// EnsureReferralCode returns the user's share code, deriving and saving
// it for accounts created before codes were issued at signup.
func (s *Service) EnsureReferralCode(ctx context.Context, userID string) (string, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.ReferralCode != "" {
		return u.ReferralCode, nil
	}
	updated, err := account.Mutate(ctx, s.repo, userID, func(u *account.User) error {
		if u.ReferralCode == "" {
			u.ReferralCode = account.GenerateReferralCode(u.Email, u.ID)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return updated.ReferralCode, nil
}

// Stats summarizes the user's referral performance.
func (s *Service) Stats(ctx context.Context, userID string) (*Stats, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	code := u.ReferralCode
	total, active := 0, 0
	if code != "" {
		total, active, err = s.repo.CountReferred(ctx, code)
		if err != nil {
			return nil, err
		}
	}

	recent := u.ReferralEarnings
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	return &Stats{
		ReferralCode:   code,
		TotalReferred:  total,
		ActiveReferred: active,
		TotalEarnings:  u.TotalReferralEarnings,
		RecentEarnings: recent,
	}, nil
}

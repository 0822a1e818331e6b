// Package accrual runs the daily profit distribution batch. Each
// eligible subscriber earns one daily return per calendar day; the
// referrer's cut is paid in the same pass. Failures are isolated per
// user, never aborting the run.
package accrual

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"seashell.io/investment-backend/internal/common"
	"seashell.io/investment-backend/internal/features/account"
	"seashell.io/investment-backend/internal/features/referral"
)

// DayPolicy decides whether a given date gets an accrual run.
type DayPolicy func(time.Time) bool

// EveryDay accrues on all seven days.
func EveryDay(time.Time) bool { return true }

// WeekdaysOnly skips Saturday and Sunday.
func WeekdaysOnly(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Summary is the outcome of one batch run.
type Summary struct {
	RanAt                  time.Time
	TotalEligible          int
	Processed              int
	Errors                 int
	TotalProfitDistributed decimal.Decimal
	TotalCommissionsPaid   decimal.Decimal
}

// Service distributes daily profits.
type Service struct {
	repo        account.Repository
	commissions *referral.Service
	policy      DayPolicy
}

func NewService(repo account.Repository, commissions *referral.Service, policy DayPolicy) *Service {
	if policy == nil {
		policy = EveryDay
	}
	return &Service{repo: repo, commissions: commissions, policy: policy}
}

// Run distributes one daily return to every eligible subscriber.
// Idempotent per calendar day: the selection cutoff at local midnight
// excludes anyone already credited today, so a second run is a no-op.
func (s *Service) Run(ctx context.Context, asOf time.Time) (*Summary, error) {
	summary := &Summary{
		RanAt:                  asOf,
		TotalProfitDistributed: decimal.Zero,
		TotalCommissionsPaid:   decimal.Zero,
	}

	if !s.policy(asOf) {
		log.WithField("day", asOf.Weekday().String()).Info("No accrual scheduled today")
		return summary, nil
	}

	cutoff := common.DayStart(asOf)
	users, err := s.repo.FindEligibleForAccrual(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	summary.TotalEligible = len(users)
	log.WithField("eligible", len(users)).Info("Daily accrual started")

	for _, u := range users {
		profit, err := s.accrueOne(ctx, u, asOf, cutoff)
		if err != nil {
			summary.Errors++
			log.WithError(err).WithField("user", u.ID).Error("Accrual failed for user")
			continue
		}
		if profit.IsZero() {
			// credited by a concurrent run between selection and save
			continue
		}
		summary.Processed++
		summary.TotalProfitDistributed = summary.TotalProfitDistributed.Add(profit)

		commission, err := s.commissions.AwardDailyCommission(ctx, u, profit)
		if err != nil {
			summary.Errors++
			log.WithError(err).WithField("user", u.ID).Error("Daily commission failed")
			continue
		}
		summary.TotalCommissionsPaid = summary.TotalCommissionsPaid.Add(commission)
	}

	log.WithFields(log.Fields{
		"eligible":    summary.TotalEligible,
		"processed":   summary.Processed,
		"errors":      summary.Errors,
		"profit":      summary.TotalProfitDistributed.String(),
		"commissions": summary.TotalCommissionsPaid.String(),
	}).Info("Daily accrual finished")
	return summary, nil
}

// accrueOne credits one user's daily return. Returns zero when the user
// was already credited today by another writer.
func (s *Service) accrueOne(ctx context.Context, u *account.User, asOf, cutoff time.Time) (decimal.Decimal, error) {
	if u.Subscription == nil {
		return decimal.Zero, common.ErrInvalidReturnAmount
	}
	profit, err := common.ParseAmount(u.Subscription.DailyReturn)
	if err != nil {
		return decimal.Zero, err
	}

	credited := false
	_, err = account.Mutate(ctx, s.repo, u.ID, func(fresh *account.User) error {
		credited = false
		sub := fresh.Subscription
		if sub == nil || !sub.IsActive {
			return nil
		}
		if sub.LastProfitDate != nil && !sub.LastProfitDate.Before(cutoff) {
			return nil
		}
		when := asOf
		sub.TotalEarned = sub.TotalEarned.Add(profit)
		sub.LastProfitDate = &when
		fresh.RecomputeBalance()
		credited = true
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	if !credited {
		return decimal.Zero, nil
	}
	return profit, nil
}

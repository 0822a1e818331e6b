// Package withdrawal handles payout requests and their admin
// dispositions. Requesting reserves the amount by bumping
// totalWithdrawn immediately; only a rejection of a still-pending
// request gives it back.
package withdrawal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"seashell.io/investment-backend/internal/common"
	"seashell.io/investment-backend/internal/features/account"
	"seashell.io/investment-backend/internal/monitoring"
)

// NotWithdrawalDayError — the request did not land on the payout weekday.
type NotWithdrawalDayError struct {
	NextEligible time.Time
}

func (e *NotWithdrawalDayError) Error() string {
	return fmt.Sprintf("withdrawals open on %s, next window %s",
		e.NextEligible.Weekday(), e.NextEligible.Format("2006-01-02"))
}

// TooSoonError — the spacing between requests has not elapsed yet.
type TooSoonError struct {
	NextEligible  time.Time
	DaysRemaining int
}

func (e *TooSoonError) Error() string {
	return fmt.Sprintf("withdrawal allowed again in %d day(s), next window %s",
		e.DaysRemaining, e.NextEligible.Format("2006-01-02"))
}

// Policy holds the request gates.
type Policy struct {
	MinAmount    decimal.Decimal
	Weekday      time.Weekday
	CooldownDays int
}

// Availability tells a user when they can next request a payout.
type Availability struct {
	CanWithdraw  bool
	Reason       string
	NextEligible *time.Time
}

// Service runs the withdrawal workflow.
type Service struct {
	repo   account.Repository
	clock  common.Clock
	policy Policy
}

func NewService(repo account.Repository, clock common.Clock, policy Policy) *Service {
	return &Service{repo: repo, clock: clock, policy: policy}
}

// Request validates the gates in order (amount, account state, weekday,
// spacing, balance) and appends a pending request, reserving the amount
// against the balance right away.
func (s *Service) Request(ctx context.Context, userID string, amount decimal.Decimal, wallet string) (*account.WithdrawalRequest, error) {
	if amount.LessThan(s.policy.MinAmount) {
		monitoring.WithdrawalRequests.WithLabelValues("below_minimum").Inc()
		return nil, common.ErrBelowMinimum
	}

	now := s.clock.Now()
	var created account.WithdrawalRequest

	_, err := account.Mutate(ctx, s.repo, userID, func(u *account.User) error {
		if u.VerificationStatus != account.StatusApproved || !u.IsVerified {
			return common.ErrNotApproved
		}
		if err := s.checkTiming(u, now); err != nil {
			return err
		}
		if u.AvailableBalance().LessThan(amount) {
			return common.ErrInsufficientBalance
		}

		created = account.WithdrawalRequest{
			ID:            newWithdrawalID(now),
			Amount:        amount,
			WalletAddress: wallet,
			RequestedAt:   now,
			Status:        account.WithdrawalPending,
		}
		u.WithdrawalHistory = append(u.WithdrawalHistory, created)
		u.TotalWithdrawn = u.TotalWithdrawn.Add(amount)
		u.WalletAddress = wallet
		u.RecomputeBalance()
		return nil
	})
	if err != nil {
		monitoring.WithdrawalRequests.WithLabelValues("rejected").Inc()
		return nil, err
	}

	monitoring.WithdrawalRequests.WithLabelValues("accepted").Inc()
	log.WithFields(log.Fields{
		"user":       userID,
		"withdrawal": created.ID,
		"amount":     amount.String(),
	}).Info("Withdrawal requested")
	return &created, nil
}

// checkTiming enforces the weekday window and the request spacing.
func (s *Service) checkTiming(u *account.User, now time.Time) error {
	if now.Weekday() != s.policy.Weekday {
		return &NotWithdrawalDayError{NextEligible: common.NextWeekday(now, s.policy.Weekday)}
	}
	last := u.LastWithdrawalRequest()
	if last == nil {
		return nil
	}
	elapsed := common.DaysSince(last.RequestedAt, now)
	if elapsed >= s.policy.CooldownDays {
		return nil
	}
	earliest := common.DayStart(last.RequestedAt).AddDate(0, 0, s.policy.CooldownDays)
	return &TooSoonError{
		NextEligible:  common.AdvanceToWeekday(earliest, s.policy.Weekday),
		DaysRemaining: s.policy.CooldownDays - elapsed,
	}
}

// Dispose applies an admin decision to a request. Rejecting a pending
// request releases its reservation; approving or completing keeps the
// funds withdrawn.
func (s *Service) Dispose(ctx context.Context, withdrawalID string, status account.WithdrawalStatus, notes string) (*account.WithdrawalRequest, error) {
	switch status {
	case account.WithdrawalApproved, account.WithdrawalRejected, account.WithdrawalCompleted:
	default:
		return nil, common.ErrInvalidStatus
	}

	owner, err := s.repo.FindByWithdrawalID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var updated account.WithdrawalRequest

	_, err = account.Mutate(ctx, s.repo, owner.ID, func(u *account.User) error {
		w := u.FindWithdrawal(withdrawalID)
		if w == nil {
			return common.ErrWithdrawalNotFound
		}
		if w.Status.Terminal() {
			return common.ErrTerminalState
		}
		if w.Status == account.WithdrawalApproved && status != account.WithdrawalCompleted {
			return common.ErrInvalidTransition
		}

		if w.Status == account.WithdrawalPending && status == account.WithdrawalRejected {
			u.TotalWithdrawn = u.TotalWithdrawn.Sub(w.Amount)
			if u.TotalWithdrawn.IsNegative() {
				u.TotalWithdrawn = decimal.Zero
			}
		}

		w.Status = status
		w.ProcessedAt = &now
		w.AdminNotes = notes
		u.RecomputeBalance()
		updated = *w
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user":       owner.ID,
		"withdrawal": withdrawalID,
		"status":     string(status),
	}).Info("Withdrawal disposed")
	return &updated, nil
}

// History returns the user's withdrawal requests, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]account.WithdrawalRequest, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]account.WithdrawalRequest, len(u.WithdrawalHistory))
	copy(out, u.WithdrawalHistory)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// CheckAvailability reports whether the user could request a payout now
// and, if not, when the next window opens.
func (s *Service) CheckAvailability(ctx context.Context, userID string) (*Availability, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.VerificationStatus != account.StatusApproved || !u.IsVerified {
		return &Availability{Reason: "account not approved"}, nil
	}

	now := s.clock.Now()
	switch err := s.checkTiming(u, now).(type) {
	case nil:
		return &Availability{CanWithdraw: true}, nil
	case *NotWithdrawalDayError:
		return &Availability{Reason: err.Error(), NextEligible: &err.NextEligible}, nil
	case *TooSoonError:
		return &Availability{Reason: err.Error(), NextEligible: &err.NextEligible}, nil
	default:
		return nil, err
	}
}

// newWithdrawalID builds ids like WD_1767052860000_a1b2c3d4.
func newWithdrawalID(now time.Time) string {
	return fmt.Sprintf("WD_%d_%s", now.UnixMilli(), uuid.NewString()[:8])
}

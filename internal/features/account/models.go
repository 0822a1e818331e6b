// Package account — models.go defines the user ledger aggregate.
// One User value is the whole mutable state for one investor: plan
// subscription, withdrawal history, referral earnings and the three
// ledger totals. All money fields are exact decimals.
package account

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// VerificationStatus is the account review state.
type VerificationStatus string

const (
	StatusPending  VerificationStatus = "pending"
	StatusApproved VerificationStatus = "approved"
	StatusRejected VerificationStatus = "rejected"
)

// WithdrawalStatus is the state of one withdrawal request.
type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalApproved  WithdrawalStatus = "approved"
	WithdrawalRejected  WithdrawalStatus = "rejected"
	WithdrawalCompleted WithdrawalStatus = "completed"
)

// Terminal reports whether no further transition is allowed.
func (s WithdrawalStatus) Terminal() bool {
	return s == WithdrawalRejected || s == WithdrawalCompleted
}

// Subscription is the investor's plan enrollment. Display amount fields
// are copied from the catalog at signup so later catalog changes never
// rewrite history.
type Subscription struct {
	PlanName         string           `json:"planName"`
	InvestmentAmount string           `json:"investmentAmount"`
	DailyReturn      string           `json:"dailyReturn"`
	WeeklyIncome     string           `json:"weeklyIncome"`
	MonthlyIncome    string           `json:"monthlyIncome"`
	Duration         string           `json:"duration"`
	IsActive         bool             `json:"isActive"`
	StartDate        *time.Time       `json:"startDate,omitempty"`
	LastProfitDate   *time.Time       `json:"lastProfitDate,omitempty"`
	TotalEarned      decimal.Decimal  `json:"totalEarned"`
}

// CommissionRecord is one referral earning, append-only.
// CommissionPercentage 0 marks the one-time signup bonus.
type CommissionRecord struct {
	FromUserID           string          `json:"fromUserId"`
	FromUserEmail        string          `json:"fromUserEmail"`
	FromUserPlan         string          `json:"fromUserPlan"`
	CommissionAmount     decimal.Decimal `json:"commissionAmount"`
	CommissionPercentage int             `json:"commissionPercentage"`
	OriginalAmount       decimal.Decimal `json:"originalAmount"`
	EarnedAt             time.Time       `json:"earnedAt"`
	Status               string          `json:"status"`
}

// WithdrawalRequest is one payout request. Only Status, ProcessedAt and
// AdminNotes change after creation.
type WithdrawalRequest struct {
	ID            string           `json:"withdrawalId"`
	Amount        decimal.Decimal  `json:"amount"`
	WalletAddress string           `json:"walletAddress"`
	RequestedAt   time.Time        `json:"requestedAt"`
	Status        WithdrawalStatus `json:"status"`
	ProcessedAt   *time.Time       `json:"processedAt,omitempty"`
	AdminNotes    string           `json:"adminNotes,omitempty"`
}

// User is the ledger aggregate. Version backs optimistic concurrency:
// Save only succeeds when the stored version still matches.
type User struct {
	ID                 string
	Email              string
	ReferralCode       string
	ReferredBy         string
	VerificationStatus VerificationStatus
	IsVerified         bool
	WalletAddress      string

	Subscription      *Subscription
	WithdrawalHistory []WithdrawalRequest
	ReferralEarnings  []CommissionRecord

	TotalReferralEarnings decimal.Decimal
	TotalWithdrawn        decimal.Decimal
	TotalBalance          decimal.Decimal

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LedgerSnapshot is the read model exposed to upward layers.
type LedgerSnapshot struct {
	TotalEarned           decimal.Decimal `json:"totalEarned"`
	TotalReferralEarnings decimal.Decimal `json:"totalReferralEarnings"`
	TotalWithdrawn        decimal.Decimal `json:"totalWithdrawn"`
	TotalBalance          decimal.Decimal `json:"totalBalance"`
}

// InvestmentEarnings returns lifetime subscription profit, zero when the
// user never enrolled.
func (u *User) InvestmentEarnings() decimal.Decimal {
	if u.Subscription == nil {
		return decimal.Zero
	}
	return u.Subscription.TotalEarned
}

// AvailableBalance is what a withdrawal request may draw from.
func (u *User) AvailableBalance() decimal.Decimal {
	return u.InvestmentEarnings().Add(u.TotalReferralEarnings).Sub(u.TotalWithdrawn)
}

// RecomputeBalance derives TotalBalance from the three source totals.
// Every mutation ends with this call; TotalBalance is never incremented
// on its own.
func (u *User) RecomputeBalance() {
	u.TotalBalance = u.AvailableBalance()
}

// Snapshot returns the current ledger totals.
func (u *User) Snapshot() LedgerSnapshot {
	return LedgerSnapshot{
		TotalEarned:           u.InvestmentEarnings(),
		TotalReferralEarnings: u.TotalReferralEarnings,
		TotalWithdrawn:        u.TotalWithdrawn,
		TotalBalance:          u.TotalBalance,
	}
}

// LastWithdrawalRequest returns the most recent request by RequestedAt,
// regardless of its status. Nil when there is none.
func (u *User) LastWithdrawalRequest() *WithdrawalRequest {
	var last *WithdrawalRequest
	for i := range u.WithdrawalHistory {
		w := &u.WithdrawalHistory[i]
		if last == nil || w.RequestedAt.After(last.RequestedAt) {
			last = w
		}
	}
	return last
}

// FindWithdrawal returns the request with the given id, nil if absent.
func (u *User) FindWithdrawal(id string) *WithdrawalRequest {
	for i := range u.WithdrawalHistory {
		if u.WithdrawalHistory[i].ID == id {
			return &u.WithdrawalHistory[i]
		}
	}
	return nil
}

// HasSignupBonusFrom reports whether a signup bonus (percentage 0) from
// the given user was already recorded. The idempotency guard for
// re-approval.
func (u *User) HasSignupBonusFrom(fromUserID string) bool {
	for _, r := range u.ReferralEarnings {
		if r.FromUserID == fromUserID && r.CommissionPercentage == 0 {
			return true
		}
	}
	return false
}

// GenerateReferralCode derives the user's share code from email and id:
// the email local part plus the last six characters of the id, uppercased.
func GenerateReferralCode(email, id string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	tail := id
	if len(id) > 6 {
		tail = id[len(id)-6:]
	}
	return strings.ToUpper(fmt.Sprintf("%s_%s", local, tail))
}

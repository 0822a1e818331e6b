// Package monitoring exposes Prometheus counters for the ledger
// workflows. Registered via promauto; scraped from the /metrics
// listener in cmd/server.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AccrualRuns counts batch runs by result.
	AccrualRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "accrual_runs_total",
		Help: "Daily accrual batch runs",
	}, []string{"result"})

	// AccrualUsersProcessed counts users credited across all runs.
	AccrualUsersProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accrual_users_processed_total",
		Help: "Users credited with daily profit",
	})

	// AccrualErrors counts per-user failures inside batch runs.
	AccrualErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accrual_user_errors_total",
		Help: "Per-user failures during accrual runs",
	})

	// ProfitDistributed accumulates distributed profit in dollars.
	ProfitDistributed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accrual_profit_distributed_dollars_total",
		Help: "Total daily profit distributed",
	})

	// CommissionsPaid accumulates referral commissions in dollars.
	CommissionsPaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "referral_commissions_paid_dollars_total",
		Help: "Total referral commissions paid",
	})

	// WithdrawalRequests counts requests by outcome.
	WithdrawalRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "withdrawal_requests_total",
		Help: "Withdrawal requests by outcome",
	}, []string{"outcome"})
)

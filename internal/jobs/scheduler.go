// Package jobs manages background tasks (cron).
// scheduler.go wires the daily accrual run: selection cutoff and run
// time both live in the business timezone.
package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"seashell.io/investment-backend/internal/common"
	"seashell.io/investment-backend/internal/config"
	"seashell.io/investment-backend/internal/features/accrual"
	"seashell.io/investment-backend/internal/monitoring"
	"seashell.io/investment-backend/internal/notify"
)

// Scheduler runs the periodic jobs.
type Scheduler struct {
	cron     *cron.Cron
	accruals *accrual.Service
	sink     notify.Sink
	clock    common.Clock
	cronSpec string
	timezone string
}

// NewScheduler creates the scheduler pinned to the business timezone.
func NewScheduler(accruals *accrual.Service, sink notify.Sink, clock common.Clock, cfg *config.Config) *Scheduler {
	loc := clock.Now().Location()
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		accruals: accruals,
		sink:     sink,
		clock:    clock,
		cronSpec: cfg.AccrualCronSpec,
		timezone: cfg.AppTimezone,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cronSpec, func() {
		log.Info("[CRON] Daily accrual")
		s.RunAccrual(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Infof("Scheduler started (%s, spec %q)", s.timezone, s.cronSpec)
	return nil
}

// RunAccrual executes one accrual batch and reports the outcome to the
// metrics registry and the notification sink.
func (s *Scheduler) RunAccrual(ctx context.Context) {
	summary, err := s.accruals.Run(ctx, s.clock.Now())
	if err != nil {
		monitoring.AccrualRuns.WithLabelValues("failed").Inc()
		log.WithError(err).Error("[CRON] Accrual run failed")
		return
	}

	monitoring.AccrualRuns.WithLabelValues("ok").Inc()
	monitoring.AccrualUsersProcessed.Add(float64(summary.Processed))
	monitoring.AccrualErrors.Add(float64(summary.Errors))
	profit, _ := summary.TotalProfitDistributed.Float64()
	monitoring.ProfitDistributed.Add(profit)
	commissions, _ := summary.TotalCommissionsPaid.Float64()
	monitoring.CommissionsPaid.Add(commissions)

	s.sink.AccrualCompleted(ctx, summary)
}

// Stop shuts the scheduler down, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Scheduler stopped")
}

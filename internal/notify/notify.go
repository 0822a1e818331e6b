// Package notify delivers operational notifications. The scheduler
// reports every accrual batch through a Sink; production uses the
// Telegram sink, everything else the no-op.
package notify

import (
	"context"

	"seashell.io/investment-backend/internal/features/accrual"
)

// Sink receives batch outcomes.
type Sink interface {
	AccrualCompleted(ctx context.Context, summary *accrual.Summary)
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) AccrualCompleted(context.Context, *accrual.Summary) {}

// Package notify — telegram.go posts batch summaries to the operator
// chat.
package notify

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"seashell.io/investment-backend/internal/features/accrual"
)

// Telegram sends accrual summaries to a single operator chat.
type Telegram struct {
	bot    *telego.Bot
	chatID int64
}

// NewTelegram builds the sink. The token is validated against the Bot
// API on first use, not here.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := telego.NewBot(token, telego.WithDiscardLogger())
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// AccrualCompleted posts the batch summary. Delivery failures are
// logged and dropped; notifications never affect the ledger.
func (t *Telegram) AccrualCompleted(ctx context.Context, s *accrual.Summary) {
	text := fmt.Sprintf(
		"Daily accrual %s\nEligible: %d\nProcessed: %d\nErrors: %d\nProfit distributed: $%s\nCommissions paid: $%s",
		s.RanAt.Format("2006-01-02"),
		s.TotalEligible, s.Processed, s.Errors,
		s.TotalProfitDistributed.StringFixed(2),
		s.TotalCommissionsPaid.StringFixed(2),
	)
	_, err := t.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: t.chatID},
		Text:   text,
	})
	if err != nil {
		log.WithError(err).Error("Could not deliver accrual summary")
	}
}

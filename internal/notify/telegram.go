package notify

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/pterostats/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramAPI is the subset of *tgbotapi.BotAPI used for alerts.
type TelegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink sends plain-text alerts to one chat.
type TelegramSink struct {
	api    TelegramAPI
	chatID int64
}

func NewTelegramSink(api TelegramAPI, chatID int64) *TelegramSink {
	return &TelegramSink{api: api, chatID: chatID}
}

func (s *TelegramSink) Name() string { return "telegram" }

// Send ignores ctx deadlines; the bot client carries its own HTTP timeout.
func (s *TelegramSink) Send(ctx context.Context, t domain.StateTransition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.api.Send(tgbotapi.NewMessage(s.chatID, telegramText(t))); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func telegramText(t domain.StateTransition) string {
	if t.Kind == domain.WentDown {
		return fmt.Sprintf("❌ %s is down", t.ServerName)
	}
	return fmt.Sprintf("✅ %s is back online", t.ServerName)
}

package app

import (
	"github.com/bwmarrin/discordgo"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MrSnakeDoc/pterostats/internal/config"
	"github.com/MrSnakeDoc/pterostats/internal/engine"
	"github.com/MrSnakeDoc/pterostats/internal/logger"
	"github.com/MrSnakeDoc/pterostats/internal/notify"
)

// transitionSinks returns the consumers of the transition stream. The log
// sink is always present; alert sinks only when notifier.enable is set.
// A misconfigured alert sink is logged and skipped.
func transitionSinks(env *config.Env, cfg *config.Config, log logger.Logger) []engine.TransitionSink {
	sinks := []engine.TransitionSink{notify.NewLogSink(log)}
	if !cfg.Notifier.Enable {
		return sinks
	}

	var alerts []notify.Sink

	if cfg.Notifier.Webhook != "" {
		// Webhook execution is authenticated by the URL token alone.
		s, err := discordgo.New("")
		if err != nil {
			log.Warn("webhook notifier disabled", logger.Error(err))
		} else {
			e := cfg.Notifier.Embed
			sink, err := notify.NewWebhookSink(s, cfg.Notifier.Webhook, notify.EmbedOptions{
				Timestamp:  e.Timestamp,
				Thumbnail:  e.Thumbnail,
				Image:      e.Image,
				AuthorName: e.Author.Name,
				AuthorIcon: e.Author.Icon,
				FooterText: e.Footer.Text,
				FooterIcon: e.Footer.Icon,
			})
			if err != nil {
				log.Warn("webhook notifier disabled", logger.Error(err))
			} else {
				alerts = append(alerts, sink)
			}
		}
	}

	if cfg.Notifier.Telegram.Enable {
		switch {
		case env.TelegramToken == "":
			log.Warn("telegram notifier disabled: PSS_TELEGRAM_TOKEN is not set")
		case cfg.Notifier.Telegram.ChatID == 0:
			log.Warn("telegram notifier disabled: notifier.telegram.chat_id is not set")
		default:
			bot, err := tgbotapi.NewBotAPI(env.TelegramToken)
			if err != nil {
				log.Warn("telegram notifier disabled", logger.Error(err))
			} else {
				alerts = append(alerts, notify.NewTelegramSink(bot, cfg.Notifier.Telegram.ChatID))
			}
		}
	}

	n := notify.New(log, alerts...)
	if n.Enabled() {
		sinks = append(sinks, n)
	} else {
		log.Warn("notifier enabled but no sink is configured")
	}
	return sinks
}

package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/pterostats/internal/domain"
	"github.com/bwmarrin/discordgo"
)

const (
	colorDown = 0xED4245
	colorUp   = 0x57F287
)

// WebhookAPI is the subset of *discordgo.Session used to execute webhooks.
type WebhookAPI interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// EmbedOptions decorates alert embeds.
type EmbedOptions struct {
	Timestamp  bool
	Thumbnail  string
	Image      string
	AuthorName string
	AuthorIcon string
	FooterText string
	FooterIcon string
}

// WebhookSink posts alerts to a Discord webhook.
type WebhookSink struct {
	api   WebhookAPI
	id    string
	token string
	opts  EmbedOptions
}

// ParseWebhookURL extracts id and token from
// https://discord.com/api/webhooks/{id}/{token}.
func ParseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("invalid webhook url: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return "", "", fmt.Errorf("invalid webhook url: scheme must be http(s), got %q", u.Scheme)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("invalid webhook url: expected /api/webhooks/{id}/{token}")
}

func NewWebhookSink(api WebhookAPI, webhookURL string, opts EmbedOptions) (*WebhookSink, error) {
	id, token, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	return &WebhookSink{api: api, id: id, token: token, opts: opts}, nil
}

func (s *WebhookSink) Name() string { return "discord_webhook" }

func (s *WebhookSink) Send(ctx context.Context, t domain.StateTransition) error {
	params := &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{s.embed(t)},
	}
	if _, err := s.api.WebhookExecute(s.id, s.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("webhook execute: %w", err)
	}
	return nil
}

func (s *WebhookSink) embed(t domain.StateTransition) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{}
	switch t.Kind {
	case domain.WentDown:
		embed.Title = "Server down"
		embed.Description = fmt.Sprintf("Server `%s` is down.", t.ServerName)
		embed.Color = colorDown
	default:
		embed.Title = "Server online"
		embed.Description = fmt.Sprintf("Server `%s` is back online.", t.ServerName)
		embed.Color = colorUp
	}

	o := s.opts
	if o.AuthorName != "" {
		embed.Author = &discordgo.MessageEmbedAuthor{Name: o.AuthorName, IconURL: o.AuthorIcon}
	}
	if o.FooterText != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: o.FooterText, IconURL: o.FooterIcon}
	}
	if o.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: o.Thumbnail}
	}
	if o.Image != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: o.Image}
	}
	if o.Timestamp {
		embed.Timestamp = t.At.UTC().Format(time.RFC3339)
	}
	return embed
}

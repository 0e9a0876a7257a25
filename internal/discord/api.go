// Package discord mirrors rendered messages into a Discord channel and
// manages the bot session around it.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// ChannelAPI is the subset of *discordgo.Session the synchronizer needs.
type ChannelAPI interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// UserAPI resolves the bot's own user.
type UserAPI interface {
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
}

var (
	_ ChannelAPI = (*discordgo.Session)(nil)
	_ UserAPI    = (*discordgo.Session)(nil)
)

// NewSession creates a bot session. Rate limits are surfaced instead of
// waited out, the next cycle retries.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.ShouldRetryOnRateLimit = false
	s.Identify.Intents = discordgo.IntentsGuilds
	return s, nil
}

// BotUserID returns the id of the authenticated bot.
func BotUserID(ctx context.Context, api UserAPI) (string, error) {
	u, err := api.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to resolve bot user: %w", classify(err))
	}
	return u.ID, nil
}

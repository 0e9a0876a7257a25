package discord

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrChannelAccessDenied means the channel is unknown or the bot cannot
	// read, send or manage messages in it.
	ErrChannelAccessDenied = errors.New("discord channel access denied")
	// ErrRateLimited means Discord throttled the request. It is not retried
	// within a cycle.
	ErrRateLimited = errors.New("discord rate limited")
	// ErrMessageGone means a bot message was deleted between the history
	// scan and the edit or delete.
	ErrMessageGone = errors.New("discord message no longer exists")
	// ErrEmbedRejected means Discord refused the embed payload, usually a size limit.
	ErrEmbedRejected = errors.New("discord rejected embed")
	// ErrPlatform covers every other Discord failure.
	ErrPlatform = errors.New("discord platform error")
)

// classify wraps err with the sentinel matching its Discord cause.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var rl *discordgo.RateLimitError
	if errors.As(err, &rl) {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}

	var rest *discordgo.RESTError
	if errors.As(err, &rest) {
		if rest.Response != nil && rest.Response.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		if rest.Message != nil {
			switch rest.Message.Code {
			case discordgo.ErrCodeMissingAccess,
				discordgo.ErrCodeMissingPermissions,
				discordgo.ErrCodeUnknownChannel:
				return fmt.Errorf("%w: %v", ErrChannelAccessDenied, err)
			case discordgo.ErrCodeUnknownMessage:
				return fmt.Errorf("%w: %v", ErrMessageGone, err)
			case discordgo.ErrCodeInvalidFormBody:
				return fmt.Errorf("%w: %v", ErrEmbedRejected, err)
			}
		}
		if rest.Response != nil {
			switch rest.Response.StatusCode {
			case http.StatusForbidden, http.StatusNotFound:
				return fmt.Errorf("%w: %v", ErrChannelAccessDenied, err)
			}
		}
	}

	return fmt.Errorf("%w: %v", ErrPlatform, err)
}

// Describe returns the operator hint for an error produced by this package.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRateLimited):
		return "Discord rate limited this bot, updates resume on the next cycle"
	case errors.Is(err, ErrChannelAccessDenied):
		return "the channel ID is wrong or the bot lacks permission to view, send or manage messages there"
	case errors.Is(err, ErrMessageGone):
		return "a bot message was deleted while syncing, the next cycle re-sends it"
	case errors.Is(err, ErrEmbedRejected):
		return "Discord rejected the embed, check title, field and footer lengths"
	default:
		return "unexpected Discord error or Discord unreachable, retried on the next cycle"
	}
}

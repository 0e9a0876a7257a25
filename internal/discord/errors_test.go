package discord

import (
	"errors"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func restErr(status, code int) error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status, Status: http.StatusText(status)},
		Message:  &discordgo.APIErrorMessage{Code: code},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"missing access", restErr(403, discordgo.ErrCodeMissingAccess), ErrChannelAccessDenied},
		{"missing permissions", restErr(403, discordgo.ErrCodeMissingPermissions), ErrChannelAccessDenied},
		{"unknown channel", restErr(404, discordgo.ErrCodeUnknownChannel), ErrChannelAccessDenied},
		{"plain forbidden", restErr(403, 0), ErrChannelAccessDenied},
		{"too many requests", restErr(429, 0), ErrRateLimited},
		{"rate limit error", &discordgo.RateLimitError{RateLimit: &discordgo.RateLimit{TooManyRequests: &discordgo.TooManyRequests{}}}, ErrRateLimited},
		{"invalid form body", restErr(400, discordgo.ErrCodeInvalidFormBody), ErrEmbedRejected},
		{"server error", restErr(502, 0), ErrPlatform},
		{"unknown message", restErr(404, discordgo.ErrCodeUnknownMessage), ErrMessageGone},
		{"other", errors.New("socket closed"), ErrPlatform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tt.err), tt.want)
		})
	}
	assert.NoError(t, classify(nil))
}

func TestDescribe(t *testing.T) {
	assert.Empty(t, Describe(nil))
	assert.Contains(t, Describe(ErrRateLimited), "rate limited")
	assert.Contains(t, Describe(ErrChannelAccessDenied), "permission")
	assert.Contains(t, Describe(ErrEmbedRejected), "embed")
	assert.Contains(t, Describe(ErrMessageGone), "deleted")
	assert.Contains(t, Describe(ErrPlatform), "unexpected Discord error")
}

func TestClassifyUnknownMessageIsNotAccessDenied(t *testing.T) {
	err := classify(restErr(404, discordgo.ErrCodeUnknownMessage))
	assert.NotErrorIs(t, err, ErrChannelAccessDenied)
}

package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStatus struct {
	got discordgo.UpdateStatusData
	err error
}

func (r *recordingStatus) UpdateStatusComplex(usd discordgo.UpdateStatusData) error {
	r.got = usd
	return r.err
}

func TestApplyPresence(t *testing.T) {
	rec := &recordingStatus{}
	require.NoError(t, ApplyPresence(rec, Presence{Text: "3 servers", Type: "Listening", Status: "idle"}))

	assert.Equal(t, "idle", rec.got.Status)
	require.Len(t, rec.got.Activities, 1)
	assert.Equal(t, discordgo.ActivityTypeListening, rec.got.Activities[0].Type)
	assert.Equal(t, "3 servers", rec.got.Activities[0].Name)
}

func TestApplyPresenceDefaults(t *testing.T) {
	rec := &recordingStatus{}
	require.NoError(t, ApplyPresence(rec, Presence{}))
	assert.Equal(t, "online", rec.got.Status)
	assert.Empty(t, rec.got.Activities)
}

func TestPresenceValidate(t *testing.T) {
	assert.NoError(t, Presence{Type: "competing", Status: "dnd"}.Validate())
	assert.Error(t, Presence{Type: "streaming"}.Validate())
	assert.Error(t, Presence{Status: "away"}.Validate())
}

func TestApplyPresenceError(t *testing.T) {
	rec := &recordingStatus{err: errors.New("no websocket connection exists")}
	assert.Error(t, ApplyPresence(rec, Presence{Text: "x"}))
}

type fakeUser struct{ id string }

func (f fakeUser) User(userID string, _ ...discordgo.RequestOption) (*discordgo.User, error) {
	if userID != "@me" {
		return nil, errors.New("unexpected lookup")
	}
	return &discordgo.User{ID: f.id}, nil
}

func TestBotUserID(t *testing.T) {
	id, err := BotUserID(context.Background(), fakeUser{id: "42"})
	require.NoError(t, err)
	assert.Equal(t, "42", id)
}

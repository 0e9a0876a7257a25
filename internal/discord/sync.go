package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/pterostats/internal/logger"
	"github.com/MrSnakeDoc/pterostats/internal/render"
	"github.com/bwmarrin/discordgo"
)

const (
	DefaultLookback = 20
	maxLookback     = 100 // Discord page size cap
)

// SyncResult counts the operations that succeeded in one pass.
type SyncResult struct {
	Sent    int
	Edited  int
	Deleted int

	// MessageIDs holds the message bound to each position, empty where a send failed.
	MessageIDs []string
}

// Synchronizer binds rendered messages to bot-authored channel messages by
// position. Message ids are rediscovered from channel history every pass.
type Synchronizer struct {
	api       ChannelAPI
	channelID string
	botID     string
	lookback  int
	log       logger.Logger
}

func NewSynchronizer(api ChannelAPI, channelID, botID string, lookback int, log logger.Logger) *Synchronizer {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	if lookback > maxLookback {
		lookback = maxLookback
	}
	return &Synchronizer{
		api:       api,
		channelID: channelID,
		botID:     botID,
		lookback:  lookback,
		log:       log,
	}
}

// Sync edits, sends and deletes sequentially so that message i always shows
// msgs[i]. A failed channel lookup aborts the pass; individual message
// failures are joined and returned after every position was attempted.
func (s *Synchronizer) Sync(ctx context.Context, msgs []render.Message) (SyncResult, error) {
	res := SyncResult{MessageIDs: make([]string, len(msgs))}

	log := logger.FromContext(ctx, s.log).With(logger.String("channel_id", s.channelID))

	existing, err := s.existing(ctx, log)
	if err != nil {
		return res, err
	}

	var errs []error
	for i, msg := range msgs {
		if err := ctx.Err(); err != nil {
			return res, errors.Join(append(errs, err)...)
		}

		if i < len(existing) {
			id := existing[i].ID
			if _, err := s.api.ChannelMessageEditComplex(newEdit(s.channelID, id, msg), discordgo.WithContext(ctx)); err != nil {
				errs = append(errs, s.fail(log, "edit", i, msg.ServerID, err))
				res.MessageIDs[i] = id
				continue
			}
			res.Edited++
			res.MessageIDs[i] = id
			continue
		}

		sent, err := s.api.ChannelMessageSendComplex(s.channelID, newSend(msg), discordgo.WithContext(ctx))
		if err != nil {
			errs = append(errs, s.fail(log, "send", i, msg.ServerID, err))
			continue
		}
		res.Sent++
		res.MessageIDs[i] = sent.ID
	}

	for i := len(msgs); i < len(existing); i++ {
		if err := s.api.ChannelMessageDelete(s.channelID, existing[i].ID, discordgo.WithContext(ctx)); err != nil {
			errs = append(errs, s.fail(log, "delete", i, "", err))
			continue
		}
		res.Deleted++
	}

	return res, errors.Join(errs...)
}

// existing returns bot-authored messages from recent history, oldest first.
func (s *Synchronizer) existing(ctx context.Context, log logger.Logger) ([]*discordgo.Message, error) {
	history, err := s.api.ChannelMessages(s.channelID, s.lookback, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		cerr := classify(err)
		log.Error("channel lookup failed, skipping sync", logger.String("hint", Describe(cerr)), logger.Error(err))
		return nil, fmt.Errorf("channel %s lookup: %w", s.channelID, cerr)
	}

	// History arrives newest first.
	out := make([]*discordgo.Message, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		if m == nil || m.Author == nil || m.Author.ID != s.botID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Synchronizer) fail(log logger.Logger, op string, pos int, serverID string, err error) error {
	cerr := classify(err)
	log.Warn("message "+op+" failed",
		logger.Int("position", pos),
		logger.String("server_id", serverID),
		logger.String("hint", Describe(cerr)),
		logger.Error(err))
	return fmt.Errorf("%s message %d: %w", op, pos, cerr)
}

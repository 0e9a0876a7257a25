package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Presence is the bot status shown in the member list.
type Presence struct {
	Text   string
	Type   string // playing, listening, watching, competing
	Status string // online, idle, dnd, invisible
}

// StatusUpdater is satisfied by *discordgo.Session once the gateway is open.
type StatusUpdater interface {
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

func activityType(raw string) (discordgo.ActivityType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "playing":
		return discordgo.ActivityTypeGame, nil
	case "listening":
		return discordgo.ActivityTypeListening, nil
	case "", "watching":
		return discordgo.ActivityTypeWatching, nil
	case "competing":
		return discordgo.ActivityTypeCompeting, nil
	default:
		return 0, fmt.Errorf("unknown presence type %q", raw)
	}
}

func presenceStatus(raw string) (string, error) {
	switch s := strings.ToLower(strings.TrimSpace(raw)); s {
	case "":
		return "online", nil
	case "online", "idle", "dnd", "invisible":
		return s, nil
	default:
		return "", fmt.Errorf("unknown presence status %q", raw)
	}
}

// Validate checks type and status without contacting Discord.
func (p Presence) Validate() error {
	if _, err := activityType(p.Type); err != nil {
		return err
	}
	_, err := presenceStatus(p.Status)
	return err
}

// ApplyPresence sets the bot activity and status.
func ApplyPresence(s StatusUpdater, p Presence) error {
	kind, err := activityType(p.Type)
	if err != nil {
		return err
	}
	status, err := presenceStatus(p.Status)
	if err != nil {
		return err
	}

	usd := discordgo.UpdateStatusData{Status: status}
	if p.Text != "" {
		usd.Activities = []*discordgo.Activity{{Name: p.Text, Type: kind}}
	}
	if err := s.UpdateStatusComplex(usd); err != nil {
		return fmt.Errorf("failed to update presence: %w", err)
	}
	return nil
}

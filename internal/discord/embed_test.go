package discord

import (
	"testing"
	"time"

	"github.com/MrSnakeDoc/pterostats/internal/render"
	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
)

func TestToEmbed(t *testing.T) {
	msg := render.Message{
		Title:       "Survival - Stats",
		Description: "Last update: <t:1:R>",
		Color:       0x5865F2,
		Author:      &render.Author{Name: "PSS", IconURL: "https://icon"},
		Footer:      render.Footer{Text: "ID: abc"},
		Thumbnail:   "https://thumb",
		Timestamp:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Fields:      []render.Field{{Name: "Status", Value: "up"}, {Name: "CPU Load", Value: "1%", Inline: true}},
	}

	want := &discordgo.MessageEmbed{
		Title:       "Survival - Stats",
		Description: "Last update: <t:1:R>",
		Color:       0x5865F2,
		Timestamp:   "2024-01-02T03:04:05Z",
		Author:      &discordgo.MessageEmbedAuthor{Name: "PSS", IconURL: "https://icon"},
		Footer:      &discordgo.MessageEmbedFooter{Text: "ID: abc"},
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: "https://thumb"},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Status", Value: "up"},
			{Name: "CPU Load", Value: "1%", Inline: true},
		},
	}

	if diff := cmp.Diff(want, toEmbed(msg)); diff != "" {
		t.Errorf("toEmbed() mismatch (-want +got):\n%s", diff)
	}
}

func TestComponents(t *testing.T) {
	if got := toComponents(render.Message{}); got != nil {
		t.Errorf("toComponents() without URL = %v, want nil", got)
	}

	row, ok := toComponents(render.Message{ManageURL: "https://panel/server/x"})[0].(discordgo.ActionsRow)
	if !ok {
		t.Fatal("expected an actions row")
	}
	btn := row.Components[0].(discordgo.Button)
	if btn.Style != discordgo.LinkButton || btn.URL != "https://panel/server/x" || btn.Label != manageLabel {
		t.Errorf("button = %+v", btn)
	}
}

func TestNewEditClearsComponents(t *testing.T) {
	edit := newEdit("c", "m", render.Message{})
	if edit.Components == nil || len(*edit.Components) != 0 {
		t.Errorf("edit without URL should send an empty component list")
	}
	if edit.ID != "m" || edit.Channel != "c" || len(*edit.Embeds) != 1 {
		t.Errorf("edit = %+v", edit)
	}
}

func TestNewSendCarriesContent(t *testing.T) {
	send := newSend(render.Message{Content: "hi"})
	if send.Content != "hi" || len(send.Embeds) != 1 {
		t.Errorf("send = %+v", send)
	}
}

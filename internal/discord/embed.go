package discord

import (
	"time"

	"github.com/MrSnakeDoc/pterostats/internal/render"
	"github.com/bwmarrin/discordgo"
)

const manageLabel = "Manage server"

// toEmbed converts a rendered message to a Discord embed.
func toEmbed(msg render.Message) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Description,
		Color:       msg.Color,
		Footer: &discordgo.MessageEmbedFooter{
			Text:    msg.Footer.Text,
			IconURL: msg.Footer.IconURL,
		},
		Fields: make([]*discordgo.MessageEmbedField, 0, len(msg.Fields)),
	}

	if msg.Author != nil {
		embed.Author = &discordgo.MessageEmbedAuthor{Name: msg.Author.Name, IconURL: msg.Author.IconURL}
	}
	if msg.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: msg.Thumbnail}
	}
	if msg.Image != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: msg.Image}
	}
	if !msg.Timestamp.IsZero() {
		embed.Timestamp = msg.Timestamp.Format(time.RFC3339)
	}

	for _, f := range msg.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return embed
}

// toComponents returns the "manage server" link row, or nil without a URL.
func toComponents(msg render.Message) []discordgo.MessageComponent {
	if msg.ManageURL == "" {
		return nil
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label: manageLabel,
					Style: discordgo.LinkButton,
					URL:   msg.ManageURL,
				},
			},
		},
	}
}

func newSend(msg render.Message) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content:    msg.Content,
		Embeds:     []*discordgo.MessageEmbed{toEmbed(msg)},
		Components: toComponents(msg),
	}
}

func newEdit(channelID, messageID string, msg render.Message) *discordgo.MessageEdit {
	embeds := []*discordgo.MessageEmbed{toEmbed(msg)}
	components := toComponents(msg)
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	return &discordgo.MessageEdit{
		ID:         messageID,
		Channel:    channelID,
		Embeds:     &embeds,
		Components: &components,
	}
}

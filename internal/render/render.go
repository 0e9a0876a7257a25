// Package render maps render instructions to platform-neutral messages.
// Nothing here performs I/O.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/pterostats/internal/domain"
	"github.com/MrSnakeDoc/pterostats/internal/panel"
)

// Placeholders accepted in DisplayConfig.Description.
const (
	PlaceholderUpdated = "{{updated}}" // when the snapshot was observed
	PlaceholderNext    = "{{time}}"    // when the next refresh is due
)

const DefaultColor = 0x5865F2

// DisplayConfig is the subset of configuration the renderer reads.
type DisplayConfig struct {
	PanelURL string
	Refresh  time.Duration

	Title       string
	Description string
	Color       int
	Timestamp   bool
	Thumbnail   string
	Image       string
	AuthorName  string
	AuthorIcon  string
	FooterText  string
	FooterIcon  string
	Inline      bool
	Content     string

	StatusOnline  string
	StatusOffline string

	Details bool
	Memory  bool
	Disk    bool
	CPU     bool
	Network bool
	Uptime  bool
}

type Field struct {
	Name   string
	Value  string
	Inline bool
}

type Author struct {
	Name    string
	IconURL string
}

type Footer struct {
	Text    string
	IconURL string
}

// Message is one rendered server, independent of any messaging platform.
type Message struct {
	ServerID    string
	Title       string
	Description string
	Color       int
	Author      *Author
	Footer      Footer
	Thumbnail   string
	Image       string
	Timestamp   time.Time // zero when disabled
	Fields      []Field
	ManageURL   string

	// Content is only attached when the message is first sent.
	Content string
}

type Renderer struct {
	cfg DisplayConfig
}

func New(cfg DisplayConfig) *Renderer {
	if cfg.Color == 0 {
		cfg.Color = DefaultColor
	}
	if cfg.Description == "" {
		cfg.Description = "Last update: " + PlaceholderUpdated
	}
	return &Renderer{cfg: cfg}
}

// RenderAll renders instructions in order.
func (r *Renderer) RenderAll(instrs []domain.RenderInstruction) []Message {
	out := make([]Message, 0, len(instrs))
	for _, in := range instrs {
		out = append(out, r.Render(in))
	}
	return out
}

func (r *Renderer) Render(in domain.RenderInstruction) Message {
	cfg := r.cfg
	snap := in.Snapshot
	observed := snap.ObservedAt()
	ref := snap.Details.Reference()
	if ref == "" {
		ref = in.ServerID
	}

	name := snap.Details.Name
	if name == "" {
		name = in.ServerID
	}
	title := name
	if cfg.Title != "" {
		title = name + " - " + cfg.Title
	}

	msg := Message{
		ServerID:    in.ServerID,
		Title:       title,
		Description: r.description(observed),
		Color:       cfg.Color,
		Thumbnail:   cfg.Thumbnail,
		Image:       cfg.Image,
		Footer:      Footer{Text: footerText(cfg.FooterText, ref), IconURL: cfg.FooterIcon},
		ManageURL:   panel.ManageURL(cfg.PanelURL, ref),
		Content:     cfg.Content,
		Fields:      r.fields(snap),
	}
	if cfg.AuthorName != "" {
		msg.Author = &Author{Name: cfg.AuthorName, IconURL: cfg.AuthorIcon}
	}
	if cfg.Timestamp {
		msg.Timestamp = observed.UTC()
	}
	return msg
}

func (r *Renderer) description(observed time.Time) string {
	next := observed.Add(r.cfg.Refresh)
	return strings.NewReplacer(
		PlaceholderUpdated, relativeTime(observed),
		PlaceholderNext, relativeTime(next),
	).Replace(r.cfg.Description)
}

// relativeTime is Discord's self-updating timestamp markup.
func relativeTime(t time.Time) string {
	return "<t:" + strconv.FormatInt(t.Unix(), 10) + ":R>"
}

func footerText(text, ref string) string {
	id := "ID: " + ShortID(ref)
	if text == "" {
		return id
	}
	return text + " • " + id
}

func (r *Renderer) fields(snap domain.ServerSnapshot) []Field {
	cfg := r.cfg
	online := snap.Usage.State.Online()

	status := cfg.StatusOffline
	if online {
		status = cfg.StatusOnline
	}
	if status == "" {
		status = string(snap.Usage.State)
	}
	fields := []Field{{Name: "Status", Value: status}}

	if !cfg.Details || !online {
		return fields
	}

	u, lim := snap.Usage, snap.Details.Limits
	add := func(name, value string) {
		fields = append(fields, Field{Name: name, Value: value, Inline: cfg.Inline})
	}

	if cfg.Memory {
		add("Memory Usage", fmt.Sprintf("`%s` / `%s`", FormatBytes(u.MemoryBytes), FormatLimitMiB(lim.Memory)))
	}
	if cfg.Disk {
		add("Disk Usage", fmt.Sprintf("`%s` / `%s`", FormatBytes(u.DiskBytes), FormatLimitMiB(lim.Disk)))
	}
	if cfg.CPU {
		add("CPU Load", FormatCPU(u.CPUAbsolute, lim.CPU))
	}
	if cfg.Network {
		add("Network", fmt.Sprintf("Download: `%s`\nUpload: `%s`", FormatBytes(u.NetworkRx), FormatBytes(u.NetworkTx)))
	}
	if cfg.Uptime {
		add("Uptime", fmt.Sprintf("`%s`", FormatUptime(u.UptimeMs)))
	}
	return fields
}

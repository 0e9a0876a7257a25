package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// CurrentVersion is the only accepted config file version.
const CurrentVersion = 1

type AuthorConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	Icon string `mapstructure:"icon" yaml:"icon"`
}

type FooterConfig struct {
	Text string `mapstructure:"text" yaml:"text"`
	Icon string `mapstructure:"icon" yaml:"icon"`
}

type PresenceConfig struct {
	Enable bool   `mapstructure:"enable" yaml:"enable"`
	Text   string `mapstructure:"text" yaml:"text"`
	Type   string `mapstructure:"type" yaml:"type"`
	Status string `mapstructure:"status" yaml:"status"`
}

type MessageConfig struct {
	Content string `mapstructure:"content" yaml:"content"`
}

type FieldsConfig struct {
	Inline bool `mapstructure:"inline" yaml:"inline"`
}

type EmbedConfig struct {
	Title       string       `mapstructure:"title" yaml:"title"`
	Description string       `mapstructure:"description" yaml:"description"`
	Color       string       `mapstructure:"color" yaml:"color"`
	Timestamp   bool         `mapstructure:"timestamp" yaml:"timestamp"`
	Thumbnail   string       `mapstructure:"thumbnail" yaml:"thumbnail"`
	Image       string       `mapstructure:"image" yaml:"image"`
	Author      AuthorConfig `mapstructure:"author" yaml:"author"`
	Footer      FooterConfig `mapstructure:"footer" yaml:"footer"`
	Fields      FieldsConfig `mapstructure:"fields" yaml:"fields"`
}

type StatusConfig struct {
	Online  string `mapstructure:"online" yaml:"online"`
	Offline string `mapstructure:"offline" yaml:"offline"`
}

// ServerConfig toggles the per-server detail fields.
type ServerConfig struct {
	Details bool `mapstructure:"details" yaml:"details"`
	Memory  bool `mapstructure:"memory" yaml:"memory"`
	Disk    bool `mapstructure:"disk" yaml:"disk"`
	CPU     bool `mapstructure:"cpu" yaml:"cpu"`
	Network bool `mapstructure:"network" yaml:"network"`
	Uptime  bool `mapstructure:"uptime" yaml:"uptime"`
}

type NotifierEmbedConfig struct {
	Timestamp bool         `mapstructure:"timestamp" yaml:"timestamp"`
	Thumbnail string       `mapstructure:"thumbnail" yaml:"thumbnail"`
	Image     string       `mapstructure:"image" yaml:"image"`
	Author    AuthorConfig `mapstructure:"author" yaml:"author"`
	Footer    FooterConfig `mapstructure:"footer" yaml:"footer"`
}

type TelegramConfig struct {
	Enable bool  `mapstructure:"enable" yaml:"enable"`
	ChatID int64 `mapstructure:"chat_id" yaml:"chat_id"`
}

type NotifierConfig struct {
	Enable   bool                `mapstructure:"enable" yaml:"enable"`
	Webhook  string              `mapstructure:"webhook" yaml:"webhook"`
	Embed    NotifierEmbedConfig `mapstructure:"embed" yaml:"embed"`
	Telegram TelegramConfig      `mapstructure:"telegram" yaml:"telegram"`
}

type CacheConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // sqlite | redis | memory
	Path   string `mapstructure:"path" yaml:"path"`     // sqlite file
}

type SyncConfig struct {
	Lookback int `mapstructure:"lookback" yaml:"lookback"`
}

type HTTPConfig struct {
	Enable       bool     `mapstructure:"enable" yaml:"enable"`
	Listen       string   `mapstructure:"listen" yaml:"listen"`
	AllowedCIDRs []string `mapstructure:"allowed_cidrs" yaml:"allowed_cidrs"`
	TrustProxy   bool     `mapstructure:"trust_proxy" yaml:"trust_proxy"`
}

// File is the schema of config.yml.
type File struct {
	Version     int      `mapstructure:"version" yaml:"version"`
	Refresh     int      `mapstructure:"refresh" yaml:"refresh"` // seconds
	Timeout     int      `mapstructure:"timeout" yaml:"timeout"` // seconds, per panel call
	Concurrency int      `mapstructure:"concurrency" yaml:"concurrency"`
	LogError    bool     `mapstructure:"log_error" yaml:"log_error"`
	ServerIDs   []string `mapstructure:"server_ids" yaml:"server_ids"`

	Presence PresenceConfig `mapstructure:"presence" yaml:"presence"`
	Message  MessageConfig  `mapstructure:"message" yaml:"message"`
	Embed    EmbedConfig    `mapstructure:"embed" yaml:"embed"`
	Status   StatusConfig   `mapstructure:"status" yaml:"status"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Notifier NotifierConfig `mapstructure:"notifier" yaml:"notifier"`
	Cache    CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Sync     SyncConfig     `mapstructure:"sync" yaml:"sync"`
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
}

// DefaultFile returns the configuration written by `config init`.
func DefaultFile() *File {
	return &File{
		Version:   CurrentVersion,
		Refresh:   10,
		Timeout:   5,
		ServerIDs: []string{},
		Presence: PresenceConfig{
			Enable: false,
			Text:   "Hosting servers",
			Type:   "watching",
			Status: "online",
		},
		Embed: EmbedConfig{
			Title:       "Server Stats",
			Description: "Last update: {{updated}}",
			Color:       "5865F2",
			Timestamp:   false,
			Footer:      FooterConfig{Text: "pterostats"},
			Fields:      FieldsConfig{Inline: true},
		},
		Status: StatusConfig{
			Online:  ":green_circle: Online",
			Offline: ":red_circle: Offline",
		},
		Server: ServerConfig{
			Details: true,
			Memory:  true,
			Disk:    true,
			CPU:     true,
			Network: true,
			Uptime:  true,
		},
		Notifier: NotifierConfig{
			Embed: NotifierEmbedConfig{Timestamp: true},
		},
		Cache: CacheConfig{Driver: "sqlite", Path: "cache.db"},
		Sync:  SyncConfig{Lookback: 20},
		HTTP: HTTPConfig{
			Listen:       "127.0.0.1:8090",
			AllowedCIDRs: []string{"127.0.0.1/32", "::1/128"},
		},
	}
}

// setDefaults registers every default on its dotted key so the typed
// accessor sees values missing from the file.
func setDefaults(v *viper.Viper) {
	d := DefaultFile()

	v.SetDefault("version", d.Version)
	v.SetDefault("refresh", d.Refresh)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("log_error", d.LogError)
	v.SetDefault("server_ids", d.ServerIDs)

	v.SetDefault("presence.enable", d.Presence.Enable)
	v.SetDefault("presence.text", d.Presence.Text)
	v.SetDefault("presence.type", d.Presence.Type)
	v.SetDefault("presence.status", d.Presence.Status)

	v.SetDefault("message.content", d.Message.Content)

	v.SetDefault("embed.title", d.Embed.Title)
	v.SetDefault("embed.description", d.Embed.Description)
	v.SetDefault("embed.color", d.Embed.Color)
	v.SetDefault("embed.timestamp", d.Embed.Timestamp)
	v.SetDefault("embed.thumbnail", d.Embed.Thumbnail)
	v.SetDefault("embed.image", d.Embed.Image)
	v.SetDefault("embed.author.name", d.Embed.Author.Name)
	v.SetDefault("embed.author.icon", d.Embed.Author.Icon)
	v.SetDefault("embed.footer.text", d.Embed.Footer.Text)
	v.SetDefault("embed.footer.icon", d.Embed.Footer.Icon)
	v.SetDefault("embed.fields.inline", d.Embed.Fields.Inline)

	v.SetDefault("status.online", d.Status.Online)
	v.SetDefault("status.offline", d.Status.Offline)

	v.SetDefault("server.details", d.Server.Details)
	v.SetDefault("server.memory", d.Server.Memory)
	v.SetDefault("server.disk", d.Server.Disk)
	v.SetDefault("server.cpu", d.Server.CPU)
	v.SetDefault("server.network", d.Server.Network)
	v.SetDefault("server.uptime", d.Server.Uptime)

	v.SetDefault("notifier.enable", d.Notifier.Enable)
	v.SetDefault("notifier.webhook", d.Notifier.Webhook)
	v.SetDefault("notifier.embed.timestamp", d.Notifier.Embed.Timestamp)
	v.SetDefault("notifier.embed.thumbnail", d.Notifier.Embed.Thumbnail)
	v.SetDefault("notifier.embed.image", d.Notifier.Embed.Image)
	v.SetDefault("notifier.embed.author.name", d.Notifier.Embed.Author.Name)
	v.SetDefault("notifier.embed.author.icon", d.Notifier.Embed.Author.Icon)
	v.SetDefault("notifier.embed.footer.text", d.Notifier.Embed.Footer.Text)
	v.SetDefault("notifier.embed.footer.icon", d.Notifier.Embed.Footer.Icon)
	v.SetDefault("notifier.telegram.enable", d.Notifier.Telegram.Enable)
	v.SetDefault("notifier.telegram.chat_id", d.Notifier.Telegram.ChatID)

	v.SetDefault("cache.driver", d.Cache.Driver)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("sync.lookback", d.Sync.Lookback)

	v.SetDefault("http.enable", d.HTTP.Enable)
	v.SetDefault("http.listen", d.HTTP.Listen)
	v.SetDefault("http.allowed_cidrs", d.HTTP.AllowedCIDRs)
	v.SetDefault("http.trust_proxy", d.HTTP.TrustProxy)
}

// Config is a loaded, validated config file plus dotted-key access to it.
type Config struct {
	File
	Path string
	v    *viper.Viper
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %s not found, run 'pterostats config init' to create one", path)
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return parse(v, path)
}

// Defaults returns a Config holding only default values.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := parse(v, "")
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: default config is invalid: %v", err))
	}
	return cfg
}

func parse(v *viper.Viper, path string) (*Config, error) {
	cfg := &Config{Path: path, v: v}
	if err := v.Unmarshal(&cfg.File); err != nil {
		return nil, fmt.Errorf("invalid config format in %s: %w", path, err)
	}
	if err := cfg.File.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ─────────────────────────────
// Typed dotted-key accessor
// ─────────────────────────────

// Has reports whether key has a value, from the file or a default.
func (c *Config) Has(key string) bool {
	return c.v.IsSet(strings.ToLower(key))
}

func (c *Config) String(key string) string { return c.v.GetString(key) }

func (c *Config) Bool(key string) bool { return c.v.GetBool(key) }

func (c *Config) Int(key string) int { return c.v.GetInt(key) }

// Get returns the raw effective value for key.
func (c *Config) Get(key string) (any, bool) {
	if !c.Has(key) {
		return nil, false
	}
	return c.v.Get(key), true
}

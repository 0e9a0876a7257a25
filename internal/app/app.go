// Package app wires configuration, storage, the panel client, Discord and
// the HTTP surface into a running poller.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/MrSnakeDoc/pterostats/internal/config"
	"github.com/MrSnakeDoc/pterostats/internal/discord"
	"github.com/MrSnakeDoc/pterostats/internal/domain"
	"github.com/MrSnakeDoc/pterostats/internal/engine"
	"github.com/MrSnakeDoc/pterostats/internal/httpserver"
	"github.com/MrSnakeDoc/pterostats/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pterostats/internal/logger"
	"github.com/MrSnakeDoc/pterostats/internal/panel"
	"github.com/MrSnakeDoc/pterostats/internal/reconcile"
	"github.com/MrSnakeDoc/pterostats/internal/render"
	"github.com/MrSnakeDoc/pterostats/internal/scheduler"
	"github.com/MrSnakeDoc/pterostats/internal/store"
	"github.com/MrSnakeDoc/pterostats/internal/utils"
	"github.com/MrSnakeDoc/pterostats/internal/version"
)

type App struct {
	env       *config.Env
	cfg       *config.Config
	logger    logger.Logger
	cache     store.SnapshotStore
	session   *discordgo.Session
	engine    *engine.Engine
	scheduler *scheduler.Scheduler
	gc        *scheduler.GarbageCollector
	server    *httpserver.Server
	gateway   bool // session websocket opened for presence
}

// New builds every component. It contacts Discord once to resolve the bot
// user and, for the redis driver, waits for Redis.
func New(ctx context.Context, env *config.Env, cfg *config.Config, log logger.Logger) (*App, error) {
	ids := cfg.MergedServerIDs(env)
	tracked := domain.NewTrackedSet(ids)
	if tracked.Len() == 0 {
		log.Warn("no servers tracked, add ids to server_ids or PSS_SERVER_IDS")
	}

	color, err := config.ParseColor(cfg.Embed.Color)
	if err != nil {
		return nil, err
	}

	cache, err := openStore(ctx, env, cfg, log)
	if err != nil {
		return nil, err
	}

	session, err := discord.NewSession(env.DiscordToken)
	if err != nil {
		utils.CloseLogged(cache, "snapshot cache", log)
		return nil, err
	}
	botID, err := discord.BotUserID(ctx, session)
	if err != nil {
		utils.CloseLogged(cache, "snapshot cache", log)
		return nil, fmt.Errorf("%w (%s)", err, discord.Describe(err))
	}
	log.Info("discord bot authenticated", logger.String("bot_id", botID))

	refresh := time.Duration(cfg.Refresh) * time.Second

	reconciler := reconcile.New(panel.NewClient(env.PanelURL, env.PanelKey), cache, reconcile.Options{
		FetchTimeout: time.Duration(cfg.Timeout) * time.Second,
		Concurrency:  cfg.Concurrency,
		LogError:     cfg.LogError,
	}, log)

	renderer := render.New(render.DisplayConfig{
		PanelURL:      env.PanelURL,
		Refresh:       refresh,
		Title:         cfg.Embed.Title,
		Description:   cfg.Embed.Description,
		Color:         color,
		Timestamp:     cfg.Embed.Timestamp,
		Thumbnail:     cfg.Embed.Thumbnail,
		Image:         cfg.Embed.Image,
		AuthorName:    cfg.Embed.Author.Name,
		AuthorIcon:    cfg.Embed.Author.Icon,
		FooterText:    cfg.Embed.Footer.Text,
		FooterIcon:    cfg.Embed.Footer.Icon,
		Inline:        cfg.Embed.Fields.Inline,
		Content:       cfg.Message.Content,
		StatusOnline:  cfg.Status.Online,
		StatusOffline: cfg.Status.Offline,
		Details:       cfg.Server.Details,
		Memory:        cfg.Server.Memory,
		Disk:          cfg.Server.Disk,
		CPU:           cfg.Server.CPU,
		Network:       cfg.Server.Network,
		Uptime:        cfg.Server.Uptime,
	})

	syncer := discord.NewSynchronizer(session, env.DiscordChannel, botID, cfg.Sync.Lookback, log)

	eng := engine.New(tracked, reconciler, renderer, syncer, cache, log, transitionSinks(env, cfg, log)...)
	sched := scheduler.New(eng, log, refresh)
	eng.SetTrigger(sched)

	a := &App{
		env:       env,
		cfg:       cfg,
		logger:    log,
		cache:     cache,
		session:   session,
		engine:    eng,
		scheduler: sched,
		gc:        scheduler.NewGarbageCollector(cache, tracked, log, scheduler.DefaultGCInterval),
	}

	if cfg.HTTP.Enable {
		prefixes, err := cfg.HTTP.Prefixes()
		if err != nil {
			utils.CloseLogged(cache, "snapshot cache", log)
			return nil, err
		}
		a.server = httpserver.New(cfg.HTTP.Listen, log, deps.Deps{
			Logger:       log,
			StartTime:    time.Now(),
			Version:      version.Version,
			Commit:       version.Commit,
			BuildDate:    version.BuildDate,
			GoVersion:    version.GoVersion,
			TimeNow:      time.Now,
			AllowedCIDRs: prefixes,
			TrustProxy:   cfg.HTTP.TrustProxy,
			Engine:       eng,
			Cache:        cache,
			CacheDriver:  cfg.Cache.Driver,
			Refresh:      refresh,
		})
	}

	return a, nil
}

// Run starts the loop and blocks until ctx is cancelled or the HTTP
// server fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting pterostats %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	if a.cfg.Presence.Enable {
		a.startPresence()
	}

	a.scheduler.Start(ctx)
	a.logger.Info("scheduler started",
		logger.Duration("interval", time.Duration(a.cfg.Refresh)*time.Second),
		logger.Int("tracked", len(a.engine.Tracked())))

	a.gc.Start(ctx)

	errCh := make(chan error, 1)
	if a.server != nil {
		go func() {
			if err := a.server.Start(); err != nil {
				errCh <- fmt.Errorf("http server error: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
		a.logger.Error("http server failed, shutting down", logger.Error(runErr))
	}

	a.shutdown()
	return runErr
}

// startPresence opens the gateway and sets the bot status. Failures only
// cost the status line.
func (a *App) startPresence() {
	if err := a.session.Open(); err != nil {
		a.logger.Warn("failed to open discord gateway, presence disabled", logger.Error(err))
		return
	}
	a.gateway = true

	p := discord.Presence{
		Text:   a.cfg.Presence.Text,
		Type:   a.cfg.Presence.Type,
		Status: a.cfg.Presence.Status,
	}
	if err := discord.ApplyPresence(a.session, p); err != nil {
		a.logger.Warn("failed to set presence", logger.Error(err))
		return
	}
	a.logger.Info("presence set", logger.String("text", p.Text), logger.String("type", p.Type))
}

// shutdown stops the loop first so no cycle writes to a closed cache.
func (a *App) shutdown() {
	a.scheduler.Stop()
	a.gc.Stop()

	if a.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.env.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			a.logger.Warn("failed to stop http server", logger.Error(err))
		}
	}

	if a.gateway {
		utils.CloseLogged(a.session, "discord gateway", a.logger)
	}
	utils.CloseLogged(a.cache, "snapshot cache", a.logger)

	a.logger.Info("✅ pterostats stopped cleanly")
}

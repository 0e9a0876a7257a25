// Package cli defines the pterostats command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/pterostats/internal/config"
	"github.com/MrSnakeDoc/pterostats/internal/logger"
)

// Global flags
var (
	configFlag   string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "pterostats",
	Short: "Mirror Pterodactyl/Pelican server stats into Discord",
	Long: `pterostats polls a Pterodactyl or Pelican panel and keeps one Discord
embed per tracked server up to date. State changes can be announced through
a Discord webhook or Telegram.

Credentials come from the environment (PSS_PANEL_URL, PSS_PANEL_KEY,
PSS_DISCORD_TOKEN, PSS_DISCORD_CHANNEL). Display options live in config.yml.

Running without a subcommand is the same as 'pterostats run'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "config file (default $PSS_CONFIG or config.yml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "debug, info, warn or error (default $PSS_LOG_LEVEL or info)")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}
	return 0
}

// processEnv resolves settings shared by every command, applying flags
// over the environment.
func processEnv() *config.Env {
	env := config.LoadProcess()
	if configFlag != "" {
		env.ConfigFile = configFlag
	}
	if logLevelFlag != "" {
		env.LogLevel = logLevelFlag
	}
	return env
}

// fullEnv loads credentials too. Missing variables become an error instead
// of a panic.
func fullEnv() (env *config.Env, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	env = config.LoadEnv()
	if configFlag != "" {
		env.ConfigFile = configFlag
	}
	if logLevelFlag != "" {
		env.LogLevel = logLevelFlag
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return env, nil
}

func newLogger(env *config.Env) logger.Logger {
	return logger.New(env.LogLevel, env.PrettyLog)
}

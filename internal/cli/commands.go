package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/pterostats/internal/app"
	"github.com/MrSnakeDoc/pterostats/internal/config"
	"github.com/MrSnakeDoc/pterostats/internal/version"
)

// Command-specific flags
var (
	initForce bool
)

// runCmd starts the poller
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start polling and updating the Discord channel",
	Long: `Start the poller. Every refresh interval each tracked server is fetched,
its embed is rendered and the channel is brought in line: existing bot
messages are edited in place, missing ones are sent, surplus ones deleted.

Stops cleanly on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.Context())
	},
}

// checkCmd fetches every server once
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fetch every tracked server once and report reachability",
	Long: `Fetch details and usage of every tracked server once, print the result
and exit. Nothing is written to Discord or to the cache.

Exits non-zero when any server cannot be read.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkCommand(cmd.Context())
	},
}

// configCmd groups config file helpers
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write the default configuration to the config path.

Examples:
  pterostats config init
  pterostats config init --config /etc/pterostats/config.yml --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := processEnv().ConfigFile
		if err := config.WriteDefault(path, initForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ wrote %s\n", path)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the effective value of a dotted key",
	Long: `Print the value of a key after defaults are applied.

Examples:
  pterostats config get refresh
  pterostats config get embed.footer.text`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(processEnv().ConfigFile)
		if err != nil {
			return err
		}
		return printKey(cmd, cfg, args[0])
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := processEnv().ConfigFile
		if _, err := config.Load(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is valid\n", path)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configValidateCmd)

	// Register all commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// printKey writes scalars as-is and maps or lists as YAML.
func printKey(cmd *cobra.Command, cfg *config.Config, key string) error {
	v, ok := cfg.Get(key)
	if !ok {
		return fmt.Errorf("unknown key %q", key)
	}
	switch v.(type) {
	case map[string]any, []any:
		out, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	default:
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	}
}

func runCommand(ctx context.Context) error {
	env, err := fullEnv()
	if err != nil {
		return err
	}
	log := newLogger(env)
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(env.ConfigFile)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, env, cfg, log)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

func checkCommand(ctx context.Context) error {
	env, err := fullEnv()
	if err != nil {
		return err
	}
	log := newLogger(env)
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(env.ConfigFile)
	if err != nil {
		return err
	}
	return app.Check(ctx, env, cfg, log, os.Stdout)
}

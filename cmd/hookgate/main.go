// Package main provides the CLI entry point for hookgate.
//
// hookgate mediates tool invocation permissions for coding agent sessions
// over Telegram or Discord.
//
// # Basic Usage
//
// Wire the permission hook (reads stdin, writes the decision to stdout):
//
//	hookgate hook
//
// Relay a stop or notification event:
//
//	hookgate stop
//	hookgate notify
//
// Run a long-lived listener answering prompts:
//
//	hookgate bot
//
// Manage the always-allow list:
//
//	hookgate allow list
//	hookgate allow add Bash
//
// # Environment Variables
//
//   - TELEGRAM_BOT_TOKEN / TELEGRAM_CHAT_ID: Telegram fallback configuration
//   - DISCORD_BOT_TOKEN / DISCORD_USER_ID: Discord fallback configuration
//   - HOOKGATE_TIMEOUT_SECONDS: decision timeout override
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information - populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configURL string
	verbose   bool
	traceOn   bool
)

func main() {
	// Logs go to stderr; stdout is reserved for the hook decision.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hookgate",
		Short: "hookgate - remote permission gate for coding agent tool calls",
		Long: `hookgate publishes tool permission requests to Telegram or Discord,
waits for a button press and answers the agent's permission hook. Unanswered
requests are denied after a timeout; approved tools can be remembered.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&configURL, "config", "", "config file location (default ~/.claude/hookgate.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&traceOn, "trace", false, "emit trace spans to stderr")

	rootCmd.AddCommand(
		buildHookCmd(),
		buildStopCmd(),
		buildNotifyCmd(),
		buildBotCmd(),
		buildAllowCmd(),
	)
	return rootCmd
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hookgate/hookgate"
	"github.com/hookgate/hookgate/tracing"
)

// newService loads configuration and wires the service.
func newService(ctx context.Context) (*hookgate.Service, error) {
	if traceOn {
		if err := tracing.Init("hookgate", version, ""); err != nil {
			slog.Warn("failed to initialise tracing", "error", err)
		}
	}
	config, err := hookgate.LoadConfig(ctx, configURL)
	if err != nil {
		return nil, err
	}
	return hookgate.New(ctx, config)
}

func buildHookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hook",
		Short: "Answer a permission hook: read the tool call from stdin, write the decision to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := newService(ctx)
			if err != nil {
				return err
			}
			// the messenger only receives updates while this invocation
			// is listening
			listenCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			go func() {
				_ = svc.Listen(listenCtx)
			}()
			return svc.HandlePermission(ctx, os.Stdin, os.Stdout)
		},
	}
}

func buildStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Relay a session stop event as a completion notice",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := newService(ctx)
			if err != nil {
				return err
			}
			return svc.HandleStop(ctx, os.Stdin)
		},
	}
}

func buildNotifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Relay a notification event from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := newService(ctx)
			if err != nil {
				return err
			}
			return svc.HandleNotification(ctx, os.Stdin)
		},
	}
}

func buildBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run a long-lived listener answering prompts until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			svc, err := newService(ctx)
			if err != nil {
				return err
			}
			slog.Info("bot started", "platform", svc.Messenger().Platform())
			if err := svc.Listen(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}

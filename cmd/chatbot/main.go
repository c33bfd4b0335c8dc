package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/VARUNx96/AI-CHATBOT/internal/chat"
	"github.com/VARUNx96/AI-CHATBOT/internal/config"
	"github.com/VARUNx96/AI-CHATBOT/internal/endpoint"
	"github.com/VARUNx96/AI-CHATBOT/internal/llm"
	"github.com/VARUNx96/AI-CHATBOT/internal/logging"
	"github.com/VARUNx96/AI-CHATBOT/internal/server"
	"github.com/VARUNx96/AI-CHATBOT/internal/terminal"
)

var (
	cfg      config.Config
	logLevel string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg = config.Load()

	root := &cobra.Command{
		Use:           "chatbot",
		Short:         "Chat widget backend relay and terminal chat client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.AddCommand(newServeCmd(), newChatCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve /api/chat, relaying prompts to the configured model backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			model, err := llm.New(cfg, logger)
			if err != nil {
				return err
			}
			s := server.NewServer(cfg, model, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return s.Run(ctx, ":"+port)
		},
	}
	cmd.Flags().StringVar(&port, "port", cfg.Port, "port to listen on")
	return cmd
}

func newChatCmd() *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with a relay endpoint from the terminal",
		Long:  "Chat with a relay endpoint from the terminal. Press Ctrl-D to quit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.NewConsole(logLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			console, err := terminal.Open(os.Stdin, cmd.OutOrStdout(), "you> ")
			if err != nil {
				return err
			}
			defer console.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runChat(ctx, console, endpoint.NewClient(url, nil), timeout, logger)
		},
	}
	cmd.Flags().StringVar(&url, "endpoint", cfg.EndpointURL, "chat endpoint URL")
	cmd.Flags().DurationVar(&timeout, "timeout", cfg.ClientTimeout, "per-message timeout (0 disables)")
	return cmd
}

func runChat(ctx context.Context, console *terminal.Console, ep chat.Endpoint, timeout time.Duration, logger *zap.Logger) error {
	session := chat.New(ep, terminal.NewPresenter(console.Out), console.Input,
		chat.WithTimeout(timeout),
		chat.WithLogger(logger))
	defer session.Close()

	// Piped input should not race ahead of replies.
	if !console.Interactive {
		console.Input.OnSubmit(session.Wait)
	}
	logger.Debug("chat session started")
	if err := console.Input.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	session.Wait()
	return nil
}

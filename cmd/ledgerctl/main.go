package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/client"
	"github.com/spf13/cobra"
)

// app is the state shared by every command of one invocation.
type app struct {
	apiURL   string
	user     string
	token    string
	logLevel string

	logger *slog.Logger
	client *client.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Manage finance dashboard records from the terminal",
		Long: `ledgerctl talks to the finance dashboard API on behalf of one user.

Examples:
  # List your transactions
  ledgerctl --user alice transactions list

  # Record an expense
  ledgerctl --user alice transactions add --type expense --amount 12.40 --category Food

  # Import a bank export
  ledgerctl --user alice import-ofx ~/Downloads/*.qfx`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.apiURL, "api-url", envOr("LEDGER_API_URL", "http://localhost:8080"), "dashboard API base URL")
	flags.StringVar(&a.user, "user", os.Getenv("LEDGER_USER"), "external identity to act as")
	flags.StringVar(&a.token, "token", os.Getenv("LEDGER_TOKEN"), "bearer token, when the API requires one")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(transactionsCmd(a))
	root.AddCommand(assetsCmd(a))
	root.AddCommand(liabilitiesCmd(a))
	root.AddCommand(summaryCmd(a))
	root.AddCommand(importOFXCmd(a))
	root.AddCommand(tokenCmd(a))

	return root
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	logger, err := setupLogging(cmd.ErrOrStderr(), a.logLevel)
	if err != nil {
		return err
	}
	a.logger = logger

	opts := []client.Option{client.WithLogger(logger)}
	if a.token != "" {
		opts = append(opts, client.WithToken(a.token))
	}
	a.client = client.New(a.apiURL, a.user, opts...)

	return nil
}

func setupLogging(w io.Writer, level string) (*slog.Logger, error) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevel})), nil
}

// requireUser fails early when neither an identity nor a token is set,
// since the API would reject every request.
func (a *app) requireUser() error {
	if a.user == "" && a.token == "" {
		return fmt.Errorf("no user given: pass --user or set LEDGER_USER")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/app"
	"github.com/Freeeeeet/mess_voting_bot/internal/config"
)

const programName = "messbot"

// runtime общее состояние команд, заполняется в PersistentPreRunE
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	rt := &runtime{}

	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Hostel mess menu voting: API, Telegram bot and tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			rt.cfg = cfg
			rt.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
	}

	rootCmd.AddCommand(serveCommand(rt))
	rootCmd.AddCommand(migrateCommand(rt))
	rootCmd.AddCommand(reportCommand(rt))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		stop()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Freeeeeet/mess_voting_bot/internal/api"
	"github.com/Freeeeeet/mess_voting_bot/internal/app"
	"github.com/Freeeeeet/mess_voting_bot/internal/controller"
	"github.com/Freeeeeet/mess_voting_bot/internal/controller/handlers"
	"github.com/Freeeeeet/mess_voting_bot/internal/metrics"
)

func serveCommand(rt *runtime) *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API, the Telegram bot and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), rt, !skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply migrations on startup")
	return cmd
}

func serve(ctx context.Context, rt *runtime, migrate bool) error {
	logger := rt.logger
	cfg := rt.cfg

	logger.Info("Starting mess voting bot",
		zap.String("environment", cfg.Environment),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Bool("bot_enabled", cfg.BotEnabled()),
	)

	pool, err := app.NewPool(ctx, cfg.GetDBDSN())
	if err != nil {
		return err
	}
	defer pool.Close()

	if migrate {
		migrator, err := app.NewMigrator(pool, logger)
		if err != nil {
			return err
		}
		err = migrator.Up(ctx)
		closeErr := migrator.Close()
		if err != nil {
			return err
		}
		if closeErr != nil {
			logger.Warn("Failed to close migrator", zap.Error(closeErr))
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	svc := app.NewServices(pool, m, logger)

	scheduler := app.NewScheduler(svc.Stats, m, cfg.SchedulerInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := api.NewServer(api.Deps{
		Sessions:     svc.Sessions,
		Menu:         svc.Menu,
		Votes:        svc.Votes,
		Profiles:     svc.Profiles,
		Finalization: svc.Finalization,
		Reports:      svc.Reports,
		Feedback:     svc.Feedback,
		Events:       svc.Events,
		Settings:     svc.Settings,
		Metrics:      m,
		Gatherer:     reg,
		Version:      cfg.APIVersion,
		Logger:       logger.Named("api"),
	})

	var botController *controller.BotController
	if cfg.BotEnabled() {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("create telegram bot: %w", err)
		}
		botController = controller.NewBotController(b, handlers.Services{
			Profiles: svc.Profiles,
			Sessions: svc.Sessions,
			Menu:     svc.Menu,
			Votes:    svc.Votes,
			Reports:  svc.Reports,
			Feedback: svc.Feedback,
		}, cfg.IsAdminTelegramID, logger.Named("bot"))

		if err := botController.RegisterHandlers(ctx); err != nil {
			return fmt.Errorf("register bot handlers: %w", err)
		}
	} else {
		logger.Warn("TELEGRAM_TOKEN is empty, bot disabled")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(gctx, cfg.HTTPAddr)
	})
	if botController != nil {
		g.Go(func() error {
			return botController.Start(gctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("Shutdown complete")
	return nil
}

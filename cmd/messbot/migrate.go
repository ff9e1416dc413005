package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/app"
)

func migrateCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|status]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			ctx := cmd.Context()
			pool, err := app.NewPool(ctx, rt.cfg.GetDBDSN())
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator, err := app.NewMigrator(pool, rt.logger)
			if err != nil {
				return err
			}
			defer migrator.Close()

			if action == "up" {
				return migrator.Up(ctx)
			}

			if err := migrator.Status(ctx); err != nil {
				return err
			}
			version, err := migrator.Version(ctx)
			if err != nil {
				return fmt.Errorf("read schema version: %w", err)
			}
			rt.logger.Info("Schema version", zap.Int64("version", version))
			return nil
		},
	}
}

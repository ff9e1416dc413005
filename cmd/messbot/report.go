package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/app"
	"github.com/Freeeeeet/mess_voting_bot/internal/model"
)

func reportCommand(rt *runtime) *cobra.Command {
	var (
		sessionID string
		mess      string
		out       string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a session's menu for one mess type as a PNG file",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(sessionID)
			if err != nil {
				return fmt.Errorf("invalid --session: %w", err)
			}

			ctx := cmd.Context()
			pool, err := app.NewPool(ctx, rt.cfg.GetDBDSN())
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := app.NewServices(pool, nil, rt.logger)
			rendered, err := svc.Reports.Render(ctx, id, model.MessType(mess))
			if err != nil {
				return err
			}

			if out == "" {
				out = rendered.Filename
			}
			if err := os.WriteFile(out, rendered.Data, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}

			rt.logger.Info("Report written",
				zap.String("file", out),
				zap.Int("items", rendered.Menu.ItemCount()),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "voting session id")
	cmd.Flags().StringVar(&mess, "mess", "", "mess type: veg, non_veg, special, food_park")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default menu-report-<mess>-<date>.png)")
	_ = cmd.MarkFlagRequired("session")
	_ = cmd.MarkFlagRequired("mess")
	return cmd
}

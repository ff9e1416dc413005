package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/metrics"
	"github.com/Freeeeeet/mess_voting_bot/internal/repository"
	"github.com/Freeeeeet/mess_voting_bot/internal/service"
)

// Services все сервисы приложения поверх одного пула
type Services struct {
	Settings     *service.SettingsService
	Profiles     *service.ProfileService
	Sessions     *service.SessionService
	Menu         *service.MenuService
	Votes        *service.VoteService
	Finalization *service.FinalizationService
	Reports      *service.ReportService
	Feedback     *service.FeedbackService
	Events       *service.EventService
	Stats        *service.StatsService
}

// NewPool открывает пул соединений и проверяет доступность базы
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// NewServices собирает репозитории и сервисы. m может быть nil.
func NewServices(pool *pgxpool.Pool, m *metrics.Metrics, logger *zap.Logger) *Services {
	profiles := repository.NewProfileRepository(pool)
	sessions := repository.NewSessionRepository(pool)
	items := repository.NewMenuItemRepository(pool)
	votes := repository.NewVoteRepository(pool)

	settings := service.NewSettingsService(repository.NewSettingsRepository(pool), logger)

	return &Services{
		Settings:     settings,
		Profiles:     service.NewProfileService(profiles, settings, m, logger),
		Sessions:     service.NewSessionService(sessions, logger),
		Menu:         service.NewMenuService(sessions, items, profiles, logger),
		Votes:        service.NewVoteService(sessions, items, profiles, votes, m, logger),
		Finalization: service.NewFinalizationService(sessions, items, m, logger),
		Reports:      service.NewReportService(sessions, items, m, logger),
		Feedback:     service.NewFeedbackService(repository.NewFeedbackRepository(pool), profiles, logger),
		Events:       service.NewEventService(repository.NewEventRepository(pool), logger),
		Stats:        service.NewStatsService(sessions, profiles, votes),
	}
}

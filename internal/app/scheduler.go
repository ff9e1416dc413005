package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/metrics"
	"github.com/Freeeeeet/mess_voting_bot/internal/service"
)

// StatsSource отдаёт агрегаты для метрик
type StatsSource interface {
	Snapshot(ctx context.Context) (*service.Stats, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	stats    StatsSource
	metrics  *metrics.Metrics
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler создаёт новый планировщик
func NewScheduler(stats StatsSource, m *metrics.Metrics, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		stats:    stats,
		metrics:  m,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))

	s.wg.Add(1)
	go s.runMetricsTask(ctx)
}

// Stop останавливает фоновые задачи и ждёт их завершения
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})
	s.wg.Wait()
}

// runMetricsTask периодически обновляет gauge-метрики из базы
func (s *Scheduler) runMetricsTask(ctx context.Context) {
	defer s.wg.Done()

	// Первый запуск сразу при старте
	s.refreshMetrics(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refreshMetrics(ctx)
		case <-s.stopChan:
			s.logger.Info("Metrics task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Metrics task cancelled")
			return
		}
	}
}

func (s *Scheduler) refreshMetrics(ctx context.Context) {
	stats, err := s.stats.Snapshot(ctx)
	if err != nil {
		s.logger.Error("Failed to refresh metrics", zap.Error(err))
		return
	}

	sessions := make(map[string]int, len(stats.SessionsByStatus))
	for st, n := range stats.SessionsByStatus {
		sessions[string(st)] = n
	}
	profiles := make(map[string]int, len(stats.ProfilesByRole))
	for role, n := range stats.ProfilesByRole {
		profiles[string(role)] = n
	}

	s.metrics.SetSessions(sessions)
	s.metrics.SetProfiles(profiles)
	s.metrics.SetVotesStored(stats.Votes)

	s.logger.Debug("Metrics refreshed", zap.Int("votes", stats.Votes))
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/metrics"
	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/report"
	"github.com/Freeeeeet/mess_voting_bot/internal/voting"
)

// RenderedReport готовый файл отчёта
type RenderedReport struct {
	Filename string
	Data     []byte
	Menu     *report.Menu
}

type ReportService struct {
	sessions SessionRepository
	items    MenuItemRepository
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func NewReportService(
	sessions SessionRepository,
	items MenuItemRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		sessions: sessions,
		items:    items,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock подменяет источник времени (для тестов и CLI)
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// Build собирает меню для отчёта.
// Для финализированной сессии берётся ручной выбор, а если его нет, по одному победителю на слот.
// Для остальных статусов в отчёт попадают все предложенные пункты.
func (s *ReportService) Build(ctx context.Context, sessionID uuid.UUID, mess model.MessType) (*report.Menu, error) {
	if !mess.Valid() {
		return nil, validationError("unknown mess type %q", mess)
	}
	session, err := loadSession(ctx, s.sessions, sessionID)
	if err != nil {
		return nil, err
	}

	items, err := s.items.ListBySession(ctx, sessionID, &mess)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}

	final := session.IsFinalized()
	if final {
		if voting.HasDecision(items) {
			items = voting.Selected(items)
		} else {
			items = voting.ReportWinners(items)
		}
	}

	return report.Build(session, mess, items, final, s.now()), nil
}

// Render собирает и рисует отчёт в PNG
func (s *ReportService) Render(ctx context.Context, sessionID uuid.UUID, mess model.MessType) (*RenderedReport, error) {
	menu, err := s.Build(ctx, sessionID, mess)
	if err != nil {
		return nil, err
	}

	data, err := report.Render(menu)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	s.metrics.ReportRendered(string(mess))
	s.logger.Info("Report rendered",
		zap.String("session_id", sessionID.String()),
		zap.String("mess_type", string(mess)),
		zap.Int("items", menu.ItemCount()),
		zap.Int("bytes", len(data)),
	)

	return &RenderedReport{Filename: menu.Filename(), Data: data, Menu: menu}, nil
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/metrics"
	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/voting"
)

// FinalizationPreview то, что видит админ перед подтверждением финального меню
type FinalizationPreview struct {
	Session *model.VotingSession `json:"session"`
	Items   []model.MenuItem     `json:"items"`
	// Decided: в сессии уже есть ручной выбор, флаги не пересчитывались
	Decided bool `json:"decided"`
}

type FinalizationService struct {
	sessions SessionRepository
	items    MenuItemRepository
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewFinalizationService(
	sessions SessionRepository,
	items MenuItemRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) *FinalizationService {
	return &FinalizationService{
		sessions: sessions,
		items:    items,
		metrics:  m,
		logger:   logger,
	}
}

// Preview считает выбор по голосам (или возвращает сохранённый ручной выбор)
func (s *FinalizationService) Preview(ctx context.Context, sessionID uuid.UUID) (*FinalizationPreview, error) {
	session, err := loadSession(ctx, s.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionStatusClosed && session.Status != model.SessionStatusFinalized {
		return nil, fmt.Errorf("%w: session must be closed before finalization, got %s", ErrInvalidTransition, session.Status)
	}

	items, err := s.items.ListBySession(ctx, sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}

	return &FinalizationPreview{
		Session: session,
		Items:   voting.ComputeFinalSelection(items),
		Decided: voting.HasDecision(items),
	}, nil
}

// Confirm сохраняет флаги is_selected и переводит сессию в finalized.
// selections переопределяет значения предпросмотра; пункты, которых нет в selections, берутся из предпросмотра.
func (s *FinalizationService) Confirm(ctx context.Context, sessionID uuid.UUID, selections map[uuid.UUID]bool) (*model.VotingSession, error) {
	preview, err := s.Preview(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	flags := make(map[uuid.UUID]bool, len(preview.Items))
	for i := range preview.Items {
		flags[preview.Items[i].ID] = preview.Items[i].Selected()
	}
	for id, selected := range selections {
		if _, ok := flags[id]; !ok {
			return nil, validationError("menu item %s does not belong to session", id)
		}
		flags[id] = selected
	}

	from := preview.Session.Status
	if err := s.sessions.Finalize(ctx, sessionID, from, flags); err != nil {
		return nil, translateRepoError(err)
	}

	selectedCount := 0
	for _, v := range flags {
		if v {
			selectedCount++
		}
	}

	s.metrics.Finalized()
	s.logger.Info("Menu finalized",
		zap.String("session_id", sessionID.String()),
		zap.String("from", string(from)),
		zap.Int("items", len(flags)),
		zap.Int("selected", selectedCount),
	)

	session := *preview.Session
	session.Status = model.SessionStatusFinalized
	return &session, nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
)

type SessionService struct {
	sessions SessionRepository
	logger   *zap.Logger
}

func NewSessionService(sessions SessionRepository, logger *zap.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		logger:   logger,
	}
}

// Create создаёт сессию голосования в статусе draft
func (s *SessionService) Create(ctx context.Context, title string, start, end time.Time) (*model.VotingSession, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, validationError("title is required")
	}
	if start.IsZero() || end.IsZero() {
		return nil, validationError("start and end dates are required")
	}
	if end.Before(start) {
		return nil, validationError("end date %s is before start date %s", end.Format(model.DateLayout), start.Format(model.DateLayout))
	}

	session := &model.VotingSession{
		Title:     title,
		StartDate: start,
		EndDate:   end,
		Status:    model.SessionStatusDraft,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("Voting session created",
		zap.String("session_id", session.ID.String()),
		zap.String("title", session.Title),
	)

	return session, nil
}

// List возвращает все сессии, новые первыми
func (s *SessionService) List(ctx context.Context) ([]*model.VotingSession, error) {
	return s.ListByStatuses(ctx)
}

func (s *SessionService) ListByStatuses(ctx context.Context, statuses ...model.SessionStatus) ([]*model.VotingSession, error) {
	for _, st := range statuses {
		if !st.Valid() {
			return nil, validationError("unknown session status %q", st)
		}
	}
	sessions, err := s.sessions.List(ctx, statuses...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*model.VotingSession, error) {
	return loadSession(ctx, s.sessions, id)
}

// Current выбирает сессию для студента: открытая, иначе черновик, иначе последняя финализированная
func (s *SessionService) Current(ctx context.Context) (*model.VotingSession, error) {
	for _, st := range []model.SessionStatus{
		model.SessionStatusOpenForVoting,
		model.SessionStatusDraft,
		model.SessionStatusFinalized,
	} {
		sessions, err := s.sessions.List(ctx, st)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		if len(sessions) > 0 {
			return sessions[0], nil
		}
	}
	return nil, notFound("current session")
}

// UpdateStatus двигает сессию на один шаг вперёд. В finalized переводит только FinalizationService.
func (s *SessionService) UpdateStatus(ctx context.Context, id uuid.UUID, next model.SessionStatus) (*model.VotingSession, error) {
	if !next.Valid() {
		return nil, validationError("unknown session status %q", next)
	}
	if next == model.SessionStatusFinalized {
		return nil, fmt.Errorf("%w: sessions are finalized through menu finalization", ErrInvalidTransition)
	}

	session, err := loadSession(ctx, s.sessions, id)
	if err != nil {
		return nil, err
	}

	if !session.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, session.Status, next)
	}

	if err := s.sessions.UpdateStatus(ctx, id, session.Status, next); err != nil {
		return nil, translateRepoError(err)
	}

	s.logger.Info("Session status changed",
		zap.String("session_id", id.String()),
		zap.String("from", string(session.Status)),
		zap.String("to", string(next)),
	)

	session.Status = next
	return session, nil
}

// Delete удаляет сессию вместе с пунктами меню и голосами
func (s *SessionService) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return validationError("session id is required")
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return translateRepoError(err)
	}

	s.logger.Info("Session deleted", zap.String("session_id", id.String()))
	return nil
}

package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/voting"
)

// Интерфейсы хранилищ, которые нужны сервисам. Реализации живут в internal/repository.

type ProfileRepository interface {
	Create(ctx context.Context, p *model.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.Profile, error)
	LinkTelegram(ctx context.Context, id uuid.UUID, telegramID int64) error
	ListCaterers(ctx context.Context, mess *model.MessType) ([]*model.Profile, error)
	CountByRole(ctx context.Context) (map[model.Role]int, error)
	ChangeMessType(ctx context.Context, id uuid.UUID, mess model.MessType) (int64, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s *model.VotingSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.VotingSession, error)
	List(ctx context.Context, statuses ...model.SessionStatus) ([]*model.VotingSession, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.SessionStatus) error
	Finalize(ctx context.Context, id uuid.UUID, from model.SessionStatus, selections map[uuid.UUID]bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[model.SessionStatus]int, error)
}

type MenuItemRepository interface {
	Create(ctx context.Context, it *model.MenuItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.MenuItem, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID, mess *model.MessType) ([]model.MenuItem, error)
	ListSelected(ctx context.Context, sessionID uuid.UUID, mess *model.MessType) ([]model.MenuItem, error)
	ListSlot(ctx context.Context, item *model.MenuItem) ([]model.MenuItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type VoteRepository interface {
	voting.Store
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Vote, error)
	CountsBySession(ctx context.Context, sessionID uuid.UUID) ([]model.VoteCount, error)
	Total(ctx context.Context) (int, error)
}

type FeedbackRepository interface {
	Create(ctx context.Context, f *model.Feedback) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Feedback, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*model.Feedback, error)
	ListByCaterer(ctx context.Context, catererID uuid.UUID) ([]*model.Feedback, error)
	Respond(ctx context.Context, id, catererID uuid.UUID, response string) error
}

type EventRepository interface {
	Create(ctx context.Context, e *model.Event) error
	List(ctx context.Context) ([]*model.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type SettingsRepository interface {
	List(ctx context.Context) ([]model.SystemSetting, error)
	Get(ctx context.Context, key string) (*model.SystemSetting, error)
	Upsert(ctx context.Context, key, value string) error
}

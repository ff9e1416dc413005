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

// NewMenuItem данные нового пункта меню
type NewMenuItem struct {
	SessionID   uuid.UUID
	DateServed  time.Time
	MealType    model.MealType
	MessType    model.MessType
	Name        string
	Description string
}

type MenuService struct {
	sessions SessionRepository
	items    MenuItemRepository
	profiles ProfileRepository
	logger   *zap.Logger
}

func NewMenuService(
	sessions SessionRepository,
	items MenuItemRepository,
	profiles ProfileRepository,
	logger *zap.Logger,
) *MenuService {
	return &MenuService{
		sessions: sessions,
		items:    items,
		profiles: profiles,
		logger:   logger,
	}
}

// AddItem добавляет пункт меню в сессию-черновик
func (s *MenuService) AddItem(ctx context.Context, actorID uuid.UUID, in NewMenuItem) (*model.MenuItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("item name is required")
	}
	if !in.MealType.Valid() {
		return nil, validationError("unknown meal type %q", in.MealType)
	}
	if !in.MessType.Valid() {
		return nil, validationError("unknown mess type %q", in.MessType)
	}
	if in.DateServed.IsZero() {
		return nil, validationError("date served is required")
	}

	actor, err := loadProfile(ctx, s.profiles, actorID)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin():
	case actor.IsCaterer():
		if !actor.Serves(in.MessType) {
			return nil, fmt.Errorf("%w: caterer does not serve %s", ErrForbidden, in.MessType)
		}
	default:
		return nil, fmt.Errorf("%w: only caterers and admins add menu items", ErrForbidden)
	}

	session, err := loadSession(ctx, s.sessions, in.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionStatusDraft {
		return nil, ErrSessionNotDraft
	}
	if !session.Covers(in.DateServed) {
		return nil, validationError("date %s is outside session range %s..%s",
			in.DateServed.Format(model.DateLayout),
			session.StartDate.Format(model.DateLayout),
			session.EndDate.Format(model.DateLayout),
		)
	}

	item := &model.MenuItem{
		SessionID:   session.ID,
		DateServed:  in.DateServed,
		MealType:    in.MealType,
		MessType:    in.MessType,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   &actor.ID,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create menu item: %w", err)
	}

	s.logger.Info("Menu item added",
		zap.String("item_id", item.ID.String()),
		zap.String("session_id", session.ID.String()),
		zap.String("slot", item.DateServed.Format(model.DateLayout)+"/"+string(item.MealType)+"/"+string(item.MessType)),
	)

	return item, nil
}

// DeleteItem удаляет пункт меню. Повар может удалять только пока сессия в draft, админ всегда.
func (s *MenuService) DeleteItem(ctx context.Context, actorID, itemID uuid.UUID) error {
	actor, err := loadProfile(ctx, s.profiles, actorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && !actor.IsCaterer() {
		return fmt.Errorf("%w: only caterers and admins delete menu items", ErrForbidden)
	}

	item, err := loadMenuItem(ctx, s.items, itemID)
	if err != nil {
		return err
	}

	if actor.IsCaterer() {
		if !actor.Serves(item.MessType) {
			return fmt.Errorf("%w: caterer does not serve %s", ErrForbidden, item.MessType)
		}
		session, err := loadSession(ctx, s.sessions, item.SessionID)
		if err != nil {
			return err
		}
		if session.Status != model.SessionStatusDraft {
			return ErrSessionNotDraft
		}
	}

	if err := s.items.Delete(ctx, itemID); err != nil {
		return translateRepoError(err)
	}

	s.logger.Info("Menu item deleted",
		zap.String("item_id", itemID.String()),
		zap.String("actor_id", actorID.String()),
	)
	return nil
}

func (s *MenuService) Get(ctx context.Context, id uuid.UUID) (*model.MenuItem, error) {
	return loadMenuItem(ctx, s.items, id)
}

// ListBySession возвращает пункты меню со свежими голосами
func (s *MenuService) ListBySession(ctx context.Context, sessionID uuid.UUID, mess model.MessType) ([]model.MenuItem, error) {
	filter, err := messFilter(mess)
	if err != nil {
		return nil, err
	}
	if _, err := loadSession(ctx, s.sessions, sessionID); err != nil {
		return nil, err
	}

	items, err := s.items.ListBySession(ctx, sessionID, filter)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	return items, nil
}

// SelectedItems возвращает финальное меню сессии
func (s *MenuService) SelectedItems(ctx context.Context, sessionID uuid.UUID, mess model.MessType) ([]model.MenuItem, error) {
	filter, err := messFilter(mess)
	if err != nil {
		return nil, err
	}
	session, err := loadSession(ctx, s.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsFinalized() {
		return nil, nil
	}

	items, err := s.items.ListSelected(ctx, sessionID, filter)
	if err != nil {
		return nil, fmt.Errorf("list selected items: %w", err)
	}
	return items, nil
}

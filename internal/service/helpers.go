package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/repository"
)

// translateRepoError переводит ошибки хранилища в ошибки сервиса
func translateRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNoRows):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, repository.ErrStaleStatus), errors.Is(err, repository.ErrSlotAlreadyVoted):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return err
	}
}

func loadProfile(ctx context.Context, profiles ProfileRepository, id uuid.UUID) (*model.Profile, error) {
	if id == uuid.Nil {
		return nil, validationError("profile id is required")
	}
	p, err := profiles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if p == nil {
		return nil, notFound("profile")
	}
	return p, nil
}

func loadSession(ctx context.Context, sessions SessionRepository, id uuid.UUID) (*model.VotingSession, error) {
	if id == uuid.Nil {
		return nil, validationError("session id is required")
	}
	s, err := sessions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if s == nil {
		return nil, notFound("session")
	}
	return s, nil
}

func loadMenuItem(ctx context.Context, items MenuItemRepository, id uuid.UUID) (*model.MenuItem, error) {
	if id == uuid.Nil {
		return nil, validationError("menu item id is required")
	}
	it, err := items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	if it == nil {
		return nil, notFound("menu item")
	}
	return it, nil
}

func messFilter(mess model.MessType) (*model.MessType, error) {
	if mess == "" {
		return nil, nil
	}
	if !mess.Valid() {
		return nil, validationError("unknown mess type %q", mess)
	}
	return &mess, nil
}

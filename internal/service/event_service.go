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

type NewEvent struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
	ImageURL    string
}

type EventService struct {
	events EventRepository
	logger *zap.Logger
}

func NewEventService(events EventRepository, logger *zap.Logger) *EventService {
	return &EventService{events: events, logger: logger}
}

func (s *EventService) Create(ctx context.Context, in NewEvent) (*model.Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validationError("event title is required")
	}
	if in.Date.IsZero() {
		return nil, validationError("event date is required")
	}

	e := &model.Event{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
		Location:    strings.TrimSpace(in.Location),
	}
	if url := strings.TrimSpace(in.ImageURL); url != "" {
		e.ImageURL = &url
	}

	if err := s.events.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info("Event created", zap.String("event_id", e.ID.String()), zap.String("title", e.Title))
	return e, nil
}

func (s *EventService) List(ctx context.Context) ([]*model.Event, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *EventService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return translateRepoError(err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/repository/base"
)

type EventRepository struct {
	*base.Repository
}

func NewEventRepository(db base.Querier) *EventRepository {
	return &EventRepository{Repository: base.NewRepository(db)}
}

func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	query := `
		INSERT INTO events (title, description, date, location, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, e.Title, e.Description, e.Date, e.Location, e.ImageURL).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// List возвращает события по дате
func (r *EventRepository) List(ctx context.Context) ([]*model.Event, error) {
	rows, err := r.Query(ctx, `
		SELECT id, title, description, date, location, image_url, created_at
		FROM events
		ORDER BY date, created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.ImageURL, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete event: %w", ErrNoRows)
	}
	return nil
}

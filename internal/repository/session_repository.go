package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/repository/base"
)

const sessionColumns = `id, title, start_date, end_date, status, created_at`

type SessionRepository struct {
	*base.Repository
}

func NewSessionRepository(db base.Querier) *SessionRepository {
	return &SessionRepository{Repository: base.NewRepository(db)}
}

func scanSession(row pgx.Row) (*model.VotingSession, error) {
	var s model.VotingSession
	err := row.Scan(&s.ID, &s.Title, &s.StartDate, &s.EndDate, &s.Status, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create создаёт сессию голосования в статусе draft
func (r *SessionRepository) Create(ctx context.Context, s *model.VotingSession) error {
	query := `
		INSERT INTO voting_sessions (title, start_date, end_date, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, s.Title, s.StartDate, s.EndDate, string(s.Status)).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetByID получает сессию по ID
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.VotingSession, error) {
	s, err := scanSession(r.QueryRow(ctx, `SELECT `+sessionColumns+` FROM voting_sessions WHERE id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}
	return s, nil
}

// List возвращает сессии, начиная с самых новых. Пустой statuses означает все статусы.
func (r *SessionRepository) List(ctx context.Context, statuses ...model.SessionStatus) ([]*model.VotingSession, error) {
	filter := make([]string, 0, len(statuses))
	for _, st := range statuses {
		filter = append(filter, string(st))
	}

	query := `
		SELECT ` + sessionColumns + `
		FROM voting_sessions
		WHERE cardinality($1::text[]) = 0 OR status = ANY($1::text[])
		ORDER BY created_at DESC
	`

	rows, err := r.Query(ctx, query, filter)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.VotingSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// UpdateStatus переводит сессию из from в to. Если статус уже другой, возвращает ErrStaleStatus.
func (r *SessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.SessionStatus) error {
	affected, err := r.ExecAffected(ctx,
		`UPDATE voting_sessions SET status = $1 WHERE id = $2 AND status = $3`,
		string(to), id, string(from),
	)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update session status: %w", ErrStaleStatus)
	}
	return nil
}

// Finalize сохраняет флаги is_selected и переводит сессию в finalized одной транзакцией
func (r *SessionRepository) Finalize(ctx context.Context, id uuid.UUID, from model.SessionStatus, selections map[uuid.UUID]bool) error {
	return r.InTx(ctx, func(q base.Querier) error {
		batch := &pgx.Batch{}
		for itemID, selected := range selections {
			batch.Queue(`UPDATE menu_items SET is_selected = $1 WHERE id = $2 AND session_id = $3`, selected, itemID, id)
		}
		batch.Queue(
			`UPDATE voting_sessions SET status = $1 WHERE id = $2 AND status = $3`,
			string(model.SessionStatusFinalized), id, string(from),
		)

		results := q.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			tag, err := results.Exec()
			if err != nil {
				results.Close()
				return fmt.Errorf("finalize session: %w", err)
			}
			if i == batch.Len()-1 && tag.RowsAffected() == 0 {
				results.Close()
				return fmt.Errorf("finalize session: %w", ErrStaleStatus)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("finalize session: %w", err)
		}
		return nil
	})
}

// Delete удаляет сессию, пункты меню и голоса удаляются каскадно
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM voting_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete session: %w", ErrNoRows)
	}
	return nil
}

// CountByStatus считает сессии по статусам (для метрик)
func (r *SessionRepository) CountByStatus(ctx context.Context) (map[model.SessionStatus]int, error) {
	rows, err := r.Query(ctx, `SELECT status, COUNT(*) FROM voting_sessions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count sessions by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.SessionStatus]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[model.SessionStatus(status)] = count
	}
	return counts, rows.Err()
}

package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/repository/base"
)

const feedbackSelect = `
	SELECT f.id, f.student_id, f.caterer_id, f.message, f.response, f.created_at, f.responded_at,
	       c.full_name, s.full_name
	FROM feedbacks f
	JOIN profiles c ON c.id = f.caterer_id
	JOIN profiles s ON s.id = f.student_id
`

type FeedbackRepository struct {
	*base.Repository
}

func NewFeedbackRepository(db base.Querier) *FeedbackRepository {
	return &FeedbackRepository{Repository: base.NewRepository(db)}
}

func scanFeedback(row pgx.Row) (*model.Feedback, error) {
	var f model.Feedback
	err := row.Scan(
		&f.ID,
		&f.StudentID,
		&f.CatererID,
		&f.Message,
		&f.Response,
		&f.CreatedAt,
		&f.RespondedAt,
		&f.CatererName,
		&f.StudentName,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FeedbackRepository) list(ctx context.Context, op, where string, arg any) ([]*model.Feedback, error) {
	rows, err := r.Query(ctx, feedbackSelect+where+` ORDER BY f.created_at DESC`, arg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var list []*model.Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

// Create сохраняет отзыв студента
func (r *FeedbackRepository) Create(ctx context.Context, f *model.Feedback) error {
	query := `
		INSERT INTO feedbacks (student_id, caterer_id, message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	if err := r.QueryRow(ctx, query, f.StudentID, f.CatererID, f.Message).Scan(&f.ID, &f.CreatedAt); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Feedback, error) {
	f, err := scanFeedback(r.QueryRow(ctx, feedbackSelect+` WHERE f.id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get feedback by id: %w", err)
	}
	return f, nil
}

func (r *FeedbackRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*model.Feedback, error) {
	return r.list(ctx, "list feedback by student", ` WHERE f.student_id = $1`, studentID)
}

func (r *FeedbackRepository) ListByCaterer(ctx context.Context, catererID uuid.UUID) ([]*model.Feedback, error) {
	return r.list(ctx, "list feedback by caterer", ` WHERE f.caterer_id = $1`, catererID)
}

// Respond записывает ответ повара; чужой отзыв не обновится
func (r *FeedbackRepository) Respond(ctx context.Context, id, catererID uuid.UUID, response string) error {
	affected, err := r.ExecAffected(ctx,
		`UPDATE feedbacks SET response = $1, responded_at = now() WHERE id = $2 AND caterer_id = $3`,
		response, id, catererID,
	)
	if err != nil {
		return fmt.Errorf("respond to feedback: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("respond to feedback: %w", ErrNoRows)
	}
	return nil
}

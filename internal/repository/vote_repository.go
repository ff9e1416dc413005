package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/repository/base"
	"github.com/Freeeeeet/mess_voting_bot/internal/voting"
)

// Вставка проходит только если у студента нет другого голоса в том же слоте
const insertVoteIfSlotFree = `
	INSERT INTO votes (user_id, menu_item_id)
	SELECT $1, t.id
	FROM menu_items t
	WHERE t.id = $2
	  AND NOT EXISTS (
	      SELECT 1
	      FROM votes v
	      JOIN menu_items m ON m.id = v.menu_item_id
	      WHERE v.user_id = $1
	        AND m.session_id = t.session_id
	        AND m.date_served = t.date_served
	        AND m.meal_type = t.meal_type
	        AND m.mess_type = t.mess_type
	  )
`

type VoteRepository struct {
	*base.Repository
}

func NewVoteRepository(db base.Querier) *VoteRepository {
	return &VoteRepository{Repository: base.NewRepository(db)}
}

// ListByUser возвращает все голоса студента
func (r *VoteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Vote, error) {
	rows, err := r.Query(ctx,
		`SELECT id, user_id, menu_item_id, created_at FROM votes WHERE user_id = $1 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list votes by user: %w", err)
	}
	defer rows.Close()

	var votes []model.Vote
	for rows.Next() {
		var v model.Vote
		if err := rows.Scan(&v.ID, &v.UserID, &v.MenuItemID, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// CountsBySession считает голоса по каждому пункту меню сессии (пункты без голосов тоже попадают)
func (r *VoteRepository) CountsBySession(ctx context.Context, sessionID uuid.UUID) ([]model.VoteCount, error) {
	query := `
		SELECT mi.id, COUNT(v.id)
		FROM menu_items mi
		LEFT JOIN votes v ON v.menu_item_id = mi.id
		WHERE mi.session_id = $1
		GROUP BY mi.id
		ORDER BY mi.id
	`

	rows, err := r.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("count votes by session: %w", err)
	}
	defer rows.Close()

	var counts []model.VoteCount
	for rows.Next() {
		var c model.VoteCount
		if err := rows.Scan(&c.MenuItemID, &c.Count); err != nil {
			return nil, fmt.Errorf("scan vote count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// Total считает все голоса (для метрик)
func (r *VoteRepository) Total(ctx context.Context) (int, error) {
	var total int
	if err := r.QueryRow(ctx, `SELECT COUNT(*) FROM votes`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return total, nil
}

// ApplyVoteOps применяет операции голосования атомарно.
// Строка профиля блокируется, так что переключения одного студента выполняются по очереди.
func (r *VoteRepository) ApplyVoteOps(ctx context.Context, studentID uuid.UUID, ops []voting.StoreOp) error {
	if len(ops) == 0 {
		return nil
	}

	err := r.InTx(ctx, func(q base.Querier) error {
		var locked uuid.UUID
		if err := q.QueryRow(ctx, `SELECT id FROM profiles WHERE id = $1 FOR UPDATE`, studentID).Scan(&locked); err != nil {
			return fmt.Errorf("lock profile: %w", err)
		}

		for _, op := range ops {
			switch op.Kind {
			case voting.OpDelete:
				if _, err := q.Exec(ctx, `DELETE FROM votes WHERE user_id = $1 AND menu_item_id = $2`, studentID, op.ItemID); err != nil {
					return fmt.Errorf("delete vote: %w", err)
				}
			case voting.OpInsert:
				tag, err := q.Exec(ctx, insertVoteIfSlotFree, studentID, op.ItemID)
				if err != nil {
					return fmt.Errorf("insert vote: %w", err)
				}
				if tag.RowsAffected() == 0 {
					return ErrSlotAlreadyVoted
				}
			default:
				return fmt.Errorf("unknown vote op %d", op.Kind)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("apply vote ops: %w", err)
	}
	return nil
}

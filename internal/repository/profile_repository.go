package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/repository/base"
)

const profileColumns = `id, full_name, role, mess_type, reg_number, served_mess_types, assigned_caterer_id, telegram_id, created_at`

type ProfileRepository struct {
	*base.Repository
}

func NewProfileRepository(db base.Querier) *ProfileRepository {
	return &ProfileRepository{Repository: base.NewRepository(db)}
}

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var (
		p      model.Profile
		served []string
	)
	err := row.Scan(
		&p.ID,
		&p.FullName,
		&p.Role,
		&p.MessType,
		&p.RegNumber,
		&served,
		&p.AssignedCatererID,
		&p.TelegramID,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	for _, m := range served {
		p.ServedMessTypes = append(p.ServedMessTypes, model.MessType(m))
	}
	return &p, nil
}

func servedParam(types []model.MessType) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out
}

// Create создаёт профиль
func (r *ProfileRepository) Create(ctx context.Context, p *model.Profile) error {
	query := `
		INSERT INTO profiles (full_name, role, mess_type, reg_number, served_mess_types, assigned_caterer_id, telegram_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		p.FullName,
		string(p.Role),
		messParam(p.MessType),
		p.RegNumber,
		servedParam(p.ServedMessTypes),
		p.AssignedCatererID,
		p.TelegramID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	return nil
}

// GetByID получает профиль по ID
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	p, err := scanProfile(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile by id: %w", err)
	}
	return p, nil
}

// GetByTelegramID получает профиль, привязанный к Telegram аккаунту
func (r *ProfileRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE telegram_id = $1`

	p, err := scanProfile(r.QueryRow(ctx, query, telegramID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile by telegram id: %w", err)
	}
	return p, nil
}

// LinkTelegram привязывает Telegram ID к профилю
func (r *ProfileRepository) LinkTelegram(ctx context.Context, id uuid.UUID, telegramID int64) error {
	affected, err := r.ExecAffected(ctx, `UPDATE profiles SET telegram_id = $1 WHERE id = $2`, telegramID, id)
	if err != nil {
		return fmt.Errorf("link telegram: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("link telegram: %w", ErrNoRows)
	}
	return nil
}

// ListCaterers возвращает поваров; если mess задан, только обслуживающих этот тип столовой
func (r *ProfileRepository) ListCaterers(ctx context.Context, mess *model.MessType) ([]*model.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE role = 'caterer'
		  AND ($1::text IS NULL OR $1::text = ANY(served_mess_types))
		ORDER BY full_name
	`

	rows, err := r.Query(ctx, query, messParam(mess))
	if err != nil {
		return nil, fmt.Errorf("list caterers: %w", err)
	}
	defer rows.Close()

	var profiles []*model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan caterer: %w", err)
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

// CountByRole считает профили по ролям
func (r *ProfileRepository) CountByRole(ctx context.Context) (map[model.Role]int, error) {
	rows, err := r.Query(ctx, `SELECT role, COUNT(*) FROM profiles GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("count profiles by role: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Role]int)
	for rows.Next() {
		var (
			role  string
			count int
		)
		if err := rows.Scan(&role, &count); err != nil {
			return nil, fmt.Errorf("scan role count: %w", err)
		}
		counts[model.Role(role)] = count
	}
	return counts, rows.Err()
}

// ChangeMessType меняет тип столовой студента и удаляет все его голоса в одной транзакции.
// Возвращает количество удалённых голосов.
func (r *ProfileRepository) ChangeMessType(ctx context.Context, id uuid.UUID, mess model.MessType) (int64, error) {
	var deleted int64

	err := r.InTx(ctx, func(q base.Querier) error {
		tag, err := q.Exec(ctx, `DELETE FROM votes WHERE user_id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete votes: %w", err)
		}
		deleted = tag.RowsAffected()

		tag, err = q.Exec(ctx, `UPDATE profiles SET mess_type = $1 WHERE id = $2 AND role = 'student'`, string(mess), id)
		if err != nil {
			return fmt.Errorf("update mess type: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNoRows
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("change mess type: %w", err)
	}

	return deleted, nil
}

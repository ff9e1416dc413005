package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/repository/base"
)

// Пункты меню всегда читаются вместе со свежим количеством голосов
const menuItemSelect = `
	SELECT mi.id, mi.session_id, mi.date_served, mi.meal_type, mi.mess_type, mi.name, mi.description,
	       mi.is_selected, mi.created_by, mi.created_at, COUNT(v.id) AS vote_count
	FROM menu_items mi
	LEFT JOIN votes v ON v.menu_item_id = mi.id
`

const menuItemOrder = `
	GROUP BY mi.id
	ORDER BY mi.date_served,
	         array_position(ARRAY['breakfast', 'lunch', 'snacks', 'dinner'], mi.meal_type),
	         mi.mess_type,
	         mi.created_at
`

type MenuItemRepository struct {
	*base.Repository
}

func NewMenuItemRepository(db base.Querier) *MenuItemRepository {
	return &MenuItemRepository{Repository: base.NewRepository(db)}
}

func scanMenuItem(row pgx.Row) (*model.MenuItem, error) {
	var it model.MenuItem
	err := row.Scan(
		&it.ID,
		&it.SessionID,
		&it.DateServed,
		&it.MealType,
		&it.MessType,
		&it.Name,
		&it.Description,
		&it.IsSelected,
		&it.CreatedBy,
		&it.CreatedAt,
		&it.VoteCount,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *MenuItemRepository) collect(ctx context.Context, op, query string, args ...any) ([]model.MenuItem, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []model.MenuItem
	for rows.Next() {
		it, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// Create добавляет пункт меню
func (r *MenuItemRepository) Create(ctx context.Context, it *model.MenuItem) error {
	query := `
		INSERT INTO menu_items (session_id, date_served, meal_type, mess_type, name, description, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		it.SessionID,
		it.DateServed,
		string(it.MealType),
		string(it.MessType),
		it.Name,
		it.Description,
		it.CreatedBy,
	).Scan(&it.ID, &it.CreatedAt)
	if err != nil {
		return fmt.Errorf("create menu item: %w", err)
	}
	return nil
}

// GetByID получает пункт меню с количеством голосов
func (r *MenuItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.MenuItem, error) {
	it, err := scanMenuItem(r.QueryRow(ctx, menuItemSelect+` WHERE mi.id = $1 GROUP BY mi.id`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get menu item by id: %w", err)
	}
	return it, nil
}

// ListBySession возвращает пункты меню сессии, опционально только одного типа столовой
func (r *MenuItemRepository) ListBySession(ctx context.Context, sessionID uuid.UUID, mess *model.MessType) ([]model.MenuItem, error) {
	query := menuItemSelect + `
		WHERE mi.session_id = $1 AND ($2::text IS NULL OR mi.mess_type = $2::text)
	` + menuItemOrder

	return r.collect(ctx, "list menu items by session", query, sessionID, messParam(mess))
}

// ListSelected возвращает финальное меню: только пункты с is_selected = true
func (r *MenuItemRepository) ListSelected(ctx context.Context, sessionID uuid.UUID, mess *model.MessType) ([]model.MenuItem, error) {
	query := menuItemSelect + `
		WHERE mi.session_id = $1 AND mi.is_selected IS TRUE
		  AND ($2::text IS NULL OR mi.mess_type = $2::text)
	` + menuItemOrder

	return r.collect(ctx, "list selected menu items", query, sessionID, messParam(mess))
}

// ListSlot возвращает все пункты, конкурирующие в том же слоте, что и item
func (r *MenuItemRepository) ListSlot(ctx context.Context, item *model.MenuItem) ([]model.MenuItem, error) {
	query := menuItemSelect + `
		WHERE mi.session_id = $1 AND mi.date_served = $2 AND mi.meal_type = $3 AND mi.mess_type = $4
	` + menuItemOrder

	return r.collect(ctx, "list slot items", query,
		item.SessionID, item.DateServed, string(item.MealType), string(item.MessType),
	)
}

// Delete удаляет пункт меню вместе с голосами
func (r *MenuItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete menu item: %w", ErrNoRows)
	}
	return nil
}

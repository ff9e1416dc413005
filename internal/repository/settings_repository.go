package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/repository/base"
)

type SettingsRepository struct {
	*base.Repository
}

func NewSettingsRepository(db base.Querier) *SettingsRepository {
	return &SettingsRepository{Repository: base.NewRepository(db)}
}

func (r *SettingsRepository) List(ctx context.Context) ([]model.SystemSetting, error) {
	rows, err := r.Query(ctx, `SELECT setting_key, setting_value FROM system_settings ORDER BY setting_key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []model.SystemSetting
	for rows.Next() {
		var s model.SystemSetting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// Get возвращает настройку или nil, если ключа нет
func (r *SettingsRepository) Get(ctx context.Context, key string) (*model.SystemSetting, error) {
	var s model.SystemSetting
	err := r.QueryRow(ctx, `SELECT setting_key, setting_value FROM system_settings WHERE setting_key = $1`, key).
		Scan(&s.Key, &s.Value)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get setting: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, key, value string) error {
	_, err := r.ExecAffected(ctx, `
		INSERT INTO system_settings (setting_key, setting_value)
		VALUES ($1, $2)
		ON CONFLICT (setting_key) DO UPDATE SET setting_value = EXCLUDED.setting_value
	`, key, value)
	if err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}

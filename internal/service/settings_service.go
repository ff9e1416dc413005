package service

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
)

type SettingsService struct {
	settings SettingsRepository
	logger   *zap.Logger
}

func NewSettingsService(settings SettingsRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{settings: settings, logger: logger}
}

func (s *SettingsService) List(ctx context.Context) ([]model.SystemSetting, error) {
	settings, err := s.settings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

// IsEnabled возвращает false для отсутствующего ключа
func (s *SettingsService) IsEnabled(ctx context.Context, key string) (bool, error) {
	setting, err := s.settings.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get setting %s: %w", key, err)
	}
	if setting == nil {
		return false, nil
	}
	return setting.Enabled(), nil
}

// Set включает или выключает известную настройку
func (s *SettingsService) Set(ctx context.Context, key string, enabled bool) error {
	if !slices.Contains(model.KnownSettings, key) {
		return validationError("unknown setting %q", key)
	}

	if err := s.settings.Upsert(ctx, key, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}

	s.logger.Info("System setting changed", zap.String("key", key), zap.Bool("enabled", enabled))
	return nil
}

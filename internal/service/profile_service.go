package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/metrics"
	"github.com/Freeeeeet/mess_voting_bot/internal/model"
)

// Registration данные для создания профиля
type Registration struct {
	FullName          string
	Role              model.Role
	MessType          model.MessType
	RegNumber         string
	ServedMessTypes   []model.MessType
	AssignedCatererID uuid.UUID
	TelegramID        *int64
}

type ProfileService struct {
	profiles ProfileRepository
	settings *SettingsService
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewProfileService(
	profiles ProfileRepository,
	settings *SettingsService,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		settings: settings,
		metrics:  m,
		logger:   logger,
	}
}

// Register создаёт профиль. Регистрация поваров и админов управляется системными настройками.
func (s *ProfileService) Register(ctx context.Context, in Registration) (*model.Profile, error) {
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, validationError("full name is required")
	}
	if !in.Role.Valid() {
		return nil, validationError("unknown role %q", in.Role)
	}

	if err := s.checkRegistrationOpen(ctx, in.Role); err != nil {
		return nil, err
	}

	profile := &model.Profile{
		FullName:   name,
		Role:       in.Role,
		TelegramID: in.TelegramID,
	}

	switch in.Role {
	case model.RoleStudent:
		if err := s.fillStudent(ctx, profile, in); err != nil {
			return nil, err
		}
	case model.RoleCaterer:
		if len(in.ServedMessTypes) == 0 {
			return nil, validationError("caterer must serve at least one mess type")
		}
		for _, m := range in.ServedMessTypes {
			if !m.Valid() {
				return nil, validationError("unknown mess type %q", m)
			}
			if !profile.Serves(m) {
				profile.ServedMessTypes = append(profile.ServedMessTypes, m)
			}
		}
	}

	if in.TelegramID != nil {
		existing, err := s.profiles.GetByTelegramID(ctx, *in.TelegramID)
		if err != nil {
			return nil, fmt.Errorf("get profile by telegram id: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: telegram account already registered", ErrConflict)
		}
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	s.logger.Info("Profile registered",
		zap.String("profile_id", profile.ID.String()),
		zap.String("role", string(profile.Role)),
	)

	return profile, nil
}

func (s *ProfileService) checkRegistrationOpen(ctx context.Context, role model.Role) error {
	var key string
	switch role {
	case model.RoleCaterer:
		key = model.SettingCatererRegistration
	case model.RoleAdmin:
		key = model.SettingAdminRegistration
	default:
		return nil
	}

	enabled, err := s.settings.IsEnabled(ctx, key)
	if err != nil {
		return err
	}
	if !enabled {
		return fmt.Errorf("%w: %s", ErrRegistrationClosed, role)
	}
	return nil
}

func (s *ProfileService) fillStudent(ctx context.Context, p *model.Profile, in Registration) error {
	reg := strings.TrimSpace(in.RegNumber)
	if reg == "" {
		return validationError("registration number is required")
	}
	if !in.MessType.Valid() {
		return validationError("unknown mess type %q", in.MessType)
	}
	if in.AssignedCatererID == uuid.Nil {
		return validationError("assigned caterer is required")
	}

	caterer, err := loadProfile(ctx, s.profiles, in.AssignedCatererID)
	if err != nil {
		return err
	}
	if !caterer.IsCaterer() || !caterer.Serves(in.MessType) {
		return validationError("caterer does not serve mess type %q", in.MessType)
	}

	mess := in.MessType
	p.RegNumber = &reg
	p.MessType = &mess
	p.AssignedCatererID = &caterer.ID
	return nil
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return loadProfile(ctx, s.profiles, id)
}

// GetByTelegramID находит профиль по Telegram аккаунту
func (s *ProfileService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.Profile, error) {
	p, err := s.profiles.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get profile by telegram id: %w", err)
	}
	if p == nil {
		return nil, notFound("profile")
	}
	return p, nil
}

func (s *ProfileService) LinkTelegram(ctx context.Context, id uuid.UUID, telegramID int64) error {
	if err := s.profiles.LinkTelegram(ctx, id, telegramID); err != nil {
		return translateRepoError(err)
	}
	return nil
}

// ListCaterers возвращает поваров, при заданном mess только обслуживающих его
func (s *ProfileService) ListCaterers(ctx context.Context, mess model.MessType) ([]*model.Profile, error) {
	filter, err := messFilter(mess)
	if err != nil {
		return nil, err
	}
	caterers, err := s.profiles.ListCaterers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list caterers: %w", err)
	}
	return caterers, nil
}

// ChangeMessType меняет тип столовой студента. Все голоса студента при этом удаляются.
// Возвращает количество удалённых голосов.
func (s *ProfileService) ChangeMessType(ctx context.Context, profileID uuid.UUID, mess model.MessType) (int64, error) {
	if !mess.Valid() {
		return 0, validationError("unknown mess type %q", mess)
	}

	profile, err := loadProfile(ctx, s.profiles, profileID)
	if err != nil {
		return 0, err
	}
	if !profile.IsStudent() {
		return 0, fmt.Errorf("%w: only students have a mess type", ErrForbidden)
	}
	if profile.Mess() == mess {
		return 0, nil
	}

	deleted, err := s.profiles.ChangeMessType(ctx, profileID, mess)
	if err != nil {
		return 0, translateRepoError(err)
	}

	s.metrics.MessTypeChanged()
	s.logger.Info("Mess type changed, votes removed",
		zap.String("profile_id", profileID.String()),
		zap.String("from", string(profile.Mess())),
		zap.String("to", string(mess)),
		zap.Int64("deleted_votes", deleted),
	)

	return deleted, nil
}

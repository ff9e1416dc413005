package handlers

import (
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/controller/state"
	"github.com/Freeeeeet/mess_voting_bot/internal/service"
)

// Services сервисы, которыми пользуется бот
type Services struct {
	Profiles *service.ProfileService
	Sessions *service.SessionService
	Menu     *service.MenuService
	Votes    *service.VoteService
	Reports  *service.ReportService
	Feedback *service.FeedbackService
}

// Handlers содержит все зависимости для обработки команд и нажатий
type Handlers struct {
	profiles     *service.ProfileService
	sessions     *service.SessionService
	menu         *service.MenuService
	votes        *service.VoteService
	reports      *service.ReportService
	feedback     *service.FeedbackService
	isAdminID    func(telegramID int64) bool
	stateManager *state.Manager
	logger       *zap.Logger
}

func NewHandlers(
	svc Services,
	stateManager *state.Manager,
	isAdminID func(telegramID int64) bool,
	logger *zap.Logger,
) *Handlers {
	if isAdminID == nil {
		isAdminID = func(int64) bool { return false }
	}
	return &Handlers{
		profiles:     svc.Profiles,
		sessions:     svc.Sessions,
		menu:         svc.Menu,
		votes:        svc.Votes,
		reports:      svc.Reports,
		feedback:     svc.Feedback,
		isAdminID:    isAdminID,
		stateManager: stateManager,
		logger:       logger,
	}
}

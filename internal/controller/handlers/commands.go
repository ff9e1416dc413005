package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/controller/state"
	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/service"
)

const helpText = "📚 Commands:\n\n" +
	"For students:\n" +
	"/vote - Vote for next week's dishes\n" +
	"/myvotes - Your votes\n" +
	"/menu - Final menu\n" +
	"/messtype - Change your mess\n" +
	"/feedback - Write to your caterer\n\n" +
	"For admins:\n" +
	"/report - Menu report image\n\n" +
	"/cancel - Cancel the current dialog"

func fullName(u *models.User) string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HandleStart приветствует пользователя или начинает регистрацию студента
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID
	user := update.Message.From

	profile, err := h.lookupProfile(ctx, user.ID)
	if err != nil {
		h.logger.Error("Failed to get profile", zap.Int64("telegram_id", user.ID), zap.Error(err))
		h.sendMessage(ctx, b, chatID, msgInternalError, nil)
		return
	}

	if profile == nil && h.isAdminID(user.ID) {
		telegramID := user.ID
		profile, err = h.profiles.Register(ctx, service.Registration{
			FullName:   fullName(user),
			Role:       model.RoleAdmin,
			TelegramID: &telegramID,
		})
		if err != nil {
			h.sendMessage(ctx, b, chatID, h.userError(err, "register admin"), nil)
			return
		}
	}

	if profile != nil {
		h.stateManager.ClearState(user.ID)
		h.sendMessage(ctx, b, chatID, fmt.Sprintf("👋 Hi, %s!\n\n%s", profile.FullName, helpText), nil)
		return
	}

	h.stateManager.ClearState(user.ID)
	h.stateManager.SetState(user.ID, state.StateRegisterRegNumber)
	h.sendMessage(ctx, b, chatID,
		"👋 Welcome to the mess menu bot!\n\nLet's register you as a student.\nSend your registration number:", nil)
}

func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText, nil)
}

// HandleCancel сбрасывает текущий диалог
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	telegramID := update.Message.From.ID

	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Nothing to cancel.", nil)
		return
	}
	h.stateManager.ClearState(telegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Cancelled.\n\nUse /help to see the commands.", nil)
}

// HandleTextMessage продолжает диалог в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}
	// команды обрабатываются своими handlers
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	switch h.stateManager.GetState(telegramID) {
	case state.StateRegisterRegNumber:
		if text == "" {
			h.sendMessage(ctx, b, chatID, "❌ Registration number can't be empty. Try again:", nil)
			return
		}
		h.stateManager.SetData(telegramID, state.KeyRegNumber, text)
		h.stateManager.SetState(telegramID, state.StateRegisterMessType)
		h.sendMessage(ctx, b, chatID, "🍽 Which mess do you eat at?", messKeyboard(CallbackRegMess, ""))

	case state.StateFeedbackMessage:
		h.submitFeedback(ctx, b, chatID, telegramID, text)

	case state.StateRegisterMessType, state.StateRegisterCaterer, state.StateFeedbackCaterer:
		h.sendMessage(ctx, b, chatID, "👆 Please pick one of the buttons above, or /cancel.", nil)

	default:
		h.sendMessage(ctx, b, chatID, "🤔 I didn't get that. Use /help to see the commands.", nil)
	}
}

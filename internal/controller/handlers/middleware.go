package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/service"
)

const msgInternalError = "❌ Something went wrong. Please try again later."

// lookupProfile возвращает профиль по Telegram ID или nil, если пользователь не зарегистрирован
func (h *Handlers) lookupProfile(ctx context.Context, telegramID int64) (*model.Profile, error) {
	p, err := h.profiles.GetByTelegramID(ctx, telegramID)
	if errors.Is(err, service.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// requireProfile проверяет что пользователь зарегистрирован
func (h *Handlers) requireProfile(ctx context.Context, b *bot.Bot, chatID, telegramID int64) (*model.Profile, bool) {
	p, err := h.lookupProfile(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to get profile", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendMessage(ctx, b, chatID, msgInternalError, nil)
		return nil, false
	}
	if p == nil {
		h.sendMessage(ctx, b, chatID, "❌ You are not registered yet. Use /start.", nil)
		return nil, false
	}
	return p, true
}

func (h *Handlers) requireStudent(ctx context.Context, b *bot.Bot, chatID, telegramID int64) (*model.Profile, bool) {
	p, ok := h.requireProfile(ctx, b, chatID, telegramID)
	if !ok {
		return nil, false
	}
	if !p.IsStudent() {
		h.sendMessage(ctx, b, chatID, "❌ This command is for students only.", nil)
		return nil, false
	}
	return p, true
}

func (h *Handlers) requireAdmin(ctx context.Context, b *bot.Bot, chatID, telegramID int64) (*model.Profile, bool) {
	p, ok := h.requireProfile(ctx, b, chatID, telegramID)
	if !ok {
		return nil, false
	}
	if !p.IsAdmin() {
		h.sendMessage(ctx, b, chatID, "❌ This command is for admins only.", nil)
		return nil, false
	}
	return p, true
}

// userError текст для пользователя; внутренние ошибки логируются и скрываются
func (h *Handlers) userError(err error, action string) string {
	switch {
	case errors.Is(err, service.ErrSessionNotOpen):
		return "⏳ Voting is not open right now."
	case errors.Is(err, service.ErrRegistrationClosed):
		return "🚫 Registration is closed."
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrNotFound):
		return "❌ " + err.Error()
	}
	h.logger.Error("Bot action failed", zap.String("action", action), zap.Error(err))
	return msgInternalError
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// editMessage заменяет текст и клавиатуру сообщения с кнопками
func (h *Handlers) editMessage(ctx context.Context, b *bot.Bot, msg *models.Message, text string, markup models.ReplyMarkup) {
	params := &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      text,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := b.EditMessageText(ctx, params); err != nil {
		h.logger.Warn("Failed to edit message",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Int("message_id", msg.ID),
			zap.Error(err),
		)
	}
}

func answerCallback(ctx context.Context, b *bot.Bot, callbackID, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
}

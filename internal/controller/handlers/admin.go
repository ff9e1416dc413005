package handlers

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
)

// HandleReport предлагает админу выбрать столовую для отчёта
func (h *Handlers) HandleReport(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if _, ok := h.requireAdmin(ctx, b, chatID, update.Message.From.ID); !ok {
		return
	}
	h.sendMessage(ctx, b, chatID, "📊 Report for which mess?", messKeyboard(CallbackReport, ""))
}

// sendReport рисует отчёт последней финализированной сессии и отправляет его картинкой
func (h *Handlers) sendReport(ctx context.Context, b *bot.Bot, chatID int64, mess model.MessType) {
	session, err := h.latestFinalized(ctx)
	if err != nil {
		h.sendMessage(ctx, b, chatID, h.userError(err, "report"), nil)
		return
	}
	if session == nil {
		h.sendMessage(ctx, b, chatID, "📊 No finalized session yet.", nil)
		return
	}

	rendered, err := h.reports.Render(ctx, session.ID, mess)
	if err != nil {
		h.sendMessage(ctx, b, chatID, h.userError(err, "report"), nil)
		return
	}

	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileUpload{Filename: rendered.Filename, Data: bytes.NewReader(rendered.Data)},
		Caption: fmt.Sprintf("📊 %s · %s (%d dishes)", session.Title, messLabel(mess), rendered.Menu.ItemCount()),
	})
	if err != nil {
		h.logger.Error("Failed to send report",
			zap.Int64("chat_id", chatID),
			zap.String("session_id", session.ID.String()),
			zap.Error(err),
		)
		h.sendMessage(ctx, b, chatID, msgInternalError, nil)
	}
}

package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/controller/state"
	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/service"
)

// Форматы callback data
const (
	CallbackNoop = "noop"

	CallbackRegMess    = "reg_mess:"    // reg_mess:veg
	CallbackRegCaterer = "reg_caterer:" // reg_caterer:<uuid>

	CallbackMess        = "mess:"    // mess:non_veg
	CallbackMessConfirm = "mess_ok:" // mess_ok:non_veg
	CallbackMessCancel  = "mess_cancel"

	CallbackVoteDays = "vote_days"
	CallbackVoteDay  = "vote_day:" // vote_day:2026-10-20
	CallbackVote     = "vote:"     // vote:<menu item uuid>

	CallbackMenu            = "menu:"       // menu:veg
	CallbackFeedbackCaterer = "fb_caterer:" // fb_caterer:<uuid>
	CallbackReport          = "report:"     // report:veg
)

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad day %q", service.ErrValidation, s)
	}
	return t, nil
}

// HandleCallbackQuery распределяет нажатия inline кнопок
func (h *Handlers) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}
	msg := callback.Message.Message
	if msg == nil {
		answerCallback(ctx, b, callback.ID, "Message is too old")
		return
	}
	data := callback.Data

	h.logger.Debug("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID),
	)

	switch {
	case data == CallbackNoop:
		answerCallback(ctx, b, callback.ID, "")
	case strings.HasPrefix(data, CallbackRegMess):
		h.onRegisterMess(ctx, b, callback, msg, model.MessType(strings.TrimPrefix(data, CallbackRegMess)))
	case strings.HasPrefix(data, CallbackRegCaterer):
		h.onRegisterCaterer(ctx, b, callback, msg, strings.TrimPrefix(data, CallbackRegCaterer))
	case strings.HasPrefix(data, CallbackMessConfirm):
		h.onMessConfirm(ctx, b, callback, msg, model.MessType(strings.TrimPrefix(data, CallbackMessConfirm)))
	case data == CallbackMessCancel:
		answerCallback(ctx, b, callback.ID, "")
		h.editMessage(ctx, b, msg, "👌 Mess unchanged.", nil)
	case strings.HasPrefix(data, CallbackMess):
		h.onMessPick(ctx, b, callback, msg, model.MessType(strings.TrimPrefix(data, CallbackMess)))
	case data == CallbackVoteDays:
		h.onVoteDays(ctx, b, callback, msg)
	case strings.HasPrefix(data, CallbackVoteDay):
		h.onVoteDay(ctx, b, callback, msg, strings.TrimPrefix(data, CallbackVoteDay))
	case strings.HasPrefix(data, CallbackVote):
		h.onVote(ctx, b, callback, msg, strings.TrimPrefix(data, CallbackVote))
	case strings.HasPrefix(data, CallbackMenu):
		answerCallback(ctx, b, callback.ID, "")
		h.editMessage(ctx, b, msg, h.menuText(ctx, model.MessType(strings.TrimPrefix(data, CallbackMenu))), nil)
	case strings.HasPrefix(data, CallbackFeedbackCaterer):
		h.onFeedbackCaterer(ctx, b, callback, msg, strings.TrimPrefix(data, CallbackFeedbackCaterer))
	case strings.HasPrefix(data, CallbackReport):
		h.onReport(ctx, b, callback, msg, model.MessType(strings.TrimPrefix(data, CallbackReport)))
	default:
		h.logger.Warn("Unknown callback", zap.String("data", data))
		answerCallback(ctx, b, callback.ID, "")
	}
}

func (h *Handlers) onRegisterMess(ctx context.Context, b *bot.Bot, cb *models.CallbackQuery, msg *models.Message, mess model.MessType) {
	telegramID := cb.From.ID
	if h.stateManager.GetState(telegramID) != state.StateRegisterMessType {
		answerCallback(ctx, b, cb.ID, "Registration expired, send /start")
		return
	}

	caterers, err := h.profiles.ListCaterers(ctx, mess)
	if err != nil {
		answerCallback(ctx, b, cb.ID, "")
		h.editMessage(ctx, b, msg, h.userError(err, "list caterers"), nil)
		return
	}
	answerCallback(ctx, b, cb.ID, "")
	if len(caterers) == 0 {
		h.editMessage(ctx, b, msg, "🤷 No caterers serve "+messLabel(mess)+" yet. Pick another mess:", messKeyboard(CallbackRegMess, mess))
		return
	}

	h.stateManager.SetData(telegramID, state.KeyMessType, string(mess))
	h.stateManager.SetState(telegramID, state.StateRegisterCaterer)
	h.editMessage(ctx, b, msg, "👨‍🍳 Who is your caterer?", caterersKeyboard(CallbackRegCaterer, caterers))
}

func (h *Handlers) onRegisterCaterer(ctx context.Context, b *bot.Bot, cb *models.CallbackQuery, msg *models.Message, rawID string) {
	telegramID := cb.From.ID
	if h.stateManager.GetState(telegramID) != state.StateRegisterCaterer {
		answerCallback(ctx, b, cb.ID, "Registration expired, send /start")
		return
	}
	catererID, err := uuid.Parse(rawID)
	if err != nil {
		answerCallback(ctx, b, cb.ID, "Unknown caterer")
		return
	}
	regNumber, _ := h.stateManager.GetData(telegramID, state.KeyRegNumber)
	mess, _ := h.stateManager.GetData(telegramID, state.KeyMessType)

	profile, err := h.profiles.Register(ctx, service.Registration{
		FullName:          fullName(&cb.From),
		Role:              model.RoleStudent,
		MessType:          model.MessType(mess),
		RegNumber:         regNumber,
		AssignedCatererID: catererID,
		TelegramID:        &telegramID,
	})
	answerCallback(ctx, b, cb.ID, "")
	if err != nil {
		h.editMessage(ctx, b, msg, h.userError(err, "register student"), nil)
		return
	}

	h.stateManager.ClearState(telegramID)
	h.editMessage(ctx, b, msg, fmt.Sprintf("✅ Registered, %s!\nMess: %s\n\n%s",
		profile.FullName, messLabel(profile.Mess()), helpText), nil)
}

func (h *Handlers) onMessPick(ctx context.Context, b *bot.Bot, cb *models.CallbackQuery, msg *models.Message, mess model.MessType) {
	answerCallback(ctx, b, cb.ID, "")
	if !mess.Valid() {
		return
	}
	kb := messConfirmKeyboard(mess)
	h.editMessage(ctx, b, msg,
		fmt.Sprintf("Switch to %s?\n\n⚠️ All your votes will be removed.", messLabel(mess)), kb)
}

func (h *Handlers) onMessConfirm(ctx context.Context, b *bot.Bot, cb *models.CallbackQuery, msg *models.Message, mess model.MessType) {
	profile, err := h.lookupProfile(ctx, cb.From.ID)
	if err != nil || profile == nil {
		answerCallback(ctx, b, cb.ID, "Use /start first")
		return
	}

	deleted, err := h.profiles.ChangeMessType(ctx, profile.ID, mess)
	answerCallback(ctx, b, cb.ID, "")
	if err != nil {
		h.editMessage(ctx, b, msg, h.userError(err, "change mess type"), nil)
		return
	}
	h.editMessage(ctx, b, msg,
		fmt.Sprintf("✅ Your mess is now %s.\n🗑 Votes removed: %d", messLabel(mess), deleted), nil)
}

func (h *Handlers) studentFromCallback(ctx context.Context, b *bot.Bot, cb *models.CallbackQuery) (*model.Profile, bool) {
	profile, err := h.lookupProfile(ctx, cb.From.ID)
	if err != nil {
		h.logger.Error("Failed to get profile", zap.Int64("telegram_id", cb.From.ID), zap.Error(err))
		answerCallback(ctx, b, cb.ID, "Something went wrong")
		return nil, false
	}
	if profile == nil || !profile.IsStudent() {
		answerCallback(ctx, b, cb.ID, "Students only")
		return nil, false
	}
	return profile, true
}

func (h *Handlers) onVoteDays(ctx context.Context, b *bot.Bot, cb *models.CallbackQuery, msg *models.Message) {
	student, ok := h.studentFromCallback(ctx, b, cb)
	if !ok {
		return
	}
	answerCallback(ctx, b, cb.ID, "")
	text, markup := h.voteDaysScreen(ctx, student)
	h.editMessage(ctx, b, msg, text, markup)
}

func (h *Handlers) onVoteDay(ctx context.Context, b *bot.Bot, cb *models.CallbackQuery, msg *models.Message, day string) {
	student, ok := h.studentFromCallback(ctx, b, cb)
	if !ok {
		return
	}
	answerCallback(ctx, b, cb.ID, "")
	text, markup := h.voteDayScreen(ctx, student, day)
	h.editMessage(ctx, b, msg, text, markup)
}

// onVote переключает голос и перерисовывает экран дня со свежими счётчиками
func (h *Handlers) onVote(ctx context.Context, b *bot.Bot, cb *models.CallbackQuery, msg *models.Message, rawID string) {
	student, ok := h.studentFromCallback(ctx, b, cb)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(rawID)
	if err != nil {
		answerCallback(ctx, b, cb.ID, "Unknown dish")
		return
	}

	res, err := h.votes.Toggle(ctx, student.ID, itemID)
	if err != nil {
		answerCallback(ctx, b, cb.ID, h.userError(err, "toggle vote"))
		return
	}
	if res.Voted {
		answerCallback(ctx, b, cb.ID, "✅ Voted")
	} else {
		answerCallback(ctx, b, cb.ID, "Vote removed")
	}

	item, err := h.menu.Get(ctx, itemID)
	if err != nil {
		h.logger.Warn("Failed to reload menu item", zap.Error(err))
		return
	}
	text, markup := h.voteDayScreen(ctx, student, item.DateServed.Format(model.DateLayout))
	h.editMessage(ctx, b, msg, text, markup)
}

func (h *Handlers) onFeedbackCaterer(ctx context.Context, b *bot.Bot, cb *models.CallbackQuery, msg *models.Message, rawID string) {
	telegramID := cb.From.ID
	if h.stateManager.GetState(telegramID) != state.StateFeedbackCaterer {
		answerCallback(ctx, b, cb.ID, "Dialog expired, send /feedback")
		return
	}
	if _, err := uuid.Parse(rawID); err != nil {
		answerCallback(ctx, b, cb.ID, "Unknown caterer")
		return
	}

	h.stateManager.SetData(telegramID, state.KeyCatererID, rawID)
	h.stateManager.SetState(telegramID, state.StateFeedbackMessage)
	answerCallback(ctx, b, cb.ID, "")
	h.editMessage(ctx, b, msg, "✍️ Write your message (or /cancel):", nil)
}

func (h *Handlers) onReport(ctx context.Context, b *bot.Bot, cb *models.CallbackQuery, msg *models.Message, mess model.MessType) {
	profile, err := h.lookupProfile(ctx, cb.From.ID)
	if err != nil || profile == nil || !profile.IsAdmin() {
		answerCallback(ctx, b, cb.ID, "Admins only")
		return
	}
	answerCallback(ctx, b, cb.ID, "Rendering…")
	h.editMessage(ctx, b, msg, "📊 "+messLabel(mess), nil)
	h.sendReport(ctx, b, msg.Chat.ID, mess)
}

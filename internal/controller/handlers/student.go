package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/mess_voting_bot/internal/controller/state"
	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/service"
	"github.com/Freeeeeet/mess_voting_bot/internal/voting"
)

// openSessionItems открытая сессия и пункты меню столовой студента
func (h *Handlers) openSessionItems(ctx context.Context, student *model.Profile) (*model.VotingSession, []model.MenuItem, error) {
	session, err := h.sessions.Current(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !session.IsOpen() {
		return nil, nil, service.ErrSessionNotOpen
	}
	items, err := h.menu.ListBySession(ctx, session.ID, student.Mess())
	if err != nil {
		return nil, nil, err
	}
	return session, items, nil
}

func (h *Handlers) voteSet(ctx context.Context, studentID uuid.UUID) (voting.VoteSet, error) {
	votes, err := h.votes.ListByUser(ctx, studentID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(votes))
	for _, v := range votes {
		ids = append(ids, v.MenuItemID)
	}
	return voting.NewVoteSet(ids...), nil
}

// HandleVote показывает дни открытой сессии
func (h *Handlers) HandleVote(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	student, ok := h.requireStudent(ctx, b, chatID, update.Message.From.ID)
	if !ok {
		return
	}
	text, markup := h.voteDaysScreen(ctx, student)
	h.sendMessage(ctx, b, chatID, text, markup)
}

func (h *Handlers) voteDaysScreen(ctx context.Context, student *model.Profile) (string, models.ReplyMarkup) {
	session, items, err := h.openSessionItems(ctx, student)
	if err != nil {
		return h.userError(err, "vote days"), nil
	}
	days := sessionDays(items)
	if len(days) == 0 {
		return fmt.Sprintf("🗳 %s\n\nNo dishes for %s yet.", session.Title, messLabel(student.Mess())), nil
	}
	return fmt.Sprintf("🗳 %s\n%s\n\nPick a day:", session.Title, messLabel(student.Mess())), daysKeyboard(days)
}

// voteDayScreen экран голосования за один день
func (h *Handlers) voteDayScreen(ctx context.Context, student *model.Profile, day string) (string, models.ReplyMarkup) {
	session, items, err := h.openSessionItems(ctx, student)
	if err != nil {
		return h.userError(err, "vote day"), nil
	}
	date, err := parseDay(day)
	if err != nil {
		return h.userError(err, "vote day"), nil
	}
	votes, err := h.voteSet(ctx, student.ID)
	if err != nil {
		return h.userError(err, "vote day"), nil
	}
	return voteDayText(session, student.Mess(), date), voteDayKeyboard(dayItems(items, day), votes)
}

func (h *Handlers) HandleMyVotes(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	student, ok := h.requireStudent(ctx, b, chatID, update.Message.From.ID)
	if !ok {
		return
	}

	session, err := h.sessions.Current(ctx)
	if err != nil {
		h.sendMessage(ctx, b, chatID, h.userError(err, "my votes"), nil)
		return
	}
	items, err := h.menu.ListBySession(ctx, session.ID, student.Mess())
	if err != nil {
		h.sendMessage(ctx, b, chatID, h.userError(err, "my votes"), nil)
		return
	}
	votes, err := h.voteSet(ctx, student.ID)
	if err != nil {
		h.sendMessage(ctx, b, chatID, h.userError(err, "my votes"), nil)
		return
	}
	h.sendMessage(ctx, b, chatID, formatMyVotes(session, items, votes), nil)
}

// HandleMenu показывает финальное меню последней финализированной сессии
func (h *Handlers) HandleMenu(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	profile, ok := h.requireProfile(ctx, b, chatID, update.Message.From.ID)
	if !ok {
		return
	}
	if !profile.IsStudent() {
		h.sendMessage(ctx, b, chatID, "🍽 Which mess?", messKeyboard(CallbackMenu, ""))
		return
	}
	h.sendMessage(ctx, b, chatID, h.menuText(ctx, profile.Mess()), nil)
}

func (h *Handlers) latestFinalized(ctx context.Context) (*model.VotingSession, error) {
	sessions, err := h.sessions.ListByStatuses(ctx, model.SessionStatusFinalized)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return sessions[0], nil
}

func (h *Handlers) menuText(ctx context.Context, mess model.MessType) string {
	session, err := h.latestFinalized(ctx)
	if err != nil {
		return h.userError(err, "menu")
	}
	if session == nil {
		return "🍽 The menu hasn't been finalized yet."
	}
	menu, err := h.reports.Build(ctx, session.ID, mess)
	if err != nil {
		return h.userError(err, "menu")
	}
	return formatMenu(menu)
}

// HandleMessType предлагает сменить столовую
func (h *Handlers) HandleMessType(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	student, ok := h.requireStudent(ctx, b, chatID, update.Message.From.ID)
	if !ok {
		return
	}
	h.sendMessage(ctx, b, chatID,
		fmt.Sprintf("🍽 Your mess: %s\n\nPick a new one. ⚠️ All your votes will be removed.", messLabel(student.Mess())),
		messKeyboard(CallbackMess, student.Mess()))
}

// HandleFeedback начинает диалог отзыва: выбор повара
func (h *Handlers) HandleFeedback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID
	telegramID := update.Message.From.ID

	student, ok := h.requireStudent(ctx, b, chatID, telegramID)
	if !ok {
		return
	}

	caterers, err := h.profiles.ListCaterers(ctx, student.Mess())
	if err != nil {
		h.sendMessage(ctx, b, chatID, h.userError(err, "list caterers"), nil)
		return
	}
	if len(caterers) == 0 {
		h.sendMessage(ctx, b, chatID, "🤷 No caterers serve your mess yet.", nil)
		return
	}

	h.stateManager.ClearState(telegramID)
	h.stateManager.SetState(telegramID, state.StateFeedbackCaterer)
	h.sendMessage(ctx, b, chatID, "✍️ Who is your feedback for?", caterersKeyboard(CallbackFeedbackCaterer, caterers))
}

func (h *Handlers) submitFeedback(ctx context.Context, b *bot.Bot, chatID, telegramID int64, text string) {
	student, ok := h.requireStudent(ctx, b, chatID, telegramID)
	if !ok {
		h.stateManager.ClearState(telegramID)
		return
	}
	raw, _ := h.stateManager.GetData(telegramID, state.KeyCatererID)
	catererID, err := uuid.Parse(raw)
	if err != nil {
		h.stateManager.ClearState(telegramID)
		h.sendMessage(ctx, b, chatID, "❌ Dialog expired. Start again with /feedback.", nil)
		return
	}

	fb, err := h.feedback.Submit(ctx, student.ID, catererID, text)
	if err != nil {
		h.sendMessage(ctx, b, chatID, h.userError(err, "submit feedback"), nil)
		return
	}
	h.stateManager.ClearState(telegramID)
	h.logger.Debug("Feedback sent from bot", zap.String("feedback_id", fb.ID.String()))
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Feedback sent to %s. Thank you!", fb.CatererName), nil)
}

func caterersKeyboard(prefix string, caterers []*model.Profile) *models.InlineKeyboardMarkup {
	kb := keyboard.NewBuilder()
	for _, c := range caterers {
		kb.Row(keyboard.Button("👨‍🍳 "+c.FullName, prefix+c.ID.String()))
	}
	return kb.Build()
}

// Package controller wires the Telegram bot to the services.
package controller

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/controller/handlers"
	"github.com/Freeeeeet/mess_voting_bot/internal/controller/state"
)

// stateSweepInterval как часто чистятся брошенные диалоги
const stateSweepInterval = 5 * time.Minute

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	states   *state.Manager
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	svc handlers.Services,
	isAdminID func(telegramID int64) bool,
	logger *zap.Logger,
) *BotController {
	stateManager := state.NewManager(state.DefaultTTL)

	return &BotController{
		bot:      botInstance,
		handlers: handlers.NewHandlers(svc, stateManager, isAdminID, logger),
		states:   stateManager,
		logger:   logger,
	}
}

// RegisterHandlers регистрирует обработчики команд и кнопок
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	commands := map[string]bot.HandlerFunc{
		"/start":    c.handlers.HandleStart,
		"/help":     c.handlers.HandleHelp,
		"/cancel":   c.handlers.HandleCancel,
		"/vote":     c.handlers.HandleVote,
		"/myvotes":  c.handlers.HandleMyVotes,
		"/menu":     c.handlers.HandleMenu,
		"/messtype": c.handlers.HandleMessType,
		"/feedback": c.handlers.HandleFeedback,
		"/report":   c.handlers.HandleReport,
	}
	for cmd, h := range commands {
		c.bot.RegisterHandler(bot.HandlerTypeMessageText, cmd, bot.MatchTypeExact, h)
	}

	// Текст без команды продолжает диалог
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.handlers.HandleCallbackQuery)

	return c.setCommands(ctx)
}

// setCommands устанавливает меню команд бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Register / start"},
		{Command: "vote", Description: "🗳 Vote for dishes"},
		{Command: "myvotes", Description: "📋 My votes"},
		{Command: "menu", Description: "🍽 Final menu"},
		{Command: "messtype", Description: "🔁 Change mess"},
		{Command: "feedback", Description: "✍️ Feedback to caterer"},
		{Command: "report", Description: "📊 Menu report (admin)"},
		{Command: "help", Description: "❓ Help"},
		{Command: "cancel", Description: "❌ Cancel dialog"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start запускает long polling и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	go c.sweepStates(ctx)
	c.bot.Start(ctx)
	return nil
}

func (c *BotController) sweepStates(ctx context.Context) {
	ticker := time.NewTicker(stateSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.states.Expire(); n > 0 {
				c.logger.Debug("Expired bot dialogs", zap.Int("count", n))
			}
		}
	}
}

package controller

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/controller/callbacks"
	"github.com/Freeeeeet/tutoring_admin/internal/controller/handlers"
	"github.com/Freeeeeet/tutoring_admin/internal/controller/state"
)

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	stateManager    *state.Manager
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	accounts handlers.AccountLinker,
	schedule handlers.ScheduleProvider,
	loc *time.Location,
	logger *zap.Logger,
) *BotController {
	// Создаём менеджер состояний
	stateManager := state.NewManager(state.DefaultTTL)

	// Создаём обработчики команд
	cmdHandlers := handlers.NewHandlers(accounts, schedule, stateManager, loc, logger)

	// Callback handler переиспользует экраны команд
	callbackHandler := callbacks.NewHandler(
		cmdHandlers.ShowSchedulePage,
		cmdHandlers.SendWeek,
		logger,
	)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		stateManager:    stateManager,
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/link", bot.MatchTypeExact, c.handlers.HandleLink)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/schedule", bot.MatchTypeExact, c.handlers.HandleSchedule)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/week", bot.MatchTypeExact, c.handlers.HandleWeek)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, c.handlers.HandleCancel)

	// Обработчик текстовых сообщений (диалоги с состояниями и /link с email)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "link", Description: "🔗 Привязать аккаунт по email"},
		{Command: "schedule", Description: "📅 Ближайшие занятия"},
		{Command: "week", Description: "🗓 Расписание на неделю"},
		{Command: "cancel", Description: "✖️ Отменить текущий диалог"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	go c.cleanupDialogs(ctx)
	c.bot.Start(ctx)
	return nil
}

// cleanupDialogs периодически забывает брошенные диалоги
func (c *BotController) cleanupDialogs(ctx context.Context) {
	ticker := time.NewTicker(state.DefaultTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := c.stateManager.Cleanup(); removed > 0 {
				c.logger.Debug("Expired dialogs removed", zap.Int("count", removed))
			}
		}
	}
}

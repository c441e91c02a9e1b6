package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/controller/state"
	"github.com/Freeeeeet/tutoring_admin/internal/service"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	account, err := h.accounts.GetByTelegramID(ctx, update.Message.From.ID)
	if err != nil {
		h.logger.Error("Failed to get account", zap.Int64("telegram_id", update.Message.From.ID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}

	if account == nil {
		h.sendMessage(ctx, b, chatID,
			"👋 Привет!\n\n"+
				"Этот бот присылает расписание занятий и напоминания.\n\n"+
				"Чтобы начать, привяжите аккаунт: /link <i>email</i>", nil)
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"/schedule - ближайшие занятия\n"+
			"/week - расписание на неделю\n"+
			"/help - справка",
		account.FirstName,
	), nil)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 Справка по командам:\n\n" +
		"/link <i>email</i> - привязать аккаунт\n" +
		"/schedule - ближайшие занятия\n" +
		"/week - расписание на неделю картинкой\n" +
		"/cancel - отменить текущий диалог\n" +
		"/help - показать эту справку\n\n" +
		"Родители видят занятия своих детей, преподаватели - свои курсы."

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText, nil)
}

// HandleLink обрабатывает команду /link. Без аргумента бот ждёт email следующим сообщением
func (h *Handlers) HandleLink(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	email := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/link"))
	if email == "" {
		h.stateManager.SetState(update.Message.From.ID, state.StateLinkEmail)
		h.sendMessage(ctx, b, update.Message.Chat.ID, "✉️ Отправьте email, указанный при записи.\n\nОтмена: /cancel", nil)
		return
	}

	h.link(ctx, b, update.Message.Chat.ID, update.Message.From.ID, email)
}

// link привязывает аккаунт и сообщает результат. false если привязать не удалось
func (h *Handlers) link(ctx context.Context, b *bot.Bot, chatID, telegramID int64, email string) bool {
	account, err := h.accounts.LinkTelegram(ctx, email, telegramID)
	switch {
	case errors.Is(err, service.ErrNotFound):
		h.sendError(ctx, b, chatID, "❌ Аккаунт с таким email не найден.")
		return false
	case service.IsValidation(err):
		h.sendError(ctx, b, chatID, "❌ "+err.Error())
		return false
	case err != nil:
		h.logger.Error("Failed to link telegram", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return false
	}

	h.stateManager.ClearState(telegramID)

	h.logger.Info("Telegram chat linked",
		zap.Int64("telegram_id", telegramID),
		zap.Int64("account_id", account.ID))

	h.sendMessage(ctx, b, chatID, fmt.Sprintf(
		"✅ Аккаунт %s привязан.\n\nБлижайшие занятия: /schedule",
		account.FullName(),
	), nil)
	return true
}

// linkFromDialog привязка по email из диалога. После MaxLinkAttempts неудач диалог завершается
func (h *Handlers) linkFromDialog(ctx context.Context, b *bot.Bot, chatID, telegramID int64, email string) {
	if h.link(ctx, b, chatID, telegramID, email) {
		return
	}

	value, _ := h.stateManager.GetData(telegramID, linkAttemptsKey)
	attempts, _ := value.(int)
	attempts++

	if attempts >= MaxLinkAttempts {
		h.stateManager.ClearState(telegramID)
		h.logger.Info("Link dialog aborted after failed attempts", zap.Int64("telegram_id", telegramID))
		h.sendError(ctx, b, chatID, "❌ Слишком много попыток. Начните заново: /link")
		return
	}

	h.stateManager.SetData(telegramID, linkAttemptsKey, attempts)
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.", nil)
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Операция отменена.", nil)
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	// /link с аргументом может прийти сюда через общий prefix-обработчик
	if strings.HasPrefix(update.Message.Text, "/link ") {
		h.HandleLink(ctx, b, update)
		return
	}

	// Команды обрабатываются другими handlers
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	switch h.stateManager.GetState(telegramID) {
	case state.StateLinkEmail:
		h.linkFromDialog(ctx, b, update.Message.Chat.ID, telegramID, update.Message.Text)
	default:
		h.logger.Debug("No active state, ignoring message", zap.Int64("telegram_id", telegramID))
	}
}

package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

// requireAccount получает аккаунт, привязанный к чату.
// Возвращает аккаунт и true если OK, nil и false если нет
func (h *Handlers) requireAccount(ctx context.Context, b *bot.Bot, chatID, telegramID int64) (*model.Account, bool) {
	account, err := h.accounts.GetByTelegramID(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to get account", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return nil, false
	}

	if account == nil {
		h.sendError(ctx, b, chatID, "❌ Аккаунт не привязан.\n\nОтправьте /link и email, указанный при записи.")
		return nil, false
	}

	return account, true
}

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendMessage отправляет HTML-сообщение с клавиатурой и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: markup,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

package handlers

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutoring_admin/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutoring_admin/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

// Префиксы callback для расписания
const (
	SchedulePagePrefix = "schedule_page:"
	WeekPrefix         = "week:"
)

// HandleSchedule обрабатывает команду /schedule
func (h *Handlers) HandleSchedule(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	h.ShowSchedulePage(ctx, b, update.Message.Chat.ID, 0, update.Message.From.ID, 0)
}

// HandleWeek обрабатывает команду /week
func (h *Handlers) HandleWeek(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	h.SendWeek(ctx, b, update.Message.Chat.ID, update.Message.From.ID, 0)
}

// ShowSchedulePage показывает страницу ближайших занятий.
// messageID != 0 - редактируем сообщение вместо отправки нового
func (h *Handlers) ShowSchedulePage(ctx context.Context, b *bot.Bot, chatID int64, messageID int, telegramID int64, page int) {
	sessions, ok := h.upcoming(ctx, b, chatID, telegramID)
	if !ok {
		return
	}

	text, totalPages := formatting.FormatSchedulePage(sessions, page, h.loc)
	page = min(max(page, 0), max(totalPages-1, 0))

	markup := keyboard.NewBuilder().
		Row(keyboard.Pages(SchedulePagePrefix, page, totalPages)...).
		Row(keyboard.Button("🗓 Неделя картинкой", keyboard.Callback(WeekPrefix, 0))).
		Build()

	if messageID == 0 {
		h.sendMessage(ctx, b, chatID, text, markup)
		return
	}

	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: markup,
	})
	if err != nil {
		h.logger.Error("Failed to edit schedule message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// SendWeek отправляет картинку недели со смещением offset от текущей
func (h *Handlers) SendWeek(ctx context.Context, b *bot.Bot, chatID, telegramID int64, offset int) {
	sessions, ok := h.upcoming(ctx, b, chatID, telegramID)
	if !ok {
		return
	}

	now := h.now().In(h.loc)
	day := now.AddDate(0, 0, 7*offset)

	image, err := common.GenerateWeekImage(day, sessions, now)
	if err != nil {
		h.logger.Error("Failed to render week image", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Не удалось построить расписание.")
		return
	}

	markup := keyboard.NewBuilder().
		Row(keyboard.Weeks(WeekPrefix, offset)...).
		Build()

	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:      chatID,
		Photo:       &models.InputFileUpload{Filename: "week.png", Data: bytes.NewReader(image)},
		Caption:     fmt.Sprintf("🗓 Неделя с %s", formatting.FormatDate(common.WeekStart(day))),
		ReplyMarkup: markup,
	})
	if err != nil {
		h.logger.Error("Failed to send week image", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *Handlers) upcoming(ctx context.Context, b *bot.Bot, chatID, telegramID int64) ([]*model.Session, bool) {
	account, ok := h.requireAccount(ctx, b, chatID, telegramID)
	if !ok {
		return nil, false
	}

	sessions, err := h.schedule.UpcomingForAccount(ctx, account.ID, UpcomingLimit)
	if err != nil {
		h.logger.Error("Failed to load schedule", zap.Int64("account_id", account.ID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Не удалось загрузить расписание. Попробуйте позже.")
		return nil, false
	}

	return sessions, true
}

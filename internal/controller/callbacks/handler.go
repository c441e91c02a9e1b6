package callbacks

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutoring_admin/internal/controller/handlers"
)

// SchedulePageFunc показывает страницу расписания, редактируя сообщение messageID
type SchedulePageFunc func(ctx context.Context, b *bot.Bot, chatID int64, messageID int, telegramID int64, page int)

// WeekFunc отправляет картинку недели со смещением offset
type WeekFunc func(ctx context.Context, b *bot.Bot, chatID, telegramID int64, offset int)

// Handler обрабатывает нажатия на inline кнопки
type Handler struct {
	schedulePage SchedulePageFunc
	week         WeekFunc
	logger       *zap.Logger
}

// NewHandler создаёт обработчик callback query
func NewHandler(schedulePage SchedulePageFunc, week WeekFunc, logger *zap.Logger) *Handler {
	return &Handler{
		schedulePage: schedulePage,
		week:         week,
		logger:       logger,
	}
}

// HandleCallbackQuery маршрутизирует callback по префиксу данных
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	query := update.CallbackQuery
	if query == nil {
		return
	}

	h.answer(ctx, b, query.ID)

	data := query.Data
	h.logger.Debug("Callback received",
		zap.Int64("telegram_id", query.From.ID),
		zap.String("data", data))

	msg := query.Message.Message
	if msg == nil {
		// Сообщение слишком старое, редактировать нечего
		return
	}

	switch {
	case data == keyboard.NoopCallback:
		return
	case strings.HasPrefix(data, handlers.SchedulePagePrefix):
		page, ok := h.parseNumber(data, handlers.SchedulePagePrefix)
		if !ok {
			return
		}
		h.schedulePage(ctx, b, msg.Chat.ID, msg.ID, query.From.ID, page)
	case strings.HasPrefix(data, handlers.WeekPrefix):
		offset, ok := h.parseNumber(data, handlers.WeekPrefix)
		if !ok {
			return
		}
		h.week(ctx, b, msg.Chat.ID, query.From.ID, offset)
	default:
		h.logger.Warn("Unknown callback", zap.String("data", data))
	}
}

func (h *Handler) parseNumber(data, prefix string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(data, prefix))
	if err != nil {
		h.logger.Warn("Invalid callback data", zap.String("data", data), zap.Error(err))
		return 0, false
	}
	return n, true
}

// answer убирает индикатор загрузки на кнопке
func (h *Handler) answer(ctx context.Context, b *bot.Bot, queryID string) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
	})
	if err != nil {
		h.logger.Error("Failed to answer callback query", zap.Error(err))
	}
}

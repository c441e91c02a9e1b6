package keyboard

import (
	"strconv"

	"github.com/go-telegram/bot/models"
)

// NoopCallback данные кнопок-индикаторов, нажатие на которые ничего не делает
const NoopCallback = "noop"

// Builder собирает inline клавиатуру по рядам
type Builder struct {
	rows [][]models.InlineKeyboardButton
}

func NewBuilder() *Builder {
	// Пустой список, а не nil: reply_markup с null Telegram отклоняет
	return &Builder{rows: [][]models.InlineKeyboardButton{}}
}

// Row добавляет ряд кнопок. Пустой ряд пропускается
func (b *Builder) Row(buttons ...models.InlineKeyboardButton) *Builder {
	if len(buttons) > 0 {
		b.rows = append(b.rows, buttons)
	}
	return b
}

func (b *Builder) Build() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: b.rows}
}

// Button кнопка с callback data
func Button(text, data string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: data}
}

// Callback собирает callback data из префикса и числа, например "week:-1"
func Callback(prefix string, n int) string {
	return prefix + strconv.Itoa(n)
}

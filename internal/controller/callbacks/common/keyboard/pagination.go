package keyboard

import (
	"fmt"

	"github.com/go-telegram/bot/models"
)

// Pages ряд навигации для страницы page (с 0) из total. Для одной страницы nil.
// Начиная с четырёх страниц появляются переходы на первую и последнюю
func Pages(prefix string, page, total int) []models.InlineKeyboardButton {
	if total <= 1 {
		return nil
	}

	row := make([]models.InlineKeyboardButton, 0, 5)
	if page > 0 {
		if total > 3 && page > 1 {
			row = append(row, Button("⏮", Callback(prefix, 0)))
		}
		row = append(row, Button("⬅️", Callback(prefix, page-1)))
	}

	row = append(row, Button(fmt.Sprintf("%d / %d", page+1, total), NoopCallback))

	if page < total-1 {
		row = append(row, Button("➡️", Callback(prefix, page+1)))
		if total > 3 && page < total-2 {
			row = append(row, Button("⏭", Callback(prefix, total-1)))
		}
	}

	return row
}

// Weeks ряд переключения недель. offset считается от текущей недели;
// вне текущей недели добавляется возврат к ней
func Weeks(prefix string, offset int) []models.InlineKeyboardButton {
	row := []models.InlineKeyboardButton{Button("◀️ Пред. неделя", Callback(prefix, offset-1))}
	if offset != 0 {
		row = append(row, Button("Сегодня", Callback(prefix, 0)))
	}
	return append(row, Button("След. неделя ▶️", Callback(prefix, offset+1)))
}

package formatting

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/search"
)

// SessionsPerPage количество занятий на одной странице расписания
const SessionsPerPage = 5

// FormatSession форматирует занятие. Время показывается в часовом поясе loc
func FormatSession(session *model.Session, loc *time.Location) string {
	start := session.StartTime.In(loc)
	end := session.EndTime.In(loc)

	subject := "Занятие"
	if session.Course != nil {
		subject = session.Course.Subject
	}

	text := fmt.Sprintf(
		"📚 <b>%s</b>\n"+
			"📅 %s\n"+
			"🕐 %s (%s)",
		subject,
		FormatDateWithWeekday(start),
		FormatTimeRange(start, end),
		FormatDuration(end.Sub(start)),
	)

	if session.Course != nil && session.Course.HourlyTuition.IsPositive() {
		text += fmt.Sprintf("\n💰 %s/ч", FormatMoneyShort(session.Course.HourlyTuition))
	}

	if !session.IsConfirmed {
		text += "\n⏳ Предварительно"
	}

	return text
}

// FormatSchedulePage форматирует страницу page (с 0) списка занятий.
// Возвращает текст и общее количество страниц
func FormatSchedulePage(sessions []*model.Session, page int, loc *time.Location) (string, int) {
	if len(sessions) == 0 {
		return "📭 Ближайших занятий нет.", 0
	}

	totalPages := (len(sessions) + SessionsPerPage - 1) / SessionsPerPage
	if page < 0 {
		page = 0
	}
	if page >= totalPages {
		page = totalPages - 1
	}

	items := search.Paginate(sessions, page+1, SessionsPerPage)

	blocks := make([]string, 0, len(items))
	for _, session := range items {
		blocks = append(blocks, FormatSession(session, loc))
	}

	header := fmt.Sprintf("🗓 <b>Ближайшие занятия</b> (%d %s)\n\n", len(sessions), PluralizeSessions(len(sessions)))
	return header + strings.Join(blocks, "\n\n"), totalPages
}

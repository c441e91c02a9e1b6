// Package recurrence разворачивает курс в еженедельные занятия и
// пересчитывает будущие занятия при изменении курса.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

// OpenEndedWeeks на сколько недель за дату окончания продлевается
// расписание индивидуальных и мини-групповых занятий
const OpenEndedWeeks = 30

var ErrInvalidTimeRange = errors.New("end time must be after start time")

// Plan изменения расписания, которые нужно применить в одной транзакции
type Plan struct {
	Updated []*model.Session
	Created []*model.Session
	Deleted []int64 // ID будущих занятий, оказавшихся раньше новой даты начала
}

// Empty true если план ничего не меняет
func (p *Plan) Empty() bool {
	return len(p.Updated) == 0 && len(p.Created) == 0 && len(p.Deleted) == 0
}

// Horizon последняя дата, до которой (включительно) генерируются занятия
func Horizon(course *model.Course) time.Time {
	end := dateOnly(course.EndDate)
	if course.Type.IsOpenEnded() {
		return end.AddDate(0, 0, 7*OpenEndedWeeks)
	}
	return end
}

// Generate создаёт по одному занятию в неделю в день недели даты начала,
// от даты начала до горизонта включительно. Даты интерпретируются в часовом
// поясе loc, время занятий сохраняется в UTC
func Generate(course *model.Course, loc *time.Location) ([]*model.Session, error) {
	if err := validateClock(course); err != nil {
		return nil, err
	}

	start := dateOnly(course.StartDate)
	if dateOnly(course.EndDate).Before(start) {
		return nil, nil
	}

	return expand(course, start, Horizon(course), loc), nil
}

// Reschedule строит план обновления расписания после изменения курса.
// Прошедшие занятия (не позже now) не трогаются. Будущие переносятся на день
// недели курса в пределах своей недели (неделя с понедельника) и получают новое
// время; будущие занятия раньше даты начала удаляются. Если горизонт ушёл
// дальше последнего занятия, добавляются занятия начиная со следующей недели
func Reschedule(course *model.Course, existing []*model.Session, now time.Time, loc *time.Location) (*Plan, error) {
	if err := validateClock(course); err != nil {
		return nil, err
	}

	if len(existing) == 0 {
		sessions, err := Generate(course, loc)
		if err != nil {
			return nil, err
		}
		return &Plan{Created: sessions}, nil
	}

	plan := &Plan{}
	startDate := dateOnly(course.StartDate)
	endDate := dateOnly(course.EndDate)

	var latest time.Time
	for _, session := range existing {
		localDate := dateOnly(session.StartTime.In(loc))

		if session.StartTime.After(now) {
			localDate = onWeekday(localDate, course.Weekday())
			if localDate.Before(startDate) {
				plan.Deleted = append(plan.Deleted, session.ID)
				continue
			}
		}

		if localDate.After(latest) {
			latest = localDate
		}

		if !session.StartTime.After(now) {
			continue
		}

		startTime := course.StartTime.On(localDate, loc).UTC()
		endTime := course.EndTime.On(localDate, loc).UTC()
		confirmed := !localDate.After(endDate)

		if session.StartTime.Equal(startTime) && session.EndTime.Equal(endTime) && session.IsConfirmed == confirmed {
			continue
		}

		updated := *session
		updated.StartTime = startTime
		updated.EndTime = endTime
		updated.IsConfirmed = confirmed
		plan.Updated = append(plan.Updated, &updated)
	}

	if endDate.Before(startDate) {
		return plan, nil
	}

	from := startDate
	if !latest.IsZero() {
		from = onWeekday(latest.AddDate(0, 0, 7), course.Weekday())
	}
	if from.Before(startDate) {
		from = startDate
	}
	plan.Created = expand(course, from, Horizon(course), loc)

	return plan, nil
}

// onWeekday возвращает дату с днём недели weekday из той же недели (с понедельника), что и date
func onWeekday(date time.Time, weekday time.Weekday) time.Time {
	return date.AddDate(0, 0, mondayIndex(weekday)-mondayIndex(date.Weekday()))
}

func mondayIndex(weekday time.Weekday) int {
	return (int(weekday) + 6) % 7
}

// expand генерирует занятия с шагом в неделю в диапазоне [from, until]
func expand(course *model.Course, from, until time.Time, loc *time.Location) []*model.Session {
	var sessions []*model.Session
	endDate := dateOnly(course.EndDate)

	for date := from; !date.After(until); date = date.AddDate(0, 0, 7) {
		sessions = append(sessions, &model.Session{
			CourseID:    course.ID,
			StartTime:   course.StartTime.On(date, loc).UTC(),
			EndTime:     course.EndTime.On(date, loc).UTC(),
			IsConfirmed: !date.After(endDate),
		})
	}

	return sessions
}

func validateClock(course *model.Course) error {
	if !course.StartTime.Valid() {
		return fmt.Errorf("invalid start time %s", course.StartTime)
	}
	if !course.EndTime.Valid() {
		return fmt.Errorf("invalid end time %s", course.EndTime)
	}
	if !course.StartTime.Before(course.EndTime) {
		return ErrInvalidTimeRange
	}
	return nil
}

// dateOnly отбрасывает время, оставляя календарную дату (полночь UTC)
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

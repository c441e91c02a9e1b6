package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/tutoring_admin/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/recurrence"
)

func main() {
	out := flag.String("out", "week.png", "путь к PNG-файлу")
	tz := flag.String("tz", "America/Los_Angeles", "часовой пояс бизнеса")
	flag.Parse()

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		fmt.Printf("Неизвестный часовой пояс: %v\n", err)
		os.Exit(1)
	}

	now := time.Now().In(loc)
	monday := common.WeekStart(now)
	startDate := time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)

	// Индивидуальный курс уже закончился и попадает в неделю только предварительными занятиями
	courses := []*model.Course{
		{ID: 1, Subject: "Algebra I", Type: model.CourseTypeClass, StartDate: startDate, EndDate: startDate.AddDate(0, 2, 0),
			StartTime: model.ClockTime{Hour: 16}, EndTime: model.ClockTime{Hour: 17, Minute: 30}},
		{ID: 2, Subject: "SAT Reading", Type: model.CourseTypeSmallGroup, StartDate: startDate.AddDate(0, 0, 2), EndDate: startDate.AddDate(0, 1, 0),
			StartTime: model.ClockTime{Hour: 10}, EndTime: model.ClockTime{Hour: 12}},
		{ID: 3, Subject: "Chemistry", Type: model.CourseTypeTutoring, StartDate: startDate.AddDate(0, 0, -24), EndDate: startDate.AddDate(0, 0, -10),
			StartTime: model.ClockTime{Hour: 18}, EndTime: model.ClockTime{Hour: 19}},
	}

	var sessions []*model.Session
	for _, course := range courses {
		generated, err := recurrence.Generate(course, loc)
		if err != nil {
			fmt.Printf("Ошибка генерации занятий: %v\n", err)
			os.Exit(1)
		}
		for _, s := range generated {
			s.Course = course
		}
		sessions = append(sessions, generated...)
	}

	imageData, err := common.GenerateWeekImage(now, sessions, now)
	if err != nil {
		fmt.Printf("Ошибка генерации изображения: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, imageData, 0o644); err != nil {
		fmt.Printf("Ошибка сохранения файла: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Изображение сохранено в %s\n", *out)
	fmt.Printf("📅 Неделя с %s\n", monday.Format("02.01.2006"))
	fmt.Printf("📊 Занятий всего: %d\n", len(sessions))
}

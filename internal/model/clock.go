package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClockTime время суток без даты (часы и минуты)
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock разбирает строку вида "15:04"
func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Valid проверяет диапазоны часов и минут
func (c ClockTime) Valid() bool {
	return c.Hour >= 0 && c.Hour < 24 && c.Minute >= 0 && c.Minute < 60
}

// Minutes количество минут от полуночи
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Before сравнивает два времени суток
func (c ClockTime) Before(other ClockTime) bool {
	return c.Minutes() < other.Minutes()
}

// On возвращает момент времени в указанный день в зоне loc
func (c ClockTime) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, loc)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

package common

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

func TestGenerateWeekImage(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	course := &model.Course{Subject: "Algebra I"}
	start := time.Date(2025, 1, 7, 16, 0, 0, 0, loc)
	sessions := []*model.Session{
		{StartTime: start.UTC(), EndTime: start.Add(90 * time.Minute).UTC(), IsConfirmed: true, Course: course},
		{StartTime: start.AddDate(0, 0, 2).UTC(), EndTime: start.AddDate(0, 0, 2).Add(time.Hour).UTC(), Course: course},
	}

	data, err := GenerateWeekImage(start, sessions, start.Add(-time.Hour))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, imageWidth, img.Bounds().Dx())
	assert.Equal(t, imageHeight, img.Bounds().Dy())
}

func TestNormalizeToWeekBounds(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want time.Time
	}{
		{name: "monday", date: time.Date(2025, 1, 6, 15, 0, 0, 0, time.UTC), want: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)},
		{name: "wednesday", date: time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC), want: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)},
		{name: "sunday", date: time.Date(2025, 1, 12, 23, 0, 0, 0, time.UTC), want: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			week := normalizeToWeekBounds(tt.date)
			assert.Equal(t, tt.want, week.start)
			assert.Equal(t, tt.want.AddDate(0, 0, 6), week.end)
		})
	}
}

func TestSessionsInWeek(t *testing.T) {
	week := normalizeToWeekBounds(time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC))
	at := func(day, hour int) *model.Session {
		start := time.Date(2025, 1, day, hour, 0, 0, 0, time.UTC)
		return &model.Session{StartTime: start, EndTime: start.Add(time.Hour)}
	}

	got := sessionsInWeek([]*model.Session{at(5, 10), at(6, 0), at(12, 23), at(13, 0)}, week, time.UTC)

	require.Len(t, got, 2)
	assert.Equal(t, 6, got[0].start.Day())
	assert.Equal(t, 12, got[1].start.Day())
}

func TestCalculateHourRange(t *testing.T) {
	assert.Equal(t, hourRange{start: defaultMinHour - 1, end: defaultMaxHour + 1, total: 15}, calculateHourRange(nil))

	start := time.Date(2025, 1, 6, 16, 0, 0, 0, time.UTC)
	got := calculateHourRange([]localSession{{start: start, end: start.Add(90 * time.Minute)}})
	assert.Equal(t, hourRange{start: 15, end: 19, total: 5}, got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Алгебра", truncate("Алгебра", 10))
	assert.Equal(t, "Advanced P...", truncate("Advanced Placement Calculus", 13))
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

func TestSessionService_UpdateSession(t *testing.T) {
	db := newMemDB()
	svc := NewSessionService(db.stores(), zap.NewNop())
	course := db.addCourse(&model.Course{Subject: "Physics", Type: model.CourseTypeClass})

	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	sessions := []*model.Session{
		{CourseID: course.ID, StartTime: start, EndTime: start.Add(time.Hour), IsConfirmed: true},
		{CourseID: course.ID, StartTime: start.AddDate(0, 0, 7), EndTime: start.AddDate(0, 0, 7).Add(time.Hour), IsConfirmed: true},
	}
	require.NoError(t, memSessions{db}.CreateBatch(context.Background(), sessions))

	loc := businessLocation(t)
	newStart := time.Date(2025, 1, 7, 10, 0, 0, 0, loc)

	got, err := svc.UpdateSession(context.Background(), sessions[0].ID, &SessionInput{
		StartTime: newStart,
		EndTime:   newStart.Add(90 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.StartTime.Location())
	assert.True(t, got.StartTime.Equal(newStart))
	assert.Equal(t, start.AddDate(0, 0, 7), db.sessions[sessions[1].ID].StartTime, "other sessions untouched")

	_, err = svc.UpdateSession(context.Background(), sessions[0].ID, &SessionInput{StartTime: newStart, EndTime: newStart})
	assert.True(t, IsValidation(err))

	_, err = svc.UpdateSession(context.Background(), 999, &SessionInput{StartTime: newStart, EndTime: newStart.Add(time.Hour)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionService_ListCourseSessions(t *testing.T) {
	db := newMemDB()
	svc := NewSessionService(db.stores(), zap.NewNop())
	course := db.addCourse(&model.Course{Subject: "Physics", Type: model.CourseTypeClass})

	sessions, err := svc.ListCourseSessions(context.Background(), course.ID)
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)

	_, err = svc.ListCourseSessions(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionService_UpcomingForAccount(t *testing.T) {
	db := newMemDB()
	svc := NewSessionService(db.stores(), zap.NewNop())
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	parent := db.addParent("Mary", "mary@example.com", 0)
	student := db.addStudent("Tom", parent.ID)
	instructor := db.addAccount(&model.Account{Role: model.AccountRoleInstructor, FirstName: "Ann"})
	course := db.addCourse(&model.Course{Subject: "Physics", Type: model.CourseTypeClass, InstructorID: &instructor.ID})
	other := db.addCourse(&model.Course{Subject: "Art", Type: model.CourseTypeClass})
	require.NoError(t, memEnrollments{db}.Create(context.Background(), &model.Enrollment{StudentID: student.ID, CourseID: course.ID}))

	var sessions []*model.Session
	for i := -1; i < 4; i++ {
		start := now.AddDate(0, 0, 7*i+1)
		sessions = append(sessions,
			&model.Session{CourseID: course.ID, StartTime: start, EndTime: start.Add(time.Hour)},
			&model.Session{CourseID: other.ID, StartTime: start, EndTime: start.Add(time.Hour)},
		)
	}
	require.NoError(t, memSessions{db}.CreateBatch(context.Background(), sessions))

	for _, accountID := range []int64{parent.ID, student.ID, instructor.ID} {
		upcoming, err := svc.UpcomingForAccount(context.Background(), accountID, 3)
		require.NoError(t, err)
		require.Len(t, upcoming, 3)
		for _, s := range upcoming {
			assert.Equal(t, course.ID, s.CourseID)
			require.NotNil(t, s.Course)
			assert.Equal(t, "Physics", s.Course.Subject)
			assert.False(t, s.StartTime.Before(now))
		}
	}

	none, err := svc.UpcomingForAccount(context.Background(), 999, 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

package base

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

func TestClockRoundTrip(t *testing.T) {
	for _, c := range []model.ClockTime{{Hour: 0}, {Hour: 9, Minute: 5}, {Hour: 23, Minute: 59}} {
		pg := ClockToPG(c)
		assert.True(t, pg.Valid)
		assert.Equal(t, c, ClockFromPG(pg))
	}
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("get course: %w", pgx.ErrNoRows)))
	assert.False(t, IsNotFound(errors.New("boom")))

	assert.True(t, IsUniqueViolation(fmt.Errorf("create: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
}

type execStub struct {
	tag pgconn.CommandTag
	err error
	sql string
}

func (s *execStub) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	s.sql = sql
	return s.tag, s.err
}

func (s *execStub) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (s *execStub) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func TestRepository_ExecOne(t *testing.T) {
	ctx := context.Background()

	stub := &execStub{tag: pgconn.NewCommandTag("DELETE 1")}
	repo := NewRepository(stub)
	assert.NoError(t, repo.ExecOne(ctx, "DELETE FROM sessions WHERE id = $1", 1))
	assert.Equal(t, "DELETE FROM sessions WHERE id = $1", stub.sql)
	assert.Same(t, DBTX(stub), repo.DB())

	stub.tag = pgconn.NewCommandTag("UPDATE 0")
	err := repo.ExecOne(ctx, "UPDATE invoices SET payment_status = $2 WHERE id = $1", 9, "paid")
	assert.True(t, IsNotFound(err))

	stub.err = errors.New("connection reset")
	affected, err := repo.ExecAffected(ctx, "UPDATE accounts SET first_name = $2 WHERE id = $1", 1, "Ada")
	assert.EqualError(t, err, "connection reset")
	assert.Zero(t, affected)
}

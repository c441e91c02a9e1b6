package base

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

// DBTX общий интерфейс пула соединений и транзакции,
// чтобы один и тот же репозиторий работал в обоих режимах
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository базовый репозиторий с общими методами
type Repository struct {
	db DBTX
}

// NewRepository создаёт новый базовый репозиторий
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

// DB возвращает соединение (пул или транзакцию)
func (r *Repository) DB() DBTX {
	return r.db
}

// ExecAffected выполняет команду и возвращает количество затронутых строк
func (r *Repository) ExecAffected(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ExecOne выполняет команду, которая должна затронуть хотя бы одну строку.
// Если строк нет, возвращает pgx.ErrNoRows
func (r *Repository) ExecOne(ctx context.Context, query string, args ...any) error {
	affected, err := r.ExecAffected(ctx, query, args...)
	if err != nil {
		return err
	}
	if affected == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// IsNotFound проверяет является ли ошибка "строка не найдена"
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation проверяет нарушение уникального индекса
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ClockToPG переводит время суток в значение колонки TIME
func ClockToPG(c model.ClockTime) pgtype.Time {
	return pgtype.Time{Microseconds: int64(c.Minutes()) * 60 * 1_000_000, Valid: true}
}

// ClockFromPG переводит значение колонки TIME во время суток
func ClockFromPG(t pgtype.Time) model.ClockTime {
	minutes := int(t.Microseconds / 60 / 1_000_000)
	return model.ClockTime{Hour: minutes / 60, Minute: minutes % 60}
}

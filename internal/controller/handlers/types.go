package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/controller/state"
	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

const (
	// UpcomingLimit сколько ближайших занятий загружает бот
	UpcomingLimit = 50

	// MaxLinkAttempts неудачных попыток ввести email до завершения диалога
	MaxLinkAttempts = 3

	linkAttemptsKey = "link_attempts"
)

// AccountLinker привязка аккаунтов к чатам Telegram
type AccountLinker interface {
	LinkTelegram(ctx context.Context, email string, telegramID int64) (*model.Account, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.Account, error)
}

// ScheduleProvider ближайшие занятия аккаунта
type ScheduleProvider interface {
	UpcomingForAccount(ctx context.Context, accountID int64, limit int) ([]*model.Session, error)
}

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	accounts     AccountLinker
	schedule     ScheduleProvider
	stateManager *state.Manager
	loc          *time.Location
	now          func() time.Time
	logger       *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	accounts AccountLinker,
	schedule ScheduleProvider,
	stateManager *state.Manager,
	loc *time.Location,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		accounts:     accounts,
		schedule:     schedule,
		stateManager: stateManager,
		loc:          loc,
		now:          time.Now,
		logger:       logger,
	}
}

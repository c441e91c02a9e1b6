package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

// ConsoleChannel пишет письма в лог вместо отправки. Используется без ключа SendGrid
type ConsoleChannel struct {
	logger *zap.Logger
}

func NewConsoleChannel(logger *zap.Logger) *ConsoleChannel {
	return &ConsoleChannel{logger: logger}
}

func (c *ConsoleChannel) Kind() model.NotificationChannel {
	return model.NotificationChannelEmail
}

func (c *ConsoleChannel) Recipient(account *model.Account) (string, bool) {
	return account.Email, account.Email != ""
}

func (c *ConsoleChannel) Send(_ context.Context, to string, msg Message) error {
	c.logger.Info("Email (console)",
		zap.String("to", to),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body))
	return nil
}

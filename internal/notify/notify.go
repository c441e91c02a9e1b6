// Package notify отправляет уведомления по email, SMS и в Telegram.
// Клиенты внешних сервисов создаются из конфигурации на каждый вызов.
package notify

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

// Message содержимое уведомления
type Message struct {
	Subject string
	Body    string
}

// Channel канал доставки уведомлений
type Channel interface {
	Kind() model.NotificationChannel
	// Recipient адрес аккаунта в этом канале. false если канал аккаунту недоступен
	Recipient(account *model.Account) (string, bool)
	Send(ctx context.Context, to string, msg Message) error
}

// ChannelFactory создаёт каналы доставки
type ChannelFactory interface {
	Channels() []Channel
}

// Dispatcher рассылает сообщение по всем доступным аккаунту каналам
type Dispatcher struct {
	factory ChannelFactory
	logger  *zap.Logger
}

func NewDispatcher(factory ChannelFactory, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		factory: factory,
		logger:  logger,
	}
}

// Dispatch отправляет сообщение и возвращает по записи на каждую попытку.
// Ошибка канала не прерывает рассылку: запись получает статус failed, повторов нет
func (d *Dispatcher) Dispatch(ctx context.Context, account *model.Account, msg Message) []*model.Notification {
	dispatchID := uuid.NewString()
	logger := d.logger.With(
		zap.String("dispatch_id", dispatchID),
		zap.Int64("account_id", account.ID))

	var notifications []*model.Notification
	for _, ch := range d.factory.Channels() {
		to, ok := ch.Recipient(account)
		if !ok {
			continue
		}

		n := &model.Notification{
			AccountID: account.ID,
			Channel:   ch.Kind(),
			Recipient: to,
			Subject:   msg.Subject,
			Body:      msg.Body,
			Status:    model.NotificationStatusSent,
		}

		if err := ch.Send(ctx, to, msg); err != nil {
			n.Status = model.NotificationStatusFailed
			n.Error = err.Error()
			logger.Warn("Notification failed",
				zap.String("channel", string(n.Channel)),
				zap.Error(err))
		} else {
			logger.Debug("Notification sent", zap.String("channel", string(n.Channel)))
		}

		notifications = append(notifications, n)
	}

	return notifications
}

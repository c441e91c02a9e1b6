package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

// MessageSender часть клиента бота, которая нужна для уведомлений
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramChannel отправка сообщений в привязанный чат Telegram
type TelegramChannel struct {
	sender MessageSender
}

func NewTelegramChannel(sender MessageSender) *TelegramChannel {
	return &TelegramChannel{sender: sender}
}

// NewTelegramChannelFromToken создаёт клиента бота без сетевых запросов
func NewTelegramChannelFromToken(token string) (*TelegramChannel, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return NewTelegramChannel(b), nil
}

func (c *TelegramChannel) Kind() model.NotificationChannel {
	return model.NotificationChannelTelegram
}

func (c *TelegramChannel) Recipient(account *model.Account) (string, bool) {
	if account.TelegramID == nil {
		return "", false
	}
	return strconv.FormatInt(*account.TelegramID, 10), true
}

func (c *TelegramChannel) Send(ctx context.Context, to string, msg Message) error {
	chatID, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", to, err)
	}

	text := msg.Body
	if msg.Subject != "" {
		text = msg.Subject + "\n\n" + msg.Body
	}

	if _, err := c.sender.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

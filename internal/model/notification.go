package model

import "time"

type NotificationChannel string

const (
	NotificationChannelEmail    NotificationChannel = "email"
	NotificationChannelSMS      NotificationChannel = "sms"
	NotificationChannelTelegram NotificationChannel = "telegram"
)

type NotificationStatus string

const (
	NotificationStatusSent   NotificationStatus = "sent"
	NotificationStatusFailed NotificationStatus = "failed"
)

// Notification журнал отправленных уведомлений. Ошибки внешних сервисов
// сохраняются здесь со статусом failed и не повторяются
type Notification struct {
	ID        int64               `json:"id"`
	AccountID int64               `json:"account_id"`
	Channel   NotificationChannel `json:"channel"`
	Recipient string              `json:"recipient"`
	Subject   string              `json:"subject"`
	Body      string              `json:"body"`
	Status    NotificationStatus  `json:"status"`
	Error     string              `json:"error"`
	CreatedAt time.Time           `json:"created_at"`
}

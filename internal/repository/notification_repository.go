package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/repository/base"
)

type NotificationRepository struct {
	db base.DBTX
}

func NewNotificationRepository(db base.DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create сохраняет запись об отправленном (или неотправленном) уведомлении
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (account_id, channel, recipient, subject, body, status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		n.AccountID,
		n.Channel,
		n.Recipient,
		n.Subject,
		n.Body,
		n.Status,
		n.Error,
	).Scan(&n.ID, &n.CreatedAt)

	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"campus-sync/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository persists per-user notification inboxes.
type NotificationRepository interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
	ListInbox(ctx context.Context, recipientID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, recipientID, id string) error
	MarkAllRead(ctx context.Context, recipientID string) error
	Delete(ctx context.Context, recipientID, id string) error
}

// NotificationRepo is a sqlx implementation of NotificationRepository.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs a NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create stores a notification in the recipient's inbox and returns it with
// the assigned id and server timestamp.
func (r *NotificationRepo) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	var stored models.Notification
	err := r.db.QueryRowxContext(ctx, `INSERT INTO notifications
        (id, recipient_id, type, sender_id, sender_name, sender_photo_url, message, related_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, recipient_id, type, sender_id, sender_name, sender_photo_url, message, related_id, read, created_at`,
		uuid.NewString(), n.RecipientID, n.Type, n.SenderID, n.SenderName, n.SenderPhotoURL, n.Message, n.RelatedID).
		StructScan(&stored)
	if err != nil {
		return models.Notification{}, err
	}
	return stored, nil
}

// ListInbox returns the recipient's notifications, newest first.
func (r *NotificationRepo) ListInbox(ctx context.Context, recipientID string) ([]models.Notification, error) {
	var items []models.Notification
	err := r.db.SelectContext(ctx, &items, `SELECT id, recipient_id, type, sender_id, sender_name, sender_photo_url,
        message, related_id, read, created_at
        FROM notifications WHERE recipient_id=$1 ORDER BY created_at DESC`, recipientID)
	return items, err
}

// MarkRead flips the read flag. Marking an already-read notification is a
// no-op, not an error.
func (r *NotificationRepo) MarkRead(ctx context.Context, recipientID, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read=TRUE WHERE id=$1 AND recipient_id=$2`, id, recipientID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification in the inbox.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET read=TRUE WHERE recipient_id=$1 AND read=FALSE`, recipientID)
	return err
}

// Delete removes a notification from the recipient's inbox.
func (r *NotificationRepo) Delete(ctx context.Context, recipientID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id=$1 AND recipient_id=$2`, id, recipientID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

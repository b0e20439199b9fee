package models

import "time"

// NotificationType classifies the triggering social action.
type NotificationType string

const (
	NotifyLike              NotificationType = "like"
	NotifyComment           NotificationType = "comment"
	NotifyConnectionRequest NotificationType = "connection_request"
	NotifyConnectionAccept  NotificationType = "connection_accept"
	NotifyPostShare         NotificationType = "post_share"
	NotifyNewNotice         NotificationType = "new_notice"
	NotifyNewEvent          NotificationType = "new_event"
)

// Notification is owned by the recipient's inbox; only the recipient mutates it.
type Notification struct {
	ID             string           `db:"id" json:"id"`
	RecipientID    string           `db:"recipient_id" json:"recipient_id"`
	Type           NotificationType `db:"type" json:"type"`
	SenderID       string           `db:"sender_id" json:"sender_id,omitempty"`
	SenderName     string           `db:"sender_name" json:"sender_name,omitempty"`
	SenderPhotoURL string           `db:"sender_photo_url" json:"sender_photo_url,omitempty"`
	Message        string           `db:"message" json:"message"`
	RelatedID      string           `db:"related_id" json:"related_id,omitempty"`
	Read           bool             `db:"read" json:"read"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

// InboxEvent is pushed over the per-user inbox websocket.
type InboxEvent struct {
	Type         string        `json:"type"`
	Notification *Notification `json:"notification,omitempty"`
}

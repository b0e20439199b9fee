package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"campus-sync/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository persists per-conversation message streams.
type MessageRepository interface {
	Append(ctx context.Context, conversationID string, sender models.User, payload models.Payload, clientSeq int64) (models.Message, error)
	List(ctx context.Context, conversationID string) ([]models.Message, error)
	Get(ctx context.Context, id string) (models.Message, error)
	Delete(ctx context.Context, id string) error
	DeleteByConversation(ctx context.Context, conversationID string) ([]string, error)
}

// MessageRepo is a sqlx implementation of MessageRepository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Append validates the payload, assigns a server timestamp and stores the
// message. The sender's display fields are denormalized onto the row so the
// stream stays readable after the sender leaves.
func (r *MessageRepo) Append(ctx context.Context, conversationID string, sender models.User, payload models.Payload, clientSeq int64) (models.Message, error) {
	kind, err := payload.Kind()
	if err != nil {
		return models.Message{}, err
	}

	var msg models.Message
	err = r.db.QueryRowxContext(ctx, `INSERT INTO messages
        (id, conversation_id, sender_id, sender_name, sender_photo_url, kind, text, image_ref, image_url, shared_post_id, client_seq)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id, conversation_id, sender_id, sender_name, sender_photo_url, kind, text, image_ref, image_url, shared_post_id, client_seq, created_at`,
		uuid.NewString(), conversationID, sender.ID, sender.DisplayName, sender.PhotoURL,
		kind, payload.Text, payload.ImageRef, payload.ImageURL, payload.SharedPostID, clientSeq).
		StructScan(&msg)
	if err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// List returns the conversation's messages ordered oldest first. Ties on the
// server timestamp break on the client sequence number.
func (r *MessageRepo) List(ctx context.Context, conversationID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, conversation_id, sender_id, sender_name, sender_photo_url,
        kind, text, image_ref, image_url, shared_post_id, client_seq, created_at
        FROM messages WHERE conversation_id=$1 ORDER BY created_at ASC, client_seq ASC`, conversationID)
	return msgs, err
}

// Get fetches a single message by id.
func (r *MessageRepo) Get(ctx context.Context, id string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT id, conversation_id, sender_id, sender_name, sender_photo_url,
        kind, text, image_ref, image_url, shared_post_id, client_seq, created_at
        FROM messages WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// Delete removes one message.
func (r *MessageRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// DeleteByConversation wipes a conversation's stream and returns the blob
// refs of deleted image attachments so callers can reclaim the storage.
func (r *MessageRepo) DeleteByConversation(ctx context.Context, conversationID string) ([]string, error) {
	rows, err := r.db.QueryxContext(ctx, `DELETE FROM messages WHERE conversation_id=$1 RETURNING image_ref`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		if ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs, rows.Err()
}

package models

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// ErrEmptyMessage rejects payloads with no text and no attachment.
var ErrEmptyMessage = errors.New("empty message")

// PayloadKind tags the message payload variant.
type PayloadKind string

const (
	PayloadText       PayloadKind = "text"
	PayloadImage      PayloadKind = "image"
	PayloadTextImage  PayloadKind = "text_image"
	PayloadSharedPost PayloadKind = "shared_post"
)

// Payload is the content of a message before it is appended. Exactly one
// variant must be present: text, image, text+image, or a shared post reference.
type Payload struct {
	Text         string `json:"text"`
	ImageRef     string `json:"image_ref"`
	ImageURL     string `json:"image_url"`
	SharedPostID string `json:"shared_post_id"`
}

// Kind validates the payload and returns its variant tag.
func (p Payload) Kind() (PayloadKind, error) {
	text := strings.TrimSpace(p.Text) != ""
	image := p.ImageRef != "" || p.ImageURL != ""
	shared := p.SharedPostID != ""

	switch {
	case shared && !text && !image:
		return PayloadSharedPost, nil
	case shared:
		return "", errors.New("shared post cannot carry text or image")
	case text && image:
		return PayloadTextImage, nil
	case text:
		return PayloadText, nil
	case image:
		return PayloadImage, nil
	}
	return "", ErrEmptyMessage
}

// Message belongs to exactly one conversation. Immutable except for deletion.
type Message struct {
	ID             string      `db:"id" json:"id"`
	ConversationID string      `db:"conversation_id" json:"conversation_id"`
	SenderID       string      `db:"sender_id" json:"sender_id"`
	SenderName     string      `db:"sender_name" json:"sender_name"`
	SenderPhotoURL string      `db:"sender_photo_url" json:"sender_photo_url"`
	Kind           PayloadKind `db:"kind" json:"kind"`
	Text           string      `db:"text" json:"text,omitempty"`
	ImageRef       string      `db:"image_ref" json:"image_ref,omitempty"`
	ImageURL       string      `db:"image_url" json:"image_url,omitempty"`
	SharedPostID   string      `db:"shared_post_id" json:"shared_post_id,omitempty"`
	ClientSeq      int64       `db:"client_seq" json:"client_seq"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
}

// SortMessages orders messages by server creation time ascending; equal
// timestamps fall back to the client-local sequence number, never the id.
func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ClientSeq < msgs[j].ClientSeq
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}

// StreamEvent is broadcast over conversation websockets.
type StreamEvent struct {
	Type      string   `json:"type"`
	Message   *Message `json:"message,omitempty"`
	MessageID string   `json:"message_id,omitempty"`
}

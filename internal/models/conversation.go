package models

import "time"

// ConversationKind distinguishes the three addressable message containers.
type ConversationKind string

const (
	KindChannel ConversationKind = "channel"
	KindGroup   ConversationKind = "group"
	KindDM      ConversationKind = "dm"
)

// Conversation is a channel or group record. DM conversations have no stored
// record; their id is derived from the two participant ids.
type Conversation struct {
	ID        string           `db:"id" json:"id"`
	Kind      ConversationKind `db:"kind" json:"kind"`
	Name      string           `db:"name" json:"name"`
	AdminID   string           `db:"admin_id" json:"admin_id,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// GroupSummary is the API view of a group plus its member ids.
type GroupSummary struct {
	Conversation
	Members []string `json:"members"`
}

package models

import "time"

// ConnectionState is the per-edge view of the social graph state machine.
type ConnectionState string

const (
	ConnectionRequestSent     ConnectionState = "request_sent"
	ConnectionRequestReceived ConnectionState = "request_received"
	ConnectionConnected       ConnectionState = "connected"
)

// ConnectionEdge is one user's record of a relation with a peer. Pending and
// connected relations always exist as a mirrored pair of edges, one per user.
type ConnectionEdge struct {
	OwnerID      string          `db:"owner_id" json:"owner_id"`
	PeerID       string          `db:"peer_id" json:"peer_id"`
	State        ConnectionState `db:"state" json:"state"`
	PeerName     string          `db:"peer_name" json:"peer_name"`
	PeerPhotoURL string          `db:"peer_photo_url" json:"peer_photo_url"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

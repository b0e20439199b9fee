package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"campus-sync/internal/models"
)

var (
	ErrConnectionExists  = errors.New("connection or pending request already exists")
	ErrNoPendingRequest  = errors.New("no pending request")
	ErrNotConnected      = errors.New("users are not connected")
	ErrSelfConnection    = errors.New("cannot connect with yourself")
)

// ConnectionRepository owns the social graph edge pairs. Pending and connected
// relations are two mirrored per-user records written and deleted together.
type ConnectionRepository interface {
	SendRequest(ctx context.Context, from, to models.User) error
	AcceptRequest(ctx context.Context, recipient, requester models.User) error
	CancelRequest(ctx context.Context, userID, peerID string) error
	Disconnect(ctx context.Context, userID, peerID string) error
	ListEdges(ctx context.Context, ownerID string, state models.ConnectionState) ([]models.ConnectionEdge, error)
	AreConnected(ctx context.Context, userID, peerID string) (bool, error)
}

// ConnectionRepo is a sqlx implementation of ConnectionRepository.
type ConnectionRepo struct {
	db *sqlx.DB
}

// NewConnectionRepo constructs a ConnectionRepo.
func NewConnectionRepo(db *sqlx.DB) *ConnectionRepo {
	return &ConnectionRepo{db: db}
}

// SendRequest writes the asymmetric pending pair: request_sent in the sender's
// set, request_received in the recipient's. Valid only when no edge exists for
// the pair in either direction.
func (r *ConnectionRepo) SendRequest(ctx context.Context, from, to models.User) error {
	if from.ID == to.ID {
		return ErrSelfConnection
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var existing int
	if err = tx.GetContext(ctx, &existing, `SELECT COUNT(*) FROM connection_edges
        WHERE (owner_id=$1 AND peer_id=$2) OR (owner_id=$2 AND peer_id=$1)`, from.ID, to.ID); err != nil {
		return err
	}
	if existing > 0 {
		err = ErrConnectionExists
		return err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO connection_edges (owner_id, peer_id, state, peer_name, peer_photo_url)
        VALUES ($1, $2, $3, $4, $5)`, from.ID, to.ID, models.ConnectionRequestSent, to.DisplayName, to.PhotoURL); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO connection_edges (owner_id, peer_id, state, peer_name, peer_photo_url)
        VALUES ($1, $2, $3, $4, $5)`, to.ID, from.ID, models.ConnectionRequestReceived, from.DisplayName, from.PhotoURL); err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// AcceptRequest converts a pending pair into the symmetric connected pair.
// Valid only when the recipient holds a request_received edge from requester.
func (r *ConnectionRepo) AcceptRequest(ctx context.Context, recipient, requester models.User) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var pending int
	if err = tx.GetContext(ctx, &pending, `SELECT COUNT(*) FROM connection_edges
        WHERE owner_id=$1 AND peer_id=$2 AND state=$3`, recipient.ID, requester.ID, models.ConnectionRequestReceived); err != nil {
		return err
	}
	if pending == 0 {
		err = ErrNoPendingRequest
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM connection_edges
        WHERE (owner_id=$1 AND peer_id=$2) OR (owner_id=$2 AND peer_id=$1)`, recipient.ID, requester.ID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO connection_edges (owner_id, peer_id, state, peer_name, peer_photo_url)
        VALUES ($1, $2, $3, $4, $5)`, recipient.ID, requester.ID, models.ConnectionConnected, requester.DisplayName, requester.PhotoURL); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO connection_edges (owner_id, peer_id, state, peer_name, peer_photo_url)
        VALUES ($1, $2, $3, $4, $5)`, requester.ID, recipient.ID, models.ConnectionConnected, recipient.DisplayName, recipient.PhotoURL); err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// CancelRequest removes a pending pair in either direction. Covers both
// sender cancel and recipient decline.
func (r *ConnectionRepo) CancelRequest(ctx context.Context, userID, peerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM connection_edges
        WHERE ((owner_id=$1 AND peer_id=$2) OR (owner_id=$2 AND peer_id=$1))
        AND state IN ($3, $4)`, userID, peerID, models.ConnectionRequestSent, models.ConnectionRequestReceived)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNoPendingRequest
	}
	return nil
}

// Disconnect deletes the symmetric connected pair. Valid only from CONNECTED.
func (r *ConnectionRepo) Disconnect(ctx context.Context, userID, peerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM connection_edges
        WHERE ((owner_id=$1 AND peer_id=$2) OR (owner_id=$2 AND peer_id=$1))
        AND state=$3`, userID, peerID, models.ConnectionConnected)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotConnected
	}
	return nil
}

// ListEdges returns the owner's edges in the given state, newest first. An
// empty state returns every edge.
func (r *ConnectionRepo) ListEdges(ctx context.Context, ownerID string, state models.ConnectionState) ([]models.ConnectionEdge, error) {
	var edges []models.ConnectionEdge
	if state == "" {
		err := r.db.SelectContext(ctx, &edges, `SELECT owner_id, peer_id, state, peer_name, peer_photo_url, created_at
        FROM connection_edges WHERE owner_id=$1 ORDER BY created_at DESC`, ownerID)
		return edges, err
	}
	err := r.db.SelectContext(ctx, &edges, `SELECT owner_id, peer_id, state, peer_name, peer_photo_url, created_at
        FROM connection_edges WHERE owner_id=$1 AND state=$2 ORDER BY created_at DESC`, ownerID, state)
	return edges, err
}

// AreConnected checks for the symmetric connected relation.
func (r *ConnectionRepo) AreConnected(ctx context.Context, userID, peerID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM connection_edges
        WHERE owner_id=$1 AND peer_id=$2 AND state=$3)`, userID, peerID, models.ConnectionConnected)
	return exists, err
}

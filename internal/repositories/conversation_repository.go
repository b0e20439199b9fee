package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"campus-sync/internal/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository persists channels and groups. DM conversations carry
// no record; their id is derived from the participant ids.
type ConversationRepository interface {
	Get(ctx context.Context, id string) (models.Conversation, error)
	ListChannels(ctx context.Context) ([]models.Conversation, error)
	EnsureChannel(ctx context.Context, id, name string) error
	CreateGroup(ctx context.Context, adminID, name string, memberIDs []string) (models.Conversation, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]models.Conversation, error)
	GroupMembers(ctx context.Context, groupID string) ([]string, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	AddMembers(ctx context.Context, groupID string, memberIDs []string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	DeleteGroup(ctx context.Context, groupID string) error
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// Get fetches a stored channel or group by id.
func (r *ConversationRepo) Get(ctx context.Context, id string) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT id, kind, name, admin_id, created_at FROM conversations WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// ListChannels returns the public channels, list-visible to everyone.
func (r *ConversationRepo) ListChannels(ctx context.Context) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.SelectContext(ctx, &convs, `SELECT id, kind, name, admin_id, created_at FROM conversations WHERE kind=$1 ORDER BY name ASC`, models.KindChannel)
	return convs, err
}

// EnsureChannel creates a public channel if it does not exist.
func (r *ConversationRepo) EnsureChannel(ctx context.Context, id, name string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO conversations (id, kind, name) VALUES ($1, $2, $3)
        ON CONFLICT (id) DO NOTHING`, id, models.KindChannel, name)
	return err
}

// CreateGroup creates a group and its members atomically. The creator is
// always a member and the sole admin.
func (r *ConversationRepo) CreateGroup(ctx context.Context, adminID, name string, memberIDs []string) (models.Conversation, error) {
	name = strings.TrimSpace(name)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Conversation{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var group models.Conversation
	if err = tx.QueryRowxContext(ctx, `INSERT INTO conversations (id, kind, name, admin_id)
        VALUES ($1, $2, $3, $4) RETURNING id, kind, name, admin_id, created_at`,
		uuid.NewString(), models.KindGroup, name, adminID).
		StructScan(&group); err != nil {
		return models.Conversation{}, err
	}

	// ensure admin present and dedupe members
	memberSet := map[string]struct{}{adminID: {}}
	for _, id := range memberIDs {
		memberSet[id] = struct{}{}
	}
	ids := make([]string, 0, len(memberSet))
	for id := range memberSet {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if _, err = tx.ExecContext(ctx, `INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)`, group.ID, id); err != nil {
			return models.Conversation{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return models.Conversation{}, err
	}
	return group, nil
}

// ListGroupsForUser returns groups that include the user.
func (r *ConversationRepo) ListGroupsForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	var groups []models.Conversation
	err := r.db.SelectContext(ctx, &groups, `SELECT c.id, c.kind, c.name, c.admin_id, c.created_at
        FROM conversations c INNER JOIN group_members gm ON gm.group_id = c.id
        WHERE gm.user_id=$1 AND c.kind=$2 ORDER BY c.created_at DESC`, userID, models.KindGroup)
	return groups, err
}

// GroupMembers returns the member id set.
func (r *ConversationRepo) GroupMembers(ctx context.Context, groupID string) ([]string, error) {
	var members []string
	err := r.db.SelectContext(ctx, &members, `SELECT user_id FROM group_members WHERE group_id=$1 ORDER BY user_id ASC`, groupID)
	return members, err
}

// IsMember checks membership.
func (r *ConversationRepo) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id=$1 AND user_id=$2)`, groupID, userID)
	return exists, err
}

// AddMembers inserts new members, ignoring ones already present.
func (r *ConversationRepo) AddMembers(ctx context.Context, groupID string, memberIDs []string) error {
	for _, id := range memberIDs {
		if _, err := r.db.ExecContext(ctx, `INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)
            ON CONFLICT (group_id, user_id) DO NOTHING`, groupID, id); err != nil {
			return err
		}
	}
	return nil
}

// RemoveMember drops one member from the group.
func (r *ConversationRepo) RemoveMember(ctx context.Context, groupID, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM group_members WHERE group_id=$1 AND user_id=$2`, groupID, userID)
	return err
}

// DeleteGroup removes the group record; membership rows cascade. The message
// stream is deleted separately so attachment refs can be collected first.
func (r *ConversationRepo) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM conversations WHERE id=$1 AND kind=$2`, groupID, models.KindGroup)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrConversationNotFound
	}
	return nil
}

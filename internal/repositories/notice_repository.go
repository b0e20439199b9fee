package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"campus-sync/internal/models"
)

var ErrNoticeNotFound = errors.New("notice not found")

// NoticeRepository persists the digital notice board.
type NoticeRepository interface {
	Create(ctx context.Context, n models.Notice) (models.Notice, error)
	List(ctx context.Context) ([]models.Notice, error)
	Get(ctx context.Context, id string) (models.Notice, error)
	SetPinned(ctx context.Context, id string, pinned bool) error
	Delete(ctx context.Context, id string) error
}

// NoticeRepo is a sqlx implementation of NoticeRepository.
type NoticeRepo struct {
	db *sqlx.DB
}

// NewNoticeRepo constructs a NoticeRepo.
func NewNoticeRepo(db *sqlx.DB) *NoticeRepo {
	return &NoticeRepo{db: db}
}

// Create publishes a notice.
func (r *NoticeRepo) Create(ctx context.Context, n models.Notice) (models.Notice, error) {
	var stored models.Notice
	err := r.db.QueryRowxContext(ctx, `INSERT INTO notices
        (id, title, content, category, priority, department_from, pinned, expires_at, created_by, created_by_name)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, title, content, category, priority, department_from, pinned, expires_at, created_by, created_by_name, created_at`,
		uuid.NewString(), n.Title, n.Content, n.Category, n.Priority, n.DepartmentFrom, n.Pinned, n.ExpiresAt, n.CreatedBy, n.CreatedByName).
		StructScan(&stored)
	if err != nil {
		return models.Notice{}, err
	}
	return stored, nil
}

// List returns unexpired notices, pinned first, then newest first.
func (r *NoticeRepo) List(ctx context.Context) ([]models.Notice, error) {
	var notices []models.Notice
	err := r.db.SelectContext(ctx, &notices, `SELECT id, title, content, category, priority, department_from,
        pinned, expires_at, created_by, created_by_name, created_at
        FROM notices WHERE expires_at IS NULL OR expires_at > NOW()
        ORDER BY pinned DESC, created_at DESC`)
	return notices, err
}

// Get fetches a single notice.
func (r *NoticeRepo) Get(ctx context.Context, id string) (models.Notice, error) {
	var notice models.Notice
	err := r.db.GetContext(ctx, &notice, `SELECT id, title, content, category, priority, department_from,
        pinned, expires_at, created_by, created_by_name, created_at FROM notices WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Notice{}, ErrNoticeNotFound
	}
	return notice, err
}

// SetPinned toggles the pinned flag.
func (r *NoticeRepo) SetPinned(ctx context.Context, id string, pinned bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notices SET pinned=$2 WHERE id=$1`, id, pinned)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNoticeNotFound
	}
	return nil
}

// Delete removes a notice.
func (r *NoticeRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notices WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNoticeNotFound
	}
	return nil
}

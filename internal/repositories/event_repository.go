package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"campus-sync/internal/models"
)

var ErrEventNotFound = errors.New("event not found")

// EventRepository persists campus events.
type EventRepository interface {
	Create(ctx context.Context, e models.Event) (models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	Get(ctx context.Context, id string) (models.Event, error)
	Delete(ctx context.Context, id string) error
}

// EventRepo is a sqlx implementation of EventRepository.
type EventRepo struct {
	db *sqlx.DB
}

// NewEventRepo constructs an EventRepo.
func NewEventRepo(db *sqlx.DB) *EventRepo {
	return &EventRepo{db: db}
}

// Create publishes an event.
func (r *EventRepo) Create(ctx context.Context, e models.Event) (models.Event, error) {
	var stored models.Event
	err := r.db.QueryRowxContext(ctx, `INSERT INTO events
        (id, title, description, location, department, starts_at, created_by, created_by_name)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, title, description, location, department, starts_at, created_by, created_by_name, created_at`,
		uuid.NewString(), e.Title, e.Description, e.Location, e.Department, e.StartsAt, e.CreatedBy, e.CreatedByName).
		StructScan(&stored)
	if err != nil {
		return models.Event{}, err
	}
	return stored, nil
}

// List returns events ordered by start time, soonest first.
func (r *EventRepo) List(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := r.db.SelectContext(ctx, &events, `SELECT id, title, description, location, department,
        starts_at, created_by, created_by_name, created_at FROM events ORDER BY starts_at ASC`)
	return events, err
}

// Get fetches a single event.
func (r *EventRepo) Get(ctx context.Context, id string) (models.Event, error) {
	var event models.Event
	err := r.db.GetContext(ctx, &event, `SELECT id, title, description, location, department,
        starts_at, created_by, created_by_name, created_at FROM events WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, ErrEventNotFound
	}
	return event, err
}

// Delete removes an event.
func (r *EventRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrEventNotFound
	}
	return nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"campus-sync/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository abstracts user persistence.
type UserRepository interface {
	UpsertOnLogin(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	UpdateProfile(ctx context.Context, id string, fields map[string]string) error
	ListUsers(ctx context.Context) ([]models.User, error)
	ListRecipients(ctx context.Context, department string) ([]models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// UpsertOnLogin creates the user on first sign-in and refreshes profile fields
// plus last_login on every later one.
func (r *UserRepo) UpsertOnLogin(ctx context.Context, user models.User) (models.User, error) {
	var out models.User
	err := r.db.QueryRowxContext(ctx, `INSERT INTO users (id, display_name, photo_url, email, last_login)
        VALUES ($1, $2, $3, $4, NOW())
        ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name, photo_url = EXCLUDED.photo_url, last_login = NOW()
        RETURNING id, display_name, photo_url, email, department, bio, major, grad_year, last_login`,
		user.ID, user.DisplayName, user.PhotoURL, user.Email).
		StructScan(&out)
	return out, err
}

// GetUser fetches a user by id.
func (r *UserRepo) GetUser(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, display_name, photo_url, email, department, bio, major, grad_year, last_login FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// UpdateProfile applies the editable profile fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, fields map[string]string) error {
	allowed := map[string]bool{"bio": true, "major": true, "grad_year": true, "department": true, "display_name": true, "photo_url": true}
	for col, val := range fields {
		if !allowed[col] {
			continue
		}
		if _, err := r.db.ExecContext(ctx, `UPDATE users SET `+col+`=$1 WHERE id=$2`, val, id); err != nil {
			return err
		}
	}
	return nil
}

// ListUsers returns every member, for search and broadcast resolution.
func (r *UserRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users, `SELECT id, display_name, photo_url, email, department, bio, major, grad_year, last_login FROM users ORDER BY display_name ASC`)
	return users, err
}

// ListRecipients resolves a broadcast audience: every user when department is
// "ALL", otherwise users in that department plus users with no department set.
func (r *UserRepo) ListRecipients(ctx context.Context, department string) ([]models.User, error) {
	if department == models.DepartmentAll || department == "" {
		return r.ListUsers(ctx)
	}
	var users []models.User
	err := r.db.SelectContext(ctx, &users, `SELECT id, display_name, photo_url, email, department, bio, major, grad_year, last_login FROM users WHERE department=$1 OR department='' ORDER BY display_name ASC`, department)
	return users, err
}

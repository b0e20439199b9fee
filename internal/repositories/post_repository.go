package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"campus-sync/internal/models"
)

var ErrPostNotFound = errors.New("post not found")

// PostRepository persists the campus feed.
type PostRepository interface {
	Create(ctx context.Context, p models.Post) (models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	Get(ctx context.Context, id string) (models.Post, error)
	Delete(ctx context.Context, id string) (imageRef string, err error)
	ToggleLike(ctx context.Context, postID, userID string) (liked bool, err error)
	AddComment(ctx context.Context, c models.Comment) (models.Comment, error)
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
}

// PostRepo is a sqlx implementation of PostRepository.
type PostRepo struct {
	db *sqlx.DB
}

// NewPostRepo constructs a PostRepo.
func NewPostRepo(db *sqlx.DB) *PostRepo {
	return &PostRepo{db: db}
}

// Create stores a new post.
func (r *PostRepo) Create(ctx context.Context, p models.Post) (models.Post, error) {
	var stored models.Post
	err := r.db.QueryRowxContext(ctx, `INSERT INTO posts
        (id, author_id, author_name, author_photo_url, content, image_ref, image_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, author_id, author_name, author_photo_url, content, image_ref, image_url, created_at`,
		uuid.NewString(), p.AuthorID, p.AuthorName, p.AuthorPhotoURL, p.Content, p.ImageRef, p.ImageURL).
		StructScan(&stored)
	if err != nil {
		return models.Post{}, err
	}
	stored.Likes = []string{}
	return stored, nil
}

// List returns the feed, newest first, with the like sets attached.
func (r *PostRepo) List(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.SelectContext(ctx, &posts, `SELECT id, author_id, author_name, author_photo_url,
        content, image_ref, image_url, created_at FROM posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		likes, err := r.likes(ctx, posts[i].ID)
		if err != nil {
			return nil, err
		}
		posts[i].Likes = likes
	}
	return posts, nil
}

// Get fetches a single post with its like set.
func (r *PostRepo) Get(ctx context.Context, id string) (models.Post, error) {
	var post models.Post
	err := r.db.GetContext(ctx, &post, `SELECT id, author_id, author_name, author_photo_url,
        content, image_ref, image_url, created_at FROM posts WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, ErrPostNotFound
	}
	if err != nil {
		return models.Post{}, err
	}
	post.Likes, err = r.likes(ctx, id)
	return post, err
}

// Delete removes a post and returns its image ref for storage cleanup.
// Likes and comments cascade.
func (r *PostRepo) Delete(ctx context.Context, id string) (string, error) {
	var ref string
	err := r.db.GetContext(ctx, &ref, `DELETE FROM posts WHERE id=$1 RETURNING image_ref`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrPostNotFound
	}
	return ref, err
}

// ToggleLike adds the user to the post's like set, or removes them if already
// present. Returns whether the post is liked after the call.
func (r *PostRepo) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id=$1 AND user_id=$2`, postID, userID)
	if err != nil {
		return false, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id=$1)`, postID); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrPostNotFound
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)
        ON CONFLICT (post_id, user_id) DO NOTHING`, postID, userID)
	if err != nil {
		return false, err
	}
	return true, nil
}

// AddComment appends a comment to the post.
func (r *PostRepo) AddComment(ctx context.Context, c models.Comment) (models.Comment, error) {
	var stored models.Comment
	err := r.db.QueryRowxContext(ctx, `INSERT INTO comments
        (id, post_id, author_id, author_name, author_photo_url, text)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, post_id, author_id, author_name, author_photo_url, text, created_at`,
		uuid.NewString(), c.PostID, c.AuthorID, c.AuthorName, c.AuthorPhotoURL, c.Text).
		StructScan(&stored)
	if err != nil {
		return models.Comment{}, err
	}
	return stored, nil
}

// ListComments returns a post's comments, oldest first.
func (r *PostRepo) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.SelectContext(ctx, &comments, `SELECT id, post_id, author_id, author_name, author_photo_url, text, created_at
        FROM comments WHERE post_id=$1 ORDER BY created_at ASC`, postID)
	return comments, err
}

func (r *PostRepo) likes(ctx context.Context, postID string) ([]string, error) {
	likes := []string{}
	err := r.db.SelectContext(ctx, &likes, `SELECT user_id FROM post_likes WHERE post_id=$1 ORDER BY user_id ASC`, postID)
	return likes, err
}

package models

import "time"

// Post is a feed entry with optional image attachment.
type Post struct {
	ID             string    `db:"id" json:"id"`
	AuthorID       string    `db:"author_id" json:"author_id"`
	AuthorName     string    `db:"author_name" json:"author_name"`
	AuthorPhotoURL string    `db:"author_photo_url" json:"author_photo_url"`
	Content        string    `db:"content" json:"content,omitempty"`
	ImageRef       string    `db:"image_ref" json:"image_ref,omitempty"`
	ImageURL       string    `db:"image_url" json:"image_url,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	Likes []string `json:"likes"`
}

// Comment belongs to a post, ordered oldest first.
type Comment struct {
	ID             string    `db:"id" json:"id"`
	PostID         string    `db:"post_id" json:"post_id"`
	AuthorID       string    `db:"author_id" json:"author_id"`
	AuthorName     string    `db:"author_name" json:"author_name"`
	AuthorPhotoURL string    `db:"author_photo_url" json:"author_photo_url"`
	Text           string    `db:"text" json:"text"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

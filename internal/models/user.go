package models

import "time"

// User is a campus member, created on first accepted sign-in.
type User struct {
	ID          string    `db:"id" json:"id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	PhotoURL    string    `db:"photo_url" json:"photo_url"`
	Email       string    `db:"email" json:"email"`
	Department  string    `db:"department" json:"department,omitempty"`
	Bio         string    `db:"bio" json:"bio,omitempty"`
	Major       string    `db:"major" json:"major,omitempty"`
	GradYear    string    `db:"grad_year" json:"grad_year,omitempty"`
	LastLogin   time.Time `db:"last_login" json:"last_login"`
}

// Profile carries the identity-provider asserted fields presented at sign-in.
type Profile struct {
	Subject       string `json:"subject" binding:"required"`
	DisplayName   string `json:"display_name" binding:"required"`
	PhotoURL      string `json:"photo_url"`
	Email         string `json:"email" binding:"required"`
	EmailVerified bool   `json:"email_verified"`
}

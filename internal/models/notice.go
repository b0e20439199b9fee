package models

import "time"

// DepartmentAll addresses a notice or event to every user.
const DepartmentAll = "ALL"

// Notice is an official announcement on the digital notice board.
type Notice struct {
	ID             string     `db:"id" json:"id"`
	Title          string     `db:"title" json:"title"`
	Content        string     `db:"content" json:"content"`
	Category       string     `db:"category" json:"category"`
	Priority       string     `db:"priority" json:"priority"`
	DepartmentFrom string     `db:"department_from" json:"department_from"`
	Pinned         bool       `db:"pinned" json:"pinned"`
	ExpiresAt      *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedBy      string     `db:"created_by" json:"created_by"`
	CreatedByName  string     `db:"created_by_name" json:"created_by_name"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// Event is a campus event entry.
type Event struct {
	ID            string    `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Description   string    `db:"description" json:"description"`
	Location      string    `db:"location" json:"location"`
	Department    string    `db:"department" json:"department"`
	StartsAt      time.Time `db:"starts_at" json:"starts_at"`
	CreatedBy     string    `db:"created_by" json:"created_by"`
	CreatedByName string    `db:"created_by_name" json:"created_by_name"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

package models

import "time"

// ByteLog is a blog-style post managed from the admin back-office.
type ByteLog struct {
	ID          string     `db:"id" json:"id"`
	Slug        string     `db:"slug" json:"slug"`
	Title       string     `db:"title" json:"title"`
	Summary     string     `db:"summary" json:"summary"`
	Body        string     `db:"body" json:"body"`
	AuthorName  string     `db:"author_name" json:"author_name"`
	CoverPath   *string    `db:"cover_path" json:"-"`
	CoverURL    string     `db:"-" json:"cover_url,omitempty"`
	Published   bool       `db:"published" json:"published"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// ByteLogFilter captures listing parameters for bytelogs.
type ByteLogFilter struct {
	Published *bool
	Search    string
	Page      int
	PageSize  int
}

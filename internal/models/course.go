package models

import "time"

// Course represents a published learning track.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Slug        string    `db:"slug" json:"slug"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Difficulty  string    `db:"difficulty" json:"difficulty"`
	Published   bool      `db:"published" json:"published"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures search parameters for course listings.
type CourseFilter struct {
	Search    string
	Published *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CourseDetail extends Course with aggregate counts for catalog views.
type CourseDetail struct {
	Course
	EnrolledCount int `db:"enrolled_count" json:"enrolled_count"`
	ContentCount  int `db:"content_count" json:"content_count"`
}

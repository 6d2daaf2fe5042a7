package models

import "time"

// Event is a community event shown on the public site.
type Event struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Location    string     `db:"location" json:"location"`
	StartsAt    time.Time  `db:"starts_at" json:"starts_at"`
	EndsAt      *time.Time `db:"ends_at" json:"ends_at,omitempty"`
	Published   bool       `db:"published" json:"published"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// EventFilter captures listing parameters for events.
type EventFilter struct {
	Published *bool
	Upcoming  bool
	Page      int
	PageSize  int
}

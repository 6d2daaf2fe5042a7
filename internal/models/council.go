package models

import "time"

// CouncilMember is a member of the student council roster.
type CouncilMember struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Role      string    `db:"role" json:"role"`
	PhotoURL  string    `db:"photo_url" json:"photo_url"`
	LinkedIn  string    `db:"linkedin" json:"linkedin"`
	GitHub    string    `db:"github" json:"github"`
	Position  int       `db:"position" json:"position"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

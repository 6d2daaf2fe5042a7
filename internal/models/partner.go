package models

import "time"

// Partner is an organisation featured on the public site.
type Partner struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Website   string    `db:"website" json:"website"`
	LogoURL   string    `db:"logo_url" json:"logo_url"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

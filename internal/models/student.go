package models

import "time"

// Student represents a learner registered on the platform.
type Student struct {
	ID            string     `db:"id" json:"id"`
	Email         string     `db:"email" json:"email"`
	FullName      string     `db:"full_name" json:"full_name"`
	Phone         string     `db:"phone" json:"phone"`
	College       string     `db:"college" json:"college"`
	Batch         string     `db:"batch" json:"batch"`
	Active        bool       `db:"active" json:"active"`
	CurrentStreak int        `db:"current_streak" json:"current_streak"`
	LastActiveOn  *time.Time `db:"last_active_on" json:"last_active_on,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	CourseID  string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StudentProfile carries the presentation fields the leaderboard passes through.
type StudentProfile struct {
	StudentID     string `db:"student_id" json:"student_id"`
	FullName      string `db:"full_name" json:"full_name"`
	Email         string `db:"email" json:"email"`
	CurrentStreak int    `db:"current_streak" json:"current_streak"`
}

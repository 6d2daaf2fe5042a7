package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bytezen/bytezen-api/internal/models"
)

// LeaderboardRepository reads the per-course student roster the scoring
// pipeline is seeded from. Metric collectors live on the attendance and
// content repositories.
type LeaderboardRepository struct {
	db *sqlx.DB
}

// NewLeaderboardRepository constructs the repository.
func NewLeaderboardRepository(db *sqlx.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// StudentProfiles returns the display fields for every actively enrolled
// student in a course. Every student returned here gets a leaderboard row,
// with metrics zero-filled when a collector has no data for them.
func (r *LeaderboardRepository) StudentProfiles(ctx context.Context, courseID string) ([]models.StudentProfile, error) {
	query := `SELECT s.id AS student_id, s.full_name, s.email, s.current_streak
        FROM students s
        JOIN enrollments e ON e.student_id = s.id
        WHERE e.course_id = $1 AND e.status = 'ACTIVE' AND s.active = TRUE
        ORDER BY s.full_name ASC`
	var profiles []models.StudentProfile
	if err := r.db.SelectContext(ctx, &profiles, query, courseID); err != nil {
		return nil, fmt.Errorf("leaderboard student profiles: %w", err)
	}
	return profiles, nil
}

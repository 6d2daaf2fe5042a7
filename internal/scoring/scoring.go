// Package scoring implements the course leaderboard computation: it
// normalises heterogeneous per-student metrics (attendance ratio, content
// progress, raw point totals) into comparable 0-100 sub-scores, combines
// them with configurable weights, and assigns dense, tie-aware ranks.
//
// The package is pure: no I/O, no shared state, safe for concurrent use.
// Callers fetch the metric bundles, invoke ComputeLeaderboard, and serialise
// the result.
package scoring

import (
	"math"

	appErrors "github.com/bytezen/bytezen-api/pkg/errors"
)

// weightTolerance is the floating point slack allowed when checking that
// the three weights sum to 1.0.
const weightTolerance = 1e-6

// Weights distributes the combined score across the three sub-scores.
// The three fractions must sum to 1.0.
type Weights struct {
	Attendance float64 `json:"attendance_weight"`
	Progress   float64 `json:"progress_weight"`
	Points     float64 `json:"points_weight"`
}

// DefaultWeights is the product default: attendance 40%, progress 30%,
// points 30%.
var DefaultWeights = Weights{Attendance: 0.4, Progress: 0.3, Points: 0.3}

// Validate rejects weight sets that do not sum to 1.0 or contain negative
// fractions. Computing a leaderboard with invalid weights would silently
// distort every rank, so this is fatal for the request.
func (w Weights) Validate() error {
	if w.Attendance < 0 || w.Progress < 0 || w.Points < 0 {
		return appErrors.Clone(appErrors.ErrInvalidWeights, "scoring weights must not be negative")
	}
	sum := w.Attendance + w.Progress + w.Points
	if math.Abs(sum-1.0) > weightTolerance {
		return appErrors.Clone(appErrors.ErrInvalidWeights, "scoring weights must sum to 1.0")
	}
	return nil
}

// Attendance holds the raw attendance tally for one student.
type Attendance struct {
	Present int `json:"present"`
	Total   int `json:"total"`
}

// Progress holds the precomputed course progress percentage.
type Progress struct {
	Percentage float64 `json:"percentage"`
}

// Points holds the raw point total earned across all activities.
type Points struct {
	Raw int `json:"raw"`
}

// Streak is a presentation-only activity streak; it never affects scoring.
type Streak struct {
	Current int `json:"current"`
}

// Counts carries presentation-only per-type completion tallies.
type Counts struct {
	ArticlesCompleted int `json:"articles_completed"`
	ProblemsCompleted int `json:"problems_completed"`
	QuizzesCompleted  int `json:"quizzes_completed"`
}

// Bundle is the per-student metric set fed into one leaderboard computation.
type Bundle struct {
	StudentID   string     `json:"student_id"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email"`
	Attendance  Attendance `json:"attendance"`
	Progress    Progress   `json:"progress"`
	Points      Points     `json:"points"`
	Streak      Streak     `json:"streak"`
	Counts      Counts     `json:"counts"`
}

// Scored is the derived, ranked record returned to callers. It embeds the
// input bundle untouched and is never mutated after creation.
type Scored struct {
	Bundle
	AttendancePercentage float64 `json:"attendance_percentage"`
	ProgressPercentage   float64 `json:"progress_percentage"`
	NormalizedPoints     float64 `json:"normalized_points"`
	CombinedScore        int     `json:"combined_score"`
	Rank                 int     `json:"rank"`
	Medal                string  `json:"medal,omitempty"`
}

// Formula echoes the configuration used for a computation so clients can
// display "how scoring works".
type Formula struct {
	Description      string  `json:"description"`
	AttendanceWeight float64 `json:"attendance_weight"`
	ProgressWeight   float64 `json:"progress_weight"`
	PointsWeight     float64 `json:"points_weight"`
}

// NewFormula builds the descriptor for the provided weights.
func NewFormula(w Weights) Formula {
	return Formula{
		Description:      "combined score = attendance% * attendance_weight + progress% * progress_weight + normalized points * points_weight, rounded to the nearest integer",
		AttendanceWeight: w.Attendance,
		ProgressWeight:   w.Progress,
		PointsWeight:     w.Points,
	}
}

// ValidateBundle rejects bundles that violate collector invariants. Negative
// counts or an impossible present/total pair indicate a defect upstream and
// must surface rather than be clamped away; a silently dropped student would
// corrupt the ranking's denseness and the visible cohort size.
func ValidateBundle(b Bundle) error {
	switch {
	case b.Attendance.Present < 0 || b.Attendance.Total < 0:
		return appErrors.Clone(appErrors.ErrValidation, "attendance counts must not be negative")
	case b.Attendance.Present > b.Attendance.Total:
		return appErrors.Clone(appErrors.ErrValidation, "attendance present exceeds scheduled total")
	case b.Points.Raw < 0:
		return appErrors.Clone(appErrors.ErrValidation, "raw points must not be negative")
	case b.Streak.Current < 0:
		return appErrors.Clone(appErrors.ErrValidation, "streak must not be negative")
	case b.Counts.ArticlesCompleted < 0 || b.Counts.ProblemsCompleted < 0 || b.Counts.QuizzesCompleted < 0:
		return appErrors.Clone(appErrors.ErrValidation, "completion counts must not be negative")
	}
	return nil
}

// AttendanceScore converts the attendance tally into a 0-100 sub-score.
// A student with zero scheduled sessions scores 0, not NaN.
func AttendanceScore(b Bundle) float64 {
	if b.Attendance.Total == 0 {
		return 0
	}
	return 100 * float64(b.Attendance.Present) / float64(b.Attendance.Total)
}

// ProgressScore returns the collector-supplied percentage clamped to [0,100].
// The clamp is defensive; out-of-range values must not leak into ranking.
func ProgressScore(b Bundle) float64 {
	return clamp(b.Progress.Percentage, 0, 100)
}

// NormalizedPoints rescales a raw point total against the cohort maximum.
// When nobody in the cohort has earned points the sub-score is 0 for
// everyone, never NaN.
func NormalizedPoints(raw, cohortMax int) float64 {
	if cohortMax == 0 {
		return 0
	}
	return 100 * float64(raw) / float64(cohortMax)
}

// CombinedScore folds the three sub-scores into the final weighted score.
// Rounding happens exactly once, here; rounding sub-scores first would
// compound error and could flip rank order.
func CombinedScore(attendance, progress, points float64, w Weights) int {
	return int(math.Round(w.Attendance*attendance + w.Progress*progress + w.Points*points))
}

// CohortMax returns the largest raw point total across the bundles.
func CohortMax(bundles []Bundle) int {
	max := 0
	for _, b := range bundles {
		if b.Points.Raw > max {
			max = b.Points.Raw
		}
	}
	return max
}

// ComputeLeaderboard validates the weights and every bundle, scores each
// student against the cohort, and returns the ranked list. An empty cohort
// yields an empty board, not an error.
func ComputeLeaderboard(bundles []Bundle, w Weights) ([]Scored, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	for _, b := range bundles {
		if err := ValidateBundle(b); err != nil {
			return nil, err
		}
	}

	cohortMax := CohortMax(bundles)
	scored := make([]Scored, 0, len(bundles))
	for _, b := range bundles {
		attendance := AttendanceScore(b)
		progress := ProgressScore(b)
		points := NormalizedPoints(b.Points.Raw, cohortMax)
		scored = append(scored, Scored{
			Bundle:               b,
			AttendancePercentage: attendance,
			ProgressPercentage:   progress,
			NormalizedPoints:     points,
			CombinedScore:        CombinedScore(attendance, progress, points, w),
		})
	}

	Rank(scored)
	return scored, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

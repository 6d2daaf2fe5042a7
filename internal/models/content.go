package models

import "time"

// ContentType enumerates the kinds of course content.
type ContentType string

const (
	ContentArticle ContentType = "ARTICLE"
	ContentProblem ContentType = "PROBLEM"
	ContentQuiz    ContentType = "QUIZ"
)

// Valid reports whether the content type is recognised.
func (t ContentType) Valid() bool {
	switch t {
	case ContentArticle, ContentProblem, ContentQuiz:
		return true
	}
	return false
}

// ContentItem is one unit of course material carrying a point award.
type ContentItem struct {
	ID        string      `db:"id" json:"id"`
	CourseID  string      `db:"course_id" json:"course_id"`
	Type      ContentType `db:"type" json:"type"`
	Title     string      `db:"title" json:"title"`
	Body      string      `db:"body" json:"body"`
	Points    int         `db:"points" json:"points"`
	Position  int         `db:"position" json:"position"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// Completion records that an enrollment finished a content item.
type Completion struct {
	ID            string    `db:"id" json:"id"`
	EnrollmentID  string    `db:"enrollment_id" json:"enrollment_id"`
	ContentItemID string    `db:"content_item_id" json:"content_item_id"`
	CompletedAt   time.Time `db:"completed_at" json:"completed_at"`
}

// ProgressSummary is the per-student course progress the leaderboard consumes.
type ProgressSummary struct {
	StudentID         string  `db:"student_id" json:"student_id"`
	Percentage        float64 `db:"percentage" json:"percentage"`
	ArticlesCompleted int     `db:"articles_completed" json:"articles_completed"`
	ProblemsCompleted int     `db:"problems_completed" json:"problems_completed"`
	QuizzesCompleted  int     `db:"quizzes_completed" json:"quizzes_completed"`
}

// PointTotal is the per-student raw point tally for a course.
type PointTotal struct {
	StudentID   string `db:"student_id" json:"student_id"`
	TotalPoints int    `db:"total_points" json:"total_points"`
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bytezen/bytezen-api/internal/models"
)

// ContentRepository persists course content items and completions.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository constructs the repository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// ListByCourse returns all content items for a course in authored order.
func (r *ContentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.ContentItem, error) {
	var items []models.ContentItem
	query := `SELECT id, course_id, type, title, body, points, position, created_at, updated_at
        FROM content_items WHERE course_id = $1 ORDER BY position ASC, created_at ASC`
	if err := r.db.SelectContext(ctx, &items, query, courseID); err != nil {
		return nil, fmt.Errorf("list content items: %w", err)
	}
	return items, nil
}

// FindByID fetches a content item by ID.
func (r *ContentRepository) FindByID(ctx context.Context, id string) (*models.ContentItem, error) {
	var item models.ContentItem
	query := `SELECT id, course_id, type, title, body, points, position, created_at, updated_at
        FROM content_items WHERE id = $1`
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a new content item.
func (r *ContentRepository) Create(ctx context.Context, item *models.ContentItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	query := `INSERT INTO content_items (id, course_id, type, title, body, points, position, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query, item.ID, item.CourseID, item.Type, item.Title, item.Body, item.Points, item.Position, item.CreatedAt, item.UpdatedAt); err != nil {
		return fmt.Errorf("create content item: %w", err)
	}
	return nil
}

// Update persists mutable content item fields.
func (r *ContentRepository) Update(ctx context.Context, item *models.ContentItem) error {
	item.UpdatedAt = time.Now().UTC()
	query := `UPDATE content_items SET type = $2, title = $3, body = $4, points = $5, position = $6, updated_at = $7 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, item.ID, item.Type, item.Title, item.Body, item.Points, item.Position, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update content item: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("content item %s not found", item.ID)
	}
	return nil
}

// Delete removes a content item.
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM content_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete content item: %w", err)
	}
	return nil
}

// CountByCourse returns the number of content items in a course.
func (r *ContentRepository) CountByCourse(ctx context.Context, courseID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM content_items WHERE course_id = $1`, courseID); err != nil {
		return 0, fmt.Errorf("count content items: %w", err)
	}
	return count, nil
}

// Complete records (idempotently) that an enrollment finished a content item.
func (r *ContentRepository) Complete(ctx context.Context, completion *models.Completion) error {
	if completion.ID == "" {
		completion.ID = uuid.NewString()
	}
	if completion.CompletedAt.IsZero() {
		completion.CompletedAt = time.Now().UTC()
	}
	query := `INSERT INTO completions (id, enrollment_id, content_item_id, completed_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (enrollment_id, content_item_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, completion.ID, completion.EnrollmentID, completion.ContentItemID, completion.CompletedAt); err != nil {
		return fmt.Errorf("record completion: %w", err)
	}
	return nil
}

// ProgressSummaries aggregates per-student completion percentages and
// per-type counts for a course.
func (r *ContentRepository) ProgressSummaries(ctx context.Context, courseID string) ([]models.ProgressSummary, error) {
	query := `SELECT e.student_id,
        CASE WHEN (SELECT COUNT(*) FROM content_items ci WHERE ci.course_id = $1) = 0 THEN 0
             ELSE (COUNT(co.id)::DECIMAL / (SELECT COUNT(*) FROM content_items ci WHERE ci.course_id = $1)) * 100 END AS percentage,
        SUM(CASE WHEN ci.type = 'ARTICLE' THEN 1 ELSE 0 END) AS articles_completed,
        SUM(CASE WHEN ci.type = 'PROBLEM' THEN 1 ELSE 0 END) AS problems_completed,
        SUM(CASE WHEN ci.type = 'QUIZ' THEN 1 ELSE 0 END) AS quizzes_completed
        FROM enrollments e
        LEFT JOIN completions co ON co.enrollment_id = e.id
        LEFT JOIN content_items ci ON ci.id = co.content_item_id
        WHERE e.course_id = $1 AND e.status = 'ACTIVE'
        GROUP BY e.student_id`
	var summaries []models.ProgressSummary
	if err := r.db.SelectContext(ctx, &summaries, query, courseID); err != nil {
		return nil, fmt.Errorf("progress summaries: %w", err)
	}
	return summaries, nil
}

// PointTotals aggregates the raw point tally per student for a course.
func (r *ContentRepository) PointTotals(ctx context.Context, courseID string) ([]models.PointTotal, error) {
	query := `SELECT e.student_id, COALESCE(SUM(ci.points), 0) AS total_points
        FROM enrollments e
        LEFT JOIN completions co ON co.enrollment_id = e.id
        LEFT JOIN content_items ci ON ci.id = co.content_item_id
        WHERE e.course_id = $1 AND e.status = 'ACTIVE'
        GROUP BY e.student_id`
	var totals []models.PointTotal
	if err := r.db.SelectContext(ctx, &totals, query, courseID); err != nil {
		return nil, fmt.Errorf("point totals: %w", err)
	}
	return totals, nil
}

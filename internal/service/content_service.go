package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bytezen/bytezen-api/internal/models"
	appErrors "github.com/bytezen/bytezen-api/pkg/errors"
)

type contentRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.ContentItem, error)
	FindByID(ctx context.Context, id string) (*models.ContentItem, error)
	Create(ctx context.Context, item *models.ContentItem) error
	Update(ctx context.Context, item *models.ContentItem) error
	Delete(ctx context.Context, id string) error
	Complete(ctx context.Context, completion *models.Completion) error
	ProgressSummaries(ctx context.Context, courseID string) ([]models.ProgressSummary, error)
	PointTotals(ctx context.Context, courseID string) ([]models.PointTotal, error)
}

type contentEnrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
}

type contentStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdateStreak(ctx context.Context, id string, streak int, activeOn time.Time) error
}

// CreateContentRequest holds payload for authoring content items.
type CreateContentRequest struct {
	CourseID string             `json:"course_id" validate:"required"`
	Type     models.ContentType `json:"type" validate:"required"`
	Title    string             `json:"title" validate:"required"`
	Body     string             `json:"body"`
	Points   int                `json:"points" validate:"gte=0"`
	Position int                `json:"position" validate:"gte=0"`
}

// UpdateContentRequest holds payload for editing content items.
type UpdateContentRequest struct {
	Type     models.ContentType `json:"type" validate:"required"`
	Title    string             `json:"title" validate:"required"`
	Body     string             `json:"body"`
	Points   int                `json:"points" validate:"gte=0"`
	Position int                `json:"position" validate:"gte=0"`
}

// ContentService handles course material and completion tracking.
type ContentService struct {
	repo        contentRepository
	enrollments contentEnrollmentRepository
	students    contentStudentRepository
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewContentService constructs the content service.
func NewContentService(repo contentRepository, enrollments contentEnrollmentRepository, students contentStudentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ContentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{repo: repo, enrollments: enrollments, students: students, cache: cache, validator: validate, logger: logger}
}

// ListByCourse returns the course material in authored order.
func (s *ContentService) ListByCourse(ctx context.Context, courseID string) ([]models.ContentItem, error) {
	items, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list content items")
	}
	return items, nil
}

// Get returns one content item.
func (s *ContentService) Get(ctx context.Context, id string) (*models.ContentItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "content item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content item")
	}
	return item, nil
}

// Create authors a new content item.
func (s *ContentService) Create(ctx context.Context, req CreateContentRequest) (*models.ContentItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid content payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown content type %q", req.Type))
	}
	item := &models.ContentItem{
		CourseID: req.CourseID,
		Type:     req.Type,
		Title:    req.Title,
		Body:     req.Body,
		Points:   req.Points,
		Position: req.Position,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create content item")
	}
	s.invalidateLeaderboard(ctx, req.CourseID)
	return item, nil
}

// Update edits an existing content item.
func (s *ContentService) Update(ctx context.Context, id string, req UpdateContentRequest) (*models.ContentItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid content payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown content type %q", req.Type))
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "content item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content item")
	}
	item.Type = req.Type
	item.Title = req.Title
	item.Body = req.Body
	item.Points = req.Points
	item.Position = req.Position
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update content item")
	}
	s.invalidateLeaderboard(ctx, item.CourseID)
	return item, nil
}

// Delete removes a content item.
func (s *ContentService) Delete(ctx context.Context, id string) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "content item not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content item")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete content item")
	}
	s.invalidateLeaderboard(ctx, item.CourseID)
	return nil
}

// Complete records that a student finished a content item. Completing the
// same item again is a no-op. A successful completion advances the student's
// daily activity streak.
func (s *ContentService) Complete(ctx context.Context, enrollmentID, contentItemID string) error {
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusActive {
		return appErrors.Clone(appErrors.ErrValidation, "enrollment is not active")
	}

	item, err := s.repo.FindByID(ctx, contentItemID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "content item not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content item")
	}
	if item.CourseID != enrollment.CourseID {
		return appErrors.Clone(appErrors.ErrValidation, "content item does not belong to this course")
	}

	completion := &models.Completion{
		EnrollmentID:  enrollmentID,
		ContentItemID: contentItemID,
	}
	if err := s.repo.Complete(ctx, completion); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record completion")
	}

	s.advanceStreak(ctx, enrollment.StudentID)
	s.invalidateLeaderboard(ctx, enrollment.CourseID)
	return nil
}

// ProgressSummaries returns per-student progress for a course.
func (s *ContentService) ProgressSummaries(ctx context.Context, courseID string) ([]models.ProgressSummary, error) {
	summaries, err := s.repo.ProgressSummaries(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate progress")
	}
	return summaries, nil
}

// PointTotals returns per-student raw point tallies for a course.
func (s *ContentService) PointTotals(ctx context.Context, courseID string) ([]models.PointTotal, error) {
	totals, err := s.repo.PointTotals(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate points")
	}
	return totals, nil
}

// advanceStreak recomputes the daily streak after activity. Consecutive-day
// activity extends the streak, same-day activity leaves it untouched, and a
// gap resets it to 1. Streak failures are logged but never fail the request.
func (s *ContentService) advanceStreak(ctx context.Context, studentID string) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		s.logger.Warn("failed to load student for streak update", zap.String("student_id", studentID), zap.Error(err))
		return
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	streak := 1
	if student.LastActiveOn != nil {
		last := student.LastActiveOn.UTC().Truncate(24 * time.Hour)
		switch {
		case last.Equal(today):
			return
		case last.Equal(today.AddDate(0, 0, -1)):
			streak = student.CurrentStreak + 1
		}
	}
	if err := s.students.UpdateStreak(ctx, studentID, streak, today); err != nil {
		s.logger.Warn("failed to update streak", zap.String("student_id", studentID), zap.Error(err))
	}
}

func (s *ContentService) invalidateLeaderboard(ctx context.Context, courseID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "leaderboard:"+courseID+"*"); err != nil {
		s.logger.Warn("failed to invalidate leaderboard cache", zap.String("course_id", courseID), zap.Error(err))
	}
}

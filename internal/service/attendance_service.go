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

type attendanceRepository interface {
	CreateSession(ctx context.Context, session *models.Session) error
	ListSessions(ctx context.Context, courseID string) ([]models.Session, error)
	FindSession(ctx context.Context, id string) (*models.Session, error)
	Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecordDetail, int, error)
	Totals(ctx context.Context, courseID string) ([]models.AttendanceTotals, error)
}

type attendanceEnrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
}

// CreateSessionRequest holds payload for scheduling a session.
type CreateSessionRequest struct {
	CourseID string    `json:"course_id" validate:"required"`
	Title    string    `json:"title" validate:"required"`
	HeldOn   time.Time `json:"held_on" validate:"required"`
}

// MarkAttendanceRequest marks a single enrollment.
type MarkAttendanceRequest struct {
	EnrollmentID string                  `json:"enrollment_id" validate:"required"`
	Status       models.AttendanceStatus `json:"status" validate:"required"`
	Notes        *string                 `json:"notes"`
}

// BulkMarkRequest marks many enrollments for one session in a single call.
type BulkMarkRequest struct {
	Mode    models.BulkOperationMode `json:"mode"`
	Records []MarkAttendanceRequest  `json:"records" validate:"required,min=1,dive"`
}

// BulkMarkResult reports the outcome of a bulk marking call.
type BulkMarkResult struct {
	Marked    int                             `json:"marked"`
	Conflicts []models.AttendanceBulkConflict `json:"conflicts,omitempty"`
}

// AttendanceService handles session scheduling and attendance marking.
type AttendanceService struct {
	repo        attendanceRepository
	enrollments attendanceEnrollmentRepository
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, enrollments attendanceEnrollmentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, enrollments: enrollments, cache: cache, validator: validate, logger: logger}
}

// CreateSession schedules a new attendance session.
func (s *AttendanceService) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	session := &models.Session{
		CourseID: req.CourseID,
		Title:    req.Title,
		HeldOn:   req.HeldOn,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	return session, nil
}

// ListSessions returns the sessions of a course.
func (s *AttendanceService) ListSessions(ctx context.Context, courseID string) ([]models.Session, error) {
	sessions, err := s.repo.ListSessions(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}

// List returns attendance records and pagination metadata.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecordDetail, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance records")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return records, pagination, nil
}

// Mark records attendance for a single enrollment. Marking the same
// enrollment twice for one session replaces the previous status.
func (s *AttendanceService) Mark(ctx context.Context, sessionID string, req MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.checkRecord(ctx, session, req); err != nil {
		return nil, err
	}
	record := &models.AttendanceRecord{
		SessionID:    sessionID,
		EnrollmentID: req.EnrollmentID,
		Status:       req.Status,
		Notes:        req.Notes,
	}
	stored, err := s.repo.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark attendance")
	}
	s.invalidateLeaderboard(ctx, session.CourseID)
	return stored, nil
}

// BulkMark records attendance for many enrollments. In atomic mode a single
// invalid row rejects the whole batch; in partialOnError mode valid rows are
// applied and failed rows are reported back as conflicts.
func (s *AttendanceService) BulkMark(ctx context.Context, sessionID string, req BulkMarkRequest) (*BulkMarkResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk attendance payload")
	}
	mode := req.Mode
	if mode == "" {
		mode = models.BulkModeAtomic
	}
	if mode != models.BulkModeAtomic && mode != models.BulkModePartialOnError {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown bulk mode %q", mode))
	}

	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var conflicts []models.AttendanceBulkConflict
	valid := make([]MarkAttendanceRequest, 0, len(req.Records))
	for _, row := range req.Records {
		if err := s.checkRecord(ctx, session, row); err != nil {
			conflicts = append(conflicts, models.AttendanceBulkConflict{
				EnrollmentID: row.EnrollmentID,
				Reason:       appErrors.FromError(err).Message,
			})
			continue
		}
		valid = append(valid, row)
	}

	if mode == models.BulkModeAtomic && len(conflicts) > 0 {
		return &BulkMarkResult{Marked: 0, Conflicts: conflicts},
			appErrors.Clone(appErrors.ErrValidation, "bulk attendance rejected, one or more rows are invalid")
	}

	marked := 0
	for _, row := range valid {
		record := &models.AttendanceRecord{
			SessionID:    sessionID,
			EnrollmentID: row.EnrollmentID,
			Status:       row.Status,
			Notes:        row.Notes,
		}
		if _, err := s.repo.Upsert(ctx, record); err != nil {
			if mode == models.BulkModeAtomic {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark attendance")
			}
			conflicts = append(conflicts, models.AttendanceBulkConflict{
				EnrollmentID: row.EnrollmentID,
				Reason:       "write failed",
			})
			continue
		}
		marked++
	}

	if marked > 0 {
		s.invalidateLeaderboard(ctx, session.CourseID)
	}
	return &BulkMarkResult{Marked: marked, Conflicts: conflicts}, nil
}

// Totals returns the per-student attended/expected counts for a course.
func (s *AttendanceService) Totals(ctx context.Context, courseID string) ([]models.AttendanceTotals, error) {
	totals, err := s.repo.Totals(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate attendance")
	}
	return totals, nil
}

func (s *AttendanceService) findSession(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.repo.FindSession(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

func (s *AttendanceService) checkRecord(ctx context.Context, session *models.Session, req MarkAttendanceRequest) error {
	if !req.Status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown attendance status %q", req.Status))
	}
	enrollment, err := s.enrollments.FindByID(ctx, req.EnrollmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if enrollment.CourseID != session.CourseID {
		return appErrors.Clone(appErrors.ErrValidation, "enrollment does not belong to this course")
	}
	if enrollment.Status != models.EnrollmentStatusActive {
		return appErrors.Clone(appErrors.ErrValidation, "enrollment is not active")
	}
	return nil
}

func (s *AttendanceService) invalidateLeaderboard(ctx context.Context, courseID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "leaderboard:"+courseID+"*"); err != nil {
		s.logger.Warn("failed to invalidate leaderboard cache", zap.String("course_id", courseID), zap.Error(err))
	}
}

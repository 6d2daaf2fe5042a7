package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytezen/bytezen-api/internal/models"
	appErrors "github.com/bytezen/bytezen-api/pkg/errors"
)

type fakeAttendanceRepo struct {
	session   *models.Session
	upserts   []models.AttendanceRecord
	upsertErr error
}

func (f *fakeAttendanceRepo) CreateSession(_ context.Context, session *models.Session) error {
	session.ID = "sess-1"
	return nil
}

func (f *fakeAttendanceRepo) ListSessions(context.Context, string) ([]models.Session, error) {
	return nil, nil
}

func (f *fakeAttendanceRepo) FindSession(context.Context, string) (*models.Session, error) {
	if f.session == nil {
		return nil, sql.ErrNoRows
	}
	return f.session, nil
}

func (f *fakeAttendanceRepo) Upsert(_ context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.upserts = append(f.upserts, *record)
	return record, nil
}

func (f *fakeAttendanceRepo) List(context.Context, models.AttendanceFilter) ([]models.AttendanceRecordDetail, int, error) {
	return nil, 0, nil
}

func (f *fakeAttendanceRepo) Totals(context.Context, string) ([]models.AttendanceTotals, error) {
	return nil, nil
}

type fakeEnrollmentLookup struct {
	enrollments map[string]*models.Enrollment
}

func (f *fakeEnrollmentLookup) FindByID(_ context.Context, id string) (*models.Enrollment, error) {
	enrollment, ok := f.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return enrollment, nil
}

func attendanceFixture() (*fakeAttendanceRepo, *fakeEnrollmentLookup, *AttendanceService) {
	repo := &fakeAttendanceRepo{session: &models.Session{ID: "sess-1", CourseID: "course-1", HeldOn: time.Now()}}
	enrollments := &fakeEnrollmentLookup{enrollments: map[string]*models.Enrollment{
		"enr-1": {ID: "enr-1", CourseID: "course-1", Status: models.EnrollmentStatusActive},
		"enr-2": {ID: "enr-2", CourseID: "course-1", Status: models.EnrollmentStatusActive},
		"enr-x": {ID: "enr-x", CourseID: "other", Status: models.EnrollmentStatusActive},
		"enr-d": {ID: "enr-d", CourseID: "course-1", Status: models.EnrollmentStatusDropped},
	}}
	svc := NewAttendanceService(repo, enrollments, nil, nil, nil)
	return repo, enrollments, svc
}

func TestAttendanceServiceMarkReplacesPreviousStatus(t *testing.T) {
	repo, _, svc := attendanceFixture()

	record, err := svc.Mark(context.Background(), "sess-1", MarkAttendanceRequest{
		EnrollmentID: "enr-1",
		Status:       models.AttendanceLate,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceLate, record.Status)
	require.Len(t, repo.upserts, 1)
}

func TestAttendanceServiceMarkRejectsUnknownStatus(t *testing.T) {
	_, _, svc := attendanceFixture()

	_, err := svc.Mark(context.Background(), "sess-1", MarkAttendanceRequest{
		EnrollmentID: "enr-1",
		Status:       "SLEEPING",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceMarkRejectsForeignEnrollment(t *testing.T) {
	repo, _, svc := attendanceFixture()

	_, err := svc.Mark(context.Background(), "sess-1", MarkAttendanceRequest{
		EnrollmentID: "enr-x",
		Status:       models.AttendancePresent,
	})
	require.Error(t, err)
	assert.Empty(t, repo.upserts)
}

func TestAttendanceServiceBulkMarkAtomicRejectsAll(t *testing.T) {
	repo, _, svc := attendanceFixture()

	result, err := svc.BulkMark(context.Background(), "sess-1", BulkMarkRequest{
		Records: []MarkAttendanceRequest{
			{EnrollmentID: "enr-1", Status: models.AttendancePresent},
			{EnrollmentID: "enr-d", Status: models.AttendancePresent},
		},
	})
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Zero(t, result.Marked)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "enr-d", result.Conflicts[0].EnrollmentID)
	assert.Empty(t, repo.upserts)
}

func TestAttendanceServiceBulkMarkPartialAppliesValidRows(t *testing.T) {
	repo, _, svc := attendanceFixture()

	result, err := svc.BulkMark(context.Background(), "sess-1", BulkMarkRequest{
		Mode: models.BulkModePartialOnError,
		Records: []MarkAttendanceRequest{
			{EnrollmentID: "enr-1", Status: models.AttendancePresent},
			{EnrollmentID: "enr-2", Status: models.AttendanceExcused},
			{EnrollmentID: "missing", Status: models.AttendancePresent},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Marked)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "missing", result.Conflicts[0].EnrollmentID)
	assert.Len(t, repo.upserts, 2)
}

func TestAttendanceServiceBulkMarkUnknownMode(t *testing.T) {
	_, _, svc := attendanceFixture()

	_, err := svc.BulkMark(context.Background(), "sess-1", BulkMarkRequest{
		Mode:    "yolo",
		Records: []MarkAttendanceRequest{{EnrollmentID: "enr-1", Status: models.AttendancePresent}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceMarkSessionNotFound(t *testing.T) {
	repo, _, svc := attendanceFixture()
	repo.session = nil

	_, err := svc.Mark(context.Background(), "sess-9", MarkAttendanceRequest{
		EnrollmentID: "enr-1",
		Status:       models.AttendancePresent,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytezen/bytezen-api/internal/models"
)

func TestAttendanceRepositoryCreateSession(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(sqlmock.AnyArg(), "course-1", "Week 1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	session := &models.Session{CourseID: "course-1", Title: "Week 1", HeldOn: time.Now()}
	require.NoError(t, repo.CreateSession(context.Background(), session))
	assert.NotEmpty(t, session.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("INSERT INTO attendance_records").
		WithArgs(sqlmock.AnyArg(), "sess-1", "enr-1", models.AttendancePresent, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("rec-1"))

	record, err := repo.Upsert(context.Background(), &models.AttendanceRecord{
		SessionID:    "sess-1",
		EnrollmentID: "enr-1",
		Status:       models.AttendancePresent,
	})
	require.NoError(t, err)
	assert.Equal(t, "rec-1", record.ID)
	assert.False(t, record.MarkedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryTotals(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "present", "total"}).
		AddRow("s1", 8, 10).
		AddRow("s2", 10, 10)
	mock.ExpectQuery("GROUP BY e.student_id").
		WithArgs("course-1").
		WillReturnRows(rows)

	totals, err := repo.Totals(context.Background(), "course-1")
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, 8, totals[0].Present)
	assert.Equal(t, 10, totals[0].Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListFiltersBySession(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	cols := []string{"id", "session_id", "enrollment_id", "status", "notes", "marked_at", "student_id", "student_name"}
	mock.ExpectQuery(regexp.QuoteMeta("ar.session_id = $1")).
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("rec-1", "sess-1", "enr-1", "PRESENT", nil, time.Now(), "s1", "Ada"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), models.AttendanceFilter{SessionID: "sess-1"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Ada", records[0].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

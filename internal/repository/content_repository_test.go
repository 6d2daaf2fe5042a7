package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytezen/bytezen-api/internal/models"
)

func TestContentRepositoryCompleteIdempotent(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewContentRepository(db)

	// Second completion of the same pair hits the conflict clause and
	// affects zero rows; the repository still reports success.
	mock.ExpectExec("INSERT INTO completions").
		WithArgs(sqlmock.AnyArg(), "enr-1", "item-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Complete(context.Background(), &models.Completion{EnrollmentID: "enr-1", ContentItemID: "item-1"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepositoryProgressSummaries(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewContentRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "percentage", "articles_completed", "problems_completed", "quizzes_completed"}).
		AddRow("s1", 75.0, 2, 1, 0).
		AddRow("s2", 0.0, 0, 0, 0)
	mock.ExpectQuery("FROM enrollments e").
		WithArgs("course-1").
		WillReturnRows(rows)

	summaries, err := repo.ProgressSummaries(context.Background(), "course-1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.InDelta(t, 75.0, summaries[0].Percentage, 0.001)
	assert.Equal(t, 2, summaries[0].ArticlesCompleted)
	assert.Zero(t, summaries[1].Percentage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepositoryPointTotals(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewContentRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "total_points"}).
		AddRow("s1", 140).
		AddRow("s2", 0)
	mock.ExpectQuery("COALESCE").
		WithArgs("course-1").
		WillReturnRows(rows)

	totals, err := repo.PointTotals(context.Background(), "course-1")
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, 140, totals[0].TotalPoints)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepositoryListByCourse(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewContentRepository(db)

	cols := []string{"id", "course_id", "type", "title", "body", "points", "position", "created_at", "updated_at"}
	mock.ExpectQuery("FROM content_items WHERE course_id").
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows(cols))

	items, err := repo.ListByCourse(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

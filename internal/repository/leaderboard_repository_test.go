package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardRepositoryStudentProfiles(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLeaderboardRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "full_name", "email", "current_streak"}).
		AddRow("s1", "Ada Lovelace", "ada@bytezen.dev", 4).
		AddRow("s2", "Grace Hopper", "grace@bytezen.dev", 0)
	mock.ExpectQuery("FROM students s").
		WithArgs("course-1").
		WillReturnRows(rows)

	profiles, err := repo.StudentProfiles(context.Background(), "course-1")
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "Ada Lovelace", profiles[0].FullName)
	assert.Equal(t, 4, profiles[0].CurrentStreak)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaderboardRepositoryStudentProfilesEmptyCourse(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLeaderboardRepository(db)

	mock.ExpectQuery("FROM students s").
		WithArgs("course-9").
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "full_name", "email", "current_streak"}))

	profiles, err := repo.StudentProfiles(context.Background(), "course-9")
	require.NoError(t, err)
	assert.Empty(t, profiles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

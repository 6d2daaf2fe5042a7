package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytezen/bytezen-api/internal/models"
	"github.com/bytezen/bytezen-api/internal/scoring"
	appErrors "github.com/bytezen/bytezen-api/pkg/errors"
)

type fakeRoster struct {
	profiles []models.StudentProfile
	err      error
}

func (f *fakeRoster) StudentProfiles(context.Context, string) ([]models.StudentProfile, error) {
	return f.profiles, f.err
}

type fakeAttendanceCollector struct {
	totals []models.AttendanceTotals
	err    error
}

func (f *fakeAttendanceCollector) Totals(context.Context, string) ([]models.AttendanceTotals, error) {
	return f.totals, f.err
}

type fakeContentCollector struct {
	progress []models.ProgressSummary
	points   []models.PointTotal
	err      error
}

func (f *fakeContentCollector) ProgressSummaries(context.Context, string) ([]models.ProgressSummary, error) {
	return f.progress, f.err
}

func (f *fakeContentCollector) PointTotals(context.Context, string) ([]models.PointTotal, error) {
	return f.points, f.err
}

type fakeCacheStore struct {
	data map[string][]byte
	sets int
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{data: map[string][]byte{}}
}

func (f *fakeCacheStore) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := f.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	f.sets++
	return nil
}

func (f *fakeCacheStore) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			delete(f.data, key)
		}
	}
	return nil
}

func threeStudentFixture() (*fakeRoster, *fakeAttendanceCollector, *fakeContentCollector) {
	roster := &fakeRoster{profiles: []models.StudentProfile{
		{StudentID: "s1", FullName: "Ada", Email: "ada@bytezen.dev", CurrentStreak: 4},
		{StudentID: "s2", FullName: "Grace", Email: "grace@bytezen.dev"},
		{StudentID: "s3", FullName: "Edsger", Email: "edsger@bytezen.dev"},
	}}
	attendance := &fakeAttendanceCollector{totals: []models.AttendanceTotals{
		{StudentID: "s1", Present: 10, Total: 10},
		{StudentID: "s2", Present: 5, Total: 10},
	}}
	content := &fakeContentCollector{
		progress: []models.ProgressSummary{
			{StudentID: "s1", Percentage: 80, ArticlesCompleted: 3, ProblemsCompleted: 2},
			{StudentID: "s2", Percentage: 40},
		},
		points: []models.PointTotal{
			{StudentID: "s1", TotalPoints: 200},
			{StudentID: "s2", TotalPoints: 100},
		},
	}
	return roster, attendance, content
}

func TestLeaderboardServiceGetRanksAndZeroFills(t *testing.T) {
	roster, attendance, content := threeStudentFixture()
	svc := NewLeaderboardService(roster, attendance, content, nil, nil, nil, scoring.DefaultWeights, time.Minute)

	view, cacheHit, err := svc.Get(context.Background(), "course-1")
	require.NoError(t, err)
	assert.False(t, cacheHit)
	require.Len(t, view.Entries, 3)

	// s3 never appears in any collector but keeps a zeroed row.
	last := view.Entries[2]
	assert.Equal(t, "s3", last.StudentID)
	assert.Zero(t, last.CombinedScore)
	assert.Equal(t, 3, last.Rank)
	assert.Equal(t, scoring.MedalBronze, last.Medal)

	first := view.Entries[0]
	assert.Equal(t, "s1", first.StudentID)
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, "gold", first.Medal)
	// attendance 100 * 0.4 + progress 80 * 0.3 + normalized 100 * 0.3 = 94
	assert.Equal(t, 94, first.CombinedScore)

	assert.Equal(t, "course-1", view.CourseID)
	assert.InDelta(t, 0.4, view.Formula.AttendanceWeight, 1e-9)
	assert.False(t, view.GeneratedAt.IsZero())
}

func TestLeaderboardServiceGetServesFromCache(t *testing.T) {
	roster, attendance, content := threeStudentFixture()
	store := newFakeCacheStore()
	cache := NewCacheService(store, nil, time.Minute, nil, true)
	svc := NewLeaderboardService(roster, attendance, content, cache, nil, nil, scoring.DefaultWeights, time.Minute)

	_, hit, err := svc.Get(context.Background(), "course-1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, store.sets)

	// Break the collectors; a second read must come from the cache.
	roster.err = assert.AnError
	view, hit, err := svc.Get(context.Background(), "course-1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Len(t, view.Entries, 3)
	assert.Equal(t, 1, store.sets)
}

func TestLeaderboardServiceGetRejectsInvalidWeights(t *testing.T) {
	roster, attendance, content := threeStudentFixture()
	svc := NewLeaderboardService(roster, attendance, content, nil, nil, nil, scoring.Weights{Attendance: 0.9, Progress: 0.9, Points: 0.9}, time.Minute)

	_, _, err := svc.Get(context.Background(), "course-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidWeights.Code, appErr.Code)
}

func TestLeaderboardServiceRequestRefreshWithoutQueue(t *testing.T) {
	roster, attendance, content := threeStudentFixture()
	svc := NewLeaderboardService(roster, attendance, content, nil, nil, nil, scoring.DefaultWeights, time.Minute)

	err := svc.RequestRefresh("course-1")
	require.Error(t, err)
}

func TestLeaderboardServiceRefreshQueueRecaches(t *testing.T) {
	roster, attendance, content := threeStudentFixture()
	store := newFakeCacheStore()
	cache := NewCacheService(store, nil, time.Minute, nil, true)
	svc := NewLeaderboardService(roster, attendance, content, cache, nil, nil, scoring.DefaultWeights, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue := svc.StartRefreshQueue(ctx, 1, nil)
	defer queue.Stop()

	require.NoError(t, svc.RequestRefresh("course-1"))

	assert.Eventually(t, func() bool {
		_, ok := store.data["leaderboard:course-1"]
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLeaderboardServiceExportCSV(t *testing.T) {
	roster, attendance, content := threeStudentFixture()
	svc := NewLeaderboardService(roster, attendance, content, nil, nil, nil, scoring.DefaultWeights, time.Minute)

	payload, filename, contentType, err := svc.Export(context.Background(), "course-1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Contains(t, filename, "leaderboard-course-1-")
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Rank,Medal,Student,Email,Attendance %,Progress %,Points,Combined Score", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "Ada")
}

func TestLeaderboardServiceExportPDF(t *testing.T) {
	roster, attendance, content := threeStudentFixture()
	svc := NewLeaderboardService(roster, attendance, content, nil, nil, nil, scoring.DefaultWeights, time.Minute)

	payload, filename, contentType, err := svc.Export(context.Background(), "course-1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
	assert.True(t, len(payload) > 0)
	assert.Equal(t, "%PDF", string(payload[:4]))
}

func TestLeaderboardServiceExportUnknownFormat(t *testing.T) {
	roster, attendance, content := threeStudentFixture()
	svc := NewLeaderboardService(roster, attendance, content, nil, nil, nil, scoring.DefaultWeights, time.Minute)

	_, _, _, err := svc.Export(context.Background(), "course-1", "xlsx")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytezen/bytezen-api/internal/models"
	"github.com/bytezen/bytezen-api/internal/scoring"
	"github.com/bytezen/bytezen-api/internal/service"
)

type stubRoster struct {
	profiles []models.StudentProfile
	err      error
}

func (s *stubRoster) StudentProfiles(context.Context, string) ([]models.StudentProfile, error) {
	return s.profiles, s.err
}

type stubAttendance struct {
	totals []models.AttendanceTotals
}

func (s *stubAttendance) Totals(context.Context, string) ([]models.AttendanceTotals, error) {
	return s.totals, nil
}

type stubContent struct {
	progress []models.ProgressSummary
	points   []models.PointTotal
}

func (s *stubContent) ProgressSummaries(context.Context, string) ([]models.ProgressSummary, error) {
	return s.progress, nil
}

func (s *stubContent) PointTotals(context.Context, string) ([]models.PointTotal, error) {
	return s.points, nil
}

func newLeaderboardTestService() *service.LeaderboardService {
	roster := &stubRoster{profiles: []models.StudentProfile{
		{StudentID: "s1", FullName: "Ada", Email: "ada@bytezen.dev"},
		{StudentID: "s2", FullName: "Grace", Email: "grace@bytezen.dev"},
	}}
	attendance := &stubAttendance{totals: []models.AttendanceTotals{
		{StudentID: "s1", Present: 9, Total: 10},
	}}
	content := &stubContent{
		progress: []models.ProgressSummary{{StudentID: "s1", Percentage: 50}},
		points:   []models.PointTotal{{StudentID: "s1", TotalPoints: 120}},
	}
	return service.NewLeaderboardService(roster, attendance, content, nil, nil, nil, scoring.DefaultWeights, time.Minute)
}

func TestLeaderboardHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewLeaderboardHandler(newLeaderboardTestService())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/courses/course-1/leaderboard", nil)
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}

	handler.Get(c)

	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data service.LeaderboardView `json:"data"`
		Meta map[string]interface{}  `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "course-1", envelope.Data.CourseID)
	require.Len(t, envelope.Data.Entries, 2)
	assert.Equal(t, 1, envelope.Data.Entries[0].Rank)
	assert.Equal(t, "s1", envelope.Data.Entries[0].StudentID)
	assert.Equal(t, false, envelope.Meta["cache_hit"])
}

func TestLeaderboardHandlerGetUpstreamFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	roster := &stubRoster{err: assert.AnError}
	svc := service.NewLeaderboardService(roster, &stubAttendance{}, &stubContent{}, nil, nil, nil, scoring.DefaultWeights, time.Minute)
	handler := NewLeaderboardHandler(svc)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/courses/course-1/leaderboard", nil)
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}

	handler.Get(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLeaderboardHandlerRefreshWithoutQueue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewLeaderboardHandler(newLeaderboardTestService())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/courses/course-1/leaderboard/refresh", nil)
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}

	handler.Refresh(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLeaderboardHandlerRefreshQueued(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newLeaderboardTestService()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue := svc.StartRefreshQueue(ctx, 1, nil)
	defer queue.Stop()
	handler := NewLeaderboardHandler(svc)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/courses/course-1/leaderboard/refresh", nil)
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}

	handler.Refresh(c)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestLeaderboardHandlerExportCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewLeaderboardHandler(newLeaderboardTestService())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/courses/course-1/leaderboard/export?format=csv", nil)
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}

	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "leaderboard-course-1-")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Rank,Medal,Student"))
}

func TestLeaderboardHandlerExportBadFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewLeaderboardHandler(newLeaderboardTestService())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/courses/course-1/leaderboard/export?format=docx", nil)
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}

	handler.Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

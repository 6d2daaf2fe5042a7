package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bytezen/bytezen-api/internal/models"
	"github.com/bytezen/bytezen-api/internal/scoring"
	appErrors "github.com/bytezen/bytezen-api/pkg/errors"
	"github.com/bytezen/bytezen-api/pkg/export"
	"github.com/bytezen/bytezen-api/pkg/jobs"
)

const leaderboardRefreshJob = "leaderboard.refresh"

type leaderboardRosterRepository interface {
	StudentProfiles(ctx context.Context, courseID string) ([]models.StudentProfile, error)
}

type leaderboardAttendanceCollector interface {
	Totals(ctx context.Context, courseID string) ([]models.AttendanceTotals, error)
}

type leaderboardContentCollector interface {
	ProgressSummaries(ctx context.Context, courseID string) ([]models.ProgressSummary, error)
	PointTotals(ctx context.Context, courseID string) ([]models.PointTotal, error)
}

// LeaderboardView is the full payload returned for a course leaderboard.
type LeaderboardView struct {
	CourseID    string           `json:"course_id"`
	Entries     []scoring.Scored `json:"entries"`
	Formula     scoring.Formula  `json:"formula"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// LeaderboardService assembles metric bundles, runs the scoring pipeline and
// caches the ranked board per course.
type LeaderboardService struct {
	roster     leaderboardRosterRepository
	attendance leaderboardAttendanceCollector
	content    leaderboardContentCollector
	cache      *CacheService
	metrics    *MetricsService
	logger     *zap.Logger

	weights  scoring.Weights
	cacheTTL time.Duration

	csv *export.CSVExporter
	pdf *export.PDFExporter

	refreshQueue *jobs.Queue
}

// NewLeaderboardService constructs the leaderboard service. Weights outside
// the valid range are kept as provided; the scoring core rejects them per
// request so misconfiguration surfaces loudly instead of silently reranking.
func NewLeaderboardService(
	roster leaderboardRosterRepository,
	attendance leaderboardAttendanceCollector,
	content leaderboardContentCollector,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
	weights scoring.Weights,
	cacheTTL time.Duration,
) *LeaderboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &LeaderboardService{
		roster:     roster,
		attendance: attendance,
		content:    content,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		weights:    weights,
		cacheTTL:   cacheTTL,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
	}
}

// StartRefreshQueue wires the background refresh worker pool. Callers must
// Stop the returned queue on shutdown.
func (s *LeaderboardService) StartRefreshQueue(ctx context.Context, workers int, logger *zap.Logger) *jobs.Queue {
	s.refreshQueue = jobs.NewQueue(leaderboardRefreshJob, s.handleRefreshJob, jobs.QueueConfig{
		Workers: workers,
		Logger:  logger,
	})
	s.refreshQueue.Start(ctx)
	return s.refreshQueue
}

// Get returns the ranked leaderboard for a course, serving from cache when
// possible. Returns (view, cacheHit, error).
func (s *LeaderboardService) Get(ctx context.Context, courseID string) (*LeaderboardView, bool, error) {
	key := s.cacheKey(courseID)
	var cached LeaderboardView
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	view, err := s.compute(ctx, courseID)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, view, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache leaderboard", zap.String("course_id", courseID), zap.Error(err))
		}
	}
	return view, false, nil
}

// RequestRefresh enqueues an asynchronous recomputation for a course. Falls
// back to a log entry when the queue is not running.
func (s *LeaderboardService) RequestRefresh(courseID string) error {
	if s.refreshQueue == nil {
		return appErrors.Clone(appErrors.ErrInternal, "refresh queue is not running")
	}
	return s.refreshQueue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    leaderboardRefreshJob,
		Payload: courseID,
	})
}

// Export renders the current leaderboard in the requested format and returns
// the bytes, the suggested filename and the content type.
func (s *LeaderboardService) Export(ctx context.Context, courseID, format string) ([]byte, string, string, error) {
	view, _, err := s.Get(ctx, courseID)
	if err != nil {
		return nil, "", "", err
	}

	dataset := s.dataset(view)
	stamp := time.Now().UTC().Format("20060102")

	switch format {
	case "csv", "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, fmt.Sprintf("leaderboard-%s-%s.csv", courseID, stamp), "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Course Leaderboard")
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, fmt.Sprintf("leaderboard-%s-%s.pdf", courseID, stamp), "application/pdf", nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// compute assembles the metric bundles and runs the scoring pipeline.
func (s *LeaderboardService) compute(ctx context.Context, courseID string) (*LeaderboardView, error) {
	start := time.Now()

	profiles, err := s.roster.StudentProfiles(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course roster")
	}

	attendance, err := s.attendance.Totals(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to collect attendance")
	}
	progress, err := s.content.ProgressSummaries(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to collect progress")
	}
	points, err := s.content.PointTotals(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to collect points")
	}

	attendanceByStudent := make(map[string]models.AttendanceTotals, len(attendance))
	for _, t := range attendance {
		attendanceByStudent[t.StudentID] = t
	}
	progressByStudent := make(map[string]models.ProgressSummary, len(progress))
	for _, p := range progress {
		progressByStudent[p.StudentID] = p
	}
	pointsByStudent := make(map[string]models.PointTotal, len(points))
	for _, p := range points {
		pointsByStudent[p.StudentID] = p
	}

	// Students missing from a collector stay on the board with that metric
	// zeroed; enrollment alone earns a row.
	bundles := make([]scoring.Bundle, 0, len(profiles))
	for _, profile := range profiles {
		bundle := scoring.Bundle{
			StudentID:   profile.StudentID,
			DisplayName: profile.FullName,
			Email:       profile.Email,
			Streak:      scoring.Streak{Current: profile.CurrentStreak},
		}
		if t, ok := attendanceByStudent[profile.StudentID]; ok {
			bundle.Attendance = scoring.Attendance{Present: t.Present, Total: t.Total}
		}
		if p, ok := progressByStudent[profile.StudentID]; ok {
			bundle.Progress = scoring.Progress{Percentage: p.Percentage}
			bundle.Counts = scoring.Counts{
				ArticlesCompleted: p.ArticlesCompleted,
				ProblemsCompleted: p.ProblemsCompleted,
				QuizzesCompleted:  p.QuizzesCompleted,
			}
		}
		if p, ok := pointsByStudent[profile.StudentID]; ok {
			bundle.Points = scoring.Points{Raw: p.TotalPoints}
		}
		bundles = append(bundles, bundle)
	}

	entries, err := scoring.ComputeLeaderboard(bundles, s.weights)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveLeaderboardCompute(time.Since(start))
	}

	return &LeaderboardView{
		CourseID:    courseID,
		Entries:     entries,
		Formula:     scoring.NewFormula(s.weights),
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *LeaderboardService) handleRefreshJob(ctx context.Context, job jobs.Job) error {
	courseID, ok := job.Payload.(string)
	if !ok || courseID == "" {
		s.logger.Error("refresh job carries invalid payload", zap.String("job_id", job.ID))
		return nil
	}

	view, err := s.compute(ctx, courseID)
	if err != nil {
		return fmt.Errorf("refresh leaderboard for course %s: %w", courseID, err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, s.cacheKey(courseID), view, s.cacheTTL); err != nil {
			return fmt.Errorf("cache refreshed leaderboard for course %s: %w", courseID, err)
		}
	}
	s.logger.Info("leaderboard refreshed", zap.String("course_id", courseID), zap.Int("entries", len(view.Entries)))
	return nil
}

func (s *LeaderboardService) cacheKey(courseID string) string {
	return "leaderboard:" + courseID
}

func (s *LeaderboardService) dataset(view *LeaderboardView) export.Dataset {
	headers := []string{"Rank", "Medal", "Student", "Email", "Attendance %", "Progress %", "Points", "Combined Score"}
	rows := make([]map[string]string, 0, len(view.Entries))
	for _, entry := range view.Entries {
		rows = append(rows, map[string]string{
			"Rank":           strconv.Itoa(entry.Rank),
			"Medal":          entry.Medal,
			"Student":        entry.DisplayName,
			"Email":          entry.Email,
			"Attendance %":   strconv.FormatFloat(entry.AttendancePercentage, 'f', 1, 64),
			"Progress %":     strconv.FormatFloat(entry.ProgressPercentage, 'f', 1, 64),
			"Points":         strconv.Itoa(entry.Points.Raw),
			"Combined Score": strconv.Itoa(entry.CombinedScore),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

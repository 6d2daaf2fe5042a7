package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bytezen/bytezen-api/internal/models"
)

// AttendanceRepository persists sessions and attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// CreateSession schedules a new attendance session for a course.
func (r *AttendanceRepository) CreateSession(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO sessions (id, course_id, title, held_on, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, session.ID, session.CourseID, session.Title, session.HeldOn, session.CreatedAt); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// ListSessions returns sessions for a course ordered by date.
func (r *AttendanceRepository) ListSessions(ctx context.Context, courseID string) ([]models.Session, error) {
	var sessions []models.Session
	query := `SELECT id, course_id, title, held_on, created_at FROM sessions WHERE course_id = $1 ORDER BY held_on ASC`
	if err := r.db.SelectContext(ctx, &sessions, query, courseID); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// FindSession fetches one session by ID.
func (r *AttendanceRepository) FindSession(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	query := `SELECT id, course_id, title, held_on, created_at FROM sessions WHERE id = $1`
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// Upsert marks one enrollment for one session, replacing any previous mark.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.MarkedAt = time.Now().UTC()
	query := `INSERT INTO attendance_records (id, session_id, enrollment_id, status, notes, marked_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (session_id, enrollment_id)
        DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes, marked_at = EXCLUDED.marked_at
        RETURNING id`
	if err := r.db.GetContext(ctx, &record.ID, query, record.ID, record.SessionID, record.EnrollmentID, record.Status, record.Notes, record.MarkedAt); err != nil {
		return nil, fmt.Errorf("upsert attendance record: %w", err)
	}
	return record, nil
}

// List returns attendance records filtered by the provided criteria.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecordDetail, int, error) {
	base := `FROM attendance_records ar
JOIN sessions se ON se.id = ar.session_id
JOIN enrollments e ON e.id = ar.enrollment_id
JOIN students s ON s.id = e.student_id`
	var conditions []string
	var args []interface{}

	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("se.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.SessionID != "" {
		conditions = append(conditions, fmt.Sprintf("ar.session_id = $%d", len(args)+1))
		args = append(args, filter.SessionID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("ar.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT ar.id, ar.session_id, ar.enrollment_id, ar.status, ar.notes, ar.marked_at,
        e.student_id, s.full_name AS student_name
        %s ORDER BY se.held_on DESC, s.full_name ASC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var records []models.AttendanceRecordDetail
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance records: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance records: %w", err)
	}
	return records, total, nil
}

// Totals aggregates per-student attendance for a course. LATE counts as
// present; EXCUSED records are excluded from the expected total entirely.
func (r *AttendanceRepository) Totals(ctx context.Context, courseID string) ([]models.AttendanceTotals, error) {
	query := `SELECT e.student_id,
        SUM(CASE WHEN ar.status IN ('PRESENT', 'LATE') THEN 1 ELSE 0 END) AS present,
        SUM(CASE WHEN ar.status <> 'EXCUSED' THEN 1 ELSE 0 END) AS total
        FROM attendance_records ar
        JOIN sessions se ON se.id = ar.session_id
        JOIN enrollments e ON e.id = ar.enrollment_id
        WHERE se.course_id = $1
        GROUP BY e.student_id`
	var totals []models.AttendanceTotals
	if err := r.db.SelectContext(ctx, &totals, query, courseID); err != nil {
		return nil, fmt.Errorf("attendance totals: %w", err)
	}
	return totals, nil
}

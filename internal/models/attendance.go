package models

import "time"

// AttendanceStatus enumerates the recognised marking states.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceExcused AttendanceStatus = "EXCUSED"
)

// Valid reports whether the status is one of the recognised values.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// CountsAsPresent reports whether the status contributes to the present tally.
// LATE still counts as attended; EXCUSED removes the session from the
// student's expected total instead.
func (s AttendanceStatus) CountsAsPresent() bool {
	return s == AttendancePresent || s == AttendanceLate
}

// BulkOperationMode controls bulk write semantics.
type BulkOperationMode string

const (
	BulkModeAtomic         BulkOperationMode = "atomic"
	BulkModePartialOnError BulkOperationMode = "partialOnError"
)

// Session is a scheduled attendance-taking occasion for a course.
type Session struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Title     string    `db:"title" json:"title"`
	HeldOn    time.Time `db:"held_on" json:"held_on"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AttendanceRecord marks one enrollment for one session.
type AttendanceRecord struct {
	ID           string           `db:"id" json:"id"`
	SessionID    string           `db:"session_id" json:"session_id"`
	EnrollmentID string           `db:"enrollment_id" json:"enrollment_id"`
	Status       AttendanceStatus `db:"status" json:"status"`
	Notes        *string          `db:"notes" json:"notes,omitempty"`
	MarkedAt     time.Time        `db:"marked_at" json:"marked_at"`
}

// AttendanceRecordDetail adds roster display fields.
type AttendanceRecordDetail struct {
	AttendanceRecord
	StudentID   string `db:"student_id" json:"student_id"`
	StudentName string `db:"student_name" json:"student_name"`
}

// AttendanceFilter captures listing parameters.
type AttendanceFilter struct {
	CourseID  string
	SessionID string
	StudentID string
	Status    *AttendanceStatus
	Page      int
	PageSize  int
}

// AttendanceBulkConflict reports a failed row in a bulk marking call.
type AttendanceBulkConflict struct {
	EnrollmentID string `json:"enrollment_id"`
	Reason       string `json:"reason"`
}

// AttendanceTotals is the per-student summary the leaderboard consumes:
// sessions attended vs sessions the student was expected at. EXCUSED
// records are excluded from Total.
type AttendanceTotals struct {
	StudentID string `db:"student_id" json:"student_id"`
	Present   int    `db:"present" json:"present"`
	Total     int    `db:"total" json:"total"`
}

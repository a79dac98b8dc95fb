package attendance

import (
	"time"

	"github.com/trezcool/darasa/core"
)

// Statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
)

// DateFormat is the canonical encoding of an attendance date.
const DateFormat = "2006-01-02"

// Attendance is one student's status for one course day. Rows are unique on
// (StudentID, CourseID, Date); the last write for a date wins.
type Attendance struct {
	ID         core.ID   `json:"id"`
	StudentID  core.ID   `json:"student_id"`
	CourseID   core.ID   `json:"course_id"`
	Date       string    `json:"date"` // DateFormat
	Status     string    `json:"status"`
	RecordedAt time.Time `json:"recorded_at"` // UTC
}

// Summary is a student's aggregate attendance for one course.
type Summary struct {
	Present int `json:"present"`
	Total   int `json:"total"`
}

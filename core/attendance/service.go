package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var errInvalidDate = errors.New("invalid attendance date")

type (
	Repository interface {
		// UpsertStatuses applies one keyed upsert per row, as a batch:
		// insert-or-replace on (student_id, course_id, date). It never
		// deletes, so a concurrent reader can never observe an empty
		// snapshot for an already-recorded date.
		UpsertStatuses(ctx context.Context, rows []Attendance) error
		QuerySheet(ctx context.Context, courseID core.ID, date string) ([]Attendance, error)
		GetStudentSummary(ctx context.Context, studentID, courseID core.ID) (Summary, error)
	}

	// RosterProvider resolves the set of students enrolled in a course.
	// course.Repository satisfies it.
	RosterProvider interface {
		QueryCourseStudents(ctx context.Context, courseID core.ID) ([]user.User, error)
	}

	Service struct {
		repo   Repository
		roster RosterProvider
	}
)

func NewService(repo Repository, roster RosterProvider) *Service {
	return &Service{repo: repo, roster: roster}
}

// Record replaces the attendance snapshot for (courseID, date): every
// currently-enrolled student ends with exactly one row for that date,
// present when listed in presentIDs and absent otherwise. Resubmission for
// the same date overwrites the previous snapshot row by row; students who
// left the roster between submissions keep their historical rows.
func (svc *Service) Record(ctx context.Context, courseID core.ID, date string, presentIDs []core.ID) error {
	if _, err := time.Parse(DateFormat, date); err != nil {
		return core.NewValidationError(errInvalidDate, core.FieldError{Field: "date", Error: "expected YYYY-MM-DD"})
	}

	roster, err := svc.roster.QueryCourseStudents(ctx, courseID)
	if err != nil {
		return err
	}
	if len(roster) == 0 {
		return nil
	}

	present := make(map[core.ID]struct{}, len(presentIDs))
	for _, id := range presentIDs {
		present[id] = struct{}{}
	}

	now := time.Now().UTC()
	rows := make([]Attendance, 0, len(roster))
	for _, student := range roster {
		status := StatusAbsent
		if _, ok := present[student.ID]; ok {
			status = StatusPresent
		}
		rows = append(rows, Attendance{
			StudentID:  student.ID,
			CourseID:   courseID,
			Date:       date,
			Status:     status,
			RecordedAt: now,
		})
	}
	return svc.repo.UpsertStatuses(ctx, rows)
}

// Sheet returns the recorded snapshot for (courseID, date), ordered by
// student id.
func (svc *Service) Sheet(ctx context.Context, courseID core.ID, date string) ([]Attendance, error) {
	if _, err := time.Parse(DateFormat, date); err != nil {
		return nil, core.NewValidationError(errInvalidDate, core.FieldError{Field: "date", Error: "expected YYYY-MM-DD"})
	}
	return svc.repo.QuerySheet(ctx, courseID, date)
}

// StudentSummary reports how many of a student's recorded days in a course
// were marked present.
func (svc *Service) StudentSummary(ctx context.Context, studentID, courseID core.ID) (Summary, error) {
	return svc.repo.GetStudentSummary(ctx, studentID, courseID)
}

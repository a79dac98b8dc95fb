package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

type attendanceRow struct {
	ID         int64     `db:"id"`
	StudentID  int64     `db:"student_id"`
	CourseID   int64     `db:"course_id"`
	Date       time.Time `db:"date"`
	Status     string    `db:"status"`
	RecordedAt time.Time `db:"recorded_at"`
}

func (r attendanceRow) unpack() attendance.Attendance {
	return attendance.Attendance{
		ID:         keyID(r.ID),
		StudentID:  keyID(r.StudentID),
		CourseID:   keyID(r.CourseID),
		Date:       r.Date.Format(attendance.DateFormat),
		Status:     r.Status,
		RecordedAt: r.RecordedAt,
	}
}

// UpsertStatuses replaces the (course, date) snapshot with per-key upserts
// in a single transaction. ON CONFLICT keeps each row present at all times:
// a concurrent reader never sees an empty snapshot mid-resubmission, and
// concurrent resubmissions cannot race into a constraint error.
func (repo *attendanceRepository) UpsertStatuses(ctx context.Context, rows []attendance.Attendance) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning attendance tx")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO attendance (student_id, course_id, date, status, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (student_id, course_id, date)
		DO UPDATE SET status = EXCLUDED.status, recorded_at = EXCLUDED.recorded_at`)
	if err != nil {
		return errors.Wrap(err, "preparing attendance upsert")
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		studentKey, err := int64Key(row.StudentID)
		if err != nil {
			return err
		}
		courseKey, err := int64Key(row.CourseID)
		if err != nil {
			return err
		}
		if _, err = stmt.ExecContext(ctx, studentKey, courseKey, row.Date, row.Status, row.RecordedAt); err != nil {
			return errors.Wrap(err, "upserting attendance status")
		}
	}
	return errors.Wrap(tx.Commit(), "committing attendance tx")
}

func (repo *attendanceRepository) QuerySheet(ctx context.Context, courseID core.ID, date string) ([]attendance.Attendance, error) {
	key, err := int64Key(courseID)
	if err != nil {
		return []attendance.Attendance{}, nil
	}
	var rows []attendanceRow
	err = repo.db.SelectContext(ctx, &rows, `
		SELECT id, student_id, course_id, date, status, recorded_at
		FROM attendance
		WHERE course_id = $1 AND date = $2
		ORDER BY student_id`, key, date)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance sheet")
	}
	sheet := make([]attendance.Attendance, 0, len(rows))
	for _, r := range rows {
		sheet = append(sheet, r.unpack())
	}
	return sheet, nil
}

func (repo *attendanceRepository) GetStudentSummary(ctx context.Context, studentID, courseID core.ID) (attendance.Summary, error) {
	studentKey, err := int64Key(studentID)
	if err != nil {
		return attendance.Summary{}, nil
	}
	courseKey, err := int64Key(courseID)
	if err != nil {
		return attendance.Summary{}, nil
	}
	var summary attendance.Summary
	err = repo.db.QueryRowxContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE status = 'present'), COUNT(*)
		FROM attendance
		WHERE student_id = $1 AND course_id = $2`,
		studentKey, courseKey,
	).Scan(&summary.Present, &summary.Total)
	if err != nil {
		return attendance.Summary{}, errors.Wrap(err, "querying attendance summary")
	}
	return summary, nil
}

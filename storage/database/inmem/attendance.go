package inmem

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
)

type attendanceRepository struct {
	s *Store
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func (repo *attendanceRepository) UpsertStatuses(_ context.Context, rows []attendance.Attendance) error {
	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()

	for _, row := range rows {
		updated := false
		for i, existing := range repo.s.sheets {
			if existing.StudentID == row.StudentID && existing.CourseID == row.CourseID && existing.Date == row.Date {
				repo.s.sheets[i].Status = row.Status
				repo.s.sheets[i].RecordedAt = row.RecordedAt
				updated = true
				break
			}
		}
		if !updated {
			row.ID = repo.s.nextKey()
			repo.s.sheets = append(repo.s.sheets, row)
		}
	}
	return nil
}

func (repo *attendanceRepository) QuerySheet(_ context.Context, courseID core.ID, date string) ([]attendance.Attendance, error) {
	if _, err := intKey(courseID); err != nil {
		return []attendance.Attendance{}, nil
	}
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	sheet := []attendance.Attendance{}
	for _, a := range repo.s.sheets {
		if a.CourseID == courseID && a.Date == date {
			sheet = append(sheet, a)
		}
	}
	sort.Slice(sheet, func(i, j int) bool {
		ki, _ := intKey(sheet[i].StudentID)
		kj, _ := intKey(sheet[j].StudentID)
		return ki < kj
	})
	return sheet, nil
}

func (repo *attendanceRepository) GetStudentSummary(_ context.Context, studentID, courseID core.ID) (attendance.Summary, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	var summary attendance.Summary
	for _, a := range repo.s.sheets {
		if a.StudentID != studentID || a.CourseID != courseID {
			continue
		}
		summary.Total++
		if a.Status == attendance.StatusPresent {
			summary.Present++
		}
	}
	return summary, nil
}

package inmem

import (
	"context"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

type courseRepository struct {
	s *Store
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

// callers hold mu
func (repo *courseRepository) teacherName(teacherID core.ID) string {
	for _, u := range repo.s.users {
		if u.ID == teacherID {
			return u.Username
		}
	}
	return ""
}

// callers hold mu
func (repo *courseRepository) enrolledCount(courseID core.ID) int {
	n := 0
	for _, e := range repo.s.enrollments {
		if e.CourseID == courseID {
			n++
		}
	}
	return n
}

// callers hold mu
func (repo *courseRepository) isEnrolled(userID, courseID core.ID) bool {
	for _, e := range repo.s.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return true
		}
	}
	return false
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()

	for _, c := range repo.s.courses {
		if c.CreateKey == crs.CreateKey {
			return course.Course{}, course.ErrCreateKeyExists
		}
	}
	crs.ID = repo.s.nextKey()
	repo.s.courses = append(repo.s.courses, crs)
	return crs, nil
}

func (repo *courseRepository) GetCourse(_ context.Context, id core.ID) (course.Course, error) {
	if _, err := intKey(id); err != nil {
		return course.Course{}, course.ErrNotFound
	}
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	for _, c := range repo.s.courses {
		if c.ID == id {
			c.TeacherName = repo.teacherName(c.TeacherID)
			return c, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) GetCourseByCreateKey(_ context.Context, createKey string) (course.Course, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	for _, c := range repo.s.courses {
		if c.CreateKey == createKey {
			c.TeacherName = repo.teacherName(c.TeacherID)
			return c, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryTeacherCourses(_ context.Context, teacherID core.ID) ([]course.Course, error) {
	if _, err := intKey(teacherID); err != nil {
		return []course.Course{}, nil
	}
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	// courses append in id order; filtering preserves it
	courses := []course.Course{}
	for _, c := range repo.s.courses {
		if c.TeacherID == teacherID {
			c.EnrolledCount = repo.enrolledCount(c.ID)
			courses = append(courses, c)
		}
	}
	return courses, nil
}

func (repo *courseRepository) QueryStudentCourses(_ context.Context, studentID core.ID) ([]course.Course, error) {
	if _, err := intKey(studentID); err != nil {
		return []course.Course{}, nil
	}
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	courses := []course.Course{}
	for _, c := range repo.s.courses {
		if repo.isEnrolled(studentID, c.ID) {
			c.TeacherName = repo.teacherName(c.TeacherID)
			courses = append(courses, c)
		}
	}
	return courses, nil
}

func (repo *courseRepository) QueryAvailableCourses(_ context.Context, studentID core.ID) ([]course.Course, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	courses := []course.Course{}
	for _, c := range repo.s.courses {
		if !repo.isEnrolled(studentID, c.ID) {
			c.TeacherName = repo.teacherName(c.TeacherID)
			courses = append(courses, c)
		}
	}
	return courses, nil
}

func (repo *courseRepository) CreateEnrollment(_ context.Context, enr course.Enrollment) error {
	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()

	userFound := false
	for _, u := range repo.s.users {
		if u.ID == enr.UserID {
			userFound = true
			break
		}
	}
	if !userFound {
		return user.ErrNotFound
	}
	courseFound := false
	for _, c := range repo.s.courses {
		if c.ID == enr.CourseID {
			courseFound = true
			break
		}
	}
	if !courseFound {
		return course.ErrNotFound
	}
	if repo.isEnrolled(enr.UserID, enr.CourseID) {
		return course.ErrAlreadyEnrolled
	}
	enr.ID = repo.s.nextKey()
	repo.s.enrollments = append(repo.s.enrollments, enr)
	return nil
}

func (repo *courseRepository) EnrollmentExists(_ context.Context, userID, courseID core.ID) (bool, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()
	return repo.isEnrolled(userID, courseID), nil
}

func (repo *courseRepository) QueryCourseStudents(_ context.Context, courseID core.ID) ([]user.User, error) {
	if _, err := intKey(courseID); err != nil {
		return []user.User{}, nil
	}
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	// users append in id order; filtering preserves it
	students := []user.User{}
	for _, u := range repo.s.users {
		if u.Role == user.RoleStudent && repo.isEnrolled(u.ID, courseID) {
			students = append(students, u)
		}
	}
	return students, nil
}

func (repo *courseRepository) CreateMaterial(_ context.Context, mat course.Material) (course.Material, error) {
	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()

	courseFound := false
	for _, c := range repo.s.courses {
		if c.ID == mat.CourseID {
			courseFound = true
			break
		}
	}
	if !courseFound {
		return course.Material{}, course.ErrNotFound
	}
	mat.ID = repo.s.nextKey()
	repo.s.materials = append(repo.s.materials, mat)
	return mat, nil
}

func (repo *courseRepository) GetMaterial(_ context.Context, id core.ID) (course.Material, error) {
	if _, err := intKey(id); err != nil {
		return course.Material{}, course.ErrMaterialNotFound
	}
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	for _, m := range repo.s.materials {
		if m.ID == id {
			return m, nil
		}
	}
	return course.Material{}, course.ErrMaterialNotFound
}

func (repo *courseRepository) QueryCourseMaterials(_ context.Context, courseID core.ID) ([]course.Material, error) {
	if _, err := intKey(courseID); err != nil {
		return []course.Material{}, nil
	}
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	materials := []course.Material{}
	for _, m := range repo.s.materials {
		if m.CourseID == courseID {
			materials = append(materials, m)
		}
	}
	return materials, nil
}

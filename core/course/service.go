package course

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound         = errors.New("course not found")
	ErrMaterialNotFound = errors.New("material not found")
	ErrAlreadyEnrolled  = errors.New("student is already enrolled in this course")

	// duplicate idempotency key: the course was already created by an
	// earlier attempt of the same logical request
	ErrCreateKeyExists = errors.New("a course with this create key already exists")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourse(ctx context.Context, id core.ID) (Course, error)
		GetCourseByCreateKey(ctx context.Context, key string) (Course, error)
		// QueryTeacherCourses returns all courses owned by teacherID with a
		// live EnrolledCount, zero-enrollment courses included, ordered by
		// ascending course id.
		QueryTeacherCourses(ctx context.Context, teacherID core.ID) ([]Course, error)
		// QueryStudentCourses returns courses the student is enrolled in,
		// with TeacherName attached, ordered by ascending course id.
		QueryStudentCourses(ctx context.Context, studentID core.ID) ([]Course, error)
		// QueryAvailableCourses returns the exact set complement of
		// QueryStudentCourses within all courses.
		QueryAvailableCourses(ctx context.Context, studentID core.ID) ([]Course, error)
		CreateEnrollment(ctx context.Context, enr Enrollment) error
		EnrollmentExists(ctx context.Context, userID, courseID core.ID) (bool, error)
		QueryCourseStudents(ctx context.Context, courseID core.ID) ([]user.User, error)
		CreateMaterial(ctx context.Context, mat Material) (Material, error)
		GetMaterial(ctx context.Context, id core.ID) (Material, error)
		QueryCourseMaterials(ctx context.Context, courseID core.ID) ([]Material, error)
	}

	Service struct {
		repo    Repository
		usrRepo user.Repository
	}
)

func NewService(repo Repository, usrRepo user.Repository) *Service {
	return &Service{repo: repo, usrRepo: usrRepo}
}

// Create opens a new course owned by a teacher. This layer is the layer of
// record for the ownership policy: the teacher-role check happens here even
// when the caller already performed it.
func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	if err := nc.Validate(); err != nil {
		return Course{}, err
	}

	tchr, err := svc.usrRepo.GetUserByID(ctx, nc.TeacherID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Course{}, core.NewValidationError(err, core.FieldError{Field: "teacher_id", Error: "teacher not found"})
		}
		return Course{}, err
	}
	if !tchr.IsTeacher() {
		return Course{}, core.NewValidationError(
			errors.New("courses can only be owned by teachers"),
			core.FieldError{Field: "teacher_id", Error: "user is not a teacher"},
		)
	}

	key := nc.CreateKey
	if key == "" {
		key = uuid.New().String()
	}
	crs := Course{
		Title:       nc.Title,
		Description: nc.Description,
		TeacherID:   tchr.ID,
		CreateKey:   key,
		CreatedAt:   time.Now().UTC(),
	}
	created, err := svc.repo.CreateCourse(ctx, crs)
	if errors.Is(err, ErrCreateKeyExists) {
		// replay of a request whose first attempt did write
		return svc.repo.GetCourseByCreateKey(ctx, key)
	}
	return created, err
}

func (svc *Service) Get(ctx context.Context, id core.ID) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *Service) TeacherCourses(ctx context.Context, teacherID core.ID) ([]Course, error) {
	return svc.repo.QueryTeacherCourses(ctx, teacherID)
}

func (svc *Service) StudentCourses(ctx context.Context, studentID core.ID) ([]Course, error) {
	return svc.repo.QueryStudentCourses(ctx, studentID)
}

func (svc *Service) AvailableCourses(ctx context.Context, studentID core.ID) ([]Course, error) {
	return svc.repo.QueryAvailableCourses(ctx, studentID)
}

// Enroll is an idempotent insert: enrolling twice leaves exactly one
// enrollment row and reports ErrAlreadyEnrolled on the second attempt.
func (svc *Service) Enroll(ctx context.Context, userID, courseID core.ID) error {
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return err
	}
	enr := Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}
	return svc.repo.CreateEnrollment(ctx, enr)
}

func (svc *Service) IsEnrolled(ctx context.Context, userID, courseID core.ID) (bool, error) {
	return svc.repo.EnrollmentExists(ctx, userID, courseID)
}

func (svc *Service) CourseStudents(ctx context.Context, courseID core.ID) ([]user.User, error) {
	return svc.repo.QueryCourseStudents(ctx, courseID)
}

func (svc *Service) AddMaterial(ctx context.Context, nm NewMaterial) (Material, error) {
	if err := nm.Validate(); err != nil {
		return Material{}, err
	}
	if _, err := svc.repo.GetCourse(ctx, nm.CourseID); err != nil {
		return Material{}, err
	}
	mat := Material{
		CourseID:    nm.CourseID,
		Title:       nm.Title,
		StoragePath: nm.StoragePath,
		UploadedAt:  time.Now().UTC(),
	}
	return svc.repo.CreateMaterial(ctx, mat)
}

func (svc *Service) GetMaterial(ctx context.Context, id core.ID) (Material, error) {
	return svc.repo.GetMaterial(ctx, id)
}

func (svc *Service) CourseMaterials(ctx context.Context, courseID core.ID) ([]Material, error) {
	return svc.repo.QueryCourseMaterials(ctx, courseID)
}

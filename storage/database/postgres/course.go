package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

type courseRow struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	TeacherID   int64     `db:"teacher_id"`
	CreateKey   string    `db:"create_key"`
	CreatedAt   time.Time `db:"created_at"`

	TeacherName   string `db:"teacher_name"`
	EnrolledCount int    `db:"enrolled_count"`
}

func (r courseRow) unpack() course.Course {
	return course.Course{
		ID:            keyID(r.ID),
		Title:         r.Title,
		Description:   r.Description,
		TeacherID:     keyID(r.TeacherID),
		CreateKey:     r.CreateKey,
		CreatedAt:     r.CreatedAt,
		TeacherName:   r.TeacherName,
		EnrolledCount: r.EnrolledCount,
	}
}

func unpackCourses(rows []courseRow) []course.Course {
	courses := make([]course.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.unpack())
	}
	return courses
}

type materialRow struct {
	ID          int64     `db:"id"`
	CourseID    int64     `db:"course_id"`
	Title       string    `db:"title"`
	StoragePath string    `db:"storage_path"`
	UploadedAt  time.Time `db:"uploaded_at"`
}

func (r materialRow) unpack() course.Material {
	return course.Material{
		ID:          keyID(r.ID),
		CourseID:    keyID(r.CourseID),
		Title:       r.Title,
		StoragePath: r.StoragePath,
		UploadedAt:  r.UploadedAt,
	}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	teacherKey, err := int64Key(crs.TeacherID)
	if err != nil {
		return course.Course{}, err
	}
	var id int64
	err = repo.db.QueryRowxContext(ctx,
		`INSERT INTO courses (title, description, teacher_id, create_key, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		crs.Title, crs.Description, teacherKey, crs.CreateKey, crs.CreatedAt,
	).Scan(&id)
	if err != nil {
		// create_key is the only unique column on courses
		if isUniqueViolation(err) {
			return course.Course{}, course.ErrCreateKeyExists
		}
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	crs.ID = keyID(id)
	return crs, nil
}

const selectCourse = `
	SELECT c.id, c.title, c.description, c.teacher_id, c.create_key, c.created_at,
	       u.username AS teacher_name
	FROM courses c
	JOIN users u ON u.id = c.teacher_id`

func (repo *courseRepository) GetCourse(ctx context.Context, id core.ID) (course.Course, error) {
	key, err := int64Key(id)
	if err != nil {
		return course.Course{}, course.ErrNotFound
	}
	var r courseRow
	if err = repo.db.GetContext(ctx, &r, selectCourse+` WHERE c.id = $1`, key); err != nil {
		return course.Course{}, trapNoRows(err, course.ErrNotFound, "finding course by id")
	}
	return r.unpack(), nil
}

func (repo *courseRepository) GetCourseByCreateKey(ctx context.Context, createKey string) (course.Course, error) {
	var r courseRow
	if err := repo.db.GetContext(ctx, &r, selectCourse+` WHERE c.create_key = $1`, createKey); err != nil {
		return course.Course{}, trapNoRows(err, course.ErrNotFound, "finding course by create key")
	}
	return r.unpack(), nil
}

func (repo *courseRepository) QueryTeacherCourses(ctx context.Context, teacherID core.ID) ([]course.Course, error) {
	key, err := int64Key(teacherID)
	if err != nil {
		return []course.Course{}, nil
	}
	var rows []courseRow
	err = repo.db.SelectContext(ctx, &rows, `
		SELECT c.id, c.title, c.description, c.teacher_id, c.create_key, c.created_at,
		       COUNT(e.id) AS enrolled_count
		FROM courses c
		LEFT JOIN enrollment e ON e.course_id = c.id
		WHERE c.teacher_id = $1
		GROUP BY c.id
		ORDER BY c.id`, key)
	if err != nil {
		return nil, errors.Wrap(err, "querying teacher courses")
	}
	return unpackCourses(rows), nil
}

func (repo *courseRepository) QueryStudentCourses(ctx context.Context, studentID core.ID) ([]course.Course, error) {
	key, err := int64Key(studentID)
	if err != nil {
		return []course.Course{}, nil
	}
	var rows []courseRow
	err = repo.db.SelectContext(ctx, &rows, selectCourse+`
		JOIN enrollment e ON e.course_id = c.id
		WHERE e.user_id = $1
		ORDER BY c.id`, key)
	if err != nil {
		return nil, errors.Wrap(err, "querying student courses")
	}
	return unpackCourses(rows), nil
}

func (repo *courseRepository) QueryAvailableCourses(ctx context.Context, studentID core.ID) ([]course.Course, error) {
	key, err := int64Key(studentID)
	if err != nil {
		// an unresolvable student is enrolled in nothing
		key = 0
	}
	var rows []courseRow
	err = repo.db.SelectContext(ctx, &rows, selectCourse+`
		WHERE NOT EXISTS (
			SELECT 1 FROM enrollment e WHERE e.course_id = c.id AND e.user_id = $1
		)
		ORDER BY c.id`, key)
	if err != nil {
		return nil, errors.Wrap(err, "querying available courses")
	}
	return unpackCourses(rows), nil
}

func (repo *courseRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment) error {
	userKey, err := int64Key(enr.UserID)
	if err != nil {
		return user.ErrNotFound
	}
	courseKey, err := int64Key(enr.CourseID)
	if err != nil {
		return course.ErrNotFound
	}
	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO enrollment (user_id, course_id, enrolled_at) VALUES ($1, $2, $3)`,
		userKey, courseKey, enr.EnrolledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return course.ErrAlreadyEnrolled
		}
		switch violatedFKColumn(err) {
		case "user_id":
			return user.ErrNotFound
		case "course_id":
			return course.ErrNotFound
		}
		return errors.Wrap(err, "inserting enrollment")
	}
	return nil
}

func (repo *courseRepository) EnrollmentExists(ctx context.Context, userID, courseID core.ID) (bool, error) {
	userKey, err := int64Key(userID)
	if err != nil {
		return false, nil
	}
	courseKey, err := int64Key(courseID)
	if err != nil {
		return false, nil
	}
	var exists bool
	err = repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM enrollment WHERE user_id = $1 AND course_id = $2)`,
		userKey, courseKey,
	)
	if err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return exists, nil
}

func (repo *courseRepository) QueryCourseStudents(ctx context.Context, courseID core.ID) ([]user.User, error) {
	key, err := int64Key(courseID)
	if err != nil {
		return []user.User{}, nil
	}
	var rows []userRow
	err = repo.db.SelectContext(ctx, &rows, `
		SELECT u.id, u.username, u.password_hash, u.role, u.created_at
		FROM users u
		JOIN enrollment e ON e.user_id = u.id
		WHERE e.course_id = $1 AND u.role = 'student'
		ORDER BY u.id`, key)
	if err != nil {
		return nil, errors.Wrap(err, "querying course students")
	}
	return unpackUsers(rows), nil
}

func (repo *courseRepository) CreateMaterial(ctx context.Context, mat course.Material) (course.Material, error) {
	courseKey, err := int64Key(mat.CourseID)
	if err != nil {
		return course.Material{}, course.ErrNotFound
	}
	var id int64
	err = repo.db.QueryRowxContext(ctx,
		`INSERT INTO materials (course_id, title, storage_path, uploaded_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		courseKey, mat.Title, mat.StoragePath, mat.UploadedAt,
	).Scan(&id)
	if err != nil {
		if violatedFKColumn(err) == "course_id" {
			return course.Material{}, course.ErrNotFound
		}
		return course.Material{}, errors.Wrap(err, "inserting material")
	}
	mat.ID = keyID(id)
	return mat, nil
}

func (repo *courseRepository) GetMaterial(ctx context.Context, id core.ID) (course.Material, error) {
	key, err := int64Key(id)
	if err != nil {
		return course.Material{}, course.ErrMaterialNotFound
	}
	var r materialRow
	err = repo.db.GetContext(ctx, &r,
		`SELECT id, course_id, title, storage_path, uploaded_at FROM materials WHERE id = $1`, key)
	if err != nil {
		return course.Material{}, trapNoRows(err, course.ErrMaterialNotFound, "finding material by id")
	}
	return r.unpack(), nil
}

func (repo *courseRepository) QueryCourseMaterials(ctx context.Context, courseID core.ID) ([]course.Material, error) {
	key, err := int64Key(courseID)
	if err != nil {
		return []course.Material{}, nil
	}
	var rows []materialRow
	err = repo.db.SelectContext(ctx, &rows,
		`SELECT id, course_id, title, storage_path, uploaded_at FROM materials
		 WHERE course_id = $1 ORDER BY id`, key)
	if err != nil {
		return nil, errors.Wrap(err, "querying course materials")
	}
	materials := make([]course.Material, 0, len(rows))
	for _, r := range rows {
		materials = append(materials, r.unpack())
	}
	return materials, nil
}

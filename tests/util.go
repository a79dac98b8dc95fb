// Package testutil holds fixtures and the cross-backend conformance suite.
// Every Store implementation must pass RunStoreTests: the domain services
// never branch on the backend, so neither do the tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/forum"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/storage/database"
)

// UniqueName makes fixture names safe to create on a shared live database.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s_%.8s", prefix, uuid.New().String())
}

func CreateUser(t *testing.T, repo user.Repository, username, role string) user.User {
	t.Helper()
	usr, err := repo.CreateUser(context.Background(), user.User{
		Username:     username,
		PasswordHash: []byte("x"),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(t *testing.T, repo course.Repository, teacher user.User, title string) course.Course {
	t.Helper()
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		Title:     title,
		TeacherID: teacher.ID,
		CreateKey: uuid.New().String(),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func Enroll(t *testing.T, repo course.Repository, usr user.User, crs course.Course) {
	t.Helper()
	err := repo.CreateEnrollment(context.Background(), course.Enrollment{
		UserID:     usr.ID,
		CourseID:   crs.ID,
		EnrolledAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
}

func CreatePost(t *testing.T, repo forum.Repository, crs course.Course, author user.User, content string, ts time.Time) forum.Post {
	t.Helper()
	post, err := repo.CreatePost(context.Background(), forum.Post{
		CourseID:  crs.ID,
		UserID:    author.ID,
		Content:   content,
		Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("CreatePost() failed: %v", err)
	}
	return post
}

// RunStoreTests drives one Store through the semantics every backend must
// honor: username and enrollment uniqueness, derived counts, the
// student/available partition, the idempotent attendance overwrite and
// deterministic ordering.
func RunStoreTests(t *testing.T, db database.Store) {
	ctx := context.Background()

	usrSvc := user.NewService(db.Users())
	crsSvc := course.NewService(db.Courses(), db.Users())
	attSvc := attendance.NewService(db.Attendance(), db.Courses())
	frmSvc := forum.NewService(db.Forum())

	t.Run("users", func(t *testing.T) {
		uname := UniqueName("teach")
		usr, err := usrSvc.Create(ctx, user.NewUser{Username: uname, PasswordHash: []byte("x"), Role: user.RoleTeacher})
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		if usr.ID.IsZero() {
			t.Error("Create() did not assign an id")
		}

		if _, err = usrSvc.Create(ctx, user.NewUser{Username: uname, PasswordHash: []byte("x"), Role: user.RoleStudent}); !errors.Is(err, user.ErrUsernameExists) {
			t.Errorf("duplicate username: got %v, want ErrUsernameExists", err)
		}

		got, err := usrSvc.GetByID(ctx, usr.ID)
		if err != nil {
			t.Fatalf("GetByID() failed: %v", err)
		}
		if got.Username != uname || got.Role != user.RoleTeacher {
			t.Errorf("GetByID() = %+v, want username=%s role=teacher", got, uname)
		}

		// lookups normalize case the same way registration does
		if _, err = usrSvc.GetByUsername(ctx, "  "+uname+"  "); err != nil {
			t.Errorf("GetByUsername() with padding failed: %v", err)
		}

		if _, err = usrSvc.GetByID(ctx, core.ID("nosuch")); !errors.Is(err, user.ErrNotFound) {
			t.Errorf("GetByID(nosuch): got %v, want ErrNotFound", err)
		}

		var vErrs validator.ValidationErrors
		if _, err = usrSvc.Create(ctx, user.NewUser{Username: "x", PasswordHash: []byte("x"), Role: "admin"}); !errors.As(err, &vErrs) {
			t.Errorf("invalid NewUser: got %v, want ValidationErrors", err)
		}
	})

	t.Run("courses", func(t *testing.T) {
		teacher := CreateUser(t, db.Users(), UniqueName("teach"), user.RoleTeacher)
		student := CreateUser(t, db.Users(), UniqueName("stud"), user.RoleStudent)

		c1, err := crsSvc.Create(ctx, course.NewCourse{Title: "Algebra", TeacherID: teacher.ID})
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		c2, err := crsSvc.Create(ctx, course.NewCourse{Title: "Biology", TeacherID: teacher.ID})
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}

		var vErr *core.ValidationError
		if _, err = crsSvc.Create(ctx, course.NewCourse{Title: "Nope", TeacherID: student.ID}); !errors.As(err, &vErr) {
			t.Errorf("student-owned course: got %v, want ValidationError", err)
		}
		if _, err = crsSvc.Create(ctx, course.NewCourse{Title: "Nope", TeacherID: core.ID("nosuch")}); !errors.As(err, &vErr) {
			t.Errorf("unknown teacher: got %v, want ValidationError", err)
		}

		// a replayed create with the same key returns the first course
		key := uuid.New().String()
		first, err := crsSvc.Create(ctx, course.NewCourse{Title: "Chemistry", TeacherID: teacher.ID, CreateKey: key})
		if err != nil {
			t.Fatalf("Create() with key failed: %v", err)
		}
		replay, err := crsSvc.Create(ctx, course.NewCourse{Title: "Chemistry", TeacherID: teacher.ID, CreateKey: key})
		if err != nil {
			t.Fatalf("replayed Create() failed: %v", err)
		}
		if replay.ID != first.ID {
			t.Errorf("replayed Create() = id %s, want %s", replay.ID, first.ID)
		}

		courses, err := crsSvc.TeacherCourses(ctx, teacher.ID)
		if err != nil {
			t.Fatalf("TeacherCourses() failed: %v", err)
		}
		if len(courses) != 3 {
			t.Fatalf("TeacherCourses() returned %d courses, want 3", len(courses))
		}
		if courses[0].ID != c1.ID || courses[1].ID != c2.ID || courses[2].ID != first.ID {
			t.Errorf("TeacherCourses() not in creation order: %v", courses)
		}
		for _, c := range courses {
			if c.EnrolledCount != 0 {
				t.Errorf("course %s: EnrolledCount = %d, want 0", c.Title, c.EnrolledCount)
			}
		}

		got, err := crsSvc.Get(ctx, c1.ID)
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if got.TeacherName != teacher.Username {
			t.Errorf("Get().TeacherName = %q, want %q", got.TeacherName, teacher.Username)
		}
		if _, err = crsSvc.Get(ctx, core.ID("nosuch")); !errors.Is(err, course.ErrNotFound) {
			t.Errorf("Get(nosuch): got %v, want ErrNotFound", err)
		}
	})

	t.Run("enrollment", func(t *testing.T) {
		teacher := CreateUser(t, db.Users(), UniqueName("teach"), user.RoleTeacher)
		student := CreateUser(t, db.Users(), UniqueName("stud"), user.RoleStudent)
		cA := CreateCourse(t, db.Courses(), teacher, "Art")
		cB := CreateCourse(t, db.Courses(), teacher, "Ballet")

		if err := crsSvc.Enroll(ctx, student.ID, cA.ID); err != nil {
			t.Fatalf("Enroll() failed: %v", err)
		}
		if err := crsSvc.Enroll(ctx, student.ID, cA.ID); !errors.Is(err, course.ErrAlreadyEnrolled) {
			t.Errorf("duplicate Enroll(): got %v, want ErrAlreadyEnrolled", err)
		}
		if err := crsSvc.Enroll(ctx, student.ID, core.ID("nosuch")); !errors.Is(err, course.ErrNotFound) {
			t.Errorf("Enroll() in unknown course: got %v, want ErrNotFound", err)
		}

		enrolled, err := crsSvc.IsEnrolled(ctx, student.ID, cA.ID)
		if err != nil || !enrolled {
			t.Errorf("IsEnrolled(cA) = (%v, %v), want (true, nil)", enrolled, err)
		}
		enrolled, err = crsSvc.IsEnrolled(ctx, student.ID, cB.ID)
		if err != nil || enrolled {
			t.Errorf("IsEnrolled(cB) = (%v, %v), want (false, nil)", enrolled, err)
		}

		// mine and available partition the catalog
		mine, err := crsSvc.StudentCourses(ctx, student.ID)
		if err != nil {
			t.Fatalf("StudentCourses() failed: %v", err)
		}
		if len(mine) != 1 || mine[0].ID != cA.ID {
			t.Fatalf("StudentCourses() = %v, want [cA]", mine)
		}
		if mine[0].TeacherName != teacher.Username {
			t.Errorf("StudentCourses().TeacherName = %q, want %q", mine[0].TeacherName, teacher.Username)
		}

		avail, err := crsSvc.AvailableCourses(ctx, student.ID)
		if err != nil {
			t.Fatalf("AvailableCourses() failed: %v", err)
		}
		availIDs := make(map[core.ID]bool, len(avail))
		for _, c := range avail {
			availIDs[c.ID] = true
		}
		if availIDs[cA.ID] {
			t.Error("AvailableCourses() contains an enrolled course")
		}
		if !availIDs[cB.ID] {
			t.Error("AvailableCourses() is missing an unenrolled course")
		}

		// mine ∪ avail must equal the whole catalog with no overlap. An
		// unresolvable student is enrolled in nothing, so their available
		// set is the catalog.
		catalog, err := crsSvc.AvailableCourses(ctx, core.ID("nosuch"))
		if err != nil {
			t.Fatalf("AvailableCourses(nosuch) failed: %v", err)
		}
		union := make(map[core.ID]bool, len(mine)+len(avail))
		for _, c := range mine {
			union[c.ID] = true
		}
		for _, c := range avail {
			if union[c.ID] {
				t.Errorf("course %s is both enrolled and available", c.ID)
			}
			union[c.ID] = true
		}
		if len(union) != len(catalog) {
			t.Errorf("partition covers %d courses, catalog has %d", len(union), len(catalog))
		}
		for _, c := range catalog {
			if !union[c.ID] {
				t.Errorf("course %s is in the catalog but in neither set", c.ID)
			}
		}

		// the duplicate attempt above must not have inflated the count
		courses, err := crsSvc.TeacherCourses(ctx, teacher.ID)
		if err != nil {
			t.Fatalf("TeacherCourses() failed: %v", err)
		}
		for _, c := range courses {
			want := 0
			if c.ID == cA.ID {
				want = 1
			}
			if c.EnrolledCount != want {
				t.Errorf("course %s: EnrolledCount = %d, want %d", c.Title, c.EnrolledCount, want)
			}
		}

		students, err := crsSvc.CourseStudents(ctx, cA.ID)
		if err != nil {
			t.Fatalf("CourseStudents() failed: %v", err)
		}
		if len(students) != 1 || students[0].ID != student.ID {
			t.Errorf("CourseStudents() = %v, want [student]", students)
		}
	})

	t.Run("materials", func(t *testing.T) {
		teacher := CreateUser(t, db.Users(), UniqueName("teach"), user.RoleTeacher)
		crs := CreateCourse(t, db.Courses(), teacher, "Drawing")

		m1, err := crsSvc.AddMaterial(ctx, course.NewMaterial{CourseID: crs.ID, Title: "Syllabus", StoragePath: "uploads/syllabus.pdf"})
		if err != nil {
			t.Fatalf("AddMaterial() failed: %v", err)
		}
		m2, err := crsSvc.AddMaterial(ctx, course.NewMaterial{CourseID: crs.ID, Title: "Week 1", StoragePath: "uploads/week1.pdf"})
		if err != nil {
			t.Fatalf("AddMaterial() failed: %v", err)
		}

		if _, err = crsSvc.AddMaterial(ctx, course.NewMaterial{CourseID: core.ID("nosuch"), Title: "Nope", StoragePath: "x"}); !errors.Is(err, course.ErrNotFound) {
			t.Errorf("AddMaterial() to unknown course: got %v, want ErrNotFound", err)
		}

		materials, err := crsSvc.CourseMaterials(ctx, crs.ID)
		if err != nil {
			t.Fatalf("CourseMaterials() failed: %v", err)
		}
		if len(materials) != 2 || materials[0].ID != m1.ID || materials[1].ID != m2.ID {
			t.Errorf("CourseMaterials() = %v, want [m1, m2]", materials)
		}

		got, err := crsSvc.GetMaterial(ctx, m1.ID)
		if err != nil {
			t.Fatalf("GetMaterial() failed: %v", err)
		}
		if got.StoragePath != "uploads/syllabus.pdf" {
			t.Errorf("GetMaterial().StoragePath = %q", got.StoragePath)
		}
		if _, err = crsSvc.GetMaterial(ctx, core.ID("nosuch")); !errors.Is(err, course.ErrMaterialNotFound) {
			t.Errorf("GetMaterial(nosuch): got %v, want ErrMaterialNotFound", err)
		}
	})

	t.Run("attendance", func(t *testing.T) {
		teacher := CreateUser(t, db.Users(), UniqueName("teach"), user.RoleTeacher)
		s1 := CreateUser(t, db.Users(), UniqueName("s1"), user.RoleStudent)
		s2 := CreateUser(t, db.Users(), UniqueName("s2"), user.RoleStudent)
		s3 := CreateUser(t, db.Users(), UniqueName("s3"), user.RoleStudent)
		crs := CreateCourse(t, db.Courses(), teacher, "Economics")
		for _, s := range []user.User{s1, s2, s3} {
			Enroll(t, db.Courses(), s, crs)
		}

		var vErr *core.ValidationError
		if err := attSvc.Record(ctx, crs.ID, "23-08-2026", nil); !errors.As(err, &vErr) {
			t.Errorf("Record() with bad date: got %v, want ValidationError", err)
		}

		const date = "2026-08-21"
		if err := attSvc.Record(ctx, crs.ID, date, []core.ID{s1.ID}); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}

		wantStatus := func(t *testing.T, want map[core.ID]string) {
			t.Helper()
			sheet, err := attSvc.Sheet(ctx, crs.ID, date)
			if err != nil {
				t.Fatalf("Sheet() failed: %v", err)
			}
			if len(sheet) != len(want) {
				t.Fatalf("Sheet() returned %d rows, want %d", len(sheet), len(want))
			}
			for _, row := range sheet {
				if row.Status != want[row.StudentID] {
					t.Errorf("student %s: status = %s, want %s", row.StudentID, row.Status, want[row.StudentID])
				}
				if row.Date != date {
					t.Errorf("student %s: date = %s, want %s", row.StudentID, row.Date, date)
				}
			}
		}
		wantStatus(t, map[core.ID]string{
			s1.ID: attendance.StatusPresent,
			s2.ID: attendance.StatusAbsent,
			s3.ID: attendance.StatusAbsent,
		})

		// resubmission overwrites the snapshot row by row, never growing it
		if err := attSvc.Record(ctx, crs.ID, date, []core.ID{s2.ID, s3.ID}); err != nil {
			t.Fatalf("Record() resubmission failed: %v", err)
		}
		wantStatus(t, map[core.ID]string{
			s1.ID: attendance.StatusAbsent,
			s2.ID: attendance.StatusPresent,
			s3.ID: attendance.StatusPresent,
		})

		if err := attSvc.Record(ctx, crs.ID, "2026-08-22", []core.ID{s1.ID}); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
		summary, err := attSvc.StudentSummary(ctx, s1.ID, crs.ID)
		if err != nil {
			t.Fatalf("StudentSummary() failed: %v", err)
		}
		if summary.Present != 1 || summary.Total != 2 {
			t.Errorf("StudentSummary() = %+v, want {Present:1 Total:2}", summary)
		}

		// recording against an empty roster writes nothing
		empty := CreateCourse(t, db.Courses(), teacher, "French")
		if err := attSvc.Record(ctx, empty.ID, date, nil); err != nil {
			t.Fatalf("Record() on empty roster failed: %v", err)
		}
		sheet, err := attSvc.Sheet(ctx, empty.ID, date)
		if err != nil {
			t.Fatalf("Sheet() failed: %v", err)
		}
		if len(sheet) != 0 {
			t.Errorf("Sheet() on empty roster = %v, want empty", sheet)
		}
	})

	t.Run("forum", func(t *testing.T) {
		teacher := CreateUser(t, db.Users(), UniqueName("teach"), user.RoleTeacher)
		student := CreateUser(t, db.Users(), UniqueName("stud"), user.RoleStudent)
		crs := CreateCourse(t, db.Courses(), teacher, "Geometry")

		base := time.Now().UTC().Truncate(time.Second)
		p1 := CreatePost(t, db.Forum(), crs, teacher, "welcome", base.Add(-3*time.Minute))
		p3 := CreatePost(t, db.Forum(), crs, student, "question", base.Add(-1*time.Minute))
		p2 := CreatePost(t, db.Forum(), crs, student, "hello", base.Add(-2*time.Minute))

		var vErrs validator.ValidationErrors
		if _, err := frmSvc.CreatePost(ctx, forum.NewPost{CourseID: crs.ID, UserID: student.ID, Content: "   "}); !errors.As(err, &vErrs) {
			t.Errorf("empty content: got %v, want ValidationErrors", err)
		}

		posts, err := frmSvc.CoursePosts(ctx, crs.ID)
		if err != nil {
			t.Fatalf("CoursePosts() failed: %v", err)
		}
		if len(posts) != 3 {
			t.Fatalf("CoursePosts() returned %d posts, want 3", len(posts))
		}
		if posts[0].ID != p3.ID || posts[1].ID != p2.ID || posts[2].ID != p1.ID {
			t.Errorf("CoursePosts() order = [%s %s %s], want newest first", posts[0].Content, posts[1].Content, posts[2].Content)
		}
		if posts[2].AuthorUsername != teacher.Username {
			t.Errorf("AuthorUsername = %q, want %q", posts[2].AuthorUsername, teacher.Username)
		}

		r1, err := frmSvc.CreateReply(ctx, forum.NewReply{PostID: p2.ID, UserID: teacher.ID, Content: "hi there"})
		if err != nil {
			t.Fatalf("CreateReply() failed: %v", err)
		}
		r2, err := frmSvc.CreateReply(ctx, forum.NewReply{PostID: p2.ID, UserID: student.ID, Content: "thanks"})
		if err != nil {
			t.Fatalf("CreateReply() failed: %v", err)
		}
		if _, err = frmSvc.CreateReply(ctx, forum.NewReply{PostID: core.ID("nosuch"), UserID: student.ID, Content: "lost"}); !errors.Is(err, forum.ErrPostNotFound) {
			t.Errorf("CreateReply() to unknown post: got %v, want ErrPostNotFound", err)
		}

		// reply counts are live, computed per read
		posts, err = frmSvc.CoursePosts(ctx, crs.ID)
		if err != nil {
			t.Fatalf("CoursePosts() failed: %v", err)
		}
		for _, p := range posts {
			want := 0
			if p.ID == p2.ID {
				want = 2
			}
			if p.ReplyCount != want {
				t.Errorf("post %q: ReplyCount = %d, want %d", p.Content, p.ReplyCount, want)
			}
		}

		replies, err := frmSvc.PostReplies(ctx, p2.ID)
		if err != nil {
			t.Fatalf("PostReplies() failed: %v", err)
		}
		if len(replies) != 2 || replies[0].ID != r1.ID || replies[1].ID != r2.ID {
			t.Fatalf("PostReplies() = %v, want oldest first", replies)
		}
		if replies[0].AuthorUsername != teacher.Username {
			t.Errorf("reply AuthorUsername = %q, want %q", replies[0].AuthorUsername, teacher.Username)
		}
	})
}

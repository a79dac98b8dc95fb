package course

import (
	"time"

	"github.com/trezcool/darasa/core"
)

type Course struct {
	ID          core.ID   `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TeacherID   core.ID   `json:"teacher_id"`
	CreateKey   string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"` // UTC

	// read-time attachments, computed per query and never stored
	TeacherName   string `json:"teacher_name,omitempty"`
	EnrolledCount int    `json:"enrolled_count"`
}

type Enrollment struct {
	ID         core.ID   `json:"id"`
	UserID     core.ID   `json:"user_id"`
	CourseID   core.ID   `json:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at"` // UTC
}

type Material struct {
	ID          core.ID   `json:"id"`
	CourseID    core.ID   `json:"course_id"`
	Title       string    `json:"title"`
	StoragePath string    `json:"storage_path"`
	UploadedAt  time.Time `json:"uploaded_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
// CreateKey is an optional caller-supplied idempotency key; a replayed
// create with the same key returns the already-created course.
type NewCourse struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	TeacherID   core.ID `json:"teacher_id" validate:"required"`
	CreateKey   string  `json:"create_key"`
}

func (nc *NewCourse) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.CreateKey = core.CleanString(nc.CreateKey)
	return core.Validate.Struct(nc)
}

// NewMaterial contains information needed to attach a material to a course.
// The file itself is saved to disk by the web layer; only the path is kept.
type NewMaterial struct {
	CourseID    core.ID `json:"course_id" validate:"required"`
	Title       string  `json:"title" validate:"required"`
	StoragePath string  `json:"storage_path" validate:"required"`
}

func (nm *NewMaterial) Validate() error {
	nm.Title = core.CleanString(nm.Title)
	nm.StoragePath = core.CleanString(nm.StoragePath)
	return core.Validate.Struct(nm)
}

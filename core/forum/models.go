package forum

import (
	"time"

	"github.com/trezcool/darasa/core"
)

// Post is the root of a course forum thread.
type Post struct {
	ID        core.ID   `json:"id"`
	CourseID  core.ID   `json:"course_id"`
	UserID    core.ID   `json:"user_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"` // UTC

	// read-time attachments, computed per query and never stored
	AuthorUsername string `json:"author_username,omitempty"`
	ReplyCount     int    `json:"reply_count"`
}

// Reply is a leaf answer to a post; threads nest one level only.
type Reply struct {
	ID        core.ID   `json:"id"`
	PostID    core.ID   `json:"post_id"`
	UserID    core.ID   `json:"user_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"` // UTC

	AuthorUsername string `json:"author_username,omitempty"`
}

type NewPost struct {
	CourseID core.ID `json:"course_id" validate:"required"`
	UserID   core.ID `json:"user_id" validate:"required"`
	Content  string  `json:"content" validate:"required"`
}

func (np *NewPost) Validate() error {
	np.Content = core.CleanString(np.Content)
	return core.Validate.Struct(np)
}

type NewReply struct {
	PostID  core.ID `json:"post_id" validate:"required"`
	UserID  core.ID `json:"user_id" validate:"required"`
	Content string  `json:"content" validate:"required"`
}

func (nr *NewReply) Validate() error {
	nr.Content = core.CleanString(nr.Content)
	return core.Validate.Struct(nr)
}

// Package inmem is an in-memory Store used as a test double. It honors the
// same semantics as the real backends (uniqueness, derived counts, idempotent
// attendance overwrite) so domain services can be tested without a server.
package inmem

import (
	"context"
	"strconv"
	"sync"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/forum"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/storage/database"
)

type Store struct {
	mu  sync.RWMutex
	seq int64

	users       []user.User
	courses     []course.Course
	enrollments []course.Enrollment
	materials   []course.Material
	sheets      []attendance.Attendance
	posts       []forum.Post
	replies     []forum.Reply

	userRepo       *userRepository
	courseRepo     *courseRepository
	attendanceRepo *attendanceRepository
	forumRepo      *forumRepository
}

var _ database.Store = (*Store)(nil) // interface compliance check

func NewStore() *Store {
	s := &Store{}
	s.userRepo = &userRepository{s: s}
	s.courseRepo = &courseRepository{s: s}
	s.attendanceRepo = &attendanceRepository{s: s}
	s.forumRepo = &forumRepository{s: s}
	return s
}

func (s *Store) Users() user.Repository            { return s.userRepo }
func (s *Store) Courses() course.Repository        { return s.courseRepo }
func (s *Store) Attendance() attendance.Repository { return s.attendanceRepo }
func (s *Store) Forum() forum.Repository           { return s.forumRepo }

func (s *Store) EnsureSchema(context.Context) error { return nil }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// nextKey allocates a monotonically increasing id; callers hold mu.
func (s *Store) nextKey() core.ID {
	s.seq++
	return core.ID(strconv.FormatInt(s.seq, 10))
}

// intKey normalizes a canonical id to its ordering key. Malformed or
// non-positive tokens report core.ErrInvalidID, same as the real backends.
func intKey(id core.ID) (int64, error) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || n <= 0 {
		return 0, core.ErrInvalidID
	}
	return n, nil
}

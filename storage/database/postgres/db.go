package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/forum"
	"github.com/trezcool/darasa/core/user"
)

// Store is the relational backend: lib/pq over a bounded sqlx pool.
type Store struct {
	db *sqlx.DB

	users      *userRepository
	courses    *courseRepository
	attendance *attendanceRepository
	forum      *forumRepository
}

func Open(conf *core.Config) (*Store, error) {
	db, err := sqlx.Open("postgres", conf.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	db.SetMaxOpenConns(conf.Database.MaxOpenConns)
	db.SetMaxIdleConns(conf.Database.MaxIdleConns)
	db.SetConnMaxLifetime(conf.Database.ConnMaxLifetime)

	if err = ping(db, conf.Database.ConnectTimeout); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:         db,
		users:      &userRepository{db: db},
		courses:    &courseRepository{db: db},
		attendance: &attendanceRepository{db: db},
		forum:      &forumRepository{db: db},
	}, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var err error
	for attempts := 1; ; attempts++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}
	return errors.Wrap(err, "DB ping timeout")
}

func (s *Store) Users() user.Repository             { return s.users }
func (s *Store) Courses() course.Repository         { return s.courses }
func (s *Store) Attendance() attendance.Repository  { return s.attendance }
func (s *Store) Forum() forum.Repository            { return s.forum }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

// postgres error codes
const (
	uniqueViolationCode     = pq.ErrorCode("23505")
	foreignKeyViolationCode = pq.ErrorCode("23503")
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolationCode
	}
	return false
}

// violatedFKColumn returns the referencing column of a foreign-key violation
// ("" when err is something else). Constraint names follow postgres'
// <table>_<column>_fkey convention.
func violatedFKColumn(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolationCode {
		name := strings.TrimSuffix(pqErr.Constraint, "_fkey")
		if idx := strings.Index(name, "_"); idx >= 0 {
			return name[idx+1:]
		}
	}
	return ""
}

// trapNoRows maps sql "no rows" to the domain's not-found sentinel.
func trapNoRows(err, sentinel error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return errors.Wrap(err, msg)
}

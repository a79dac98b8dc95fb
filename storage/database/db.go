package database

import (
	"context"
	"net/url"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/forum"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/storage/database/mongodb"
	"github.com/trezcool/darasa/storage/database/postgres"
)

// Store bundles the repositories of one backend. Callers never branch on the
// backend type: both implementations honor the same semantics (uniqueness,
// derived counts, idempotent attendance overwrite).
type Store interface {
	Users() user.Repository
	Courses() course.Repository
	Attendance() attendance.Repository
	Forum() forum.Repository

	// EnsureSchema idempotently creates missing containers, uniqueness
	// constraints and secondary lookup structures. Safe on every start.
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*postgres.Store)(nil)
	_ Store = (*mongodb.Store)(nil)
)

// Open connects to the backend selected by the configured database URL
// scheme and returns its Store.
func Open(conf *core.Config) (Store, error) {
	u, err := url.Parse(conf.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing database URL")
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return postgres.Open(conf)
	case "mongodb", "mongodb+srv":
		return mongodb.Open(conf)
	default:
		return nil, errors.Errorf("unsupported database scheme %q", u.Scheme)
	}
}

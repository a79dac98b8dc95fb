package mongodb

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/forum"
	"github.com/trezcool/darasa/core/user"
)

const defaultDBName = "darasa"

// collection names; an external contract, same as the relational tables
const (
	usersColl      = "users"
	coursesColl    = "courses"
	enrollmentColl = "enrollment"
	materialsColl  = "materials"
	attendanceColl = "attendance"
	postsColl      = "posts"
	repliesColl    = "replies"
)

// Store is the document backend. Multi-document atomicity is deliberately
// not relied upon: writes stay single-document, and multi-collection fan-out
// is confined to read-only aggregation.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	users      *userRepository
	courses    *courseRepository
	attendance *attendanceRepository
	forum      *forumRepository
}

func Open(conf *core.Config) (*Store, error) {
	opts := options.Client().
		ApplyURI(conf.Database.URL).
		SetServerSelectionTimeout(conf.Database.ConnectTimeout).
		SetConnectTimeout(conf.Database.ConnectTimeout).
		SetSocketTimeout(conf.Database.SocketTimeout).
		SetRetryWrites(true).
		SetMinPoolSize(uint64(conf.Database.MaxIdleConns)).
		SetMaxPoolSize(uint64(conf.Database.MaxOpenConns))

	ctx, cancel := context.WithTimeout(context.Background(), conf.Database.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "pinging mongodb")
	}

	db := client.Database(databaseName(conf.Database.URL))
	return &Store{
		client:     client,
		db:         db,
		users:      &userRepository{db: db},
		courses:    &courseRepository{db: db},
		attendance: &attendanceRepository{db: db},
		forum:      &forumRepository{db: db},
	}, nil
}

// docExists reports whether at least one document matches filter.
func docExists(ctx context.Context, coll *mongo.Collection, filter interface{}) (bool, error) {
	n, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// databaseName extracts the database from the connection URL path.
func databaseName(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultDBName
}

func (s *Store) Users() user.Repository            { return s.users }
func (s *Store) Courses() course.Repository        { return s.courses }
func (s *Store) Attendance() attendance.Repository { return s.attendance }
func (s *Store) Forum() forum.Repository           { return s.forum }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureSchema creates missing collections and builds the unique and
// secondary indexes that mirror the relational constraints:
// (username), (user_id, course_id) and (student_id, course_id, date) are
// unique here exactly as they are UNIQUE columns there. Safe on every start.
func (s *Store) EnsureSchema(ctx context.Context) error {
	existing, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return errors.Wrap(err, "listing collections")
	}
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}
	for _, name := range []string{usersColl, coursesColl, enrollmentColl, materialsColl, attendanceColl, postsColl, repliesColl} {
		if have[name] {
			continue
		}
		if err = s.db.CreateCollection(ctx, name); err != nil {
			return errors.Wrapf(err, "creating collection %s", name)
		}
	}

	indexes := []struct {
		coll  string
		model mongo.IndexModel
	}{
		{usersColl, mongo.IndexModel{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{coursesColl, mongo.IndexModel{
			Keys:    bson.D{{Key: "create_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{enrollmentColl, mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "course_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{attendanceColl, mongo.IndexModel{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "course_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{materialsColl, mongo.IndexModel{Keys: bson.D{{Key: "course_id", Value: 1}}}},
		{postsColl, mongo.IndexModel{Keys: bson.D{{Key: "course_id", Value: 1}}}},
		{repliesColl, mongo.IndexModel{Keys: bson.D{{Key: "post_id", Value: 1}}}},
	}
	for _, ix := range indexes {
		if _, err = s.db.Collection(ix.coll).Indexes().CreateOne(ctx, ix.model); err != nil {
			return errors.Wrapf(err, "creating index on %s", ix.coll)
		}
	}
	return nil
}

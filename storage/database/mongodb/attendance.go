package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
)

type attendanceRepository struct {
	db *mongo.Database
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func (repo *attendanceRepository) coll() *mongo.Collection {
	return repo.db.Collection(attendanceColl)
}

// UpsertStatuses replaces the (course, date) snapshot with one unordered
// upsert per (student, course, date) key. Rows are never deleted, so a
// concurrent reader cannot observe an empty snapshot mid-resubmission. Two
// racing first-time submissions can still collide on the unique index; the
// batch is retried once, at which point every write is a plain update.
func (repo *attendanceRepository) UpsertStatuses(ctx context.Context, rows []attendance.Attendance) error {
	if len(rows) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(rows))
	for _, row := range rows {
		studentKey, err := objectIDKey(row.StudentID)
		if err != nil {
			return err
		}
		courseKey, err := objectIDKey(row.CourseID)
		if err != nil {
			return err
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"student_id": studentKey, "course_id": courseKey, "date": row.Date}).
			SetUpdate(bson.M{"$set": bson.M{"status": row.Status, "recorded_at": row.RecordedAt}}).
			SetUpsert(true))
	}

	opts := options.BulkWrite().SetOrdered(false)
	if _, err := repo.coll().BulkWrite(ctx, writes, opts); err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			return errors.Wrap(err, "upserting attendance statuses")
		}
		if _, err = repo.coll().BulkWrite(ctx, writes, opts); err != nil {
			return errors.Wrap(err, "retrying attendance upsert")
		}
	}
	return nil
}

func (repo *attendanceRepository) QuerySheet(ctx context.Context, courseID core.ID, date string) ([]attendance.Attendance, error) {
	oid, err := objectIDKey(courseID)
	if err != nil {
		return []attendance.Attendance{}, nil
	}
	cur, err := repo.coll().Find(ctx,
		bson.M{"course_id": oid, "date": date},
		options.Find().SetSort(bson.D{{Key: "student_id", Value: 1}}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance sheet")
	}
	var docs []attendanceDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "querying attendance sheet")
	}
	sheet := make([]attendance.Attendance, 0, len(docs))
	for _, d := range docs {
		sheet = append(sheet, d.unpack())
	}
	return sheet, nil
}

func (repo *attendanceRepository) GetStudentSummary(ctx context.Context, studentID, courseID core.ID) (attendance.Summary, error) {
	studentKey, err := objectIDKey(studentID)
	if err != nil {
		return attendance.Summary{}, nil
	}
	courseKey, err := objectIDKey(courseID)
	if err != nil {
		return attendance.Summary{}, nil
	}
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"student_id": studentKey, "course_id": courseKey}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": 1},
			"present": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", attendance.StatusPresent}}, 1, 0},
			}},
		}}},
	}
	cur, err := repo.coll().Aggregate(ctx, pipeline)
	if err != nil {
		return attendance.Summary{}, errors.Wrap(err, "querying attendance summary")
	}
	var results []struct {
		Present int `bson:"present"`
		Total   int `bson:"total"`
	}
	if err = cur.All(ctx, &results); err != nil {
		return attendance.Summary{}, errors.Wrap(err, "querying attendance summary")
	}
	if len(results) == 0 {
		return attendance.Summary{}, nil
	}
	return attendance.Summary{Present: results[0].Present, Total: results[0].Total}, nil
}

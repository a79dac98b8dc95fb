package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

type courseRepository struct {
	db *mongo.Database
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func (repo *courseRepository) coll() *mongo.Collection {
	return repo.db.Collection(coursesColl)
}

// teacherNameStages attaches teacher_name by joining the owning user,
// the document analogue of `JOIN users ON users.id = courses.teacher_id`.
func teacherNameStages() mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         usersColl,
			"localField":   "teacher_id",
			"foreignField": "_id",
			"as":           "teacher",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"teacher_name": bson.M{"$arrayElemAt": bson.A{"$teacher.username", 0}},
		}}},
		bson.D{{Key: "$project", Value: bson.M{"teacher": 0}}},
	}
}

func (repo *courseRepository) aggregateCourses(ctx context.Context, pipeline mongo.Pipeline, msg string) ([]course.Course, error) {
	cur, err := repo.coll().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, msg)
	}
	var docs []courseDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, msg)
	}
	return unpackCourses(docs), nil
}

func (repo *courseRepository) getCourse(ctx context.Context, filter bson.M, msg string) (course.Course, error) {
	pipeline := append(mongo.Pipeline{bson.D{{Key: "$match", Value: filter}}}, teacherNameStages()...)
	courses, err := repo.aggregateCourses(ctx, pipeline, msg)
	if err != nil {
		return course.Course{}, err
	}
	if len(courses) == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return courses[0], nil
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	teacherKey, err := objectIDKey(crs.TeacherID)
	if err != nil {
		return course.Course{}, err
	}
	doc := courseDoc{
		Title:       crs.Title,
		Description: crs.Description,
		TeacherID:   teacherKey,
		CreateKey:   crs.CreateKey,
		CreatedAt:   crs.CreatedAt,
	}
	res, err := repo.coll().InsertOne(ctx, doc)
	if err != nil {
		// create_key carries the only unique index on courses
		if mongo.IsDuplicateKeyError(err) {
			return course.Course{}, course.ErrCreateKeyExists
		}
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	crs.ID = keyID(res.InsertedID.(primitive.ObjectID))
	return crs, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id core.ID) (course.Course, error) {
	oid, err := objectIDKey(id)
	if err != nil {
		return course.Course{}, course.ErrNotFound
	}
	return repo.getCourse(ctx, bson.M{"_id": oid}, "finding course by id")
}

func (repo *courseRepository) GetCourseByCreateKey(ctx context.Context, createKey string) (course.Course, error) {
	return repo.getCourse(ctx, bson.M{"create_key": createKey}, "finding course by create key")
}

func (repo *courseRepository) QueryTeacherCourses(ctx context.Context, teacherID core.ID) ([]course.Course, error) {
	oid, err := objectIDKey(teacherID)
	if err != nil {
		return []course.Course{}, nil
	}
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"teacher_id": oid}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         enrollmentColl,
			"localField":   "_id",
			"foreignField": "course_id",
			"as":           "enrolled",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{"enrolled_count": bson.M{"$size": "$enrolled"}}}},
		bson.D{{Key: "$project", Value: bson.M{"enrolled": 0}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	return repo.aggregateCourses(ctx, pipeline, "querying teacher courses")
}

// enrolledCourseIDs resolves the ids of every course the user is enrolled in.
func (repo *courseRepository) enrolledCourseIDs(ctx context.Context, userKey primitive.ObjectID) ([]interface{}, error) {
	ids, err := repo.db.Collection(enrollmentColl).Distinct(ctx, "course_id", bson.M{"user_id": userKey})
	if err != nil {
		return nil, errors.Wrap(err, "resolving enrolled course ids")
	}
	return ids, nil
}

func (repo *courseRepository) QueryStudentCourses(ctx context.Context, studentID core.ID) ([]course.Course, error) {
	oid, err := objectIDKey(studentID)
	if err != nil {
		return []course.Course{}, nil
	}
	ids, err := repo.enrolledCourseIDs(ctx, oid)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []course.Course{}, nil
	}
	pipeline := append(
		mongo.Pipeline{bson.D{{Key: "$match", Value: bson.M{"_id": bson.M{"$in": ids}}}}},
		append(teacherNameStages(), bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}})...,
	)
	return repo.aggregateCourses(ctx, pipeline, "querying student courses")
}

func (repo *courseRepository) QueryAvailableCourses(ctx context.Context, studentID core.ID) ([]course.Course, error) {
	// an unresolvable student is enrolled in nothing
	enrolled := []interface{}{}
	if oid, err := objectIDKey(studentID); err == nil {
		if enrolled, err = repo.enrolledCourseIDs(ctx, oid); err != nil {
			return nil, err
		}
	}
	pipeline := append(
		mongo.Pipeline{bson.D{{Key: "$match", Value: bson.M{"_id": bson.M{"$nin": enrolled}}}}},
		append(teacherNameStages(), bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}})...,
	)
	return repo.aggregateCourses(ctx, pipeline, "querying available courses")
}

func (repo *courseRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment) error {
	userKey, err := objectIDKey(enr.UserID)
	if err != nil {
		return user.ErrNotFound
	}
	courseKey, err := objectIDKey(enr.CourseID)
	if err != nil {
		return course.ErrNotFound
	}

	// no referential integrity here; check both ends like the FKs would
	if ok, err := docExists(ctx, repo.db.Collection(usersColl), bson.M{"_id": userKey}); err != nil {
		return errors.Wrap(err, "checking enrollment user")
	} else if !ok {
		return user.ErrNotFound
	}
	if ok, err := docExists(ctx, repo.coll(), bson.M{"_id": courseKey}); err != nil {
		return errors.Wrap(err, "checking enrollment course")
	} else if !ok {
		return course.ErrNotFound
	}

	doc := enrollmentDoc{
		UserID:     userKey,
		CourseID:   courseKey,
		EnrolledAt: enr.EnrolledAt,
	}
	if _, err = repo.db.Collection(enrollmentColl).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return course.ErrAlreadyEnrolled
		}
		return errors.Wrap(err, "inserting enrollment")
	}
	return nil
}

func (repo *courseRepository) EnrollmentExists(ctx context.Context, userID, courseID core.ID) (bool, error) {
	userKey, err := objectIDKey(userID)
	if err != nil {
		return false, nil
	}
	courseKey, err := objectIDKey(courseID)
	if err != nil {
		return false, nil
	}
	exists, err := docExists(ctx, repo.db.Collection(enrollmentColl), bson.M{"user_id": userKey, "course_id": courseKey})
	if err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return exists, nil
}

func (repo *courseRepository) QueryCourseStudents(ctx context.Context, courseID core.ID) ([]user.User, error) {
	oid, err := objectIDKey(courseID)
	if err != nil {
		return []user.User{}, nil
	}
	ids, err := repo.db.Collection(enrollmentColl).Distinct(ctx, "user_id", bson.M{"course_id": oid})
	if err != nil {
		return nil, errors.Wrap(err, "resolving enrolled user ids")
	}
	if len(ids) == 0 {
		return []user.User{}, nil
	}
	cur, err := repo.db.Collection(usersColl).Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "role": user.RoleStudent},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying course students")
	}
	var docs []userDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "querying course students")
	}
	students := make([]user.User, 0, len(docs))
	for _, d := range docs {
		students = append(students, d.unpack())
	}
	return students, nil
}

func (repo *courseRepository) CreateMaterial(ctx context.Context, mat course.Material) (course.Material, error) {
	courseKey, err := objectIDKey(mat.CourseID)
	if err != nil {
		return course.Material{}, course.ErrNotFound
	}
	if ok, err := docExists(ctx, repo.coll(), bson.M{"_id": courseKey}); err != nil {
		return course.Material{}, errors.Wrap(err, "checking material course")
	} else if !ok {
		return course.Material{}, course.ErrNotFound
	}
	doc := materialDoc{
		CourseID:    courseKey,
		Title:       mat.Title,
		StoragePath: mat.StoragePath,
		UploadedAt:  mat.UploadedAt,
	}
	res, err := repo.db.Collection(materialsColl).InsertOne(ctx, doc)
	if err != nil {
		return course.Material{}, errors.Wrap(err, "inserting material")
	}
	mat.ID = keyID(res.InsertedID.(primitive.ObjectID))
	return mat, nil
}

func (repo *courseRepository) GetMaterial(ctx context.Context, id core.ID) (course.Material, error) {
	oid, err := objectIDKey(id)
	if err != nil {
		return course.Material{}, course.ErrMaterialNotFound
	}
	var doc materialDoc
	if err = repo.db.Collection(materialsColl).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return course.Material{}, trapNoDocuments(err, course.ErrMaterialNotFound, "finding material by id")
	}
	return doc.unpack(), nil
}

func (repo *courseRepository) QueryCourseMaterials(ctx context.Context, courseID core.ID) ([]course.Material, error) {
	oid, err := objectIDKey(courseID)
	if err != nil {
		return []course.Material{}, nil
	}
	cur, err := repo.db.Collection(materialsColl).Find(ctx,
		bson.M{"course_id": oid},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying course materials")
	}
	var docs []materialDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "querying course materials")
	}
	materials := make([]course.Material, 0, len(docs))
	for _, d := range docs {
		materials = append(materials, d.unpack())
	}
	return materials, nil
}

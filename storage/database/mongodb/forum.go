package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/forum"
	"github.com/trezcool/darasa/core/user"
)

type forumRepository struct {
	db *mongo.Database
}

var _ forum.Repository = (*forumRepository)(nil) // interface compliance check

// authorUsernameStages attaches author_username by joining the posting user.
func authorUsernameStages() mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         usersColl,
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "author",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"author_username": bson.M{"$arrayElemAt": bson.A{"$author.username", 0}},
		}}},
		bson.D{{Key: "$project", Value: bson.M{"author": 0}}},
	}
}

func (repo *forumRepository) CreatePost(ctx context.Context, post forum.Post) (forum.Post, error) {
	courseKey, err := objectIDKey(post.CourseID)
	if err != nil {
		return forum.Post{}, course.ErrNotFound
	}
	userKey, err := objectIDKey(post.UserID)
	if err != nil {
		return forum.Post{}, user.ErrNotFound
	}

	// no referential integrity here; check both ends like the FKs would
	if ok, err := docExists(ctx, repo.db.Collection(coursesColl), bson.M{"_id": courseKey}); err != nil {
		return forum.Post{}, errors.Wrap(err, "checking post course")
	} else if !ok {
		return forum.Post{}, course.ErrNotFound
	}
	if ok, err := docExists(ctx, repo.db.Collection(usersColl), bson.M{"_id": userKey}); err != nil {
		return forum.Post{}, errors.Wrap(err, "checking post author")
	} else if !ok {
		return forum.Post{}, user.ErrNotFound
	}

	doc := postDoc{
		CourseID:  courseKey,
		UserID:    userKey,
		Content:   post.Content,
		Timestamp: post.Timestamp,
	}
	res, err := repo.db.Collection(postsColl).InsertOne(ctx, doc)
	if err != nil {
		return forum.Post{}, errors.Wrap(err, "inserting post")
	}
	post.ID = keyID(res.InsertedID.(primitive.ObjectID))
	return post, nil
}

func (repo *forumRepository) CreateReply(ctx context.Context, reply forum.Reply) (forum.Reply, error) {
	postKey, err := objectIDKey(reply.PostID)
	if err != nil {
		return forum.Reply{}, forum.ErrPostNotFound
	}
	userKey, err := objectIDKey(reply.UserID)
	if err != nil {
		return forum.Reply{}, user.ErrNotFound
	}

	if ok, err := docExists(ctx, repo.db.Collection(postsColl), bson.M{"_id": postKey}); err != nil {
		return forum.Reply{}, errors.Wrap(err, "checking reply post")
	} else if !ok {
		return forum.Reply{}, forum.ErrPostNotFound
	}
	if ok, err := docExists(ctx, repo.db.Collection(usersColl), bson.M{"_id": userKey}); err != nil {
		return forum.Reply{}, errors.Wrap(err, "checking reply author")
	} else if !ok {
		return forum.Reply{}, user.ErrNotFound
	}

	doc := replyDoc{
		PostID:    postKey,
		UserID:    userKey,
		Content:   reply.Content,
		Timestamp: reply.Timestamp,
	}
	res, err := repo.db.Collection(repliesColl).InsertOne(ctx, doc)
	if err != nil {
		return forum.Reply{}, errors.Wrap(err, "inserting reply")
	}
	reply.ID = keyID(res.InsertedID.(primitive.ObjectID))
	return reply, nil
}

func (repo *forumRepository) QueryCoursePosts(ctx context.Context, courseID core.ID) ([]forum.Post, error) {
	oid, err := objectIDKey(courseID)
	if err != nil {
		return []forum.Post{}, nil
	}
	pipeline := append(
		mongo.Pipeline{bson.D{{Key: "$match", Value: bson.M{"course_id": oid}}}},
		authorUsernameStages()...,
	)
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         repliesColl,
			"localField":   "_id",
			"foreignField": "post_id",
			"as":           "replies",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{"reply_count": bson.M{"$size": "$replies"}}}},
		bson.D{{Key: "$project", Value: bson.M{"replies": 0}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}}},
	)
	cur, err := repo.db.Collection(postsColl).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "querying course posts")
	}
	var docs []postDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "querying course posts")
	}
	posts := make([]forum.Post, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, d.unpack())
	}
	return posts, nil
}

func (repo *forumRepository) QueryPostReplies(ctx context.Context, postID core.ID) ([]forum.Reply, error) {
	oid, err := objectIDKey(postID)
	if err != nil {
		return []forum.Reply{}, nil
	}
	pipeline := append(
		mongo.Pipeline{bson.D{{Key: "$match", Value: bson.M{"post_id": oid}}}},
		append(authorUsernameStages(),
			bson.D{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}}},
		)...,
	)
	cur, err := repo.db.Collection(repliesColl).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "querying post replies")
	}
	var docs []replyDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "querying post replies")
	}
	replies := make([]forum.Reply, 0, len(docs))
	for _, d := range docs {
		replies = append(replies, d.unpack())
	}
	return replies, nil
}

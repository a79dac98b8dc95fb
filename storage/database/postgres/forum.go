package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/forum"
	"github.com/trezcool/darasa/core/user"
)

type forumRepository struct {
	db *sqlx.DB
}

var _ forum.Repository = (*forumRepository)(nil) // interface compliance check

type postRow struct {
	ID        int64     `db:"id"`
	CourseID  int64     `db:"course_id"`
	UserID    int64     `db:"user_id"`
	Content   string    `db:"content"`
	Timestamp time.Time `db:"timestamp"`

	AuthorUsername string `db:"author_username"`
	ReplyCount     int    `db:"reply_count"`
}

func (r postRow) unpack() forum.Post {
	return forum.Post{
		ID:             keyID(r.ID),
		CourseID:       keyID(r.CourseID),
		UserID:         keyID(r.UserID),
		Content:        r.Content,
		Timestamp:      r.Timestamp,
		AuthorUsername: r.AuthorUsername,
		ReplyCount:     r.ReplyCount,
	}
}

type replyRow struct {
	ID        int64     `db:"id"`
	PostID    int64     `db:"post_id"`
	UserID    int64     `db:"user_id"`
	Content   string    `db:"content"`
	Timestamp time.Time `db:"timestamp"`

	AuthorUsername string `db:"author_username"`
}

func (r replyRow) unpack() forum.Reply {
	return forum.Reply{
		ID:             keyID(r.ID),
		PostID:         keyID(r.PostID),
		UserID:         keyID(r.UserID),
		Content:        r.Content,
		Timestamp:      r.Timestamp,
		AuthorUsername: r.AuthorUsername,
	}
}

func (repo *forumRepository) CreatePost(ctx context.Context, post forum.Post) (forum.Post, error) {
	courseKey, err := int64Key(post.CourseID)
	if err != nil {
		return forum.Post{}, course.ErrNotFound
	}
	userKey, err := int64Key(post.UserID)
	if err != nil {
		return forum.Post{}, user.ErrNotFound
	}
	var id int64
	err = repo.db.QueryRowxContext(ctx,
		`INSERT INTO posts (course_id, user_id, content, timestamp) VALUES ($1, $2, $3, $4) RETURNING id`,
		courseKey, userKey, post.Content, post.Timestamp,
	).Scan(&id)
	if err != nil {
		switch violatedFKColumn(err) {
		case "course_id":
			return forum.Post{}, course.ErrNotFound
		case "user_id":
			return forum.Post{}, user.ErrNotFound
		}
		return forum.Post{}, errors.Wrap(err, "inserting post")
	}
	post.ID = keyID(id)
	return post, nil
}

func (repo *forumRepository) CreateReply(ctx context.Context, reply forum.Reply) (forum.Reply, error) {
	postKey, err := int64Key(reply.PostID)
	if err != nil {
		return forum.Reply{}, forum.ErrPostNotFound
	}
	userKey, err := int64Key(reply.UserID)
	if err != nil {
		return forum.Reply{}, user.ErrNotFound
	}
	var id int64
	err = repo.db.QueryRowxContext(ctx,
		`INSERT INTO replies (post_id, user_id, content, timestamp) VALUES ($1, $2, $3, $4) RETURNING id`,
		postKey, userKey, reply.Content, reply.Timestamp,
	).Scan(&id)
	if err != nil {
		switch violatedFKColumn(err) {
		case "post_id":
			return forum.Reply{}, forum.ErrPostNotFound
		case "user_id":
			return forum.Reply{}, user.ErrNotFound
		}
		return forum.Reply{}, errors.Wrap(err, "inserting reply")
	}
	reply.ID = keyID(id)
	return reply, nil
}

func (repo *forumRepository) QueryCoursePosts(ctx context.Context, courseID core.ID) ([]forum.Post, error) {
	key, err := int64Key(courseID)
	if err != nil {
		return []forum.Post{}, nil
	}
	var rows []postRow
	err = repo.db.SelectContext(ctx, &rows, `
		SELECT p.id, p.course_id, p.user_id, p.content, p.timestamp,
		       u.username AS author_username, COUNT(r.id) AS reply_count
		FROM posts p
		JOIN users u ON u.id = p.user_id
		LEFT JOIN replies r ON r.post_id = p.id
		WHERE p.course_id = $1
		GROUP BY p.id, u.username
		ORDER BY p.timestamp DESC, p.id DESC`, key)
	if err != nil {
		return nil, errors.Wrap(err, "querying course posts")
	}
	posts := make([]forum.Post, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, r.unpack())
	}
	return posts, nil
}

func (repo *forumRepository) QueryPostReplies(ctx context.Context, postID core.ID) ([]forum.Reply, error) {
	key, err := int64Key(postID)
	if err != nil {
		return []forum.Reply{}, nil
	}
	var rows []replyRow
	err = repo.db.SelectContext(ctx, &rows, `
		SELECT r.id, r.post_id, r.user_id, r.content, r.timestamp,
		       u.username AS author_username
		FROM replies r
		JOIN users u ON u.id = r.user_id
		WHERE r.post_id = $1
		ORDER BY r.timestamp, r.id`, key)
	if err != nil {
		return nil, errors.Wrap(err, "querying post replies")
	}
	replies := make([]forum.Reply, 0, len(rows))
	for _, r := range rows {
		replies = append(replies, r.unpack())
	}
	return replies, nil
}

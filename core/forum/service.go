package forum

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrPostNotFound = errors.New("post not found")
)

var nowFunc = time.Now // mockable

type (
	Repository interface {
		CreatePost(ctx context.Context, post Post) (Post, error)
		CreateReply(ctx context.Context, reply Reply) (Reply, error)
		// QueryCoursePosts returns a course's posts with AuthorUsername and
		// a live ReplyCount, most recent first, id as tiebreak.
		QueryCoursePosts(ctx context.Context, courseID core.ID) ([]Post, error)
		// QueryPostReplies returns a post's replies with AuthorUsername,
		// oldest first.
		QueryPostReplies(ctx context.Context, postID core.ID) ([]Reply, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreatePost(ctx context.Context, np NewPost) (Post, error) {
	if err := np.Validate(); err != nil {
		return Post{}, err
	}
	post := Post{
		CourseID:  np.CourseID,
		UserID:    np.UserID,
		Content:   np.Content,
		Timestamp: nowFunc().UTC(),
	}
	return svc.repo.CreatePost(ctx, post)
}

func (svc *Service) CreateReply(ctx context.Context, nr NewReply) (Reply, error) {
	if err := nr.Validate(); err != nil {
		return Reply{}, err
	}
	reply := Reply{
		PostID:    nr.PostID,
		UserID:    nr.UserID,
		Content:   nr.Content,
		Timestamp: nowFunc().UTC(),
	}
	return svc.repo.CreateReply(ctx, reply)
}

func (svc *Service) CoursePosts(ctx context.Context, courseID core.ID) ([]Post, error) {
	return svc.repo.QueryCoursePosts(ctx, courseID)
}

func (svc *Service) PostReplies(ctx context.Context, postID core.ID) ([]Reply, error) {
	return svc.repo.QueryPostReplies(ctx, postID)
}

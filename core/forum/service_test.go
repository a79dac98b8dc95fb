package forum

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/darasa/core"
)

type repoStub struct {
	posts   []Post
	replies []Reply
}

var _ Repository = (*repoStub)(nil) // interface compliance check

func (s *repoStub) CreatePost(_ context.Context, p Post) (Post, error) {
	p.ID = core.ID("1")
	s.posts = append(s.posts, p)
	return p, nil
}

func (s *repoStub) CreateReply(_ context.Context, r Reply) (Reply, error) {
	r.ID = core.ID("2")
	s.replies = append(s.replies, r)
	return r, nil
}

func (s *repoStub) QueryCoursePosts(context.Context, core.ID) ([]Post, error) {
	return s.posts, nil
}

func (s *repoStub) QueryPostReplies(context.Context, core.ID) ([]Reply, error) {
	return s.replies, nil
}

func TestService_stampsUTC(t *testing.T) {
	// a zoned wall clock must come out as its UTC instant
	loc := time.FixedZone("UTC+2", 2*60*60)
	known := time.Date(2026, 8, 21, 10, 30, 0, 0, loc)

	restore := nowFunc
	nowFunc = func() time.Time { return known }
	defer func() { nowFunc = restore }()

	svc := NewService(&repoStub{})
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, NewPost{CourseID: "1", UserID: "2", Content: "  hello  "})
	if err != nil {
		t.Fatalf("CreatePost() failed: %v", err)
	}
	if !post.Timestamp.Equal(known) || post.Timestamp.Location() != time.UTC {
		t.Errorf("post Timestamp = %v, want %v", post.Timestamp, known.UTC())
	}
	if post.Content != "hello" {
		t.Errorf("post Content = %q, want trimmed %q", post.Content, "hello")
	}

	reply, err := svc.CreateReply(ctx, NewReply{PostID: post.ID, UserID: "2", Content: "hi"})
	if err != nil {
		t.Fatalf("CreateReply() failed: %v", err)
	}
	if !reply.Timestamp.Equal(known) || reply.Timestamp.Location() != time.UTC {
		t.Errorf("reply Timestamp = %v, want %v", reply.Timestamp, known.UTC())
	}
}

package inmem

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/forum"
	"github.com/trezcool/darasa/core/user"
)

type forumRepository struct {
	s *Store
}

var _ forum.Repository = (*forumRepository)(nil) // interface compliance check

// callers hold mu
func (repo *forumRepository) username(userID core.ID) string {
	for _, u := range repo.s.users {
		if u.ID == userID {
			return u.Username
		}
	}
	return ""
}

func (repo *forumRepository) CreatePost(_ context.Context, post forum.Post) (forum.Post, error) {
	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()

	courseFound := false
	for _, c := range repo.s.courses {
		if c.ID == post.CourseID {
			courseFound = true
			break
		}
	}
	if !courseFound {
		return forum.Post{}, course.ErrNotFound
	}
	if repo.username(post.UserID) == "" {
		return forum.Post{}, user.ErrNotFound
	}
	post.ID = repo.s.nextKey()
	repo.s.posts = append(repo.s.posts, post)
	return post, nil
}

func (repo *forumRepository) CreateReply(_ context.Context, reply forum.Reply) (forum.Reply, error) {
	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()

	postFound := false
	for _, p := range repo.s.posts {
		if p.ID == reply.PostID {
			postFound = true
			break
		}
	}
	if !postFound {
		return forum.Reply{}, forum.ErrPostNotFound
	}
	if repo.username(reply.UserID) == "" {
		return forum.Reply{}, user.ErrNotFound
	}
	reply.ID = repo.s.nextKey()
	repo.s.replies = append(repo.s.replies, reply)
	return reply, nil
}

func (repo *forumRepository) QueryCoursePosts(_ context.Context, courseID core.ID) ([]forum.Post, error) {
	if _, err := intKey(courseID); err != nil {
		return []forum.Post{}, nil
	}
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	posts := []forum.Post{}
	for _, p := range repo.s.posts {
		if p.CourseID != courseID {
			continue
		}
		p.AuthorUsername = repo.username(p.UserID)
		p.ReplyCount = 0
		for _, r := range repo.s.replies {
			if r.PostID == p.ID {
				p.ReplyCount++
			}
		}
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].Timestamp.Equal(posts[j].Timestamp) {
			return posts[i].Timestamp.After(posts[j].Timestamp)
		}
		ki, _ := intKey(posts[i].ID)
		kj, _ := intKey(posts[j].ID)
		return ki > kj
	})
	return posts, nil
}

func (repo *forumRepository) QueryPostReplies(_ context.Context, postID core.ID) ([]forum.Reply, error) {
	if _, err := intKey(postID); err != nil {
		return []forum.Reply{}, nil
	}
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	replies := []forum.Reply{}
	for _, r := range repo.s.replies {
		if r.PostID != postID {
			continue
		}
		r.AuthorUsername = repo.username(r.UserID)
		replies = append(replies, r)
	}
	sort.Slice(replies, func(i, j int) bool {
		if !replies[i].Timestamp.Equal(replies[j].Timestamp) {
			return replies[i].Timestamp.Before(replies[j].Timestamp)
		}
		ki, _ := intKey(replies[i].ID)
		kj, _ := intKey(replies[j].ID)
		return ki < kj
	})
	return replies, nil
}

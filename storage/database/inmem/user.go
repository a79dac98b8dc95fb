package inmem

import (
	"context"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type userRepository struct {
	s *Store
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()

	for _, u := range repo.s.users {
		if u.Username == usr.Username {
			return user.User{}, user.ErrUsernameExists
		}
	}
	usr.ID = repo.s.nextKey()
	repo.s.users = append(repo.s.users, usr)
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id core.ID) (user.User, error) {
	if _, err := intKey(id); err != nil {
		return user.User{}, user.ErrNotFound
	}
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	for _, u := range repo.s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	for _, u := range repo.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

type userRow struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash []byte    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r userRow) unpack() user.User {
	return user.User{
		ID:           keyID(r.ID),
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		CreatedAt:    r.CreatedAt,
	}
}

func unpackUsers(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.unpack())
	}
	return users
}

const selectUser = `SELECT id, username, password_hash, role, created_at FROM users`

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	var id int64
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO users (username, password_hash, role, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		usr.Username, usr.PasswordHash, usr.Role, usr.CreatedAt,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	usr.ID = keyID(id)
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id core.ID) (user.User, error) {
	key, err := int64Key(id)
	if err != nil {
		return user.User{}, user.ErrNotFound
	}
	var r userRow
	if err = repo.db.GetContext(ctx, &r, selectUser+` WHERE id = $1`, key); err != nil {
		return user.User{}, trapNoRows(err, user.ErrNotFound, "finding user by id")
	}
	return r.unpack(), nil
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var r userRow
	if err := repo.db.GetContext(ctx, &r, selectUser+` WHERE username = $1`, username); err != nil {
		return user.User{}, trapNoRows(err, user.ErrNotFound, "finding user by username")
	}
	return r.unpack(), nil
}

package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type userRepository struct {
	db *mongo.Database
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func (repo *userRepository) coll() *mongo.Collection {
	return repo.db.Collection(usersColl)
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.coll().InsertOne(ctx, packUser(usr))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	usr.ID = keyID(res.InsertedID.(primitive.ObjectID))
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id core.ID) (user.User, error) {
	oid, err := objectIDKey(id)
	if err != nil {
		return user.User{}, user.ErrNotFound
	}
	var doc userDoc
	if err = repo.coll().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return user.User{}, trapNoDocuments(err, user.ErrNotFound, "finding user by id")
	}
	return doc.unpack(), nil
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var doc userDoc
	if err := repo.coll().FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		return user.User{}, trapNoDocuments(err, user.ErrNotFound, "finding user by username")
	}
	return doc.unpack(), nil
}

// trapNoDocuments maps mongo "no documents" to the domain's not-found sentinel.
func trapNoDocuments(err, sentinel error, msg string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return sentinel
	}
	return errors.Wrap(err, msg)
}

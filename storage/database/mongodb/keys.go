package mongodb

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/darasa/core"
)

// objectIDKey normalizes a canonical id to this backend's native ObjectID.
// Pure and deterministic; malformed tokens report core.ErrInvalidID.
func objectIDKey(id core.ID) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return primitive.NilObjectID, core.ErrInvalidID
	}
	return oid, nil
}

// keyID is the inverse of objectIDKey; round-tripping is the identity.
func keyID(oid primitive.ObjectID) core.ID {
	return core.ID(oid.Hex())
}

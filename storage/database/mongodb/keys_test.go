package mongodb

import (
	"testing"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/darasa/core"
)

func Test_objectIDKey(t *testing.T) {
	oid := primitive.NewObjectID()

	got, err := objectIDKey(keyID(oid))
	if err != nil {
		t.Fatalf("objectIDKey() failed: %v", err)
	}
	if got != oid {
		t.Errorf("objectIDKey(keyID(oid)) = %s, want %s", got.Hex(), oid.Hex())
	}

	for _, id := range []core.ID{"", "42", "nosuch", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		if _, err := objectIDKey(id); !errors.Is(err, core.ErrInvalidID) {
			t.Errorf("objectIDKey(%q) error = %v, want ErrInvalidID", id, err)
		}
	}
}

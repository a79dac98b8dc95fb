package postgres

import (
	"strconv"

	"github.com/trezcool/darasa/core"
)

// int64Key normalizes a canonical id to this backend's native BIGSERIAL key.
// Pure and deterministic; malformed tokens report core.ErrInvalidID.
func int64Key(id core.ID) (int64, error) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || n <= 0 {
		return 0, core.ErrInvalidID
	}
	return n, nil
}

// keyID is the inverse of int64Key; round-tripping is the identity.
func keyID(n int64) core.ID {
	return core.ID(strconv.FormatInt(n, 10))
}

package core

import "errors"

// ErrInvalidID marks an identifier token no backend can decode.
// Read paths treat it as "not found", never as a fatal error.
var ErrInvalidID = errors.New("invalid identifier")

// ID is the canonical identifier exchanged with callers, regardless of the
// active backend. The relational backend encodes its BIGSERIAL keys as
// decimal strings; the document backend encodes object ids as 24-char hex.
// Each backend normalizes an ID back to its native key and reports
// ErrInvalidID on malformed input; normalizing an already-canonical id is
// the identity.
type ID string

func (id ID) String() string { return string(id) }

func (id ID) IsZero() bool { return id == "" }

package postgres

import (
	"testing"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

func Test_int64Key(t *testing.T) {
	tests := []struct {
		name    string
		id      core.ID
		want    int64
		wantErr bool
	}{
		{name: "valid", id: "42", want: 42},
		{name: "empty", id: "", wantErr: true},
		{name: "zero", id: "0", wantErr: true},
		{name: "negative", id: "-1", wantErr: true},
		{name: "not a number", id: "abc", wantErr: true},
		{name: "objectid hex", id: "507f1f77bcf86cd799439011", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := int64Key(tt.id)
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidID) {
					t.Errorf("int64Key(%q) error = %v, want ErrInvalidID", tt.id, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("int64Key(%q) failed: %v", tt.id, err)
			}
			if got != tt.want {
				t.Errorf("int64Key(%q) = %d, want %d", tt.id, got, tt.want)
			}
			if keyID(got) != tt.id {
				t.Errorf("keyID(%d) = %s, want %s", got, keyID(got), tt.id)
			}
		})
	}
}

func Test_violatedFKColumn(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "enrollment user fk",
			err:  &pq.Error{Code: foreignKeyViolationCode, Constraint: "enrollment_user_id_fkey"},
			want: "user_id",
		},
		{
			name: "posts course fk, wrapped",
			err:  errors.Wrap(&pq.Error{Code: foreignKeyViolationCode, Constraint: "posts_course_id_fkey"}, "inserting post"),
			want: "course_id",
		},
		{
			name: "unique violation is not a fk",
			err:  &pq.Error{Code: uniqueViolationCode, Constraint: "users_username_key"},
			want: "",
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := violatedFKColumn(tt.err); got != tt.want {
				t.Errorf("violatedFKColumn() = %q, want %q", got, tt.want)
			}
		})
	}
}

func Test_isUniqueViolation(t *testing.T) {
	uniqueErr := errors.Wrap(&pq.Error{Code: uniqueViolationCode}, "inserting user")
	if !isUniqueViolation(uniqueErr) {
		t.Error("isUniqueViolation() = false for a wrapped 23505")
	}
	if isUniqueViolation(errors.New("boom")) {
		t.Error("isUniqueViolation() = true for a plain error")
	}
}

package user

import (
	"time"

	"github.com/trezcool/darasa/core"
)

// Roles. A user's role is set once at registration and never changes.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

var AllRoles = []string{RoleTeacher, RoleStudent}

type User struct {
	ID           core.ID   `json:"id"`
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }

func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// NewUser contains information needed to create a new User.
// Passwords are hashed by the web layer; this layer stores the hash opaquely.
type NewUser struct {
	Username     string `json:"username" validate:"required,min=3,alphanum_"`
	PasswordHash []byte `json:"-" validate:"required"`
	Role         string `json:"role" validate:"required,oneof=teacher student"`
}

func (nu *NewUser) Validate() error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	return core.Validate.Struct(nu)
}

package policy

import (
	"fmt"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Roles lists the closed set in ascending privilege.
var Roles = []Role{RoleUser, RoleModerator, RoleAdmin}

func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Rank orders roles user < moderator < admin. Unknown roles rank below user.
func (r Role) Rank() int {
	for i, known := range Roles {
		if known == r {
			return i
		}
	}
	return -1
}

// Actor is the caller a decision is made for. IsStaff and IsSuperuser are
// account-store flags that grant privileges independently of Role.
type Actor struct {
	ID          uuid.UUID
	Username    string
	Role        Role
	IsStaff     bool
	IsSuperuser bool
}

// Anonymous is the actor of unauthenticated requests.
var Anonymous = Actor{}

func (a Actor) IsAnonymous() bool {
	return a.ID == uuid.Nil
}

func (a Actor) IsModerator() bool {
	return a.Role == RoleModerator || a.IsStaff
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.IsSuperuser || a.IsStaff
}

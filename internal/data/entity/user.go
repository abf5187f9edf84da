package entity

import "yamdb/internal/policy"

type User struct {
	Base
	Username    string      `db:"username"`
	Email       string      `db:"email"`
	Role        policy.Role `db:"role"`
	Bio         string      `db:"bio"`
	FirstName   string      `db:"first_name"`
	LastName    string      `db:"last_name"`
	IsStaff     bool        `db:"is_staff"`
	IsSuperuser bool        `db:"is_superuser"`
	IsConfirmed bool        `db:"is_confirmed"`
}

// Actor returns the permission subject for this account.
func (u *User) Actor() policy.Actor {
	return policy.Actor{
		ID:          u.ID,
		Username:    u.Username,
		Role:        u.Role,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	}
}

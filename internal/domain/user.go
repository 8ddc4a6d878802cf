package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
)

// User is provisioned by the identity provider; tokens carry its ID.
type User struct {
	ID        uuid.UUID `bson:"_id" json:"id"`
	Username  string    `bson:"username" json:"username"`
	Email     string    `bson:"email" json:"email"` // Unique
	Roles     []Role    `bson:"roles" json:"roles"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// HasRole reports whether the user was granted role.
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

package models

import (
	"strings"
	"time"
)

// Role classifies what a caller is allowed to do. Roles are fixed at
// token-issuance time; the API only ever checks membership in an allow-set.
type Role string

const (
	RoleStudent   Role = "student"
	RoleVolunteer Role = "volunteer"
	RoleMentor    Role = "mentor"
	RoleAdmin     Role = "admin"
)

// ParseRole normalizes a raw claim value into a known Role.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	switch role {
	case RoleStudent, RoleVolunteer, RoleMentor, RoleAdmin:
		return role, true
	default:
		return "", false
	}
}

// OneOf reports whether the role belongs to the given allow-set.
func (r Role) OneOf(allowed ...Role) bool {
	for _, candidate := range allowed {
		if r == candidate {
			return true
		}
	}
	return false
}

// CanSubmit reports whether the role may record assignment responses and raise doubts.
func (r Role) CanSubmit() bool {
	return r.OneOf(RoleStudent, RoleVolunteer)
}

// CanMentor reports whether the role may reply to doubts and manage assignments.
func (r Role) CanMentor() bool {
	return r.OneOf(RoleMentor, RoleAdmin)
}

// Actor is the authenticated identity attached to a request.
type Actor struct {
	ID    uint
	Email string
	Role  Role
}

// User represents a platform account. Credential issuance lives outside this
// service; users are referenced here for ownership checks and notification
// addressing.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      Role      `gorm:"size:32;not null;default:student" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

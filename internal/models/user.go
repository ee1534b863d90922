package models

import (
	"time"

	"github.com/google/uuid"
)

// Account status values.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Organizer progression of a user account.
const (
	OrganizerStatusNone     = "none"
	OrganizerStatusPending  = "pending"
	OrganizerStatusApproved = "approved"
	OrganizerStatusRejected = "rejected"
)

// Role is a row of the roles reference table. Role IDs are resolved at
// startup via roles.Registry, never hard-coded in guards.
type Role struct {
	ID   int    `json:"id"`
	Name string `json:"role"`
}

// User represents a platform user with authorization attributes.
type User struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	Password        string    `json:"-"`
	Name            string    `json:"name"`
	RoleID          int       `json:"role_id"`
	Status          string    `json:"status"`
	OrganizerStatus string    `json:"organizer_status"`
	Image           string    `json:"image,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	RoleID          int       `json:"role_id"`
	Role            string    `json:"role,omitempty"`
	Status          string    `json:"status"`
	OrganizerStatus string    `json:"organizer_status"`
	Image           string    `json:"image,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ToPublic converts User to UserPublic. The role name is filled in by
// callers that hold the role registry.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		RoleID:          u.RoleID,
		Status:          u.Status,
		OrganizerStatus: u.OrganizerStatus,
		Image:           u.Image,
		CreatedAt:       u.CreatedAt,
	}
}

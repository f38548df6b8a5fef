package domain

import "time"

type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

type UserStatus string

const (
	// UserPending accounts have registered but not verified their email.
	UserPending UserStatus = "Pending"
	UserActive  UserStatus = "Active"
)

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// IsActive reports whether the user finished email verification.
func (u User) IsActive() bool {
	return u.Status == UserActive
}

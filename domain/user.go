package domain

import "time"

// Role is fixed at registration.
type Role string

const (
	RoleCreator  Role = "creator"
	RoleExecutor Role = "executor"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCreator, RoleExecutor:
		return true
	default:
		return false
	}
}

// User represents a registered identity on the board.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsCreator() bool {
	return u != nil && u.Role == RoleCreator
}

func (u *User) IsExecutor() bool {
	return u != nil && u.Role == RoleExecutor
}

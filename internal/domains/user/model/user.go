package model

import (
	"time"

	"github.com/google/uuid"

	"blog-backend/internal/shared/utils"
)

// User là domain entity - ánh xạ 1:1 với bảng users.
// Xóa user sẽ xóa toàn bộ posts của user đó (ON DELETE CASCADE).
type User struct {
	// Identity
	ID       uuid.UUID `db:"id" json:"id"`
	Username string    `db:"username" json:"username"`
	Email    string    `db:"email" json:"email"`

	// Authentication
	PasswordHash string `db:"password_hash" json:"-"` // Never expose in JSON

	// Profile
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`

	Role Role `db:"role" json:"role"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Role enum
type Role string

const (
	RoleUser  Role = "user"  // Regular author
	RoleAdmin Role = "admin" // Manages groups and users
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// FullName ghép first + last name; fallback về username nếu trống
func (u *User) FullName() string {
	return utils.FullName(u.FirstName, u.LastName, u.Username)
}

// UserDTO - Public user representation (safe to expose)
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ToDTO converts User entity to UserDTO
func (u *User) ToDTO() UserDTO {
	return UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName(),
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

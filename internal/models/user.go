package models

import (
	"time"

	"github.com/uptrace/bun"
)

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleVendor   UserRole = "vendor"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID           string    `json:"id" bun:"id,pk"`
	Email        string    `json:"email" bun:"email,unique"`
	Name         string    `json:"name" bun:"name"`
	Role         UserRole  `json:"role" bun:"role"`
	Fraud        bool      `json:"fraud,omitempty" bun:"fraud"`
	CreatedAt    time.Time `json:"created_at" bun:"created_at"`
	LastLoggedIn time.Time `json:"last_logged_in" bun:"last_logged_in"`
}

// UpsertUserRequest is the body of POST /user. Role and timestamps are
// assigned server-side; new users always start as customers.
type UpsertUserRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
	Image string `json:"image,omitempty"`
}

type UpdateRoleRequest struct {
	ID   string   `json:"id" binding:"required"`
	Role UserRole `json:"role" binding:"required"`
}

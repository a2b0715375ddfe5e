package models

import "time"

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent RoleType = "STUDENT"
	RoleTeacher RoleType = "TEACHER"
	RoleAdmin   RoleType = "ADMIN"
)

// User defines the user model based on the 'users' table. Accounts are
// provisioned by the identity collaborator (seeded here); this service only
// reads them for role checks and approver name resolution.
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Email     string    `json:"email" db:"email" example:"student@university.edu"`
	Password  string    `json:"-" db:"password"`
	FirstName string    `json:"firstName" db:"first_name" example:"John"`
	LastName  string    `json:"lastName" db:"last_name" example:"Doe"`
	RoleType  RoleType  `json:"roleType" db:"role_type" example:"STUDENT"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// FullName returns the user's display name as rendered on documents.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

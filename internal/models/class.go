package models

import "time"

type SchoolClass struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	CreatedBy   int64         `json:"created_by"`
	CreatedAt   time.Time     `json:"created_at"`
	Members     []ClassMember `json:"members"`
}

// ClassMember carries the membership role (a user who is a "teacher"
// platform-wide can still sit in a class as a student, and vice versa).
type ClassMember struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type ClassCreate struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type ClassAddMember struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

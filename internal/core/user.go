package core

import "time"

// User represents a registered account
type User struct {
	ID           uint
	Phone        string
	Email        string
	Fullname     string
	PasswordHash string
	CreatedAt    time.Time
}

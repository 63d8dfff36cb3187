package domain

import "time"

// User is the domain entity for an account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

package entity

import "time"

// User is a registered account. The password hash is bcrypt.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

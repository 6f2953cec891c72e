// Package models defines server-side records that never leave the server:
// user credentials and refresh tokens.
package models

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

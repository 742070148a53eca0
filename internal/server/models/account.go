// Package models defines server-side data models persisted in the database.
package models

import "time"

// Account is a registered user. PasswordHash is a bcrypt hash and never
// leaves the server.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	// CategoryType is the preferred meal category, unset until chosen.
	CategoryType *string
	CreatedAt    time.Time
}

// AccountField names a single editable account attribute.
type AccountField string

const (
	AccountFieldName     AccountField = "name"
	AccountFieldEmail    AccountField = "email"
	AccountFieldCategory AccountField = "category"
	AccountFieldPassword AccountField = "password"
)

// Valid reports whether f is one of the known editable fields.
func (f AccountField) Valid() bool {
	switch f {
	case AccountFieldName, AccountFieldEmail, AccountFieldCategory, AccountFieldPassword:
		return true
	}
	return false
}

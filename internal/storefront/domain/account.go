package domain

import "time"

type Account struct {
	ID           string
	Email        string
	PasswordHash string // argon2 encoded, empty for passcode-only accounts
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether password login is enabled for the account.
func (a Account) HasPassword() bool { return a.PasswordHash != "" }

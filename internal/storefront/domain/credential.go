package domain

import "time"

// Authentication method references recorded in issued tokens.
const (
	AMRPasscode = "otp"
	AMRPassword = "pwd"
	AMRRefresh  = "refresh"
)

// CredentialPair is what a successful login returns. It is never persisted.
type CredentialPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

package domain

import "time"

// PasscodeTTL is how long an issued passcode authenticates.
const PasscodeTTL = 5 * time.Minute

// PasscodeLength is the number of decimal digits in a passcode.
const PasscodeLength = 6

// Passcode is a one-time login code. ExpiresAt is fixed when the passcode is
// built and never rewritten.
type Passcode struct {
	ID         string
	AccountID  string
	Code       string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	ConsumedAt *time.Time
}

// NewPasscode builds a passcode created at now and valid for PasscodeTTL.
func NewPasscode(id, accountID, code string, now time.Time) Passcode {
	now = now.UTC()
	return Passcode{
		ID:        id,
		AccountID: accountID,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(PasscodeTTL),
	}
}

// ExpiredAt reports whether the passcode no longer authenticates at now.
// The boundary instant itself counts as expired.
func (p Passcode) ExpiredAt(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

func (p Passcode) Consumed() bool { return p.ConsumedAt != nil }

package domain

import "slices"

// Caller is the authenticated principal of a request, as carried by a
// verified access token.
type Caller struct {
	AccountID    string
	Email        string
	Groups       []string
	Capabilities []string
}

func (c *Caller) Has(capability string) bool {
	return c != nil && slices.Contains(c.Capabilities, capability)
}

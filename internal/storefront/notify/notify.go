// Package notify delivers passcodes to account holders.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// Subject is the subject line of passcode messages.
const Subject = "Your One-Time Password (OTP)"

var ErrNoRecipient = errors.New("notify: recipient address is empty")

// Dispatcher sends a message to an address. Implementations make a single
// attempt; callers decide what a failure means.
type Dispatcher interface {
	Dispatch(ctx context.Context, address, message string) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, address, message string) error

func (f DispatcherFunc) Dispatch(ctx context.Context, address, message string) error {
	return f(ctx, address, message)
}

// PasscodeMessage renders the body sent for a freshly issued passcode.
func PasscodeMessage(code string) string {
	return fmt.Sprintf("Your login code is %s. It is valid for 5 minutes. Do not share this code.", code)
}

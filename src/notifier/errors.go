package notifier

import "fmt"

// LookupError means the user record could not be fetched, typically because
// the user was deleted between the event and the invocation.
type LookupError struct {
	User string
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("failed to look up user %s: %s", e.User, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// SecretAccessError means the shared temporary password secret could not be
// read.
type SecretAccessError struct {
	SecretID string
	Err      error
}

func (e *SecretAccessError) Error() string {
	return fmt.Sprintf("failed to read secret %s: %s", e.SecretID, e.Err)
}

func (e *SecretAccessError) Unwrap() error {
	return e.Err
}

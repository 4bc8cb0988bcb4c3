package mailbox

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrForbidden matches provider responses with status 403.
	ErrForbidden = errors.New("access forbidden")

	// ErrNoDomains is returned when domain discovery yields nothing usable.
	ErrNoDomains = errors.New("no mail domains available")

	// ErrNoToken is returned when an account backend is used without a token.
	ErrNoToken = errors.New("mailbox has no auth token")

	// ErrMalformed is returned when a response lacks an expected field.
	ErrMalformed = errors.New("malformed provider response")

	// ErrInvalidAddress is returned for addresses that are not local@domain.
	ErrInvalidAddress = errors.New("invalid mailbox address")
)

// ForbiddenHint is the advice shown when a provider answers 403.
const ForbiddenHint = "the provider blocked the request (HTTP 403); " +
	"configure a realistic browser User-Agent via ZPROFILE_HTTP_USER_AGENT"

// Error is a failed provider operation.
type Error struct {
	Provider   string
	Op         string
	StatusCode int // zero for transport and decoding failures
	Err        error
}

func (e *Error) Error() string {
	prefix := e.Provider
	if e.Op != "" {
		prefix += ": " + e.Op
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", prefix, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrForbidden) match on status code.
func (e *Error) Is(target error) bool {
	return target == ErrForbidden && e.StatusCode == http.StatusForbidden
}

// Wrap attaches provider and operation to err. Status codes recorded by the
// transport are kept.
func Wrap(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) && e.Op == "" {
		return &Error{Provider: provider, Op: op, StatusCode: e.StatusCode, Err: e.Err}
	}
	return &Error{Provider: provider, Op: op, Err: err}
}

// Hint returns actionable advice for err, or "" when there is none.
func Hint(err error) string {
	if errors.Is(err, ErrForbidden) {
		return ForbiddenHint
	}
	return ""
}

// Describe renders err for display, appending the hint when one applies.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if h := Hint(err); h != "" {
		return h
	}
	return err.Error()
}

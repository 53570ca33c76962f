package manager

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNetwork          = errors.New("network error")
	ErrAuthentication   = errors.New("authentication failed")
	ErrParse            = errors.New("unexpected page structure")
	ErrNotAuthenticated = errors.New("not logged in")
)

// NetworkError reports a failed request. StatusCode is zero when the
// request never got a response.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request %s: status code %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// AuthenticationError carries the raw login response for diagnostics.
type AuthenticationError struct {
	StatusCode int
	Body       string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("login rejected: status code %d", e.StatusCode)
}

func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthentication }

// ParseError means a fetched page lacks an element the scraper depends on,
// either because the site markup changed or the session is logged out.
type ParseError struct {
	URL     string
	Element string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: missing %s", e.URL, e.Element)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

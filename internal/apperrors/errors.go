package apperrors

import (
	"errors"
)

var (
	// Login rejected by the identity API. Deliberately carries no detail:
	// "user not found" and "wrong password" must be indistinguishable
	ErrInvalidCredentials = errors.New("cannot authenticate")

	// Login succeeded but the principal profile could not be resolved
	ErrProfileFetch = errors.New("cannot authenticate: profile fetch failed")

	ErrSessionNotFound = errors.New("session not found")
	ErrNoSessionCookie = errors.New("session cookie not found")
)

package models

import "time"

// ErrorKind classifies the last failed token operation on a record
type ErrorKind string

const (
	// ErrorNone means the record is healthy
	ErrorNone ErrorKind = ""

	// ErrorRefreshFailed means the last refresh exchange failed.
	// May be transient: the refresh token is retained so a later
	// access can try again.
	ErrorRefreshFailed ErrorKind = "refresh_failed"

	// ErrorNoRefreshToken means the access token expired and there is
	// no refresh token to renew it. Terminal until a fresh login.
	ErrorNoRefreshToken ErrorKind = "no_refresh_token"
)

// TokenRecord bundles the tokens, expiry and error state of one principal's
// session. Records are updated by replacement: every transition produces a
// new value, the previous one is never mutated in place.
type TokenRecord struct {
	// Bearer credential for the identity API, empty if invalidated
	AccessToken string

	// Renewal credential, empty if none was issued
	RefreshToken string

	// Instant after which AccessToken must not be trusted
	ExpiresAt time.Time

	// Identity this record belongs to, preserved across refreshes
	Principal Principal

	// Classification of the last failure, ErrorNone if healthy
	Error ErrorKind
}

// Usable reports whether the access token may still be used at the given instant
func (r TokenRecord) Usable(now time.Time) bool {
	return r.AccessToken != "" && now.Before(r.ExpiresAt)
}

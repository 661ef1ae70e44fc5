package models

// SessionUser is the identity part of a session view
type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// SessionView is the externally visible projection of a TokenRecord.
// User is populated even when the tokens are invalid, so the caller can
// still show who the session belongs to while asking to re-authenticate.
// Absent values render as JSON null.
type SessionView struct {
	AccessToken  *string     `json:"accessToken"`
	RefreshToken *string     `json:"refreshToken"`
	TokenExpiry  *int64      `json:"tokenExpiry"` // unix milliseconds
	User         SessionUser `json:"user"`
	Error        *string     `json:"error"`
}

package session

import (
	"github.com/mkravchenko/sessiongate/internal/models"
)

// Materialize projects a token record into the session shape exposed to the
// hosting application. Total function: every record, failed or not, yields a
// view, and the principal is always visible so a UI can greet the user while
// asking to log in again.
func Materialize(record models.TokenRecord) models.SessionView {
	view := models.SessionView{
		User: models.SessionUser{
			ID:    record.Principal.ID,
			Name:  record.Principal.Name,
			Email: record.Principal.Email,
		},
	}

	if record.AccessToken != "" {
		view.AccessToken = &record.AccessToken

		expiry := record.ExpiresAt.UnixMilli()
		view.TokenExpiry = &expiry
	}

	if record.RefreshToken != "" {
		view.RefreshToken = &record.RefreshToken
	}

	if record.Error != models.ErrorNone {
		kind := string(record.Error)
		view.Error = &kind
	}

	return view
}

package refresher

import (
	"context"
	"time"

	"github.com/mkravchenko/sessiongate/internal/identity"
	"github.com/mkravchenko/sessiongate/internal/logger"
	"github.com/mkravchenko/sessiongate/internal/models"
)

// Lifetime used when the refresh response omits expires_in
const defaultTokenLifetime = 3600 * time.Second

type refreshClient interface {
	Refresh(ctx context.Context, refreshToken string) (identity.TokenResponse, error)
}

// Orchestrator keeps token records fresh. It is the only component allowed
// to move a record between its lifecycle states.
type Orchestrator struct {
	client refreshClient
	logger logger.Logger
	now    func() time.Time
}

func New(client refreshClient, l logger.Logger) *Orchestrator {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Orchestrator{
		client: client,
		logger: l,
		now:    time.Now,
	}
}

// EnsureValid returns a record whose state reflects one validation pass:
//
//   - access token present and not expired: the record is returned unchanged
//   - expired but a refresh token is known: one refresh exchange; on success
//     the new access token and expiry are set, the refresh token is rotated
//     only if the response carries a new one; on failure the access token is
//     cleared and the error is set to refresh_failed, the refresh token is
//     kept so a later access may try again
//   - expired and no refresh token: access token cleared, error set to
//     no_refresh_token; terminal until a fresh login
//
// The input record is never mutated and the principal never changes here.
// Exactly one refresh attempt is made per call, retries happen naturally on
// subsequent session accesses.
func (o *Orchestrator) EnsureValid(ctx context.Context, record models.TokenRecord) models.TokenRecord {
	if record.Usable(o.now()) {
		return record
	}

	if record.RefreshToken == "" {
		record.AccessToken = ""
		record.Error = models.ErrorNoRefreshToken
		return record
	}

	tokens, err := o.client.Refresh(ctx, record.RefreshToken)
	if err != nil {
		o.logger.Warn("Token refresh failed", "principal_id", record.Principal.ID, "error", err)
		record.AccessToken = ""
		record.Error = models.ErrorRefreshFailed
		return record
	}

	record.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		record.RefreshToken = tokens.RefreshToken
	}
	record.ExpiresAt = o.now().Add(tokenLifetime(tokens.ExpiresIn))
	record.Error = models.ErrorNone

	o.logger.Debug("Token refreshed", "principal_id", record.Principal.ID, "expires_at", record.ExpiresAt)
	return record
}

func tokenLifetime(expiresIn int64) time.Duration {
	if expiresIn <= 0 {
		return defaultTokenLifetime
	}
	return time.Duration(expiresIn) * time.Second
}

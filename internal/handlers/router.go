package handlers

import (
	"context"
	"net/http"

	"github.com/mkravchenko/sessiongate/internal/handlers/middleware"
	"github.com/mkravchenko/sessiongate/internal/logger"
	"github.com/mkravchenko/sessiongate/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(sessions sessionService, cookies cookieManager, logger logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /api/session/login", handleLogin(sessions, cookies, logger))
	mux.Handle("GET /api/session", handleSession(sessions, cookies, logger))
	mux.Handle("POST /api/session/logout", handleLogout(sessions, cookies, logger))

	return chain(mux,
		middleware.LoggerMiddleware(logger),
	)
}

type sessionService interface {
	// Authenticate credentials and start new session
	// Has to return apperrors.ErrInvalidCredentials or apperrors.ErrProfileFetch on failure
	Login(ctx context.Context, email string, password string) (string, models.SessionView, error)

	// Return the session view, refreshing the access token first if needed
	// Has to return apperrors.ErrSessionNotFound if the session is unknown
	Session(ctx context.Context, sessionID string) (models.SessionView, error)

	// Discard the session record
	Logout(ctx context.Context, sessionID string) error
}

type cookieManager interface {
	// Sign the session ID into a fresh cookie
	Issue(sessionID string) (*http.Cookie, error)

	// Extract and verify the session ID from the request
	// Has to return apperrors.ErrNoSessionCookie if absent or not verifiable
	SessionID(r *http.Request) (string, error)

	// Cookie that makes the browser drop the session
	Clear() *http.Cookie
}

package handlers

import (
	"net/http"

	"github.com/mkravchenko/sessiongate/internal/handlers/render"
	"github.com/mkravchenko/sessiongate/internal/logger"
)

func handleLogin(sessions sessionService, cookies cookieManager, logger logger.Logger) http.Handler {
	type request struct {
		// Opaque strings, format checks belong to the identity API
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			logger.Debug("Login request rejected", "error", err)
			return
		}

		sessionID, view, err := sessions.Login(r.Context(), data.Email, data.Password)
		if err != nil {
			// Same answer for every authentication failure, resist user enumeration
			logger.Info("Login failed", "error", err)
			render.ServiceError(w, "Cannot authenticate", http.StatusUnauthorized)
			return
		}

		cookie, err := cookies.Issue(sessionID)
		if err != nil {
			logger.Error("Failed to issue session cookie", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, cookie)
		render.JSON(w, view)
	})
}

func handleSession(sessions sessionService, cookies cookieManager, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := cookies.SessionID(r)
		if err != nil {
			render.ServiceError(w, "No active session", http.StatusUnauthorized)
			return
		}

		view, err := sessions.Session(r.Context(), sessionID)
		if err != nil {
			logger.Debug("Session lookup failed", "error", err)
			render.ServiceError(w, "No active session", http.StatusUnauthorized)
			return
		}

		// Token failures are not an HTTP error: the view carries the error
		// field and still names the principal, the UI decides what to do
		render.JSON(w, view)
	})
}

func handleLogout(sessions sessionService, cookies cookieManager, logger logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := cookies.SessionID(r)
		if err == nil {
			if err := sessions.Logout(r.Context(), sessionID); err != nil {
				logger.Warn("Failed to discard session", "error", err)
			}
		}

		http.SetCookie(w, cookies.Clear())
		render.JSON(w, response{Message: "Logged out"})
	})
}

package identity

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identityAPI starts a mock identity API with the given handler
func identityAPI(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, time.Second, nil)
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr, "error should be an APIError")
	require.Equal(t, code, apiErr.Code)
}

func Test_Client_Login(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		client := identityAPI(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/auth/login", r.URL.Path)

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.JSONEq(t, `{"email": "a@x.com", "password": "p"}`, string(body))

			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "AT1",
				"refresh_token": "RT1",
				"expires_in":    60,
			})
		})

		tokens, err := client.Login(t.Context(), "a@x.com", "p")

		require.NoError(t, err)
		assert.Equal(t, "AT1", tokens.AccessToken)
		assert.Equal(t, "RT1", tokens.RefreshToken)
		assert.Equal(t, int64(60), tokens.ExpiresIn)
	})

	t.Run("ok without optional fields", func(t *testing.T) {
		client := identityAPI(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"access_token": "AT1"}`))
		})

		tokens, err := client.Login(t.Context(), "a@x.com", "p")

		require.NoError(t, err)
		assert.Equal(t, "AT1", tokens.AccessToken)
		assert.Empty(t, tokens.RefreshToken)
		assert.Zero(t, tokens.ExpiresIn)
	})

	t.Run("rejected status", func(t *testing.T) {
		client := identityAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := client.Login(t.Context(), "a@x.com", "wrong")

		requireCode(t, err, CodeRejected)
	})

	t.Run("missing access token", func(t *testing.T) {
		client := identityAPI(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"refresh_token": "RT1"}`))
		})

		_, err := client.Login(t.Context(), "a@x.com", "p")

		requireCode(t, err, CodeBadResponse)
	})

	t.Run("body is not json", func(t *testing.T) {
		client := identityAPI(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>oops</html>`))
		})

		_, err := client.Login(t.Context(), "a@x.com", "p")

		requireCode(t, err, CodeBadResponse)
	})

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		client := NewClient(srv.URL, time.Second, nil)
		srv.Close()

		_, err := client.Login(t.Context(), "a@x.com", "p")

		requireCode(t, err, CodeTransport)
	})

	t.Run("timeout treated as transport failure", func(t *testing.T) {
		client := identityAPI(t, func(w http.ResponseWriter, r *http.Request) {
			// Hold the request until the client gives up. The body must be
			// drained first or the server never notices the client is gone
			// and r.Context() is never cancelled, deadlocking srv.Close.
			_, _ = io.Copy(io.Discard, r.Body)
			<-r.Context().Done()
		})
		client.timeout = 50 * time.Millisecond

		_, err := client.Login(t.Context(), "a@x.com", "p")

		requireCode(t, err, CodeTransport)
	})
}

func Test_Client_Me(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		client := identityAPI(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			require.Equal(t, "/auth/me", r.URL.Path)
			require.Equal(t, "Bearer AT1", r.Header.Get("Authorization"))

			_, _ = w.Write([]byte(`{"id": "42", "email": "a@x.com", "name": "Alice"}`))
		})

		profile, err := client.Me(t.Context(), "AT1")

		require.NoError(t, err)
		assert.Equal(t, "42", profile.ID)
		assert.Equal(t, "a@x.com", profile.Email)
		assert.Equal(t, "Alice", profile.Name)
	})

	t.Run("name is optional", func(t *testing.T) {
		client := identityAPI(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id": "42", "email": "a@x.com"}`))
		})

		profile, err := client.Me(t.Context(), "AT1")

		require.NoError(t, err)
		assert.Empty(t, profile.Name)
	})

	t.Run("missing required fields", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{name: "no id", body: `{"email": "a@x.com"}`},
			{name: "no email", body: `{"id": "42"}`},
			{name: "empty object", body: `{}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				client := identityAPI(t, func(w http.ResponseWriter, r *http.Request) {
					_, _ = w.Write([]byte(tt.body))
				})

				_, err := client.Me(t.Context(), "AT1")

				requireCode(t, err, CodeBadResponse)
			})
		}
	})

	t.Run("rejected status", func(t *testing.T) {
		client := identityAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})

		_, err := client.Me(t.Context(), "AT1")

		requireCode(t, err, CodeRejected)
	})
}

func Test_Client_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("ok with rotation", func(t *testing.T) {
		client := identityAPI(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/refresh", r.URL.Path)

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.JSONEq(t, `{"refresh_token": "RT1"}`, string(body))

			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "AT2",
				"refresh_token": "RT2",
				"expires_in":    60,
			})
		})

		tokens, err := client.Refresh(t.Context(), "RT1")

		require.NoError(t, err)
		assert.Equal(t, "AT2", tokens.AccessToken)
		assert.Equal(t, "RT2", tokens.RefreshToken)
	})

	t.Run("ok without rotation", func(t *testing.T) {
		client := identityAPI(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"access_token": "AT2", "expires_in": 60}`))
		})

		tokens, err := client.Refresh(t.Context(), "RT1")

		require.NoError(t, err)
		assert.Equal(t, "AT2", tokens.AccessToken)
		assert.Empty(t, tokens.RefreshToken, "refresh token rotation is optional")
	})

	t.Run("rejected status", func(t *testing.T) {
		client := identityAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := client.Refresh(t.Context(), "RT1")

		requireCode(t, err, CodeRejected)
	})
}

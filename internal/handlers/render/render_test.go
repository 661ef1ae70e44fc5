package render

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, handler http.HandlerFunc) (*http.Response, string) {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(body)
}

func TestRender_JSON(t *testing.T) {
	resp, body := get(t, func(w http.ResponseWriter, _ *http.Request) {
		JSON(w, map[string]any{"key1": 1, "key2": "222"})
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"key1": 1, "key2": "222"}`, body)
}

func TestRender_ServiceError(t *testing.T) {
	resp, body := get(t, func(w http.ResponseWriter, _ *http.Request) {
		ServiceError(w, "something terrible happened", http.StatusForbidden)
	})

	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.JSONEq(t, `
		{
			"error": "service_error",
			"message": "something terrible happened"
		}`, body)
}

func TestRender_BindAndValidate(t *testing.T) {
	type loginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	post := func(t *testing.T, requestBody string) (*http.Response, string, *loginRequest) {
		t.Helper()

		var bound *loginRequest
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			value, err := BindAndValidate[loginRequest](w, r)
			if err != nil {
				return
			}
			bound = &value
			JSON(w, map[string]string{"message": "ok"})
		}))
		t.Cleanup(ts.Close)

		resp, err := http.Post(ts.URL, "application/json", strings.NewReader(requestBody))
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		return resp, string(body), bound
	}

	t.Run("valid body", func(t *testing.T) {
		resp, _, bound := post(t, `{"email": "a@x.com", "password": "p"}`)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotNil(t, bound)
		assert.Equal(t, "a@x.com", bound.Email)
		assert.Equal(t, "p", bound.Password)
	})

	t.Run("broken json", func(t *testing.T) {
		resp, body, bound := post(t, `not-json`)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Nil(t, bound)
		assert.Contains(t, body, DecodingErrorType)
	})

	t.Run("wrong field type", func(t *testing.T) {
		resp, body, _ := post(t, `{"email": "a@x.com", "password": 42}`)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "Invalid data type for field 'password'")
	})

	t.Run("missing required field reported on json name", func(t *testing.T) {
		resp, body, bound := post(t, `{"email": "a@x.com"}`)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Nil(t, bound)
		assert.JSONEq(t, `
			{
				"error": "validation_failed",
				"message": "Request validation failed",
				"fields": {"password": "This field is required"}
			}`, body)
	})
}

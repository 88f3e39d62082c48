package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samandar90/Kamilovs-CRM/pkg/config"
	"github.com/Samandar90/Kamilovs-CRM/pkg/logger"
)

func testAuthenticator() *Authenticator {
	return New(config.AuthConfig{
		Username:  "admin",
		Password:  "secret",
		JWTSecret: "test-signing-key",
		TokenTTL:  3600,
	}, logger.New("debug"))
}

func TestLoginAndValidate(t *testing.T) {
	a := testAuthenticator()

	token, err := a.Login("admin", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.NoError(t, a.Validate(token))
}

func TestLogin_WrongCredentials(t *testing.T) {
	a := testAuthenticator()

	_, err := a.Login("admin", "wrong")
	assert.Error(t, err)

	_, err = a.Login("root", "secret")
	assert.Error(t, err)
}

func TestValidate_RejectsGarbageAndForeignTokens(t *testing.T) {
	a := testAuthenticator()

	assert.Error(t, a.Validate("not-a-token"))

	other := New(config.AuthConfig{
		Username:  "admin",
		Password:  "secret",
		JWTSecret: "different-key",
		TokenTTL:  3600,
	}, logger.New("debug"))
	foreign, err := other.Login("admin", "secret")
	require.NoError(t, err)

	assert.Error(t, a.Validate(foreign))
}

func TestMiddleware(t *testing.T) {
	a := testAuthenticator()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := a.Middleware(next)

	t.Run("no token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/appointments", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := a.Login("admin", "secret")
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/appointments", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("exempt paths pass through", func(t *testing.T) {
		for _, path := range []string{"/api/login", "/health", "/metrics"} {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
			assert.Equal(t, http.StatusOK, rec.Code, path)
		}
	})
}

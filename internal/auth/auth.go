package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Samandar90/Kamilovs-CRM/pkg/config"
	"github.com/Samandar90/Kamilovs-CRM/pkg/logger"
	"github.com/Samandar90/Kamilovs-CRM/pkg/types"
)

// Authenticator guards the API with a single front-desk credential pair.
// There is one user and one role; per-user accounts are out of scope for a
// one-clinic tool.
type Authenticator struct {
	config config.AuthConfig
	logger *logger.Logger
}

// New creates an authenticator from the configured credentials.
func New(cfg config.AuthConfig, log *logger.Logger) *Authenticator {
	return &Authenticator{config: cfg, logger: log}
}

// Login checks the credential pair and issues a signed token.
func (a *Authenticator) Login(username, password string) (string, error) {
	if username != a.config.Username || password != a.config.Password {
		return "", types.NewValidationError(types.ErrCodeUnauthorized, "invalid credentials", nil)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(time.Duration(a.config.TokenTTL) * time.Second).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.config.JWTSecret))
	if err != nil {
		return "", types.NewInternalError(types.ErrCodeInternal, "failed to sign token", err)
	}

	a.logger.WithFields(map[string]interface{}{"username": username}).Info("Login successful")
	return signed, nil
}

// Validate parses and verifies a token string.
func (a *Authenticator) Validate(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(a.config.JWTSecret), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}

// exemptPaths can be reached without a token: the login endpoint itself plus
// the probes.
var exemptPaths = map[string]bool{
	"/api/login": true,
	"/health":    true,
	"/metrics":   true,
}

// Middleware rejects requests without a valid bearer token.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if exemptPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			a.unauthorized(w, "missing bearer token")
			return
		}

		if err := a.Validate(strings.TrimPrefix(header, "Bearer ")); err != nil {
			a.logger.WithFields(map[string]interface{}{"path": r.URL.Path, "error": err}).Warn("Rejected request with invalid token")
			a.unauthorized(w, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    types.ErrCodeUnauthorized,
			"message": message,
		},
	})
}

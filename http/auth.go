package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

const (
	ErrTypeUnauthorized = "unauthorized"
)

// VerifyAdminToken rejects requests that do not carry the given bearer
// token. An empty token disables the check.
func VerifyAdminToken(token string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		if subtle.ConstantTimeCompare([]byte(bearerToken(r)), []byte(token)) != 1 {
			err := errors.New("invalid admin token").
				WithType(ErrTypeUnauthorized).
				WithTag("path", r.URL.Path).
				WithTag("remote_addr", r.RemoteAddr)

			logs.Warn(err)
			writeError(w, http.StatusUnauthorized, err)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > len("bearer ") && strings.EqualFold(auth[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(auth[len("bearer "):])
	}
	return ""
}

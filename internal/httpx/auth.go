package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/profilevault/internal/auth"
	"github.com/dmitrijs2005/profilevault/internal/common"
	"github.com/dmitrijs2005/profilevault/internal/logging"
)

type ctxKey string

const identityKey ctxKey = "identity"

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get(common.AuthorizationHeaderName), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireBearer rejects requests without a bearer token. The token itself is
// not checked, which suits services that only forward it.
func RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := BearerToken(r); !ok {
			WriteError(w, http.StatusForbidden, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Authenticate verifies the bearer token and stores the identity in the
// request context.
func Authenticate(v TokenVerifier, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				WriteError(w, http.StatusForbidden, "Not authenticated")
				return
			}

			id, err := v.Verify(token)
			if err != nil {
				log.Debug(r.Context(), "token rejected", "path", r.URL.Path, "error", err)
				detail := "Invalid token"
				if errors.Is(err, common.ErrTokenExpired) {
					detail = "Token expired"
				}
				w.Header().Set("WWW-Authenticate", common.BearerScheme)
				WriteError(w, http.StatusUnauthorized, detail)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
		})
	}
}

// IdentityFromContext returns the identity stored by Authenticate.
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	return id, ok
}

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// AccessTokenParam is the query parameter accepted by RequireStreamAuth.
const AccessTokenParam = "access_token"

// SetIdentity returns a context carrying the caller identity. Used by auth middleware.
func SetIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the authenticated caller from the context, if present.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	if !ok || id.Anonymous() {
		return domain.Identity{}, false
	}
	return id, true
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the identity in the request context.
// If the token is missing or invalid, it responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return requireAuth(verifier, logger, false)
}

// RequireStreamAuth is RequireAuth that also accepts the token in the access_token
// query parameter, for websocket clients that cannot set headers.
func RequireStreamAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return requireAuth(verifier, logger, true)
}

func requireAuth(verifier domain.TokenVerifier, logger *slog.Logger, allowQuery bool) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, msg := bearerToken(r, allowQuery)
			if msg != "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, msg)
				return
			}
			id, err := verifier.Verify(token)
			if err != nil {
				if logger != nil {
					logger.DebugContext(r.Context(), "token rejected", "path", r.URL.Path, "err", err)
				}
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			r = r.WithContext(SetIdentity(r.Context(), id))
			next(w, r)
		}
	}
}

// Authenticate sets the identity when a valid Bearer token is present and otherwise
// passes the request on anonymously. Handlers using it answer 401 themselves.
func Authenticate(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if token, msg := bearerToken(r, false); msg == "" {
				if id, err := verifier.Verify(token); err == nil {
					r = r.WithContext(SetIdentity(r.Context(), id))
				} else if logger != nil {
					logger.DebugContext(r.Context(), "token rejected", "path", r.URL.Path, "err", err)
				}
			}
			next(w, r)
		}
	}
}

// bearerToken extracts the token, or returns the 401 message explaining why it could not.
func bearerToken(r *http.Request, allowQuery bool) (string, string) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		if allowQuery {
			if token := strings.TrimSpace(r.URL.Query().Get(AccessTokenParam)); token != "" {
				return token, ""
			}
		}
		return "", "missing authorization header"
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", "invalid authorization format"
	}
	token := strings.TrimSpace(auth[len(prefix):])
	if token == "" {
		return "", "missing token"
	}
	return token, ""
}

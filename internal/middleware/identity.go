package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/otsyhq/otsy-backend/internal/model/identity"
)

// DeviceKeyHeader carries the anonymous device key in both directions: the
// client sends its stored key, and freshly minted keys are echoed back so the
// client can persist them.
const DeviceKeyHeader = "X-Device-Key"

type contextKey struct{}

// TokenVerifier resolves a bearer token to a stable user id. Production wires
// the auth provider's verifier; tests use a stub.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (userID string, err error)
}

// Identity resolves the caller to exactly one identity per request:
// a valid bearer token yields an authenticated identity, otherwise the
// device key header (minted on first contact) yields an anonymous one.
// Invalid tokens fall back to the device path rather than failing the
// request; handlers that require login check IsAuthenticated themselves.
func Identity(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := resolve(r, verifier, logger)
			if id.Kind() == identity.KindAnonymous {
				w.Header().Set(DeviceKeyHeader, id.ID())
			}
			ctx := context.WithValue(r.Context(), contextKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolve(r *http.Request, verifier TokenVerifier, logger *zap.Logger) identity.Identity {
	if verifier != nil {
		if token := bearerToken(r); token != "" {
			userID, err := verifier.Verify(r.Context(), token)
			if err == nil && userID != "" {
				return identity.Authenticated(userID)
			}
			logger.Debug("bearer token rejected", zap.Error(err))
		}
	}

	if key := strings.TrimSpace(r.Header.Get(DeviceKeyHeader)); key != "" {
		return identity.Anonymous(key)
	}
	return identity.Anonymous(uuid.NewString())
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// FromContext returns the identity attached by the Identity middleware.
func FromContext(ctx context.Context) (identity.Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(identity.Identity)
	return id, ok && id.Valid()
}

// WithIdentity attaches an identity to a context. Handler tests use it to
// bypass the middleware.
func WithIdentity(ctx context.Context, id identity.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

package transport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hmesh/presale-dashboard/internal/repository"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

const bearerChallenge = `Bearer realm="presale-dashboard"`

type clientKey struct{}

// KeyResolver resolves the API client owning a key. Unknown keys return
// repository.ErrNotFound or ErrUnauthorized.
type KeyResolver interface {
	Resolve(ctx context.Context, key string) (string, error)
}

// ClientFromContext returns the API client name from context, if present.
func ClientFromContext(ctx context.Context) (string, bool) {
	client, ok := ctx.Value(clientKey{}).(string)
	return client, ok
}

// AuthMiddleware admits requests carrying a known API key as a bearer token.
// Rejections are JSON-RPC error bodies with a 401 status, or 503 when the key
// store itself fails.
func AuthMiddleware(resolver KeyResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				rejectUnauthorized(w, "missing bearer token")
				return
			}

			client, err := resolver.Resolve(r.Context(), token)
			switch {
			case errors.Is(err, repository.ErrNotFound), errors.Is(err, ErrUnauthorized):
				rejectUnauthorized(w, "invalid bearer token")
				return
			case err != nil:
				logger.Error("resolving api key", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, Response{
					JSONRPC: "2.0",
					Error:   &Error{Code: ErrInternal, Message: "authentication unavailable"},
				})
				return
			case client == "":
				rejectUnauthorized(w, "invalid bearer token")
				return
			}

			ctx := context.WithValue(r.Context(), clientKey{}, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the credentials of a Bearer authorization header. The
// scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func rejectUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", bearerChallenge)
	writeJSON(w, http.StatusUnauthorized, Response{
		JSONRPC: "2.0",
		Error:   &Error{Code: ErrApplication, Message: message, Data: ErrUnauthorized.Error()},
	})
}

package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/hmesh/presale-dashboard/internal/mcp"
)

type identityKey struct{}

// IdentityFromContext returns the caller identity from context.
func IdentityFromContext(ctx context.Context) mcp.Identity {
	id, _ := ctx.Value(identityKey{}).(mcp.Identity)
	return id
}

// IdentityMiddleware reads X-Wallet-Address and X-Chain-Id and stores them in
// context. Both headers are optional.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := mcp.Identity{
			Wallet:  strings.TrimSpace(r.Header.Get(mcp.WalletHeader)),
			ChainID: mcp.ParseChainID(r.Header.Get(mcp.ChainHeader)),
		}
		ctx := context.WithValue(r.Context(), identityKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

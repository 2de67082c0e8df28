package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const (
	clientKey contextKey = iota
	identityKey
)

// Header names carrying the caller identity over HTTP.
const (
	WalletHeader = "X-Wallet-Address"
	ChainHeader  = "X-Chain-Id"
)

// getClient extracts the authenticated API client from context.
func getClient(ctx context.Context) string {
	v, _ := ctx.Value(clientKey).(string)
	return v
}

// getIdentity extracts the caller identity from context.
func getIdentity(ctx context.Context) Identity {
	v, _ := ctx.Value(identityKey).(Identity)
	return v
}

// KeyResolver resolves an API client name from a bearer token.
type KeyResolver interface {
	Resolve(ctx context.Context, key string) (string, error)
}

// authMiddleware implements bearer token authentication as MCP middleware.
func authMiddleware(resolver KeyResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("unauthorized: missing headers")
			}

			auth := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				return nil, fmt.Errorf("unauthorized: missing bearer token")
			}

			client, err := resolver.Resolve(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}
			if client == "" {
				return nil, fmt.Errorf("unauthorized: invalid bearer token")
			}

			ctx = context.WithValue(ctx, clientKey, client)
			return next(ctx, method, req)
		}
	}
}

// identityMiddleware reads the wallet and chain from the X-Wallet-Address and
// X-Chain-Id headers (HTTP) or from _meta.wallet and _meta.chain_id (stdio).
func identityMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			var id Identity

			extra := req.GetExtra()
			if extra != nil && extra.Header != nil {
				id.Wallet = strings.TrimSpace(extra.Header.Get(WalletHeader))
				id.ChainID = ParseChainID(extra.Header.Get(ChainHeader))
			}

			// Some notifications (like "initialized") have nil params, and
			// GetMeta panics on a nil underlying value.
			if id.Wallet == "" || id.ChainID == 0 {
				if params := req.GetParams(); params != nil {
					func() {
						defer func() { recover() }()
						meta := params.GetMeta()
						if meta == nil {
							return
						}
						if w, ok := meta["wallet"].(string); ok && id.Wallet == "" {
							id.Wallet = w
						}
						if id.ChainID == 0 {
							id.ChainID = metaChainID(meta["chain_id"])
						}
					}()
				}
			}

			ctx = context.WithValue(ctx, identityKey, id)
			return next(ctx, method, req)
		}
	}
}

// ParseChainID accepts decimal or 0x-prefixed hex chain ids, as wallets
// report either.
func ParseChainID(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	var (
		v   int64
		err error
	)
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		v, err = strconv.ParseInt(rest, 16, 64)
	} else {
		v, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func metaChainID(v any) int64 {
	switch c := v.(type) {
	case float64:
		return int64(c)
	case string:
		return ParseChainID(c)
	default:
		return 0
	}
}

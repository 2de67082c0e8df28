package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/hmesh/presale-dashboard/internal/domain/claim"
	"github.com/hmesh/presale-dashboard/internal/domain/promoter"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func connectTestServer(t *testing.T, handler *Handler) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := NewServer(Config{
		Handler:       handler,
		TransportMode: "stdio",
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })

	return cs
}

func toolText(t *testing.T, res *sdkmcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestServer_ListsCatalog(t *testing.T) {
	cs := connectTestServer(t, newTestHandler(Services{}, nil))

	tools, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	for _, def := range buildToolCatalog() {
		require.Contains(t, names, def.Name)
	}
}

func TestServer_CallTool(t *testing.T) {
	ctx := context.Background()
	var seen struct {
		chainID int64
		address string
	}
	handler := newTestHandler(Services{
		Promoters: promoterStub{
			getFn: func(_ context.Context, chainID int64, address string) (*promoter.Stats, error) {
				seen.chainID = chainID
				seen.address = address
				return &promoter.Stats{Address: address, PromoCode: "TEAM"}, nil
			},
		},
		Claims: claimStub{
			overviewFn: func(context.Context, int64, string, int64) (*claim.Overview, error) {
				return nil, claim.ErrInvalidWallet
			},
		},
	}, nil)
	cs := connectTestServer(t, handler)

	res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{Name: "list_networks", Arguments: map[string]any{}})
	require.NoError(t, err)
	require.False(t, res.IsError)
	var networks NetworksResponse
	require.NoError(t, json.Unmarshal([]byte(toolText(t, res)), &networks))
	require.Len(t, networks.Networks, 2)

	// Identity travels in _meta over stdio.
	res, err = cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Meta: sdkmcp.Meta{"wallet": testWallet, "chain_id": 1},
		Name: "get_promoter_stats",
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, int64(1), seen.chainID)
	require.Equal(t, testWallet, seen.address)

	res, err = cs.CallTool(ctx, &sdkmcp.CallToolParams{Name: "get_claim_overview", Arguments: map[string]any{}})
	require.NoError(t, err)
	require.True(t, res.IsError)
	var apiErr APIError
	require.NoError(t, json.Unmarshal([]byte(toolText(t, res)), &apiErr))
	require.Equal(t, "INVALID_WALLET", apiErr.Code)
	require.NotEmpty(t, apiErr.RecoveryHint)
}

func TestServer_DocResources(t *testing.T) {
	cs := connectTestServer(t, newTestHandler(Services{}, nil))

	for _, doc := range docResources {
		res, err := cs.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: doc.URI})
		require.NoError(t, err)
		require.Len(t, res.Contents, 1)
		require.Equal(t, "text/markdown", res.Contents[0].MIMEType)
		require.Equal(t, doc.Content, res.Contents[0].Text)
	}
}

func TestParseChainID(t *testing.T) {
	require.Equal(t, int64(1), ParseChainID("1"))
	require.Equal(t, int64(11155111), ParseChainID("0xaa36a7"))
	require.Equal(t, int64(0), ParseChainID(""))
	require.Equal(t, int64(0), ParseChainID("sepolia"))
	require.Equal(t, int64(0), ParseChainID("-4"))
}

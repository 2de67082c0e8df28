// Package testserver runs the full HTTP stack against an in-memory mirror
// loaded from a fixed ledger snapshot.
package testserver

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/hmesh/presale-dashboard/internal/chain"
	"github.com/hmesh/presale-dashboard/internal/config"
	"github.com/hmesh/presale-dashboard/internal/domain/claim"
	"github.com/hmesh/presale-dashboard/internal/domain/promoter"
	"github.com/hmesh/presale-dashboard/internal/domain/round"
	"github.com/hmesh/presale-dashboard/internal/domain/submission"
	"github.com/hmesh/presale-dashboard/internal/ledger"
	"github.com/hmesh/presale-dashboard/internal/mcp"
	"github.com/hmesh/presale-dashboard/internal/sqlite"
	"github.com/hmesh/presale-dashboard/internal/transport"
)

// Snapshot is the ledger fixture every test server starts from. At Now the
// wallet's round 1 purchase is past its cliff with one period still locked,
// and round 2 is open and still in its cliff.
//
//go:embed testdata/snapshot.yaml
var Snapshot []byte

// Fixture values matching Snapshot.
const (
	Now            int64 = 1_700_000_000
	ChainID              = config.ChainSepolia
	Wallet               = "0x00000000000000000000000000000000000000aa"
	Owner                = "0x00000000000000000000000000000000000000ff"
	Promoter             = "0x00000000000000000000000000000000000000bb"
	PromoCode            = "HMESH10"
	PresaleAddress       = "0x1111111111111111111111111111111111111111"
	USDTAddress          = "0x2222222222222222222222222222222222222222"
)

type TestServer struct {
	Server  *httptest.Server
	DB      *sqlite.DB
	Token   string
	Handler *mcp.Handler
}

// Chains returns the built-in networks with the presale deployed on Sepolia.
func Chains() []config.ChainConfig {
	chains := config.Default().Chains
	for i := range chains {
		if chains[i].ChainID == ChainID {
			chains[i].PresaleAddress = PresaleAddress
			chains[i].USDT = USDTAddress
		}
	}
	return chains
}

func New(t *testing.T, token string) *TestServer {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	mirror := sqlite.NewLedgerRepository(db)
	states, err := ledger.ParseSnapshot(Snapshot)
	require.NoError(t, err)
	require.NoError(t, ledger.Import(ctx, mirror, states, nil))

	reader := ledger.NewCachedReader(mirror, time.Minute, nil)
	networks := chain.NewRegistry(Chains())

	claims := claim.NewService(reader, nil, nil)
	submissions := submission.NewService(
		sqlite.NewSubmissionRepository(db),
		reader,
		networks,
		claims,
		nil,
		submission.Options{DefaultSlippage: 3, MaxSlippage: 10},
		nil,
	)
	handler := mcp.NewHandler(mcp.Services{
		Rounds:      round.NewService(reader, nil),
		Claims:      claims,
		Promoters:   promoter.NewService(reader, nil),
		Submissions: submissions,
		Networks:    networks,
	}, mcp.HandlerOptions{
		DefaultChainID: ChainID,
		Clock:          func() time.Time { return time.Unix(Now, 0) },
	})

	apiKeys := sqlite.NewAPIKeyRepository(db)
	require.NoError(t, apiKeys.Add(ctx, token, "test-client", "functional tests"))

	mcpServer := mcp.NewServer(mcp.Config{
		Handler:       handler,
		Resolver:      apiKeys,
		AuthEnabled:   true,
		TransportMode: "http",
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		nil,
	)

	server := httptest.NewServer(transport.NewServer(handler, transport.Options{
		Auth: transport.AuthMiddleware(apiKeys, nil),
		MCP:  mcpHandler,
	}))

	t.Cleanup(func() {
		server.Close()
		reader.Stop()
		_ = db.Close()
	})

	return &TestServer{
		Server:  server,
		DB:      db,
		Token:   token,
		Handler: handler,
	}
}

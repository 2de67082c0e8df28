package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/hmesh/presale-dashboard/internal/chain"
	"github.com/hmesh/presale-dashboard/internal/domain/claim"
	"github.com/hmesh/presale-dashboard/internal/domain/promoter"
	"github.com/hmesh/presale-dashboard/internal/domain/round"
	"github.com/hmesh/presale-dashboard/internal/domain/submission"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// RoundService defines round and presale operations needed by MCP.
type RoundService interface {
	Status(ctx context.Context, chainID int64, wallet string) (*round.PresaleStatus, error)
	Get(ctx context.Context, chainID int64, id uint32) (*round.Round, error)
	List(ctx context.Context, chainID int64) ([]round.Round, error)
	Current(ctx context.Context, chainID int64, now int64) (*round.Round, error)
	EstimateTokens(ctx context.Context, chainID int64, id uint32, payment string) (*round.Estimate, error)
}

// ClaimService defines vesting schedule operations needed by MCP.
type ClaimService interface {
	Schedule(ctx context.Context, chainID int64, wallet string, roundID uint32, now int64) (*claim.Schedule, error)
	Overview(ctx context.Context, chainID int64, wallet string, now int64) (*claim.Overview, error)
}

// PromoterService defines promoter operations needed by MCP.
type PromoterService interface {
	Get(ctx context.Context, chainID int64, address string) (*promoter.Stats, error)
	GetByCode(ctx context.Context, chainID int64, code string) (*promoter.Stats, error)
}

// SubmissionService defines buy and claim operations needed by MCP.
type SubmissionService interface {
	PrepareBuy(ctx context.Context, req submission.BuyRequest) (*submission.Submission, error)
	PrepareClaim(ctx context.Context, req submission.ClaimRequest) (*submission.Submission, error)
	Report(ctx context.Context, req submission.ReportRequest) (*submission.Submission, error)
	List(ctx context.Context, wallet string, opts submission.ListOptions) ([]submission.Submission, error)
}

// NetworkRegistry lists the chains the dashboard serves.
type NetworkRegistry interface {
	Network(chainID int64) (*chain.Network, error)
	Networks() []chain.Network
}

// RequestRecorder observes handled requests.
type RequestRecorder interface {
	RequestHandled(method, outcome string, elapsed time.Duration)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Rounds      RoundService
	Claims      ClaimService
	Promoters   PromoterService
	Submissions SubmissionService
	Networks    NetworkRegistry
}

// Config contains server configuration.
type Config struct {
	Handler       *Handler
	Resolver      KeyResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "presale-dashboard",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Middleware added last runs first: auth, then identity, then logging.
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))
	server.AddReceivingMiddleware(identityMiddleware())
	// Stdio mode never authenticates; it is a local process.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	}

	registerTools(server, cfg.Handler)

	return server
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/hmesh/presale-dashboard/internal/config"
	"github.com/hmesh/presale-dashboard/internal/mcp"
	"github.com/hmesh/presale-dashboard/internal/transport"
)

const shutdownTimeout = 5 * time.Second

var (
	serveTransport string
	serveSnapshot  string
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP and JSON-RPC server",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveTransport, "transport", "", "transport mode: http or stdio (default from config)")
	cmd.Flags().StringVar(&serveSnapshot, "snapshot", "", "ledger snapshot to import before serving")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if serveTransport != "" {
		cfg.Server.Transport = serveTransport
	}
	if serveSnapshot != "" {
		cfg.Ledger.Snapshot = serveSnapshot
	}
	stdio := cfg.Server.Transport == "stdio"
	if !stdio && cfg.Server.Transport != "http" {
		return fmt.Errorf("unknown transport %q", cfg.Server.Transport)
	}

	logger, closeLog := newLogger(cfg.Log.Level, cfg.Log.Path, stdio)
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Ledger.Snapshot != "" {
		if _, err := a.importSnapshot(ctx, cfg.Ledger.Snapshot); err != nil {
			return fmt.Errorf("import snapshot: %w", err)
		}
	}

	handler := a.handler()
	mcpServer := mcp.NewServer(mcp.Config{
		Handler:       handler,
		Resolver:      a.apiKeys,
		AuthEnabled:   cfg.Auth.Enabled,
		TransportMode: cfg.Server.Transport,
		Logger:        logger,
	})

	if stdio {
		return runStdio(ctx, a, mcpServer)
	}
	return runHTTP(ctx, a, handler, mcpServer)
}

func runStdio(ctx context.Context, a *app, mcpServer *sdkmcp.Server) error {
	a.logger.Info("starting stdio transport", "auth", "disabled")

	// Run blocks until stdin closes or the context is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	a.logger.Info("shutting down")
	return nil
}

func runHTTP(ctx context.Context, a *app, handler *mcp.Handler, mcpServer *sdkmcp.Server) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			SessionTimeout: 30 * time.Minute,
		},
	)

	opts := transport.Options{
		MCP:    mcpHandler,
		Logger: a.logger,
	}
	if a.cfg.Auth.Enabled {
		opts.Auth = transport.AuthMiddleware(a.apiKeys, a.logger)
	}
	if a.registry != nil {
		opts.Metrics = promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewServer(handler, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "addr", addr, "auth", a.cfg.Auth.Enabled, "ledger", a.cfg.Ledger.Backend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

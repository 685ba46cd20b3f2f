package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	letterpdf "github.com/alnah/go-letterpdf"
	"github.com/alnah/go-letterpdf/internal/api"
	"github.com/alnah/go-letterpdf/internal/auth"
	"github.com/alnah/go-letterpdf/internal/config"
	"github.com/alnah/go-letterpdf/internal/mcptool"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 3 * time.Second

// runServe serves the HTTP API, the MCP endpoint and, when the transport
// is gmail, the OAuth flow, until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfiguration(&flags.common, env)
	if err != nil {
		return err
	}
	applyServeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, &flags.common, serveLogOutput(flags))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	defer func() { _ = logger.Sync() }()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Addr, err)
	}
	// Port 0 resolves here, before the OAuth redirect URL is derived.
	cfg.Server.Addr = ln.Addr().String()

	setup, err := newMailSetup(cfg, logger)
	if err != nil {
		_ = ln.Close()
		return withHint(err, cfg)
	}
	defer setup.persist(logger)

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() { _ = st.Close() }()

	pool := newServePool(cfg, logger)
	defer func() { _ = pool.Close() }()

	opts := append(creatorOptions(cfg, logger, setup.mailer, env), letterpdf.WithRenderer(pool))
	creator, err := letterpdf.New(st, opts...)
	if err != nil {
		_ = ln.Close()
		return withHint(err, cfg)
	}
	defer func() { _ = creator.Close() }()

	mcpServer := mcptool.NewServer(creator, Version, logger)
	srv := &http.Server{
		Handler:           newServeHandler(creator, mcpServer, setup.token, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if setup.token != nil {
		if _, err := setup.token.OAuthToken(); errors.Is(err, auth.ErrTokenNotSet) {
			logger.Warn("gmail transport not authorized yet",
				zap.String("authorize_url", setup.oauth+"?redirect=1"))
		}
	}

	stopHTTP, errHTTPCh := serveHTTP(srv, ln, logger)
	defer stopHTTP()

	var errStdioCh <-chan error
	if flags.stdio || cfg.Server.Stdio {
		var stopStdio func()
		stopStdio, errStdioCh = serveStdio(mcpServer, logger)
		defer stopStdio()
	}

	select {
	case err := <-errHTTPCh:
		return err
	case err := <-errStdioCh:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		return nil
	}
}

// applyServeFlags merges serve flags into cfg.
func applyServeFlags(f *serveFlags, cfg *config.Config) {
	applyRenderFlags(&f.render, cfg)
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.oauthURL != "" {
		cfg.Server.OAuthURL = f.oauthURL
	}
	if f.workers > 0 {
		cfg.Render.Workers = f.workers
	}
}

// serveLogOutput keeps stdout free for the stdio transport.
func serveLogOutput(f *serveFlags) string {
	if f.logFile != "" {
		return f.logFile
	}
	return "stderr"
}

// newServePool creates the browser pool shared by all requests.
func newServePool(cfg *config.Config, logger *zap.Logger) *letterpdf.RendererPool {
	timeout := time.Duration(0)
	if cfg.Render.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Render.Timeout); err == nil {
			timeout = d
		}
	}
	size := letterpdf.ResolvePoolSize(cfg.Render.Workers)
	logger.Info("renderer pool", zap.Int("size", size))
	return letterpdf.NewRendererPool(size, func() letterpdf.Renderer {
		return letterpdf.NewChromeRenderer(timeout, logger)
	})
}

// newServeHandler mounts the MCP endpoint and the OAuth flow on the API router.
func newServeHandler(creator api.Creator, mcpServer *mcp.Server, tok *auth.Token, logger *zap.Logger) http.Handler {
	r := api.NewRouter(creator, logger)

	mcpHTTP := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return mcpServer }, nil)
	r.Handle("/mcp", mcpHTTP)

	if tok != nil {
		r.Handle("/oauth", auth.NewHTTPHandler(tok, logger))
	}
	return r
}

func serveStdio(srv *mcp.Server, logger *zap.Logger) (func(), <-chan error) {
	errStdioCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer close(errStdioCh)
		logger.Info("starting stdio transport")

		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			errStdioCh <- fmt.Errorf("mcp stdio: %w", err)
		}
	}()

	return func() {
		cancel()

		<-errStdioCh
		logger.Info("stdio transport stopped")
	}, errStdioCh
}

func serveHTTP(srv *http.Server, ln net.Listener, logger *zap.Logger) (func(), <-chan error) {
	errHTTPCh := make(chan error, 1)
	go func() {
		defer close(errHTTPCh)

		logger.Info("starting http server", zap.String("addr", ln.Addr().String()))

		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errHTTPCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}

		<-errHTTPCh
		logger.Info("http server stopped")
	}, errHTTPCh
}

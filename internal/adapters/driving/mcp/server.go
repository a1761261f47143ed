package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/tradematch/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// instructions tell the client which tool answers which kind of request.
const instructions = `Use search_suppliers to rank suppliers for a customer request and
summarize_candidates when a single written recommendation is wanted. Pass day,
from and to together to check availability. Use ingest_profile to add or
replace a supplier profile and list_roles to see the trades on file. Profile
paths are resolved inside the server's ingest root; send content otherwise.`

// shutdownTimeout bounds how long in-flight HTTP sessions may finish.
const shutdownTimeout = 5 * time.Second

// Server exposes the matching pipeline to MCP clients.
type Server struct {
	ports      *Ports
	server     *mcp.Server
	ingestRoot string
}

// Option configures a Server.
type Option func(*Server)

// WithIngestRoot lets ingest_profile read files below dir.
// Without it only inline content can be ingested.
func WithIngestRoot(dir string) Option {
	return func(s *Server) {
		s.ingestRoot = dir
	}
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "tradematch",
		Version: Version,
	}

	s := &Server{
		ports:  ports,
		server: mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()
	s.registerResources()
	logger.Debug("mcp: registered tools and resources")

	return s, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp: shutdown: %v", err)
		}
	}()

	logger.Info("mcp: listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/louisbranch/buildledger/internal/platform/branding"
	"github.com/louisbranch/buildledger/internal/services/ledger/app"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// serverVersion identifies the MCP server version.
const serverVersion = "0.1.0"

// serverName identifies this MCP server to clients.
var serverName = branding.AppName + " MCP"

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves MCP over streamable HTTP.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	// HTTPAddr defaults to localhost:8081 for HTTP transport.
	HTTPAddr string
	// AllowedHosts lists non-loopback Host headers accepted over HTTP.
	AllowedHosts []string
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
}

// New registers every ledger and catalog tool against svc.
func New(svc *app.Service) (*Server, error) {
	if svc == nil {
		return nil, errors.New("ledger service is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	for _, module := range newMCPRegistrationModules(svc) {
		if err := module.register(mcpServerRegistrationAdapter{server: mcpServer}); err != nil {
			return nil, fmt.Errorf("register MCP module %q: %w", module.name, err)
		}
	}
	return &Server{mcpServer: mcpServer}, nil
}

// Run serves svc on the configured transport until ctx ends.
func Run(ctx context.Context, cfg Config, svc *app.Service) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	switch cfg.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}

	server, err := New(svc)
	if err != nil {
		return err
	}
	if cfg.Transport == TransportHTTP {
		httpAddr := strings.TrimSpace(cfg.HTTPAddr)
		if httpAddr == "" {
			httpAddr = "localhost:8081"
		}
		return server.ServeHTTP(ctx, httpAddr, cfg.AllowedHosts)
	}
	return server.Serve(ctx)
}

// Serve starts the MCP server on stdio and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler, guarded by the Host check.
func (s *Server) Handler(allowedHosts []string) http.Handler {
	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
	return hostGuard(parseAllowedHosts(allowedHosts), streamable)
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jmourtada/strata/internal/config"
	"github.com/jmourtada/strata/internal/logging"
	"github.com/jmourtada/strata/internal/snapshot"
	"github.com/jmourtada/strata/internal/store"
	"github.com/jmourtada/strata/internal/tagging"
	"github.com/jmourtada/strata/internal/usecase"
)

// Server wraps the MCP SDK server and exposes strata's controllers as
// tools.
type Server struct {
	server *sdk.Server
	store  store.GraphStore
	log    *slog.Logger

	resolver *usecase.Resolver
	tags     *tagging.Registry
	manager  *snapshot.Manager
	catalog  *snapshot.Catalog
}

// ServerConfig holds server identity and wiring.
type ServerConfig struct {
	Name    string // Server name (e.g., "strata")
	Version string // Server version
	DataDir string // Data directory for the SQLite store
	Config  *config.Config
	Log     *slog.Logger
}

// NewServer creates a new MCP server with strata tools over a SQLite
// store at cfg.DataDir.
func NewServer(cfg *ServerConfig) (*Server, error) {
	graphStore, err := store.NewSQLiteGraphStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph store: %w", err)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			// Client initialized, ready to serve
		},
	})

	audit := logging.NewAuditLogger(cfg.DataDir, cfg.Config.Logging.Level)
	s := &Server{
		server:   mcpServer,
		store:    graphStore,
		log:      cfg.Log,
		resolver: usecase.NewResolver(graphStore, cfg.Config, cfg.Log),
		tags:     tagging.NewRegistry(graphStore, cfg.Config, cfg.Log),
		manager:  snapshot.NewManager(graphStore, cfg.Config, cfg.Log, audit),
		catalog:  snapshot.NewCatalog(graphStore, cfg.Config, cfg.Log, audit),
	}

	if err := s.registerTools(); err != nil {
		graphStore.Close()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	err := s.server.Run(ctx, &sdk.StdioTransport{})

	s.store.Close()

	return err
}

// Close closes the server and releases resources.
func (s *Server) Close() error {
	return s.store.Close()
}

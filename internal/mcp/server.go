package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/Cycrus/COGNA/internal/backup"
	"github.com/Cycrus/COGNA/internal/config"
	"github.com/Cycrus/COGNA/internal/logging"
	"github.com/Cycrus/COGNA/internal/pathutil"
	"github.com/Cycrus/COGNA/internal/ratelimit"
	"github.com/Cycrus/COGNA/internal/store"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultNetwork is the network tools act on when the caller names none.
const DefaultNetwork = "default"

// Server wraps the MCP SDK server and exposes network operations as tools.
type Server struct {
	server         *sdk.Server
	store          store.NetworkStore
	defaultNetwork string
	defaults       config.NetworkConfig
	logger         *slog.Logger
	events         *logging.EventLogger
	auditLogger    *AuditLogger
	toolLimiters   ratelimit.ToolLimiters

	backupDir      string
	allowedDirs    []string
	backupCompress bool
	retention      backup.RetentionPolicy

	// mu serializes load-modify-save cycles so concurrent tool calls on
	// one network never lose each other's edits.
	mu sync.Mutex
}

// Config holds server configuration.
type Config struct {
	Name           string // Server name (e.g., "cogna")
	Version        string // Server version
	Store          store.NetworkStore
	DefaultNetwork string
	Defaults       config.NetworkConfig
	Logger         *slog.Logger
	Events         *logging.EventLogger
	// AuditDir receives audit.jsonl. Empty disables auditing.
	AuditDir string
	// DataDir enables cogna_backup and cogna_restore. Agent-supplied
	// paths must stay inside DataDir/backups.
	DataDir        string
	BackupCompress bool
	// Retention is applied to the backup directory after each backup.
	// Nil keeps every backup.
	Retention backup.RetentionPolicy
}

// NewServer creates a new MCP server with cogna tools. The server takes
// ownership of cfg.Store and closes it in Close.
func NewServer(cfg *Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("a network store is required")
	}
	if _, err := cfg.Defaults.ConnectionOptions(); err != nil {
		return nil, fmt.Errorf("invalid network defaults: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	name := cfg.DefaultNetwork
	if name == "" {
		name = DefaultNetwork
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server:         mcpServer,
		store:          cfg.Store,
		defaultNetwork: name,
		defaults:       cfg.Defaults,
		logger:         logger,
		events:         cfg.Events,
		toolLimiters:   ratelimit.NewToolLimiters(),
	}
	if cfg.DataDir != "" {
		s.backupDir = backup.DefaultBackupDir(cfg.DataDir)
		s.allowedDirs = pathutil.AllowedBackupDirs(cfg.DataDir)
		s.backupCompress = cfg.BackupCompress
		s.retention = cfg.Retention
	}
	if cfg.AuditDir != "" {
		s.auditLogger = NewAuditLogger(cfg.AuditDir)
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)
	go func() {
		select {
		case <-sigChan:
			s.logger.Info("shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	s.logger.Info("mcp server listening on stdio", "default_network", s.defaultNetwork)
	return s.server.Run(ctx, &sdk.StdioTransport{})
}

// Close closes the store and audit log.
func (s *Server) Close() error {
	storeErr := s.store.Close()
	auditErr := s.auditLogger.Close()
	if storeErr != nil {
		return storeErr
	}
	return auditErr
}

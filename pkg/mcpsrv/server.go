package mcpsrv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/apiscout-mcp/internal/cache"
	"github.com/usestring/apiscout-mcp/internal/config"
	"github.com/usestring/apiscout-mcp/internal/logging"
	"github.com/usestring/apiscout-mcp/internal/mcp"
	"github.com/usestring/apiscout-mcp/internal/mcp/tools"
	"github.com/usestring/apiscout-mcp/internal/query"
	"github.com/usestring/apiscout-mcp/pkg/auth"
	"github.com/usestring/apiscout-mcp/pkg/auth/redisstore"
	"github.com/usestring/apiscout-mcp/pkg/client"
	"github.com/usestring/apiscout-mcp/pkg/schema"
	"github.com/usestring/apiscout-mcp/pkg/scout"
)

// Server is the apiscout MCP server.
// It wraps the internal implementation and provides extension points.
type Server struct {
	internal   *mcp.Server
	deps       *Deps
	watchPath  string
	closers    []func() error
	logCleanup func() error
}

// NewServer creates a new MCP server with builtin apiscout tools.
//
// Endpoints come from the endpoints file unless WithRegistry is given. A
// missing endpoints file starts the server with no endpoints; with
// APISCOUT_WATCH_ENDPOINTS set they appear once the file is created.
func NewServer(opts ...Option) (*Server, error) {
	cfg := &serverConfig{
		config: config.Load(), // Load defaults from environment
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.endpointsFile != "" {
		cfg.config.EndpointsFile = cfg.endpointsFile
	}

	// Setup logging
	logCfg := logging.FromConfig(cfg.config)
	if cfg.logLevel != "" {
		logCfg.Level = cfg.logLevel
	}
	if cfg.logFile != "" {
		logCfg.FilePath = cfg.logFile
	}
	logCleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	s := &Server{logCleanup: logCleanup}
	if err := s.build(cfg); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Server) build(cfg *serverConfig) error {
	registry, err := s.loadRegistry(cfg)
	if err != nil {
		return err
	}

	httpClient := client.New(
		client.WithHTTPClient(cfg.httpClient),
		client.WithTimeout(cfg.config.HTTPClientTimeout),
		client.WithMaxBodyBytes(cfg.config.MaxResponseBytes),
		client.WithUserAgent("apiscout-mcp/"+mcp.Version),
	)

	store, err := s.tokenStore(cfg)
	if err != nil {
		return err
	}
	resolver := auth.NewResolver(httpClient, auth.WithStore(store))

	detection := scout.Options{
		SampleSize:  cfg.config.SampleSize,
		StrictTypes: cfg.config.StrictTypes,
	}
	engine := schema.NewEngine(append(detection.EngineOptions(),
		schema.WithMaxDepth(cfg.config.MaxNestingDepth))...)

	analyzer := scout.NewAnalyzer(httpClient, resolver,
		scout.WithEngine(engine),
		scout.WithSelector(query.NewEngine(cfg.config.QueryCacheMaxItems)),
		scout.WithWorkers(cfg.config.AnalyzeWorkers),
	)

	results, err := cache.NewResultCache(cfg.config.ResultCacheMaxItems)
	if err != nil {
		return fmt.Errorf("failed to create result cache: %w", err)
	}

	toolDeps := &tools.Deps{
		Analyzer: analyzer,
		Registry: registry,
		Results:  results,
		Config:   cfg.config,
	}
	s.deps = &Deps{
		Analyzer: analyzer,
		Registry: registry,
		Resolver: resolver,
		Results:  results,
		Config:   cfg.config,
	}

	// Build internal server options
	var internalOpts []mcp.ServerOption
	if !cfg.disableBuiltinTools {
		internalOpts = append(internalOpts, mcp.WithBuiltinTools())
	}
	if !cfg.disableBuiltinPrompts {
		internalOpts = append(internalOpts, mcp.WithBuiltinPrompts())
	}

	// Add custom extension registration callbacks
	for _, fn := range cfg.toolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.promptRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.resourceRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}

	// Add deferred tool registrations (tools that need Deps access)
	for _, fn := range cfg.deferredToolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(func(srv *sdkmcp.Server) {
			fn(srv, s.deps)
		}))
	}

	s.internal, err = mcp.NewServer(toolDeps, internalOpts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	slog.Info("apiscout server configured",
		slog.Int("endpoints", registry.Len()),
		slog.Int("sample_size", cfg.config.SampleSize),
		slog.Bool("strict_types", cfg.config.StrictTypes),
		slog.String("token_store", cfg.config.TokenStore),
	)
	return nil
}

// loadRegistry returns the registry given by option or read from the
// endpoints file. Settings in the file override the environment.
func (s *Server) loadRegistry(cfg *serverConfig) (*scout.Registry, error) {
	if cfg.registry != nil {
		return cfg.registry, nil
	}

	path := cfg.config.EndpointsFile
	if cfg.config.WatchEndpoints {
		s.watchPath = path
	}

	eps, err := config.LoadEndpoints(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("endpoints file not found, starting without endpoints", slog.String("path", path))
		return scout.NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load endpoints: %w", err)
	}

	if eps.Timeout > 0 {
		cfg.config.HTTPClientTimeout = eps.Timeout
	}
	if td := eps.TypeDetection; td != nil {
		if td.SampleSize > 0 {
			cfg.config.SampleSize = td.SampleSize
		}
		cfg.config.StrictTypes = cfg.config.StrictTypes || td.StrictTypes
	}
	return eps.Registry, nil
}

func (s *Server) tokenStore(cfg *serverConfig) (auth.TokenStore, error) {
	if cfg.tokenStore != nil {
		return cfg.tokenStore, nil
	}

	switch cfg.config.TokenStore {
	case config.TokenStoreMemory, "":
		return auth.NewTokenCache(), nil
	case config.TokenStoreRedis:
		rc, err := redisstore.ConfigFromEnv()
		if err != nil {
			return nil, err
		}
		store, err := redisstore.New(context.Background(), rc)
		if err != nil {
			return nil, fmt.Errorf("failed to connect token store: %w", err)
		}
		s.closers = append(s.closers, store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown TOKEN_STORE %q (want %s or %s)",
			cfg.config.TokenStore, config.TokenStoreMemory, config.TokenStoreRedis)
	}
}

// Run starts the MCP server with stdio transport.
// When endpoint watching is enabled it also reloads the endpoints file on
// change. The server runs until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if s.watchPath != "" {
		go func() {
			if err := config.WatchEndpoints(ctx, s.watchPath, config.DefaultReloadDebounce, s.reload); err != nil {
				slog.Error("endpoints watcher stopped", slog.String("error", err.Error()))
			}
		}()
	}
	return s.internal.Run(ctx)
}

// reload swaps in a newly loaded endpoint set. Cached analyses are dropped
// since they may describe endpoints that changed or no longer exist.
// Timeout and type detection settings only apply at startup.
func (s *Server) reload(eps *config.Endpoints) {
	s.deps.Registry.Replace(eps.Registry)
	s.deps.Results.Purge()
}

// Close cleans up server resources.
func (s *Server) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	if s.logCleanup != nil {
		errs = append(errs, s.logCleanup())
	}
	return errors.Join(errs...)
}

// Deps returns the dependencies for building custom tools.
func (s *Server) Deps() *Deps {
	return s.deps
}

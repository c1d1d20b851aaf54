package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/artfit/artfit/pkg/cache"
	"github.com/artfit/artfit/pkg/config"
	"github.com/artfit/artfit/pkg/server"
	"github.com/artfit/artfit/pkg/session"
)

const sessionCleanupInterval = time.Minute

func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the placement session HTTP API",
		Long: `Serve the session API used by configurator front ends. Sessions hold one
print region and artwork placement each and expire after the configured
idle TTL. Use server.session_store = "redis" to share sessions between
instances.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}
	mode, err := cfg.BoundsMode()
	if err != nil {
		return err
	}

	b, err := c.openBackend(ctx, false)
	if err != nil {
		return err
	}
	defer b.Close()

	store, err := c.sessionStore(ctx, cfg, b.cache)
	if err != nil {
		return err
	}
	sessions := session.NewManager(store, session.ManagerOptions{
		TTL:    cfg.Server.SessionTTL.Duration,
		Mode:   mode,
		Logger: logger,
	})
	defer sessions.Close()

	srv, err := server.New(server.Options{
		Sessions:  sessions,
		Catalog:   b.api,
		Export:    cfg.Export,
		Preview:   cfg.Canvas,
		MaxUpload: int64(cfg.Server.MaxUploadMB) << 20,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	go cleanupSessions(ctx, sessions, logger)
	printInfo("Serving on %s (sessions: %s, bounds: %s)", StyleValue.Render(addr), cfg.Server.SessionStore, mode)
	return srv.ListenAndServe(ctx, addr)
}

// sessionStore opens the configured store. A Redis store reuses the
// cache's connection when the cache is Redis too.
func (c *CLI) sessionStore(ctx context.Context, cfg *config.Config, cc cache.Cache) (session.Store, error) {
	switch cfg.Server.SessionStore {
	case config.BackendFile:
		dir := cfg.Server.SessionDir
		if dir == "" {
			base, err := cacheDir()
			if err != nil {
				return nil, fmt.Errorf("session directory: %w", err)
			}
			dir = filepath.Join(base, "sessions")
		}
		return session.NewFileStore(dir)
	case config.BackendRedis:
		keyer := cache.NewScopedKeyer(nil, cfg.Redis.Prefix)
		if rc, ok := cc.(*cache.RedisCache); ok {
			return session.NewRedisStore(rc.Client(), keyer), nil
		}
		rc, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return session.NewRedisStore(rc.Client(), keyer), nil
	}
	return session.NewMemoryStore(), nil
}

func cleanupSessions(ctx context.Context, m *session.Manager, logger *log.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Cleanup(ctx); err != nil {
				logger.Warn("session cleanup failed", "err", err)
			}
		}
	}
}

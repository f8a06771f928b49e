package container

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"clinvarminer/adapters/postgres"
	"clinvarminer/app"
	"clinvarminer/internal/api"
	"clinvarminer/internal/cache"
	"clinvarminer/internal/config"
	"clinvarminer/internal/logging"
	"clinvarminer/ports"
	"clinvarminer/ui"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// memoryCleanupInterval is how often the in-process page cache drops expired pages
const memoryCleanupInterval = 10 * time.Minute

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB        *sqlx.DB
	PageCache *cache.PageCache

	// Repositories (data access layer)
	Reader ports.ComparisonReader

	// Application services
	Conflicts    *app.ConflictSummaryService
	Reviews      *app.ConflictReviewService
	Significance *app.SignificanceService
	Variants     *app.VariantService
	Submissions  *app.SubmissionService
	Search       *app.SearchService
	Snapshot     *app.SnapshotService

	// Front ends
	API *api.Handler
	UI  *ui.App
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Container{Config: cfg}, nil
}

// InitWithDatabase initializes every component that requires database access
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	c.DB = db

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.initRepositories()
	c.initServices()

	if err := c.initCache(ctx); err != nil {
		return fmt.Errorf("failed to initialize page cache: %w", err)
	}
	if err := c.initHTTP(); err != nil {
		return fmt.Errorf("failed to initialize HTTP handlers: %w", err)
	}

	logging.FromContext(ctx).Info("[Container] initialized")
	return nil
}

// initRepositories initializes data access repositories
func (c *Container) initRepositories() {
	c.Reader = postgres.NewComparisonRepository(c.DB)
}

// initServices initializes the application services
func (c *Container) initServices() {
	c.Conflicts = app.NewConflictSummaryService(c.Reader)
	c.Reviews = app.NewConflictReviewService(c.Reader)
	c.Significance = app.NewSignificanceService(c.Reader)
	c.Variants = app.NewVariantService(c.Reader)
	c.Submissions = app.NewSubmissionService(c.Reader)
	c.Search = app.NewSearchService(c.Reader)
	c.Snapshot = app.NewSnapshotService(c.Reader)
}

// initCache sets up the page cache and empties it, since pages rendered from
// an older import must not outlive a restart.
func (c *Container) initCache(ctx context.Context) error {
	cfg := c.Config.Cache
	logger := logging.FromContext(ctx)
	if cfg.Disabled {
		logger.Info("[Cache] page cache disabled")
		return nil
	}

	var backend cache.Backend
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL, cfg.Prefix)
		if err != nil {
			return err
		}
		backend = redisCache
		logger.Info("[Cache] using redis page cache")
	} else {
		backend = cache.NewMemoryCache(cfg.MaxSize, memoryCleanupInterval)
		logger.WithField("max_entries", cfg.MaxSize).Info("[Cache] using in-memory page cache")
	}

	c.PageCache = cache.NewPageCache(backend, cfg.TTL)
	if err := c.PageCache.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear page cache: %w", err)
	}
	return nil
}

// initHTTP builds the JSON API and the HTML front end
func (c *Container) initHTTP() error {
	gin.SetMode(c.Config.Server.GinMode)
	c.API = api.NewHandler(c.Conflicts, c.Reviews, c.Significance, c.Snapshot)

	uiConfig := ui.Config{
		SiteName:  c.Config.Server.SiteName,
		PageCache: c.PageCache,
		API:       c.API.Router(),
	}

	var err error
	c.UI, err = ui.NewApp(uiConfig, ui.Services{
		Conflicts:    c.Conflicts,
		Reviews:      c.Reviews,
		Significance: c.Significance,
		Variants:     c.Variants,
		Submissions:  c.Submissions,
		Search:       c.Search,
		Snapshot:     c.Snapshot,
	})
	return err
}

// Handler is the root HTTP handler
func (c *Container) Handler() http.Handler {
	return c.UI
}

// Shutdown releases the cache and the database connection
func (c *Container) Shutdown(ctx context.Context) error {
	if c.PageCache != nil {
		if err := c.PageCache.Close(); err != nil {
			logging.FromContext(ctx).WithError(err).Warn("[Container] failed to close page cache")
		}
	}

	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Fields describes the container for startup logs
func (c *Container) Fields() log.Fields {
	return log.Fields{
		"site":          c.Config.Server.SiteName,
		"cache_enabled": c.PageCache != nil,
		"cache_ttl":     c.Config.Cache.TTL.String(),
	}
}

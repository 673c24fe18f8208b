// Package blogcatalog loads a multi-locale blog from a directory of
// markdown documents and answers listing, lookup and facet queries over it.
//
// The content tree holds one directory per post. ContentStore turns it into
// per-locale catalogs, CatalogCache memoizes them, and the query functions
// (FilterAndSort, Paginate, AllTags, ArchiveDates) are pure over a catalog's
// posts. App serves all of it over HTTP.
package blogcatalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/blogcatalog/logfields"
	"github.com/eringen/blogcatalog/metrics"
)

// MetricsRecorder is a metrics.Recorder that can also expose its metrics.
type MetricsRecorder interface {
	metrics.Recorder
	Handler() http.Handler
}

// App is the central catalog application. It wires together the content
// store, cache, handlers and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Cache  *CatalogCache
	Logger *slog.Logger

	loader       CatalogLoader
	ownsStore    bool
	coverOpener  CoverOpener
	covers       *coverCache
	metrics      MetricsRecorder
	recorder     metrics.Recorder
	apiLimiter   *RateLimiter
	locales      *localeSet
	customRoutes []func(*App)
	watcher      *ContentWatcher
	refresher    *Refresher
}

// New creates an App with the given configuration. Unless WithLoader is
// given, catalogs are read from cfg.ContentDir.
func New(cfg SiteConfig, opts ...Option) (*App, error) {
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("blogcatalog: invalid config: %w", err)
	}

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Logger: slog.Default().With(logfields.Component("http")),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.recorder = metrics.NoopRecorder{}
	if a.metrics != nil {
		a.recorder = a.metrics
	}
	if a.loader == nil {
		store, err := OpenContentStore(cfg.ContentDir,
			WithDefaultLocale(cfg.DefaultLocale),
			WithDrafts(cfg.IncludeDrafts),
			WithRecorder(a.recorder),
		)
		if err != nil {
			return nil, fmt.Errorf("blogcatalog: %w", err)
		}
		a.loader = store
		a.ownsStore = true
	}
	if co, ok := a.loader.(CoverOpener); ok {
		a.coverOpener = co
	}

	a.Cache = NewCatalogCache(a.loader, cfg.CacheTTL, WithCacheRecorder(a.recorder))
	a.covers = newCoverCache()
	a.locales = newLocaleSet(cfg.Locales, cfg.DefaultLocale)
	a.apiLimiter = NewRateLimiter(cfg.RateLimit, cfg.RateWindow)

	a.Echo.HideBanner = true
	a.Echo.HidePort = true
	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return a, nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/", a.handleLocaleRedirect)
	e.POST("/locale/:locale", a.handleSetLocale)
	e.GET("/healthz", a.handleHealth)
	e.GET("/sitemap.xml", a.handleSitemap)
	if a.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(a.metrics.Handler()))
	}

	api := e.Group("/api/:locale", a.apiLimiter.Middleware)
	api.GET("/posts", a.handleListPosts)
	api.GET("/posts/:slug", a.handleGetPost)
	api.GET("/facets", a.handleFacets)

	e.GET("/:locale/feed.xml", a.handleFeed)
	e.GET("/:locale/blog/:slug/body", a.handlePostBody)
	e.GET("/:locale/blog/:slug/cover.jpg", a.handleCover)
}

// Invalidate drops every cached catalog and encoded cover.
func (a *App) Invalidate() {
	a.Cache.Invalidate()
	a.covers.Invalidate()
}

// Start warms the cache, starts the optional watcher and refresher, and
// serves until ctx is canceled.
func (a *App) Start(ctx context.Context) error {
	if err := a.Cache.Warm(a.Config.Locales); err != nil {
		a.Logger.Warn("Initial catalog load failed", logfields.Error(err))
	}

	if a.Config.Watch {
		if !a.ownsStore {
			a.Logger.Warn("Watch is only supported for the content directory loader")
		} else {
			w, err := NewContentWatcher(a.Config.ContentDir, a, 0, slog.Default())
			if err != nil {
				return fmt.Errorf("blogcatalog: init watcher: %w", err)
			}
			if err := w.Start(ctx); err != nil {
				_ = w.Stop()
				return fmt.Errorf("blogcatalog: start watcher: %w", err)
			}
			a.watcher = w
		}
	}

	if a.Config.RefreshInterval > 0 {
		r, err := NewRefresher(a.Cache, a.Config.Locales, a.Config.RefreshInterval, slog.Default())
		if err != nil {
			return fmt.Errorf("blogcatalog: init refresher: %w", err)
		}
		r.Start()
		a.refresher = r
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("Listening", slog.String("addr", a.Config.Addr))
		errCh <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.Echo.Shutdown(shutdownCtx)
	}
}

// Close stops background work. Call this when the app is shutting down.
func (a *App) Close() error {
	var errs []error
	if a.watcher != nil {
		errs = append(errs, a.watcher.Stop())
	}
	if a.refresher != nil {
		errs = append(errs, a.refresher.Stop())
	}
	a.apiLimiter.Stop()
	return errors.Join(errs...)
}

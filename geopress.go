// Package geopress is a file-based blog publishing engine built with Go,
// Echo, and templ. Markdown documents with YAML front-matter are the source
// of truth; the engine indexes them into SQLite, serves them with RSS,
// sitemap, admin editing, and analytics, and exports the site statically.
//
// Users may provide their own templ components via the ViewFuncs struct;
// the views package ships a complete default set.
package geopress

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/eringen/geopress/analytics"
	"github.com/eringen/geopress/content"
	"github.com/eringen/geopress/gitsync"
	"github.com/eringen/geopress/metrics"
)

// ViewFuncs holds the templ components the engine calls when rendering
// pages. This is the inversion-of-control mechanism that lets users own and
// customize all templates; views.Default provides a complete set.
type ViewFuncs struct {
	Home           func(featured, recent []content.Post, tags []string, site Site) templ.Component
	Posts          func(posts []content.Post, pg Pagination, site Site) templ.Component
	Post           func(post content.Post, related []content.Post, site Site) templ.Component
	Tags           func(tags []string, site Site) templ.Component
	TagPosts       func(tag string, posts []content.Post, pg Pagination, site Site) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(posts []content.Post, problems []content.Problem, builds []BuildRecord, message, csrfToken string) templ.Component
	AdminEdit      func(post content.Post, csrfToken string) templ.Component
	AdminImages    func(images []Image, csrfToken string) templ.Component
	AdminAnalytics func(stats analytics.Stats, csrfToken string) templ.Component
	NotFound       func(site Site) templ.Component
	ServerError    func(site Site) templ.Component
}

// App is the central geopress application. It wires together the content
// loader, store, cache, handlers, middleware, scheduler, and templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Cache   *PostCache
	Views   ViewFuncs
	Log     zerolog.Logger
	Metrics metrics.Recorder

	loginLimiter   *RateLimiter
	analyticsStore *analytics.Store
	gitClient      *gitsync.Client
	registry       *prometheus.Registry
	customRoutes   []func(*App)

	mu           sync.Mutex
	lastProblems []content.Problem
	sched        gocron.Scheduler
	publishJob   gocron.Job
}

// SyncStats summarizes one corpus sync.
type SyncStats struct {
	Posts    int
	Problems []content.Problem
	Duration time.Duration
}

// New creates a geopress App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:  cfg,
		Echo:    echo.New(),
		Views:   views,
		Log:     zerolog.Nop(),
		Metrics: metrics.NoopRecorder{},
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start initializes the store, cache, middleware, and routes, runs the
// first corpus sync, and serves until ctx is canceled or the listener
// fails.
func (a *App) Start(ctx context.Context) error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("geopress: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("geopress: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("geopress: init store: %w", err)
	}
	a.Store = store

	a.Cache = NewPostCache(a.Store, a.Config.CacheTTL(), a.Config.PublishMargin(), a.Metrics)
	a.loginLimiter = NewRateLimiter(5, time.Minute)

	if a.Config.MetricsEnabled && a.registry == nil {
		a.registry = prometheus.NewRegistry()
		a.Metrics = metrics.NewPrometheusRecorder(a.registry)
		a.Cache.metrics = a.Metrics
	}

	if a.Config.AnalyticsEnabled {
		analyticsStore, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("geopress: init analytics: %w", err)
		}
		a.analyticsStore = analyticsStore
		if err := analytics.InitSalt(analyticsStore); err != nil {
			return fmt.Errorf("geopress: init analytics salt: %w", err)
		}
	}

	if a.Config.GitRemote != "" {
		a.gitClient = &gitsync.Client{Dir: a.Config.ContentDir, Log: a.Log}
	}

	if _, err := a.Sync(); err != nil {
		return fmt.Errorf("geopress: initial sync: %w", err)
	}

	if a.Config.WatchContent {
		go func() {
			err := content.Watch(ctx, a.Config.ContentDir, content.DefaultWatchDebounce, a.Log, func() {
				if _, err := a.Sync(); err != nil {
					a.Log.Error().Err(err).Msg("watch sync failed")
				}
			})
			if err != nil && ctx.Err() == nil {
				a.Log.Error().Err(err).Msg("content watcher stopped")
			}
		}()
	}

	stopScheduler, err := a.startScheduler(ctx)
	if err != nil {
		return fmt.Errorf("geopress: scheduler: %w", err)
	}
	defer stopScheduler()

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Echo.Shutdown(shutdownCtx); err != nil {
			a.Log.Error().Err(err).Msg("shutdown")
		}
	}()

	a.Log.Info().Str("addr", a.Config.Addr).Msg("listening")
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Sync reloads the corpus from the content directory, reconciles the index,
// and invalidates the cache. It runs at startup, on watcher events, on
// scheduler ticks, and after admin writes.
func (a *App) Sync() (SyncStats, error) {
	start := time.Now()
	corpus, problems, err := content.LoadDir(a.Config.ContentDir, content.LoadOptions{
		DefaultAuthor: a.Config.Author,
		ReadingWPM:    a.Config.ReadingWPM,
	})
	if err != nil {
		a.Metrics.IncSyncResult(metrics.ResultFailed)
		return SyncStats{}, err
	}
	if err := a.Store.ReplacePosts(corpus.Posts); err != nil {
		a.Metrics.IncSyncResult(metrics.ResultFailed)
		return SyncStats{}, err
	}
	a.Cache.Invalidate()

	a.mu.Lock()
	a.lastProblems = problems
	a.mu.Unlock()

	for _, p := range problems {
		a.Log.Warn().Str("path", p.Path).Msg(p.Message)
	}

	stats := SyncStats{Posts: len(corpus.Posts), Problems: problems, Duration: time.Since(start)}
	a.Metrics.ObserveSyncDuration(stats.Duration)
	a.Metrics.IncSyncResult(metrics.ResultSuccess)
	a.Metrics.SetCorpusSize(len(corpus.Posts), len(problems))
	if next, ok := content.NextPublishTime(corpus.Posts, time.Now()); ok {
		a.Metrics.SetNextPublish(next)
		a.reschedulePublish(next)
	}
	a.Log.Info().
		Int("posts", stats.Posts).
		Int("problems", len(problems)).
		Dur("took", stats.Duration).
		Msg("corpus synced")
	return stats, nil
}

// Problems returns the findings of the most recent sync.
func (a *App) Problems() []content.Problem {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]content.Problem(nil), a.lastProblems...)
}

// PullContent fetches the configured content remote and re-syncs the corpus
// when anything changed.
func (a *App) PullContent(ctx context.Context) error {
	if a.gitClient == nil {
		return fmt.Errorf("geopress: no content remote configured")
	}
	res, err := a.gitClient.Sync(ctx, gitsync.Remote{
		URL:    a.Config.GitRemote,
		Branch: a.Config.GitBranch,
		Token:  a.Config.GitToken,
	})
	if err != nil {
		return err
	}
	if res.Changed {
		_, err = a.Sync()
	}
	return err
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		a.Store.Close()
	}
	if a.analyticsStore != nil {
		a.analyticsStore.Close()
	}
	return nil
}

package geopress

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/eringen/geopress/content"
	"github.com/eringen/geopress/metrics"
)

// Defaults applied by setDefaults when the config omits a value.
const (
	DefaultPostsPerPage = 10
	DefaultReadingWPM   = content.DefaultReadingWPM
)

// SiteConfig holds all configuration for a geopress site. It is read from a
// YAML file, then overridden from the environment; secrets are environment
// only and never live in the file.
type SiteConfig struct {
	Name        string `yaml:"name"`        // SITE_NAME (default "Blog")
	URL         string `yaml:"url"`         // SITE_URL (default "http://localhost:3000")
	Description string `yaml:"description"` // SITE_DESCRIPTION, used in RSS and meta tags
	Author      string `yaml:"author"`      // SITE_AUTHOR, default post author and JSON-LD person
	OGImage     string `yaml:"og_image"`    // site-wide og:image fallback, path under the static dir

	Addr         string `yaml:"addr"`          // listen address (default ":3000")
	ContentDir   string `yaml:"content_dir"`   // Markdown tree (default "posts")
	StaticDir    string `yaml:"static_dir"`    // user assets served under /public/ (default "public")
	OutputDir    string `yaml:"output_dir"`    // static export target (default "dist")
	DatabasePath string `yaml:"database_path"` // derived index (default "data/index.db")

	PostsPerPage int `yaml:"posts_per_page"` // default 10
	ReadingWPM   int `yaml:"reading_wpm"`    // default 200

	// Durations are Go duration strings ("15m", "1h30m").
	ScheduledMargin string `yaml:"scheduled_margin"`  // default "15m"
	PostCacheTTL    string `yaml:"post_cache_ttl"`    // default "5m"
	RescanInterval  string `yaml:"rescan_interval"`   // default "10m", "0" disables
	GitPullInterval string `yaml:"git_pull_interval"` // default "0" (disabled)

	WatchContent bool `yaml:"watch_content"` // fsnotify live reload in serve mode
	Minify       bool `yaml:"minify"`        // minify static export output

	GitRemote string `yaml:"git_remote"` // content repository URL, empty disables git sync
	GitBranch string `yaml:"git_branch"` // default "main"

	AnalyticsEnabled      bool   `yaml:"analytics_enabled"`
	AnalyticsDatabasePath string `yaml:"analytics_database_path"` // default "data/analytics.db"
	MetricsEnabled        bool   `yaml:"metrics_enabled"`         // expose /metrics

	AdminPassword string `yaml:"-"`             // ADMIN_PASSWORD, required to serve
	SessionSecret string `yaml:"-"`             // SESSION_SECRET, required to serve
	GitToken      string `yaml:"-"`             // GIT_TOKEN, for private content remotes
	CookieSecure  bool   `yaml:"cookie_secure"` // set true behind HTTPS
}

// LoadConfig reads the YAML file at path, applies environment overrides and
// defaults, and validates the duration fields. A missing file is not an
// error: the environment and defaults alone describe a runnable site.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return SiteConfig{}, fmt.Errorf("geopress: parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to env + defaults
	default:
		return SiteConfig{}, fmt.Errorf("geopress: read %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.setDefaults()

	for name, value := range map[string]string{
		"scheduled_margin":  cfg.ScheduledMargin,
		"post_cache_ttl":    cfg.PostCacheTTL,
		"rescan_interval":   cfg.RescanInterval,
		"git_pull_interval": cfg.GitPullInterval,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return SiteConfig{}, fmt.Errorf("geopress: %s: %w", name, err)
		}
	}
	return cfg, nil
}

func (c *SiteConfig) applyEnv() {
	c.Name = EnvOr("SITE_NAME", c.Name)
	c.URL = EnvOr("SITE_URL", c.URL)
	c.Description = EnvOr("SITE_DESCRIPTION", c.Description)
	c.Author = EnvOr("SITE_AUTHOR", c.Author)
	c.Addr = EnvOr("ADDR", c.Addr)
	c.ContentDir = EnvOr("CONTENT_DIR", c.ContentDir)
	c.DatabasePath = EnvOr("DATABASE_PATH", c.DatabasePath)
	c.GitRemote = EnvOr("GIT_REMOTE", c.GitRemote)
	c.AdminPassword = EnvOr("ADMIN_PASSWORD", c.AdminPassword)
	c.SessionSecret = EnvOr("SESSION_SECRET", c.SessionSecret)
	c.GitToken = EnvOr("GIT_TOKEN", c.GitToken)
	if os.Getenv("COOKIE_SECURE") == "true" {
		c.CookieSecure = true
	}
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "posts"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.OutputDir == "" {
		c.OutputDir = "dist"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/index.db"
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.PostsPerPage == 0 {
		c.PostsPerPage = DefaultPostsPerPage
	}
	if c.ReadingWPM == 0 {
		c.ReadingWPM = DefaultReadingWPM
	}
	if c.ScheduledMargin == "" {
		c.ScheduledMargin = content.DefaultScheduledMargin.String()
	}
	if c.PostCacheTTL == "" {
		c.PostCacheTTL = "5m"
	}
	if c.RescanInterval == "" {
		c.RescanInterval = "10m"
	}
	if c.GitPullInterval == "" {
		c.GitPullInterval = "0"
	}
	if c.GitBranch == "" {
		c.GitBranch = "main"
	}
}

// Site returns the template-visible subset of the configuration.
func (c SiteConfig) Site() Site {
	return Site{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
		OGImage:     c.OGImage,
	}
}

// PublishMargin is how far ahead of pubDatetime a scheduled post goes live.
func (c SiteConfig) PublishMargin() time.Duration {
	return durationOr(c.ScheduledMargin, content.DefaultScheduledMargin)
}

// CacheTTL is the post cache expiry.
func (c SiteConfig) CacheTTL() time.Duration {
	return durationOr(c.PostCacheTTL, 5*time.Minute)
}

// RescanEvery is the periodic full-resync interval; 0 disables it.
func (c SiteConfig) RescanEvery() time.Duration {
	return durationOr(c.RescanInterval, 10*time.Minute)
}

// GitPullEvery is the content repository pull interval; 0 disables it.
func (c SiteConfig) GitPullEvery() time.Duration {
	return durationOr(c.GitPullInterval, 0)
}

func durationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger replaces the default logger.
func WithLogger(log zerolog.Logger) Option {
	return func(a *App) {
		a.Log = log
	}
}

// WithMetrics installs a metrics recorder (NoopRecorder by default).
func WithMetrics(rec metrics.Recorder) Option {
	return func(a *App) {
		a.Metrics = rec
	}
}

package blogcatalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for a catalog site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Author name for JSON-LD

	Addr string `yaml:"addr"` // Listen address (default ":3000")

	ContentDir    string   `yaml:"contentDir"`    // Document tree root (default "content")
	Locales       []string `yaml:"locales"`       // Served locales (default [DefaultLocale])
	DefaultLocale string   `yaml:"defaultLocale"` // Locale whose slugs are the directory names (default "en")
	PageSize      int      `yaml:"pageSize"`      // Listing page size (default 10)
	IncludeDrafts bool     `yaml:"includeDrafts"`

	CacheTTL        time.Duration `yaml:"cacheTTL"`        // Catalog cache TTL (default 5m, 0 keeps until invalidated)
	RefreshInterval time.Duration `yaml:"refreshInterval"` // Periodic re-warm, disabled when 0
	Watch           bool          `yaml:"watch"`           // Invalidate on content changes
	SnapshotPath    string        `yaml:"snapshotPath"`    // Optional SQLite export written after warm-up

	RateLimit  int           `yaml:"rateLimit"`  // API requests per window per IP (default 120)
	RateWindow time.Duration `yaml:"rateWindow"` // default 1m

	SessionSecret string `yaml:"sessionSecret"` // Required for the locale cookie
	CookieSecure  bool   `yaml:"cookieSecure"`  // Set true for HTTPS

	LogLevel  string `yaml:"logLevel"`  // debug, info, warn, error (default info)
	LogFormat string `yaml:"logFormat"` // text or json (default text)

	cacheTTLSet bool
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.DefaultLocale == "" {
		c.DefaultLocale = "en"
	}
	if !slices.Contains(c.Locales, c.DefaultLocale) {
		c.Locales = append([]string{c.DefaultLocale}, c.Locales...)
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.CacheTTL == 0 && !c.cacheTTLSet {
		c.CacheTTL = 5 * time.Minute
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 120
	}
	if c.RateWindow <= 0 {
		c.RateWindow = time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

// Validate reports configuration that cannot be served.
func (c *SiteConfig) Validate() error {
	var errs []error
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("sessionSecret is required"))
	} else if len(c.SessionSecret) < 16 {
		errs = append(errs, errors.New("sessionSecret must be at least 16 bytes"))
	}
	for _, loc := range c.Locales {
		if !reLocale.MatchString(loc) {
			errs = append(errs, fmt.Errorf("invalid locale %q", loc))
		}
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("logFormat must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// LoadConfig reads a YAML config file (if path is non-empty) and applies
// BLOG_* environment overrides, then fills defaults.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		_, cfg.cacheTTLSet = raw["cacheTTL"]
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	cfg.setDefaults()
	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment. A missing file
// is not an error.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}
}

// applyEnvOverrides reads BLOG_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *SiteConfig) error {
	str := map[string]*string{
		"BLOG_NAME":           &cfg.Name,
		"BLOG_URL":            &cfg.URL,
		"BLOG_DESCRIPTION":    &cfg.Description,
		"BLOG_AUTHOR":         &cfg.Author,
		"BLOG_ADDR":           &cfg.Addr,
		"BLOG_CONTENT_DIR":    &cfg.ContentDir,
		"BLOG_DEFAULT_LOCALE": &cfg.DefaultLocale,
		"BLOG_SNAPSHOT_PATH":  &cfg.SnapshotPath,
		"BLOG_SESSION_SECRET": &cfg.SessionSecret,
		"BLOG_LOG_LEVEL":      &cfg.LogLevel,
		"BLOG_LOG_FORMAT":     &cfg.LogFormat,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("BLOG_LOCALES"); v != "" {
		cfg.Locales = nil
		for _, loc := range strings.Split(v, ",") {
			if loc = strings.TrimSpace(loc); loc != "" {
				cfg.Locales = append(cfg.Locales, loc)
			}
		}
	}

	ints := map[string]*int{
		"BLOG_PAGE_SIZE":  &cfg.PageSize,
		"BLOG_RATE_LIMIT": &cfg.RateLimit,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		"BLOG_CACHE_TTL":        &cfg.CacheTTL,
		"BLOG_REFRESH_INTERVAL": &cfg.RefreshInterval,
		"BLOG_RATE_WINDOW":      &cfg.RateWindow,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
			if key == "BLOG_CACHE_TTL" {
				cfg.cacheTTLSet = true
			}
		}
	}

	bools := map[string]*bool{
		"BLOG_WATCH":          &cfg.Watch,
		"BLOG_INCLUDE_DRAFTS": &cfg.IncludeDrafts,
		"BLOG_COOKIE_SECURE":  &cfg.CookieSecure,
	}
	for key, dst := range bools {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
	}
	return nil
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

// WithLoader serves catalogs from loader instead of the content directory.
func WithLoader(loader CatalogLoader) Option {
	return func(a *App) {
		a.loader = loader
	}
}

// WithMetrics exposes the recorder's registry on /metrics.
func WithMetrics(r MetricsRecorder) Option {
	return func(a *App) {
		a.metrics = r
	}
}

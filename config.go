package atelier

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/eringen/atelier/assets"
)

// SiteConfig holds all configuration for an atelier site.
type SiteConfig struct {
	Name        string `env:"SITE_NAME"`        // Studio name (default "Atelier")
	URL         string `env:"SITE_URL"`         // Canonical URL (default "http://localhost:3000")
	Description string `env:"SITE_DESCRIPTION"` // Description for RSS and meta tags
	Author      string `env:"SITE_AUTHOR"`      // Photographer name for JSON-LD

	Addr         string `env:"ADDR"`          // Listen address (default ":3000")
	DatabasePath string `env:"DATABASE_PATH"` // SQLite path (default "data/atelier.db")
	DatabaseURL  string `env:"DATABASE_URL"`  // Postgres DSN; takes precedence over DatabasePath
	DatabaseLog  bool   `env:"DATABASE_LOG"`  // Log every SQL statement

	AdminUser         string `env:"ADMIN_USER"`          // Identity recorded for admin writes (default "admin")
	AdminPassword     string `env:"ADMIN_PASSWORD"`      // Plain admin password
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"` // bcrypt hash; used instead of AdminPassword when set
	SessionSecret     string `env:"SESSION_SECRET"`      // Required: session encryption secret
	CookieSecure      bool   `env:"COOKIE_SECURE"`       // Set true for HTTPS

	GallerySecret   string        `env:"GALLERY_SECRET"`    // Token signing key (default SessionSecret)
	GalleryTokenTTL time.Duration `env:"GALLERY_TOKEN_TTL"` // Gallery token lifetime (default 12h)

	ContentCacheTTL  time.Duration `env:"CONTENT_CACHE_TTL"`  // Public read cache TTL (default 5min)
	ContentCacheSize int           `env:"CONTENT_CACHE_SIZE"` // In-memory cache entries (default 256)
	RedisURL         string        `env:"REDIS_URL"`          // Use Redis for the content cache when set

	AssetBackend   string `env:"ASSET_BACKEND"`    // disk, memory or s3 (default disk)
	AssetDir       string `env:"ASSET_DIR"`        // Disk backend root (default "data/storage")
	AssetPublicURL string `env:"ASSET_PUBLIC_URL"` // Base of public object URLs (default URL)
	S3Bucket       string `env:"S3_BUCKET"`
	S3Region       string `env:"S3_REGION"`
	S3Endpoint     string `env:"S3_ENDPOINT"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
	S3PathStyle    bool   `env:"S3_PATH_STYLE"`

	MaxUploadSize int64         `env:"MAX_UPLOAD_BYTES"` // Upload cap (default 25MB)
	PublicAPIRate float64       `env:"PUBLIC_API_RATE"`  // Requests per second per IP on /api/ (default 2)
	LoginAttempts int           `env:"LOGIN_ATTEMPTS"`   // Attempts per LoginWindow (default 5)
	LoginWindow   time.Duration `env:"LOGIN_WINDOW"`     // Attempt window (default 1min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Atelier"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/atelier.db"
	}
	if c.AdminUser == "" {
		c.AdminUser = "admin"
	}
	if c.GallerySecret == "" {
		c.GallerySecret = c.SessionSecret
	}
	if c.GalleryTokenTTL == 0 {
		c.GalleryTokenTTL = 12 * time.Hour
	}
	if c.ContentCacheTTL == 0 {
		c.ContentCacheTTL = 5 * time.Minute
	}
	if c.ContentCacheSize == 0 {
		c.ContentCacheSize = 256
	}
	if c.AssetBackend == "" {
		c.AssetBackend = "disk"
	}
	if c.AssetDir == "" {
		c.AssetDir = "data/storage"
	}
	if c.AssetPublicURL == "" {
		c.AssetPublicURL = c.URL
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = 25 << 20
	}
	if c.PublicAPIRate == 0 {
		c.PublicAPIRate = 2
	}
	if c.LoginAttempts == 0 {
		c.LoginAttempts = 5
	}
	if c.LoginWindow == 0 {
		c.LoginWindow = time.Minute
	}
}

func (c *SiteConfig) validate() error {
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		return errors.New("atelier: AdminPassword or AdminPasswordHash is required")
	}
	if c.SessionSecret == "" {
		return errors.New("atelier: SessionSecret is required")
	}
	switch c.AssetBackend {
	case "disk", "memory":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("atelier: S3Bucket is required for the s3 asset backend")
		}
	default:
		return fmt.Errorf("atelier: unknown asset backend %q", c.AssetBackend)
	}
	return nil
}

// LoadConfig reads SiteConfig from the environment. Each existing file in
// envFiles is loaded first without overriding variables already set.
func LoadConfig(envFiles ...string) (SiteConfig, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return SiteConfig{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	var cfg SiteConfig
	if err := env.Parse(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
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

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithDB uses an already opened database instead of opening one from the
// configuration.
func WithDB(db *gorm.DB) Option {
	return func(a *App) {
		a.db = db
	}
}

// WithAssetBackend overrides the object store selected by AssetBackend.
func WithAssetBackend(b assets.Backend) Option {
	return func(a *App) {
		a.assetBackend = b
	}
}

// WithRedis uses client for the content cache instead of dialing RedisURL.
func WithRedis(client *redis.Client) Option {
	return func(a *App) {
		a.redis = client
	}
}

// WithLogger sets the logger shared by echo, the asset client and the
// workflows.
func WithLogger(l *log.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

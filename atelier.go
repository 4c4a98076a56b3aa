// Package atelier is the backend of a photography studio website built with
// Go, Echo and templ. It serves the public pages (home, about, stories, blog,
// contact), guards locked client galleries, and exposes an authenticated admin
// API for editing content and the images behind it.
//
// Users may provide their own templ templates via the ViewFuncs struct;
// pages without a view are served as JSON.
package atelier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/eringen/atelier/assets"
	"github.com/eringen/atelier/imaging"
)

// ViewFuncs holds user-provided templ components for the public pages. A nil
// field makes the page respond with its data as JSON.
type ViewFuncs struct {
	Home        func(page HomePage, cfg SiteConfig) templ.Component
	About       func(page AboutPage, cfg SiteConfig) templ.Component
	Stories     func(page StoriesPage, cfg SiteConfig) templ.Component
	Blog        func(page BlogPage, cfg SiteConfig) templ.Component
	Post        func(page PostPage, cfg SiteConfig) templ.Component
	Contact     func(page ContactPage, cfg SiteConfig) templ.Component
	AdminLogin  func(showError bool, csrfToken string) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central atelier application. It wires together the store, asset
// client, cache, workflows, handlers and middleware.
type App struct {
	Config    SiteConfig
	Echo      *echo.Echo
	Store     *Store
	Assets    *assets.Client
	Cache     *ContentCache
	Workflows *Workflows
	Site      *Site
	Gate      *GalleryGate
	Metrics   *Metrics
	Views     ViewFuncs

	loginLimiter  *LoginLimiter
	unlockLimiter *LoginLimiter
	customRoutes  []func(*App)
	staticDir     string
	db            *gorm.DB
	assetBackend  assets.Backend
	redis         *redis.Client
	logger        *log.Logger
	initialized   bool
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = log.New("atelier")
	}
	a.Echo.Logger = a.logger
	a.Echo.HideBanner = true
	return a
}

// Init opens the store and object storage and registers middleware and
// routes without listening. Start calls it; tests call it directly.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if err := a.Config.validate(); err != nil {
		return err
	}

	if a.db != nil {
		store, err := NewStore(a.db)
		if err != nil {
			return fmt.Errorf("atelier: init store: %w", err)
		}
		a.Store = store
	} else {
		store, err := OpenStore(a.Config)
		if err != nil {
			return fmt.Errorf("atelier: init store: %w", err)
		}
		a.Store = store
	}

	if a.assetBackend == nil {
		b, err := newAssetBackend(a.Config)
		if err != nil {
			return fmt.Errorf("atelier: init assets: %w", err)
		}
		a.assetBackend = b
	}
	a.Metrics = NewMetrics()
	a.Assets = assets.NewClient(a.assetBackend, a.Config.AssetPublicURL,
		assets.WithLogger(a.logger),
		assets.WithHooks(a.Metrics.AssetHooks()),
	)

	cache, err := a.newCache()
	if err != nil {
		return fmt.Errorf("atelier: init cache: %w", err)
	}
	a.Cache = cache

	a.loginLimiter = NewLoginLimiter(a.Config.LoginAttempts, a.Config.LoginWindow)
	a.unlockLimiter = NewLoginLimiter(a.Config.LoginAttempts, a.Config.LoginWindow)

	a.Workflows = NewWorkflows(WorkflowConfig{
		Store:     a.Store,
		Assets:    a.Assets,
		Cache:     a.Cache,
		Processor: imaging.NewProcessor(),
		Logger:    a.logger,
		Metrics:   a.Metrics,
	})
	a.Site = NewSite(a.Config, a.Store, a.Assets, a.Cache)
	a.Gate = NewGalleryGate(a.Store, a.Config.GallerySecret, a.Config.GalleryTokenTTL, a.unlockLimiter, a.Metrics, a.logger)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Start initializes the app and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func newAssetBackend(cfg SiteConfig) (assets.Backend, error) {
	switch cfg.AssetBackend {
	case "memory":
		return assets.NewMemoryBackend(), nil
	case "s3":
		return assets.NewS3Backend(assets.S3Config{
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
	default:
		return assets.NewDiskBackend(cfg.AssetDir)
	}
}

func (a *App) newCache() (*ContentCache, error) {
	client := a.redis
	if client == nil && a.Config.RedisURL != "" {
		opts, err := redis.ParseURL(a.Config.RedisURL)
		if err != nil {
			return nil, err
		}
		client = redis.NewClient(opts)
		a.redis = client
	}
	if client == nil {
		return NewMemoryCache(a.Config.ContentCacheSize, a.Config.ContentCacheTTL), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		a.logger.Warnf("redis unavailable, using in-memory cache: %v", err)
		return NewMemoryCache(a.Config.ContentCacheSize, a.Config.ContentCacheTTL), nil
	}
	return NewRedisCache(client, "atelier:content", a.Config.ContentCacheTTL), nil
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	var errs []error
	if a.loginLimiter != nil {
		a.loginLimiter.Close()
	}
	if a.unlockLimiter != nil {
		a.unlockLimiter.Close()
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}

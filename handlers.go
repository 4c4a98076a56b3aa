package atelier

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/eringen/atelier/assets"
)

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	a.serveAssets()
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: a.Metrics.Registry}))
	e.GET("/healthz", a.handleHealth)

	// Public pages
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/about/", a.handleAbout)
	e.GET("/stories/", a.handleStories)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/contact/", a.handleContact)

	// Gallery gate
	api := e.Group("/api", a.apiRateLimiter())
	api.POST("/stories/:id/unlock", a.handleUnlock)
	api.GET("/stories/:id/gallery", a.handleGallery)

	a.setupAdminRoutes()
}

// serveAssets exposes locally stored objects under the same path layout the
// public URLs use.
func (a *App) serveAssets() {
	prefix := "/storage/v1/object/public"
	switch b := a.assetBackend.(type) {
	case *assets.DiskBackend:
		a.Echo.Static(prefix, b.Root)
	case *assets.MemoryBackend:
		a.Echo.GET(prefix+"/:bucket/*", func(c echo.Context) error {
			bucket, p := c.Param("bucket"), c.Param("*")
			data, ok := b.Get(bucket, p)
			if !ok {
				return echo.ErrNotFound
			}
			return c.Blob(http.StatusOK, b.ContentType(bucket, p), data)
		})
	}
}

func (a *App) handleHome(c echo.Context) error {
	page, err := a.Site.Home(c.Request().Context())
	if err != nil {
		return err
	}
	return renderPage(c, a.Views.Home, page, a.Config)
}

func (a *App) handleAbout(c echo.Context) error {
	page, err := a.Site.About(c.Request().Context())
	if err != nil {
		return err
	}
	return renderPage(c, a.Views.About, page, a.Config)
}

func (a *App) handleStories(c echo.Context) error {
	page, err := a.Site.Stories(c.Request().Context())
	if err != nil {
		return err
	}
	return renderPage(c, a.Views.Stories, page, a.Config)
}

func (a *App) handleBlog(c echo.Context) error {
	page, err := a.Site.Blog(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return err
	}
	return renderPage(c, a.Views.Blog, page, a.Config)
}

func (a *App) handlePost(c echo.Context) error {
	page, err := a.Site.Post(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return renderPage(c, a.Views.Post, page, a.Config)
}

func (a *App) handleContact(c echo.Context) error {
	page, err := a.Site.Contact(c.Request().Context())
	if err != nil {
		return err
	}
	return renderPage(c, a.Views.Contact, page, a.Config)
}

type unlockRequest struct {
	Code string `json:"code" form:"code"`
}

func (a *App) handleUnlock(c echo.Context) error {
	var req unlockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	access, err := a.Gate.Unlock(c.Request().Context(), c.RealIP(), c.Param("id"), req.Code)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, access)
}

func (a *App) handleGallery(c echo.Context) error {
	token := strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	if token == "" {
		token = c.QueryParam("token")
	}
	url, err := a.Gate.Resolve(c.Request().Context(), c.Param("id"), token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, GalleryAccess{GalleryURL: url})
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Site.PublishedPosts(ctx)
	if err != nil {
		return err
	}
	stories, err := a.Site.Stories(ctx)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts, stories.Stories)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Site.PublishedPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleHealth(c echo.Context) error {
	if err := a.Store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /admin/\nDisallow: /api/\n\nSitemap: " + BuildURL(a.Config.URL) + "sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func wantsJSON(c echo.Context) bool {
	path := c.Request().URL.Path
	return strings.HasPrefix(path, "/api/") ||
		strings.HasPrefix(path, "/admin/api/") ||
		strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := StatusCode(err)
	msg := UserMessage(err)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}
	if code >= 500 {
		c.Logger().Errorj(log.JSON{"msg": "request failed", "path": c.Request().URL.Path, "error": err.Error()})
	}

	if !wantsJSON(c) {
		switch {
		case code == http.StatusNotFound && a.Views.NotFound != nil:
			_ = RenderStatus(c, code, a.Views.NotFound())
			return
		case code >= 500 && a.Views.ServerError != nil:
			_ = RenderStatus(c, code, a.Views.ServerError())
			return
		}
	}

	body := map[string]interface{}{"error": msg}
	var ve *ValidationError
	if errors.As(err, &ve) {
		body["fields"] = ve.Fields
	}
	if limiter := a.limiterFor(c); code == http.StatusTooManyRequests && limiter != nil {
		if wait := limiter.RetryAfter(c.RealIP()); wait > 0 {
			c.Response().Header().Set("Retry-After", formatSeconds(wait))
		}
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, body)
}

func (a *App) limiterFor(c echo.Context) *LoginLimiter {
	if strings.HasPrefix(c.Request().URL.Path, "/admin/") {
		return a.loginLimiter
	}
	return a.unlockLimiter
}

func formatSeconds(d time.Duration) string {
	return strconv.Itoa(int(math.Ceil(d.Seconds())))
}

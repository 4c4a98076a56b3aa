package atelier

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

func (a *App) setupAdminRoutes() {
	e := a.Echo
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)

	g := e.Group("/admin/api", requireAdmin, a.limitBody)
	g.GET("/stats", a.handleStats)

	g.GET("/projects", a.handleListProjects)
	g.GET("/projects/:id", a.handleGetProject)
	g.POST("/projects", a.handleSaveProject)
	g.PUT("/projects/:id", a.handleSaveProject)
	g.DELETE("/projects/:id", a.handleDeleteProject)
	g.POST("/projects/:id/publish", a.handleToggleProjectPublished)
	g.POST("/projects/:id/lock", a.handleToggleProjectLocked)

	g.GET("/posts", a.handleListPosts)
	g.GET("/posts/:id", a.handleGetPost)
	g.POST("/posts", a.handleSavePost)
	g.PUT("/posts/:id", a.handleSavePost)
	g.DELETE("/posts/:id", a.handleDeletePost)
	g.POST("/posts/:id/publish", a.handleTogglePostPublished)

	g.GET("/services", a.handleListServices)
	g.POST("/services", a.handleSaveService)
	g.PUT("/services/:id", a.handleSaveService)
	g.DELETE("/services/:id", a.handleDeleteService)
	g.POST("/services/:id/publish", a.handleToggleServicePublished)

	g.GET("/testimonials", a.handleListTestimonials)
	g.POST("/testimonials", a.handleSaveTestimonial)
	g.PUT("/testimonials/:id", a.handleSaveTestimonial)
	g.DELETE("/testimonials/:id", a.handleDeleteTestimonial)
	g.POST("/testimonials/:id/publish", a.handleToggleTestimonialPublished)

	g.GET("/page-seo", a.handleListPageSEO)
	g.PUT("/page-seo/:slug", a.handleSavePageSEO)

	a.setupImageRoutes(g)
}

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		if a.Views.AdminLogin != nil {
			return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"authenticated": false, "csrf": CsrfToken(c)})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"authenticated": true, "csrf": CsrfToken(c)})
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return ErrTooManyAttempts
	}
	if !checkPassword(a.Config, c.FormValue("password")) {
		a.loginLimiter.Record(ip)
		c.Logger().Warnj(log.JSON{"msg": "admin login failed", "ip": ip})
		if a.Views.AdminLogin != nil && !wantsJSON(c) {
			return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(true, CsrfToken(c)))
		}
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid password.")
	}
	a.loginLimiter.Reset(ip)
	if err := setAdminSession(c, a.Config.AdminUser); err != nil {
		return err
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, map[string]bool{"authenticated": true})
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// limitBody caps admin request bodies at the configured upload size plus
// room for the other form fields.
func (a *App) limitBody(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		req.Body = http.MaxBytesReader(c.Response(), req.Body, a.Config.MaxUploadSize+1<<20)
		return next(c)
	}
}

func (a *App) handleStats(c echo.Context) error {
	st, err := a.Workflows.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

// bindForm decodes a JSON, urlencoded or multipart body into form.
func bindForm(c echo.Context, form interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return nil
}

type toggled struct {
	Value bool `json:"value"`
}

func (a *App) handleListProjects(c echo.Context) error {
	out, err := a.Workflows.ListProjects(c.Request().Context(), ProjectFilter(c.QueryParam("filter")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (a *App) handleGetProject(c echo.Context) error {
	p, err := a.Workflows.GetProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (a *App) handleSaveProject(c echo.Context) error {
	var form ProjectForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	thumb, err := a.readUpload(c, "thumbnail")
	if err != nil {
		return err
	}
	form.Thumbnail = thumb
	p, err := a.Workflows.SaveProject(c.Request().Context(), c.Param("id"), form)
	if err != nil {
		return err
	}
	return c.JSON(savedStatus(c), p)
}

func (a *App) handleDeleteProject(c echo.Context) error {
	if err := a.Workflows.DeleteProject(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleToggleProjectPublished(c echo.Context) error {
	v, err := a.Workflows.ToggleProjectPublished(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toggled{v})
}

func (a *App) handleToggleProjectLocked(c echo.Context) error {
	v, err := a.Workflows.ToggleProjectLocked(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toggled{v})
}

func (a *App) handleListPosts(c echo.Context) error {
	out, err := a.Workflows.ListBlogPosts(c.Request().Context(), PostFilter(c.QueryParam("filter")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (a *App) handleGetPost(c echo.Context) error {
	p, err := a.Workflows.GetBlogPost(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (a *App) handleSavePost(c echo.Context) error {
	var form BlogPostForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	img, err := a.readUpload(c, "image_file")
	if err != nil {
		return err
	}
	form.ImageFile = img
	p, err := a.Workflows.SaveBlogPost(c.Request().Context(), c.Param("id"), form)
	if err != nil {
		return err
	}
	return c.JSON(savedStatus(c), p)
}

func (a *App) handleDeletePost(c echo.Context) error {
	if err := a.Workflows.DeleteBlogPost(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleTogglePostPublished(c echo.Context) error {
	v, err := a.Workflows.ToggleBlogPublished(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toggled{v})
}

func (a *App) handleListServices(c echo.Context) error {
	out, err := a.Workflows.ListServices(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (a *App) handleSaveService(c echo.Context) error {
	var form ServiceForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	media, err := a.readUpload(c, "media")
	if err != nil {
		return err
	}
	form.Media = media
	s, err := a.Workflows.SaveService(c.Request().Context(), c.Param("id"), form)
	if err != nil {
		return err
	}
	return c.JSON(savedStatus(c), s)
}

func (a *App) handleDeleteService(c echo.Context) error {
	if err := a.Workflows.DeleteService(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleToggleServicePublished(c echo.Context) error {
	v, err := a.Workflows.ToggleServicePublished(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toggled{v})
}

func (a *App) handleListTestimonials(c echo.Context) error {
	out, err := a.Workflows.ListTestimonials(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (a *App) handleSaveTestimonial(c echo.Context) error {
	var form TestimonialForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	t, err := a.Workflows.SaveTestimonial(c.Request().Context(), c.Param("id"), form)
	if err != nil {
		return err
	}
	return c.JSON(savedStatus(c), t)
}

func (a *App) handleDeleteTestimonial(c echo.Context) error {
	if err := a.Workflows.DeleteTestimonial(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleToggleTestimonialPublished(c echo.Context) error {
	v, err := a.Workflows.ToggleTestimonialPublished(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toggled{v})
}

func (a *App) handleListPageSEO(c echo.Context) error {
	out, err := a.Workflows.ListPageSEO(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (a *App) handleSavePageSEO(c echo.Context) error {
	var form PageSEOForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	out, err := a.Workflows.SavePageSEO(c.Request().Context(), c.Param("slug"), form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// savedStatus is 201 for creates and 200 for updates.
func savedStatus(c echo.Context) int {
	if c.Param("id") == "" {
		return http.StatusCreated
	}
	return http.StatusOK
}

func intParam(c echo.Context, name string) (int, error) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, invalidField(name, "must be a number")
	}
	return n, nil
}

package atelier

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// renderPage renders data with view when the site provides one and as JSON
// otherwise.
func renderPage[T any](c echo.Context, view func(T, SiteConfig) templ.Component, data T, cfg SiteConfig) error {
	if view == nil {
		return c.JSON(http.StatusOK, data)
	}
	return Render(c, view(data, cfg))
}

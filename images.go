package atelier

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// readUpload returns the file posted in field, or nil when the request has
// none.
func (a *App) readUpload(c echo.Context, field string) (*Upload, error) {
	file, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid upload")
	}
	if file.Size > a.Config.MaxUploadSize {
		return nil, invalidField(field, fmt.Sprintf("is too large (max %dMB)", a.Config.MaxUploadSize>>20))
	}
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, a.Config.MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > a.Config.MaxUploadSize {
		return nil, invalidField(field, fmt.Sprintf("is too large (max %dMB)", a.Config.MaxUploadSize>>20))
	}
	return &Upload{Filename: file.Filename, Data: data}, nil
}

func (a *App) setupImageRoutes(g *echo.Group) {
	g.GET("/homepage-images", a.handleListHomepageImages)
	g.PUT("/homepage-images/:position", a.handleSetHomepageImage)
	g.PATCH("/homepage-images/:position", a.handleSetHomepageImageAlt)
	g.DELETE("/homepage-images/:position", a.handleResetHomepageImage)

	g.GET("/about-images", a.handleListAboutImages)
	g.PUT("/about-images/:key", a.handleSetAboutImage)
	g.PATCH("/about-images/:key", a.handleSetAboutImageAlt)
	g.DELETE("/about-images/:key", a.handleResetAboutImage)

	g.GET("/sections", a.handleListSections)
	g.PUT("/sections/:key", a.handleSetSection)
	g.DELETE("/sections/:key", a.handleResetSection)
}

// slotListing pairs stored rows with the images the public pages will show.
type slotListing[K comparable, R any] struct {
	Stored   []R                 `json:"stored"`
	Resolved map[K]ResolvedImage `json:"resolved"`
}

func (a *App) handleListHomepageImages(c echo.Context) error {
	rows, err := a.Workflows.ListHomepageImages(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, slotListing[int, HomepageImage]{
		Stored:   rows,
		Resolved: ResolveHomepageImages(a.Assets, rows),
	})
}

func (a *App) handleSetHomepageImage(c echo.Context) error {
	pos, err := intParam(c, "position")
	if err != nil {
		return err
	}
	u, err := a.readUpload(c, "image")
	if err != nil {
		return err
	}
	img, err := a.Workflows.SetHomepageImage(c.Request().Context(), pos, u, c.FormValue("alt_text"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, img)
}

func (a *App) handleSetHomepageImageAlt(c echo.Context) error {
	pos, err := intParam(c, "position")
	if err != nil {
		return err
	}
	if err := a.Workflows.SetHomepageImageAlt(c.Request().Context(), pos, c.FormValue("alt_text")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleResetHomepageImage(c echo.Context) error {
	pos, err := intParam(c, "position")
	if err != nil {
		return err
	}
	if err := a.Workflows.ResetHomepageImage(c.Request().Context(), pos); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleListAboutImages(c echo.Context) error {
	rows, err := a.Workflows.ListAboutImages(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, slotListing[string, AboutPageImage]{
		Stored:   rows,
		Resolved: ResolveAboutImages(a.Assets, rows),
	})
}

func (a *App) handleSetAboutImage(c echo.Context) error {
	u, err := a.readUpload(c, "image")
	if err != nil {
		return err
	}
	img, err := a.Workflows.SetAboutImage(c.Request().Context(), c.Param("key"), u, c.FormValue("alt_text"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, img)
}

func (a *App) handleSetAboutImageAlt(c echo.Context) error {
	if err := a.Workflows.SetAboutImageAlt(c.Request().Context(), c.Param("key"), c.FormValue("alt_text")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleResetAboutImage(c echo.Context) error {
	if err := a.Workflows.ResetAboutImage(c.Request().Context(), c.Param("key")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleListSections(c echo.Context) error {
	rows, err := a.Workflows.ListSectionBackgrounds(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

func (a *App) handleSetSection(c echo.Context) error {
	opacity := 0.0
	if raw := c.FormValue("overlay_opacity"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return invalidField("overlay_opacity", "must be a number")
		}
		opacity = v
	}
	u, err := a.readUpload(c, "media")
	if err != nil {
		return err
	}
	bg, err := a.Workflows.SetSectionBackground(c.Request().Context(), c.Param("key"), u, opacity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bg)
}

func (a *App) handleResetSection(c echo.Context) error {
	if err := a.Workflows.ResetSectionBackground(c.Request().Context(), c.Param("key")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

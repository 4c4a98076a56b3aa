package atelier

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// staticPages are the fixed public pages listed in the sitemap.
var staticPages = []string{"about", "stories", "blog", "contact"}

func buildSitemap(base string, posts []BlogPost, stories []Project) sitemapURLSet {
	urls := []sitemapURL{{Loc: BuildURL(base)}}
	for _, p := range staticPages {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, p)})
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "blog", p.Slug),
			LastMod: p.UpdatedAt.UTC().Format("2006-01-02"),
		})
	}
	// Stories have no page of their own; their freshest edit dates the
	// stories index.
	if len(stories) > 0 {
		latest := stories[0].UpdatedAt
		for _, s := range stories[1:] {
			if s.UpdatedAt.After(latest) {
				latest = s.UpdatedAt
			}
		}
		for i := range urls {
			if urls[i].Loc == BuildURL(base, "stories") {
				urls[i].LastMod = latest.UTC().Format("2006-01-02")
			}
		}
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func (a *App) renderSitemap(c echo.Context, posts []BlogPost, stories []Project) error {
	sitemap := buildSitemap(a.Config.URL, posts, stories)
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}

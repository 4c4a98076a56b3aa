package atelier

import (
	"context"
	"strings"

	"github.com/eringen/atelier/assets"
	"github.com/eringen/atelier/records"
)

// Page slugs with their own SEO settings row.
const (
	PageHome    = "home"
	PageAbout   = "about"
	PageStories = "stories"
	PageBlog    = "blog"
	PageContact = "contact"
)

// HomePage is everything the home page template needs.
type HomePage struct {
	Images       map[int]ResolvedImage `json:"images"`
	Logo         ResolvedImage         `json:"logo"`
	Featured     []Project             `json:"featured"`
	Services     []Service             `json:"services"`
	Backgrounds  map[string]Background `json:"backgrounds"`
	Testimonials []Testimonial         `json:"testimonials"`
	JSONLD       string                `json:"json_ld"`
	Meta         PageMeta              `json:"meta"`
}

// Background is a section background ready for a template.
type Background struct {
	URL            string  `json:"url"`
	MediaType      string  `json:"media_type"`
	OverlayOpacity float64 `json:"overlay_opacity"`
}

// AboutPage carries the about page images.
type AboutPage struct {
	Images map[string]ResolvedImage `json:"images"`
	Meta   PageMeta                 `json:"meta"`
}

// StoriesPage lists published stories with their secrets removed.
type StoriesPage struct {
	Stories []Project     `json:"stories"`
	Header  ResolvedImage `json:"header"`
	Meta    PageMeta      `json:"meta"`
}

// BlogPage lists published posts, optionally within one category.
type BlogPage struct {
	Posts      []BlogPost    `json:"posts"`
	Category   string        `json:"category,omitempty"`
	Categories []string      `json:"categories"`
	Header     ResolvedImage `json:"header"`
	Meta       PageMeta      `json:"meta"`
}

// PostPage is a single published post and its related posts.
type PostPage struct {
	Post    BlogPost   `json:"post"`
	Related []BlogPost `json:"related"`
	JSONLD  string     `json:"json_ld"`
	Meta    PageMeta   `json:"meta"`
}

// ContactPage carries the contact page header.
type ContactPage struct {
	Header     ResolvedImage `json:"header"`
	Background *Background   `json:"background,omitempty"`
	Meta       PageMeta      `json:"meta"`
}

// relatedLimit caps the related posts shown under a post.
const relatedLimit = 3

// featuredLimit caps the stories shown on the home page.
const featuredLimit = 6

// Site serves the public read side. Reads go through the content cache and
// never require an identity.
type Site struct {
	cfg    SiteConfig
	store  *Store
	assets *assets.Client
	cache  *ContentCache
}

// NewSite returns a Site. cache may be nil.
func NewSite(cfg SiteConfig, store *Store, client *assets.Client, cache *ContentCache) *Site {
	return &Site{cfg: cfg, store: store, assets: client, cache: cache}
}

var published = records.Eq("published", true)

// Home loads the home page.
func (s *Site) Home(ctx context.Context) (HomePage, error) {
	return cached(ctx, s.cache, "home", func() (HomePage, error) {
		var out HomePage
		imgs, err := s.store.HomepageImages.List(ctx, records.Query{})
		if err != nil {
			return out, err
		}
		out.Images = ResolveHomepageImages(s.assets, imgs)

		if out.Logo, err = s.aboutImage(ctx, "site_logo"); err != nil {
			return out, err
		}
		if out.Featured, err = s.stories(ctx, featuredLimit); err != nil {
			return out, err
		}
		if out.Services, err = s.store.Services.List(ctx, records.Query{
			Filters: []records.Filter{published},
			OrderBy: []records.Order{records.Asc("display_order")},
		}); err != nil {
			return out, err
		}
		if out.Testimonials, err = s.store.Testimonials.List(ctx, records.Query{
			Filters: []records.Filter{published},
			OrderBy: []records.Order{records.Asc("display_order")},
		}); err != nil {
			return out, err
		}
		if out.Backgrounds, err = s.backgrounds(ctx); err != nil {
			return out, err
		}
		if out.Meta, err = s.meta(ctx, PageHome, ""); err != nil {
			return out, err
		}
		out.JSONLD = StudioJsonLD(s.cfg)
		return out, nil
	})
}

// About loads the about page.
func (s *Site) About(ctx context.Context) (AboutPage, error) {
	return cached(ctx, s.cache, "about", func() (AboutPage, error) {
		rows, err := s.store.AboutImages.List(ctx, records.Query{})
		if err != nil {
			return AboutPage{}, err
		}
		meta, err := s.meta(ctx, PageAbout, "about")
		if err != nil {
			return AboutPage{}, err
		}
		return AboutPage{Images: ResolveAboutImages(s.assets, rows), Meta: meta}, nil
	})
}

// Stories loads every published story, newest event first.
func (s *Site) Stories(ctx context.Context) (StoriesPage, error) {
	return cached(ctx, s.cache, "stories", func() (StoriesPage, error) {
		var out StoriesPage
		var err error
		if out.Stories, err = s.stories(ctx, 0); err != nil {
			return out, err
		}
		if out.Header, err = s.aboutImage(ctx, "stories_header"); err != nil {
			return out, err
		}
		out.Meta, err = s.meta(ctx, PageStories, "stories")
		return out, err
	})
}

func (s *Site) stories(ctx context.Context, limit int) ([]Project, error) {
	rows, err := s.store.Projects.List(ctx, records.Query{
		Filters: []records.Filter{published},
		OrderBy: []records.Order{records.Desc("event_date"), records.Desc("created_at")},
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i] = rows[i].Public()
		rows[i].ThumbnailURL = ResolveAssetURL(s.assets, rows[i].ThumbnailURL, "")
	}
	return rows, nil
}

// Blog loads published posts, newest first. An empty category lists all.
func (s *Site) Blog(ctx context.Context, category string) (BlogPage, error) {
	category = strings.TrimSpace(category)
	return cached(ctx, s.cache, "blog:"+category, func() (BlogPage, error) {
		out := BlogPage{Category: category, Categories: BlogCategories}
		q := records.Query{
			Filters: []records.Filter{published},
			OrderBy: []records.Order{records.Desc("published_at"), records.Desc("created_at")},
		}
		if category != "" {
			q.Filters = append(q.Filters, records.Eq("category", category))
		}
		var err error
		if out.Posts, err = s.store.Posts.List(ctx, q); err != nil {
			return out, err
		}
		if out.Header, err = s.aboutImage(ctx, "blog_header"); err != nil {
			return out, err
		}
		out.Meta, err = s.meta(ctx, PageBlog, "blog")
		return out, err
	})
}

// Post loads a published post by slug with up to three related posts from the
// same category. Drafts are reported as ErrNotFound.
func (s *Site) Post(ctx context.Context, slug string) (PostPage, error) {
	return cached(ctx, s.cache, "post:"+slug, func() (PostPage, error) {
		p, err := s.store.Posts.GetOne(ctx, records.Eq("slug", slug), published)
		if err != nil {
			return PostPage{}, err
		}
		if p == nil {
			return PostPage{}, ErrNotFound
		}
		related, err := s.store.Posts.List(ctx, records.Query{
			Filters: []records.Filter{published, records.Eq("category", p.Category), records.Neq("id", p.ID)},
			OrderBy: []records.Order{records.Desc("published_at"), records.Desc("created_at")},
			Limit:   relatedLimit,
		})
		if err != nil {
			return PostPage{}, err
		}
		return PostPage{
			Post:    *p,
			Related: related,
			JSONLD:  BlogPostingJsonLD(*p, s.cfg),
			Meta:    postMeta(*p, s.cfg),
		}, nil
	})
}

// Contact loads the contact page.
func (s *Site) Contact(ctx context.Context) (ContactPage, error) {
	return cached(ctx, s.cache, "contact", func() (ContactPage, error) {
		var out ContactPage
		var err error
		if out.Header, err = s.aboutImage(ctx, "contact_header"); err != nil {
			return out, err
		}
		bgs, err := s.backgrounds(ctx)
		if err != nil {
			return out, err
		}
		if bg, ok := bgs["contact"]; ok {
			out.Background = &bg
		}
		out.Meta, err = s.meta(ctx, PageContact, "contact")
		return out, err
	})
}

// PublishedPosts returns every published post for the feed and sitemap.
func (s *Site) PublishedPosts(ctx context.Context) ([]BlogPost, error) {
	return cached(ctx, s.cache, "posts", func() ([]BlogPost, error) {
		return s.store.Posts.List(ctx, records.Query{
			Filters: []records.Filter{published},
			OrderBy: []records.Order{records.Desc("published_at"), records.Desc("created_at")},
		})
	})
}

func (s *Site) aboutImage(ctx context.Context, key string) (ResolvedImage, error) {
	row, err := s.store.AboutImages.GetOne(ctx, records.Eq("image_key", key))
	if err != nil {
		return ResolvedImage{}, err
	}
	var rows []AboutPageImage
	if row != nil {
		rows = append(rows, *row)
	}
	return ResolveAboutImages(s.assets, rows)[key], nil
}

func (s *Site) backgrounds(ctx context.Context) (map[string]Background, error) {
	rows, err := s.store.SectionBackgrounds.List(ctx, records.Query{})
	if err != nil {
		return nil, err
	}
	out := make(map[string]Background, len(rows))
	for _, r := range rows {
		if r.MediaURL == "" {
			continue
		}
		out[r.SectionKey] = Background{
			URL:            ResolveAssetURL(s.assets, r.MediaURL, ""),
			MediaType:      firstNonEmpty(r.MediaType, MediaImage),
			OverlayOpacity: r.OverlayOpacity,
		}
	}
	return out, nil
}

// meta resolves head metadata for a page from its SEO row, falling back to
// the site defaults when the row or a field is missing.
func (s *Site) meta(ctx context.Context, slug, path string) (PageMeta, error) {
	row, err := s.store.PageSEO.GetOne(ctx, records.Eq("page_slug", slug))
	if err != nil {
		return PageMeta{}, err
	}
	return pageMeta(row, s.cfg, path), nil
}

func pageMeta(row *PageSEOSettings, cfg SiteConfig, path string) PageMeta {
	url := BuildURL(cfg.URL)
	if path != "" {
		url = BuildURL(cfg.URL, path)
	}
	m := PageMeta{
		Title:       cfg.Name,
		Description: cfg.Description,
		URL:         url,
		OGType:      "website",
		Robots:      DefaultRobotsMeta,
		TwitterCard: "summary_large_image",
	}
	if row == nil {
		return m
	}
	m.Title = firstNonEmpty(row.SEOTitle, row.OGTitle, m.Title)
	m.Description = firstNonEmpty(row.MetaDescription, row.OGDescription, m.Description)
	m.Keywords = row.Keywords
	m.URL = firstNonEmpty(row.CanonicalURL, m.URL)
	m.OGType = firstNonEmpty(row.OGType, m.OGType)
	m.OGImage = firstNonEmpty(row.OGImage, row.TwitterImage)
	m.Robots = firstNonEmpty(row.RobotsMeta, m.Robots)
	m.TwitterCard = firstNonEmpty(row.TwitterCard, m.TwitterCard)
	return m
}

func postMeta(p BlogPost, cfg SiteConfig) PageMeta {
	return PageMeta{
		Title:       firstNonEmpty(p.SEOTitle, p.OGTitle, p.Title),
		Description: firstNonEmpty(p.SEODescription, p.OGDescription, p.Excerpt),
		Keywords:    p.SEOKeywords,
		URL:         firstNonEmpty(p.CanonicalURL, BuildURL(cfg.URL, "blog", p.Slug)),
		OGType:      "article",
		OGImage:     firstNonEmpty(p.OGImage, p.Image),
		Robots:      firstNonEmpty(p.RobotsMeta, DefaultRobotsMeta),
		TwitterCard: "summary_large_image",
	}
}

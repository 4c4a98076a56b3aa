package atelier

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/atelier/assets"
)

var testSiteConfig = SiteConfig{
	Name:        "Studio",
	Description: "Wedding photography",
	URL:         "https://studio.example",
}

func newTestSite(t *testing.T) (*Site, *Store) {
	t.Helper()
	store := setupTestStore(t)
	client := assets.NewClient(assets.NewMemoryBackend(), "https://cdn.example.com")
	return NewSite(testSiteConfig, store, client, NewMemoryCache(64, time.Minute)), store
}

func TestStoriesHideSecrets(t *testing.T) {
	site, store := newTestSite(t)
	insertProject(t, store, Project{Title: "Locked", GalleryURL: "https://g.example/locked", AccessCode: "SECRET", IsLocked: true, Published: true, EventDate: "2024-05-01"})
	insertProject(t, store, Project{Title: "Open", GalleryURL: "https://g.example/open", Published: true, EventDate: "2024-06-01"})
	insertProject(t, store, Project{Title: "Draft", GalleryURL: "https://g.example/draft"})

	page, err := site.Stories(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Stories, 2)

	assert.Equal(t, "Open", page.Stories[0].Title, "newest event first")
	locked := page.Stories[1]
	assert.Empty(t, locked.AccessCode)
	assert.Empty(t, locked.GalleryURL)
	assert.True(t, locked.IsLocked)
	assert.Equal(t, "https://g.example/open", page.Stories[0].GalleryURL)
	assert.Equal(t, DefaultAboutImage("stories_header"), page.Header.URL)
}

func TestStoriesCacheBustThumbnails(t *testing.T) {
	site, store := newTestSite(t)
	insertProject(t, store, Project{
		Title:        "Thumb",
		GalleryURL:   "https://g.example/t",
		Published:    true,
		ThumbnailURL: "https://cdn.example.com/storage/v1/object/public/project-thumbnails/a.jpg",
	})
	insertProject(t, store, Project{
		Title:        "Foreign",
		GalleryURL:   "https://g.example/f",
		Published:    true,
		ThumbnailURL: "https://elsewhere.example/b.jpg",
	})

	page, err := site.Stories(context.Background())
	require.NoError(t, err)
	for _, s := range page.Stories {
		switch s.Title {
		case "Thumb":
			assert.Contains(t, s.ThumbnailURL, "?t=")
		case "Foreign":
			assert.Equal(t, "https://elsewhere.example/b.jpg", s.ThumbnailURL)
		}
	}
}

func TestHomeFeaturedLimit(t *testing.T) {
	site, store := newTestSite(t)
	for i := 0; i < 8; i++ {
		insertProject(t, store, Project{
			Title:      fmt.Sprintf("Story %d", i),
			GalleryURL: "https://g.example/s",
			Published:  true,
			EventDate:  fmt.Sprintf("2024-01-%02d", i+1),
		})
	}
	_, err := store.Services.Insert(context.Background(), Service{Title: "Hidden"})
	require.NoError(t, err)
	_, err = store.Services.Insert(context.Background(), Service{Title: "Shown", Published: true})
	require.NoError(t, err)

	page, err := site.Home(context.Background())
	require.NoError(t, err)
	assert.Len(t, page.Featured, featuredLimit)
	assert.Equal(t, "Story 7", page.Featured[0].Title)
	require.Len(t, page.Services, 1)
	assert.Equal(t, "Shown", page.Services[0].Title)
	assert.Len(t, page.Images, len(HomepageSlots))
	assert.True(t, page.Images[0].Default)
	assert.Equal(t, "Studio", page.Meta.Title)
}

func insertPost(t *testing.T, store *Store, p BlogPost) BlogPost {
	t.Helper()
	out, err := store.Posts.Insert(context.Background(), p)
	require.NoError(t, err)
	return out
}

func publishedAt(days int) *time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
	return &t
}

func TestBlogCategoryAndOrder(t *testing.T) {
	site, store := newTestSite(t)
	insertPost(t, store, BlogPost{Title: "Old tip", Slug: "old-tip", Category: "Photography Tips", Published: true, PublishedAt: publishedAt(1)})
	insertPost(t, store, BlogPost{Title: "New tip", Slug: "new-tip", Category: "Photography Tips", Published: true, PublishedAt: publishedAt(5)})
	insertPost(t, store, BlogPost{Title: "Trend", Slug: "trend", Category: "Trends", Published: true, PublishedAt: publishedAt(3)})
	insertPost(t, store, BlogPost{Title: "Draft", Slug: "draft", Category: "Trends"})

	all, err := site.Blog(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all.Posts, 3)
	assert.Equal(t, []string{"new-tip", "trend", "old-tip"}, postSlugs(all.Posts))
	assert.Equal(t, BlogCategories, all.Categories)

	tips, err := site.Blog(context.Background(), "Photography Tips")
	require.NoError(t, err)
	assert.Equal(t, []string{"new-tip", "old-tip"}, postSlugs(tips.Posts))
	assert.Equal(t, "Photography Tips", tips.Category)
}

func postSlugs(posts []BlogPost) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}

func TestPostRelated(t *testing.T) {
	site, store := newTestSite(t)
	for i := 0; i < 5; i++ {
		insertPost(t, store, BlogPost{
			Title:       fmt.Sprintf("Real %d", i),
			Slug:        fmt.Sprintf("real-%d", i),
			Category:    "Real Weddings",
			Published:   true,
			PublishedAt: publishedAt(i),
		})
	}
	insertPost(t, store, BlogPost{Title: "Other", Slug: "other", Category: "Trends", Published: true, PublishedAt: publishedAt(9)})

	page, err := site.Post(context.Background(), "real-0")
	require.NoError(t, err)
	assert.Equal(t, "Real 0", page.Post.Title)
	require.Len(t, page.Related, relatedLimit)
	for _, r := range page.Related {
		assert.NotEqual(t, "real-0", r.Slug)
		assert.Equal(t, "Real Weddings", r.Category)
	}
	assert.Equal(t, "article", page.Meta.OGType)
	assert.Equal(t, "https://studio.example/blog/real-0/", page.Meta.URL)
	assert.True(t, strings.Contains(page.JSONLD, "BlogPosting"))
}

func TestPostDraftIsNotFound(t *testing.T) {
	site, store := newTestSite(t)
	insertPost(t, store, BlogPost{Title: "Hidden", Slug: "hidden", Category: "Trends"})

	_, err := site.Post(context.Background(), "hidden")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = site.Post(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContactBackground(t *testing.T) {
	site, store := newTestSite(t)
	_, err := store.SectionBackgrounds.Insert(context.Background(), SectionBackground{
		SectionKey:     "contact",
		MediaURL:       "https://elsewhere.example/bg.mp4",
		MediaType:      MediaVideo,
		OverlayOpacity: 0.3,
	})
	require.NoError(t, err)

	page, err := site.Contact(context.Background())
	require.NoError(t, err)
	require.NotNil(t, page.Background)
	assert.Equal(t, MediaVideo, page.Background.MediaType)
	assert.InDelta(t, 0.3, page.Background.OverlayOpacity, 1e-9)
	assert.Equal(t, "https://studio.example/contact/", page.Meta.URL)
}

func TestPageMetaDefaults(t *testing.T) {
	m := pageMeta(nil, testSiteConfig, "about")
	assert.Equal(t, PageMeta{
		Title:       "Studio",
		Description: "Wedding photography",
		URL:         "https://studio.example/about/",
		OGType:      "website",
		Robots:      DefaultRobotsMeta,
		TwitterCard: "summary_large_image",
	}, m)

	m = pageMeta(&PageSEOSettings{
		SEOTitle:      "About us",
		OGDescription: "Meet the team",
		OGType:        "profile",
		TwitterImage:  "https://img.example/t.jpg",
	}, testSiteConfig, "about")
	assert.Equal(t, "About us", m.Title)
	assert.Equal(t, "Meet the team", m.Description)
	assert.Equal(t, "profile", m.OGType)
	assert.Equal(t, "https://img.example/t.jpg", m.OGImage)
	assert.Equal(t, DefaultRobotsMeta, m.Robots)
}

func TestSiteReadsAreCached(t *testing.T) {
	site, store := newTestSite(t)
	ctx := context.Background()

	_, err := site.Stories(ctx)
	require.NoError(t, err)
	insertProject(t, store, Project{Title: "Late", GalleryURL: "https://g.example/l", Published: true})

	page, err := site.Stories(ctx)
	require.NoError(t, err)
	assert.Empty(t, page.Stories, "a direct insert is not visible until the cache is invalidated")

	site.cache.Invalidate(ctx)
	page, err = site.Stories(ctx)
	require.NoError(t, err)
	assert.Len(t, page.Stories, 1)

	hits, misses := site.cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}

package atelier

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/eringen/atelier/records"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := records.OpenSQLite(filepath.Join(t.TempDir(), "test.db"), records.Config(false))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	s, err := NewStore(db)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.DB() == nil {
		t.Fatal("db should not be nil")
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	for _, m := range models {
		if !s.DB().Migrator().HasTable(m) {
			t.Errorf("table for %T was not migrated", m)
		}
	}
}

func TestStoreCollections(t *testing.T) {
	s := setupTestStore(t)
	want := map[string]string{
		"projects":            s.Projects.Collection(),
		"blog_posts":          s.Posts.Collection(),
		"services":            s.Services.Collection(),
		"testimonials":        s.Testimonials.Collection(),
		"page_seo_settings":   s.PageSEO.Collection(),
		"homepage_images":     s.HomepageImages.Collection(),
		"about_page_images":   s.AboutImages.Collection(),
		"section_backgrounds": s.SectionBackgrounds.Collection(),
	}
	for name, got := range want {
		if got != name {
			t.Errorf("collection = %q, want %q", got, name)
		}
	}
}

func TestStoreStats(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	projects := []Project{
		{Title: "A", GalleryURL: "https://g.example/a", Published: true},
		{Title: "B", GalleryURL: "https://g.example/b", Published: true, IsLocked: true, AccessCode: "X"},
		{Title: "C", GalleryURL: "https://g.example/c"},
	}
	for _, p := range projects {
		if _, err := s.Projects.Insert(ctx, p); err != nil {
			t.Fatalf("insert project: %v", err)
		}
	}
	if _, err := s.Posts.Insert(ctx, BlogPost{Title: "P", Slug: "p", Published: true}); err != nil {
		t.Fatalf("insert post: %v", err)
	}
	if _, err := s.Posts.Insert(ctx, BlogPost{Title: "Q", Slug: "q"}); err != nil {
		t.Fatalf("insert post: %v", err)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	want := Stats{Projects: 3, PublishedProjects: 2, LockedProjects: 1, BlogPosts: 2, PublishedPosts: 1}
	if st != want {
		t.Fatalf("Stats = %+v, want %+v", st, want)
	}
}

func TestBlogPostSEOColumns(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	in := BlogPost{Title: "T", Slug: "t", SEO: SEO{SEOTitle: "Seo", OGTitle: "Og", RobotsMeta: "noindex"}}
	if _, err := s.Posts.Insert(ctx, in); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := s.Posts.GetOne(ctx, records.Eq("seo_title", "Seo"), records.Eq("og_title", "Og"))
	if err != nil {
		t.Fatalf("GetOne: %v", err)
	}
	if got == nil || got.RobotsMeta != "noindex" {
		t.Fatalf("GetOne = %+v, want the inserted post", got)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	cfg := SiteConfig{Name: "Studio", Description: "Photos"}

	res, err := Seed(ctx, s, cfg)
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if res.PageSEO != len(defaultPageSEO) || res.AboutImages != len(AboutImageSlots) {
		t.Fatalf("first seed = %+v", res)
	}
	res, err = Seed(ctx, s, cfg)
	if err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}
	if res != (SeedResult{}) {
		t.Fatalf("second seed created rows: %+v", res)
	}

	home, err := s.PageSEO.GetOne(ctx, records.Eq("page_slug", PageHome))
	if err != nil || home == nil {
		t.Fatalf("home SEO row missing: %v", err)
	}
	if home.SEOTitle != "Home | Studio" || home.RobotsMeta != DefaultRobotsMeta {
		t.Errorf("home row = %+v", home)
	}
}

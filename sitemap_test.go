package atelier

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/eringen/atelier/records"
)

func TestBuildSitemap(t *testing.T) {
	updated := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	posts := []BlogPost{{Model: records.Model{UpdatedAt: updated}, Slug: "first"}}
	stories := []Project{
		{Model: records.Model{UpdatedAt: updated.AddDate(0, 0, -3)}},
		{Model: records.Model{UpdatedAt: updated.AddDate(0, 0, 2)}},
	}

	sm := buildSitemap("https://studio.example", posts, stories)
	if len(sm.URLs) != 1+len(staticPages)+1 {
		t.Fatalf("got %d urls: %+v", len(sm.URLs), sm.URLs)
	}
	if sm.URLs[0].Loc != "https://studio.example" {
		t.Errorf("first url = %q", sm.URLs[0].Loc)
	}
	byLoc := make(map[string]string)
	for _, u := range sm.URLs {
		byLoc[u.Loc] = u.LastMod
	}
	if got := byLoc["https://studio.example/blog/first/"]; got != "2024-03-09" {
		t.Errorf("post lastmod = %q", got)
	}
	if got := byLoc["https://studio.example/stories/"]; got != "2024-03-11" {
		t.Errorf("stories lastmod = %q, want the latest story", got)
	}
	if got, ok := byLoc["https://studio.example/contact/"]; !ok || got != "" {
		t.Errorf("contact entry = %q, %v", got, ok)
	}

	out, err := xml.Marshal(sm)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`) {
		t.Errorf("missing namespace: %s", out)
	}
}

func TestBuildFeed(t *testing.T) {
	pub := time.Date(2024, 2, 1, 8, 30, 0, 0, time.UTC)
	cfg := SiteConfig{Name: "Studio", URL: "https://studio.example", Description: "Photos"}
	feed := buildFeed(cfg, []BlogPost{
		{Title: "Hello", Slug: "hello", Excerpt: "Hi there", Category: "Trends", PublishedAt: &pub},
		{Title: "Undated", Slug: "undated"},
	})

	if feed.Version != "2.0" || feed.Channel.Title != "Studio" || feed.Channel.Link != "https://studio.example" {
		t.Fatalf("channel = %+v", feed.Channel)
	}
	if len(feed.Channel.Items) != 2 {
		t.Fatalf("got %d items", len(feed.Channel.Items))
	}
	item := feed.Channel.Items[0]
	if item.Link != "https://studio.example/blog/hello/" || item.GUID != item.Link {
		t.Errorf("item link = %q guid = %q", item.Link, item.GUID)
	}
	if item.PubDate != "Thu, 01 Feb 2024 08:30:00 +0000" {
		t.Errorf("pubDate = %q", item.PubDate)
	}
	if item.Description != "Hi there" || item.Category != "Trends" {
		t.Errorf("item = %+v", item)
	}
	if feed.Channel.Items[1].PubDate != "" {
		t.Errorf("undated post has pubDate %q", feed.Channel.Items[1].PubDate)
	}
}

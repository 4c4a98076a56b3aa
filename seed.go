package atelier

import (
	"context"
	"fmt"

	"github.com/eringen/atelier/records"
)

// defaultPageSEO are the rows a fresh install starts with.
var defaultPageSEO = []PageSEOSettings{
	{PageSlug: PageHome, PageName: "Home", OGType: "website"},
	{PageSlug: PageAbout, PageName: "About", OGType: "profile"},
	{PageSlug: PageStories, PageName: "Stories", OGType: "website"},
	{PageSlug: PageBlog, PageName: "Blog", OGType: "website"},
	{PageSlug: PageContact, PageName: "Contact", OGType: "website"},
}

// SeedResult reports how many rows Seed created.
type SeedResult struct {
	PageSEO     int
	AboutImages int
}

// Seed inserts the default page SEO rows and an empty row for every about
// image slot. Existing rows are left alone, so it is safe to run repeatedly.
func Seed(ctx context.Context, s *Store, cfg SiteConfig) (SeedResult, error) {
	var res SeedResult
	for _, row := range defaultPageSEO {
		exists, err := s.PageSEO.Exists(ctx, records.Eq("page_slug", row.PageSlug))
		if err != nil {
			return res, err
		}
		if exists {
			continue
		}
		row.SEOTitle = row.PageName + " | " + cfg.Name
		row.MetaDescription = cfg.Description
		row.RobotsMeta = DefaultRobotsMeta
		row.TwitterCard = "summary_large_image"
		if _, err := s.PageSEO.Insert(ctx, row); err != nil {
			return res, fmt.Errorf("seed page %s: %w", row.PageSlug, err)
		}
		res.PageSEO++
	}
	for i, slot := range AboutImageSlots {
		exists, err := s.AboutImages.Exists(ctx, records.Eq("image_key", slot.Key))
		if err != nil {
			return res, err
		}
		if exists {
			continue
		}
		if _, err := s.AboutImages.Insert(ctx, AboutPageImage{ImageKey: slot.Key, AltText: slot.Label, DisplayOrder: i}); err != nil {
			return res, fmt.Errorf("seed image %s: %w", slot.Key, err)
		}
		res.AboutImages++
	}
	return res, nil
}

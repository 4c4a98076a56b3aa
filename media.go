package atelier

import (
	"strconv"

	"github.com/eringen/atelier/assets"
)

// HomepageSlots labels the numbered home page image positions.
var HomepageSlots = []string{
	"Hero: Left Column - Top (Tall)",
	"Hero: Center Column - Main",
	"Hero: Left Column - Detail",
	"Hero: Center Column - Secondary",
	"Hero: Center Column - Landscape",
	"Hero: Right Column - Movement",
	"Hero: Right Column - Nature",
	"Hero: Right Column - Tall",
	"Intro: Main Portrait (Right)",
	"Philosophy: Detail Shot (Left)",
}

// AboutImageSlot describes a named image slot on the about page or a page
// header.
type AboutImageSlot struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Page  string `json:"page"`
}

// AboutImageSlots lists the known about_page_images keys in display order.
var AboutImageSlots = []AboutImageSlot{
	{"hero", "About Hero Image", "About"},
	{"story_main", "Story Section Image", "About"},
	{"gallery_1", "Gallery Image 1", "About"},
	{"gallery_2", "Gallery Image 2", "About"},
	{"gallery_3", "Gallery Image 3", "About"},
	{"gallery_4", "Gallery Image 4", "About"},
	{"wedding_banner", "Wedding Banner Image", "About"},
	{"stories_header", "Stories Page Header", "Stories"},
	{"blog_header", "Blog Page Header", "Blog"},
	{"contact_header", "Contact Page Header", "Contact"},
	{"site_logo", "Site Logo", "All"},
}

// SectionKeys lists the home page sections that accept a background.
var SectionKeys = []string{"services", "testimonials", "contact"}

func aboutSlot(key string) (AboutImageSlot, bool) {
	for i, s := range AboutImageSlots {
		if s.Key == key {
			return AboutImageSlots[i], true
		}
	}
	return AboutImageSlot{}, false
}

// defaultImage is the bundled fallback served from the static dir.
func defaultImage(name string) string {
	return "/public/images/defaults/" + name + ".jpg"
}

// DefaultHomepageImage returns the fallback for a home page position.
func DefaultHomepageImage(position int) string {
	return defaultImage("home-" + strconv.Itoa(position))
}

// DefaultAboutImage returns the fallback for an about image key.
func DefaultAboutImage(key string) string {
	return defaultImage("about-" + key)
}

// ResolvedImage is an image ready for a template.
type ResolvedImage struct {
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Default bool   `json:"default"`
}

// ResolveAssetURL picks the stored URL when one exists, cache-busting it when
// it points into the asset store, and the fallback otherwise.
func ResolveAssetURL(client *assets.Client, stored, fallback string) string {
	if stored == "" {
		return fallback
	}
	if client == nil {
		return stored
	}
	return client.CacheBust(stored)
}

// ResolveHomepageImages maps every home page position to a displayable image.
func ResolveHomepageImages(client *assets.Client, rows []HomepageImage) map[int]ResolvedImage {
	byPos := make(map[int]HomepageImage, len(rows))
	for _, r := range rows {
		byPos[r.Position] = r
	}
	out := make(map[int]ResolvedImage, len(HomepageSlots))
	for pos, label := range HomepageSlots {
		row, ok := byPos[pos]
		fallback := DefaultHomepageImage(pos)
		out[pos] = ResolvedImage{
			URL:     ResolveAssetURL(client, row.ImageURL, fallback),
			Alt:     firstNonEmpty(row.AltText, label),
			Default: !ok || row.ImageURL == "",
		}
	}
	return out
}

// ResolveAboutImages maps every about image key to a displayable image.
func ResolveAboutImages(client *assets.Client, rows []AboutPageImage) map[string]ResolvedImage {
	byKey := make(map[string]AboutPageImage, len(rows))
	for _, r := range rows {
		byKey[r.ImageKey] = r
	}
	out := make(map[string]ResolvedImage, len(AboutImageSlots))
	for _, slot := range AboutImageSlots {
		row, ok := byKey[slot.Key]
		out[slot.Key] = ResolvedImage{
			URL:     ResolveAssetURL(client, row.ImageURL, DefaultAboutImage(slot.Key)),
			Alt:     firstNonEmpty(row.AltText, slot.Label),
			Default: !ok || row.ImageURL == "",
		}
	}
	return out
}

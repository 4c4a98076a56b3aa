package atelier

import (
	"time"

	"github.com/eringen/atelier/records"
)

// Project is a client story in the portfolio. Locked projects hide their
// gallery behind an access code.
type Project struct {
	records.Model
	Title        string `gorm:"not null" json:"title"`
	Description  string `json:"description"`
	ClientNames  string `json:"client_names"`
	EventDate    string `gorm:"index" json:"event_date"`
	EventType    string `json:"event_type"`
	Location     string `json:"location"`
	Featured     bool   `json:"featured"`
	Published    bool   `gorm:"index" json:"published"`
	GalleryURL   string `json:"gallery_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	AccessCode   string `json:"access_code,omitempty"`
	IsLocked     bool   `json:"is_locked"`
}

func (Project) TableName() string { return "projects" }

// Public returns the project as visitors may see it: the access code never
// leaves the server and a locked gallery URL is withheld.
func (p Project) Public() Project {
	p.AccessCode = ""
	if p.IsLocked {
		p.GalleryURL = ""
	}
	return p
}

// SEO holds per-post search and social metadata.
type SEO struct {
	SEOTitle           string `json:"seo_title"`
	SEODescription     string `json:"seo_description"`
	SEOKeywords        string `json:"seo_keywords"`
	SEOFocusKeyword    string `json:"seo_focus_keyword"`
	OGTitle            string `gorm:"column:og_title" json:"og_title"`
	OGDescription      string `gorm:"column:og_description" json:"og_description"`
	OGImage            string `gorm:"column:og_image" json:"og_image"`
	TwitterTitle       string `json:"twitter_title"`
	TwitterDescription string `json:"twitter_description"`
	CanonicalURL       string `json:"canonical_url"`
	RobotsMeta         string `json:"robots_meta"`
}

// BlogPost is a journal entry. Content is sanitized HTML.
type BlogPost struct {
	records.Model
	Title       string     `gorm:"not null" json:"title"`
	Slug        string     `gorm:"uniqueIndex;not null" json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	Image       string     `json:"image"`
	Category    string     `gorm:"index" json:"category"`
	Published   bool       `gorm:"index" json:"published"`
	PublishedAt *time.Time `json:"published_at"`
	SEO         `gorm:"embedded"`
}

func (BlogPost) TableName() string { return "blog_posts" }

// Blog categories offered by the editor.
var BlogCategories = []string{
	"Wedding Tips",
	"Real Weddings",
	"Photography Tips",
	"Trends",
	"Behind the Scenes",
}

// DefaultRobotsMeta applies when a post leaves robots_meta empty.
const DefaultRobotsMeta = "index, follow"

// Service is an offering shown on the home page.
type Service struct {
	records.Model
	Title        string `gorm:"not null" json:"title"`
	Description  string `json:"description"`
	IconName     string `json:"icon_name"`
	MediaURL     string `json:"media_url"`
	MediaType    string `json:"media_type"`
	DisplayOrder int    `json:"display_order"`
	Published    bool   `json:"published"`
}

func (Service) TableName() string { return "services" }

// ServiceIcons is the registry of icon names a service may use.
var ServiceIcons = []string{"Camera", "Film", "Heart", "Sparkles", "Award", "Users"}

// Media types for services and section backgrounds.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Testimonial is a client quote.
type Testimonial struct {
	records.Model
	Quote        string `gorm:"not null" json:"quote"`
	Author       string `json:"author"`
	Location     string `json:"location"`
	DisplayOrder int    `json:"display_order"`
	Published    bool   `json:"published"`
}

func (Testimonial) TableName() string { return "testimonials" }

// PageSEOSettings carries head metadata for a fixed public page.
type PageSEOSettings struct {
	records.Model
	PageSlug           string `gorm:"uniqueIndex;not null" json:"page_slug"`
	PageName           string `json:"page_name"`
	SEOTitle           string `json:"seo_title"`
	MetaDescription    string `json:"meta_description"`
	Keywords           string `json:"keywords"`
	CanonicalURL       string `json:"canonical_url"`
	RobotsMeta         string `json:"robots_meta"`
	OGTitle            string `gorm:"column:og_title" json:"og_title"`
	OGDescription      string `gorm:"column:og_description" json:"og_description"`
	OGImage            string `gorm:"column:og_image" json:"og_image"`
	OGType             string `gorm:"column:og_type" json:"og_type"`
	TwitterCard        string `json:"twitter_card"`
	TwitterTitle       string `json:"twitter_title"`
	TwitterDescription string `json:"twitter_description"`
	TwitterImage       string `json:"twitter_image"`
}

func (PageSEOSettings) TableName() string { return "page_seo_settings" }

// HomepageImage fills one numbered slot of the home page collage.
type HomepageImage struct {
	records.Model
	Position int    `gorm:"uniqueIndex" json:"position"`
	ImageURL string `json:"image_url"`
	AltText  string `json:"alt_text"`
}

func (HomepageImage) TableName() string { return "homepage_images" }

// AboutPageImage fills a named slot on the about page or a page header.
type AboutPageImage struct {
	records.Model
	ImageKey     string `gorm:"uniqueIndex;not null" json:"image_key"`
	ImageURL     string `json:"image_url"`
	AltText      string `json:"alt_text"`
	DisplayOrder int    `json:"display_order"`
}

func (AboutPageImage) TableName() string { return "about_page_images" }

// SectionBackground is the media behind a home page section.
type SectionBackground struct {
	records.Model
	SectionKey     string  `gorm:"uniqueIndex;not null" json:"section_key"`
	MediaURL       string  `json:"media_url"`
	MediaType      string  `json:"media_type"`
	OverlayOpacity float64 `json:"overlay_opacity"`
}

func (SectionBackground) TableName() string { return "section_backgrounds" }

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords,omitempty"`
	URL         string `json:"url"`     // canonical + og:url
	OGType      string `json:"og_type"` // "website" or "article"
	OGImage     string `json:"og_image,omitempty"`
	Robots      string `json:"robots,omitempty"`
	TwitterCard string `json:"twitter_card,omitempty"`
}

// Stats summarizes content for the admin dashboard.
type Stats struct {
	Projects          int64 `json:"projects"`
	PublishedProjects int64 `json:"published_projects"`
	LockedProjects    int64 `json:"locked_projects"`
	BlogPosts         int64 `json:"blog_posts"`
	PublishedPosts    int64 `json:"published_posts"`
}

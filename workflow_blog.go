package atelier

import (
	"context"
	"strings"
	"time"

	"github.com/eringen/atelier/assets"
	"github.com/eringen/atelier/imaging"
	"github.com/eringen/atelier/records"
)

// BlogPostForm is the editable part of a BlogPost.
type BlogPostForm struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Slug        string `json:"slug" form:"slug" validate:"max=200"`
	Excerpt     string `json:"excerpt" form:"excerpt" validate:"required,max=1000"`
	Content     string `json:"content" form:"content"`
	Image       string `json:"image" form:"image"`
	RemoveImage bool   `json:"remove_image" form:"remove_image"`
	Category    string `json:"category" form:"category" validate:"required,category"`
	Published   bool   `json:"published" form:"published"`

	SEOTitle           string `json:"seo_title" form:"seo_title" validate:"max=120"`
	SEODescription     string `json:"seo_description" form:"seo_description" validate:"max=320"`
	SEOKeywords        string `json:"seo_keywords" form:"seo_keywords"`
	SEOFocusKeyword    string `json:"seo_focus_keyword" form:"seo_focus_keyword"`
	OGTitle            string `json:"og_title" form:"og_title"`
	OGDescription      string `json:"og_description" form:"og_description"`
	OGImage            string `json:"og_image" form:"og_image"`
	TwitterTitle       string `json:"twitter_title" form:"twitter_title"`
	TwitterDescription string `json:"twitter_description" form:"twitter_description"`
	CanonicalURL       string `json:"canonical_url" form:"canonical_url" validate:"omitempty,url"`
	RobotsMeta         string `json:"robots_meta" form:"robots_meta"`

	ImageFile *Upload `json:"-" form:"-" validate:"-"`
}

func (f *BlogPostForm) normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Excerpt = strings.TrimSpace(f.Excerpt)
	f.Category = strings.TrimSpace(f.Category)
	f.Image = strings.TrimSpace(f.Image)
	f.CanonicalURL = strings.TrimSpace(f.CanonicalURL)
	if f.Slug = Slugify(f.Slug); f.Slug == "" {
		f.Slug = Slugify(f.Title)
	}
	if strings.TrimSpace(f.RobotsMeta) == "" {
		f.RobotsMeta = DefaultRobotsMeta
	}
}

func (f *BlogPostForm) seo() SEO {
	return SEO{
		SEOTitle:           f.SEOTitle,
		SEODescription:     f.SEODescription,
		SEOKeywords:        f.SEOKeywords,
		SEOFocusKeyword:    f.SEOFocusKeyword,
		OGTitle:            f.OGTitle,
		OGDescription:      f.OGDescription,
		OGImage:            f.OGImage,
		TwitterTitle:       f.TwitterTitle,
		TwitterDescription: f.TwitterDescription,
		CanonicalURL:       f.CanonicalURL,
		RobotsMeta:         f.RobotsMeta,
	}
}

// PostFilter selects posts in the admin list.
type PostFilter string

const (
	PostsAll       PostFilter = "all"
	PostsPublished PostFilter = "published"
	PostsDraft     PostFilter = "draft"
)

// ListBlogPosts returns posts for the admin, newest first.
func (w *Workflows) ListBlogPosts(ctx context.Context, filter PostFilter) ([]BlogPost, error) {
	if _, err := w.authorize(ctx); err != nil {
		return nil, err
	}
	q := records.Query{OrderBy: []records.Order{records.Desc("created_at")}}
	switch filter {
	case PostsPublished:
		q.Filters = append(q.Filters, records.Eq("published", true))
	case PostsDraft:
		q.Filters = append(q.Filters, records.Eq("published", false))
	case PostsAll, "":
	default:
		return nil, invalidField("filter", "must be one of all, published, draft")
	}
	return w.store.Posts.List(ctx, q)
}

// GetBlogPost returns one post, drafts included.
func (w *Workflows) GetBlogPost(ctx context.Context, id string) (BlogPost, error) {
	if _, err := w.authorize(ctx); err != nil {
		return BlogPost{}, err
	}
	return w.loadPost(ctx, id)
}

func (w *Workflows) loadPost(ctx context.Context, id string) (BlogPost, error) {
	p, err := w.store.Posts.GetOne(ctx, records.ByID(id))
	if err != nil {
		return BlogPost{}, err
	}
	if p == nil {
		return BlogPost{}, ErrNotFound
	}
	return *p, nil
}

// SaveBlogPost creates a post when id is empty and updates it otherwise. The
// slug defaults to the slugified title and must be unique. Content is
// sanitized before it is stored. published_at is stamped on first publish
// and cleared when the post is saved as a draft.
func (w *Workflows) SaveBlogPost(ctx context.Context, id string, form BlogPostForm) (BlogPost, error) {
	if _, err := w.authorize(ctx); err != nil {
		return BlogPost{}, err
	}
	form.normalize()
	if err := w.check(form); err != nil {
		return BlogPost{}, err
	}
	if form.Slug == "" {
		return BlogPost{}, invalidField("slug", "is required; add a title or slug")
	}

	var existing BlogPost
	if id != "" {
		var err error
		if existing, err = w.loadPost(ctx, id); err != nil {
			return BlogPost{}, err
		}
	}
	taken := []records.Filter{records.Eq("slug", form.Slug)}
	if id != "" {
		taken = append(taken, records.Neq("id", id))
	}
	dup, err := w.store.Posts.Exists(ctx, taken...)
	if err != nil {
		return BlogPost{}, err
	}
	if dup {
		return BlogPost{}, invalidField("slug", "is already used by another post")
	}

	var publishedAt *time.Time
	if form.Published {
		publishedAt = existing.PublishedAt
		if publishedAt == nil {
			t := w.now().UTC()
			publishedAt = &t
		}
	}

	image := firstNonEmpty(form.Image, existing.Image)
	if form.RemoveImage {
		image = ""
	}
	var staged *assets.Object
	if form.ImageFile.present() {
		if staged, err = w.stage(ctx, assets.BucketBlogImages, form.ImageFile, &imaging.Featured, nil); err != nil {
			return BlogPost{}, err
		}
		image = staged.URL
	}

	rec := BlogPost{
		Model:       existing.Model,
		Title:       form.Title,
		Slug:        form.Slug,
		Excerpt:     form.Excerpt,
		Content:     w.policy.Sanitize(form.Content),
		Image:       image,
		Category:    form.Category,
		Published:   form.Published,
		PublishedAt: publishedAt,
		SEO:         form.seo(),
	}

	if id == "" {
		rec, err = w.store.Posts.Insert(ctx, rec)
	} else {
		err = w.store.Posts.Update(ctx, records.ByID(id), records.Patch{
			"title":               rec.Title,
			"slug":                rec.Slug,
			"excerpt":             rec.Excerpt,
			"content":             rec.Content,
			"image":               rec.Image,
			"category":            rec.Category,
			"published":           rec.Published,
			"published_at":        rec.PublishedAt,
			"seo_title":           rec.SEOTitle,
			"seo_description":     rec.SEODescription,
			"seo_keywords":        rec.SEOKeywords,
			"seo_focus_keyword":   rec.SEOFocusKeyword,
			"og_title":            rec.OGTitle,
			"og_description":      rec.OGDescription,
			"og_image":            rec.OGImage,
			"twitter_title":       rec.TwitterTitle,
			"twitter_description": rec.TwitterDescription,
			"canonical_url":       rec.CanonicalURL,
			"robots_meta":         rec.RobotsMeta,
		})
	}
	if err := w.settle(ctx, assets.BucketBlogImages, staged, existing.Image, image, err); err != nil {
		return BlogPost{}, err
	}
	if id == "" {
		return rec, nil
	}
	return w.loadPost(ctx, id)
}

// DeleteBlogPost removes the post and then, best effort, its image.
func (w *Workflows) DeleteBlogPost(ctx context.Context, id string) error {
	if _, err := w.authorize(ctx); err != nil {
		return err
	}
	p, err := w.loadPost(ctx, id)
	if err != nil {
		return err
	}
	if err := w.store.Posts.Remove(ctx, records.ByID(id)); err != nil {
		return err
	}
	if p.Image != "" {
		w.assets.DeleteURL(ctx, assets.BucketBlogImages, p.Image)
	}
	w.changed(ctx)
	return nil
}

// ToggleBlogPublished flips the published flag and returns the new value.
func (w *Workflows) ToggleBlogPublished(ctx context.Context, id string) (bool, error) {
	if _, err := w.authorize(ctx); err != nil {
		return false, err
	}
	p, err := w.loadPost(ctx, id)
	if err != nil {
		return false, err
	}
	next := !p.Published
	if err := w.store.Posts.Update(ctx, records.ByID(id), records.Patch{"published": next}); err != nil {
		return p.Published, err
	}
	w.changed(ctx)
	return next, nil
}

package atelier

import (
	"context"
	"strconv"
	"strings"

	"github.com/eringen/atelier/assets"
	"github.com/eringen/atelier/imaging"
	"github.com/eringen/atelier/records"
)

// PageSEOForm is the editable part of PageSEOSettings.
type PageSEOForm struct {
	PageName           string `json:"page_name" form:"page_name" validate:"max=100"`
	SEOTitle           string `json:"seo_title" form:"seo_title" validate:"max=120"`
	MetaDescription    string `json:"meta_description" form:"meta_description" validate:"max=320"`
	Keywords           string `json:"keywords" form:"keywords"`
	CanonicalURL       string `json:"canonical_url" form:"canonical_url" validate:"omitempty,url"`
	RobotsMeta         string `json:"robots_meta" form:"robots_meta"`
	OGTitle            string `json:"og_title" form:"og_title"`
	OGDescription      string `json:"og_description" form:"og_description"`
	OGImage            string `json:"og_image" form:"og_image"`
	OGType             string `json:"og_type" form:"og_type" validate:"omitempty,oneof=website article profile"`
	TwitterCard        string `json:"twitter_card" form:"twitter_card" validate:"omitempty,oneof=summary summary_large_image"`
	TwitterTitle       string `json:"twitter_title" form:"twitter_title"`
	TwitterDescription string `json:"twitter_description" form:"twitter_description"`
	TwitterImage       string `json:"twitter_image" form:"twitter_image"`
}

// ListPageSEO returns every page's settings ordered by page name.
func (w *Workflows) ListPageSEO(ctx context.Context) ([]PageSEOSettings, error) {
	if _, err := w.authorize(ctx); err != nil {
		return nil, err
	}
	return w.store.PageSEO.List(ctx, records.Query{OrderBy: []records.Order{records.Asc("page_name")}})
}

// SavePageSEO creates or replaces the settings for the page identified by
// slug.
func (w *Workflows) SavePageSEO(ctx context.Context, slug string, form PageSEOForm) (PageSEOSettings, error) {
	if _, err := w.authorize(ctx); err != nil {
		return PageSEOSettings{}, err
	}
	slug = Slugify(slug)
	if slug == "" {
		return PageSEOSettings{}, invalidField("page_slug", "is required")
	}
	form.CanonicalURL = strings.TrimSpace(form.CanonicalURL)
	if err := w.check(form); err != nil {
		return PageSEOSettings{}, err
	}
	if strings.TrimSpace(form.RobotsMeta) == "" {
		form.RobotsMeta = DefaultRobotsMeta
	}

	key := records.Eq("page_slug", slug)
	existing, err := w.store.PageSEO.GetOne(ctx, key)
	if err != nil {
		return PageSEOSettings{}, err
	}
	if existing == nil {
		out, err := w.store.PageSEO.Insert(ctx, PageSEOSettings{
			PageSlug:           slug,
			PageName:           firstNonEmpty(strings.TrimSpace(form.PageName), slug),
			SEOTitle:           form.SEOTitle,
			MetaDescription:    form.MetaDescription,
			Keywords:           form.Keywords,
			CanonicalURL:       form.CanonicalURL,
			RobotsMeta:         form.RobotsMeta,
			OGTitle:            form.OGTitle,
			OGDescription:      form.OGDescription,
			OGImage:            form.OGImage,
			OGType:             form.OGType,
			TwitterCard:        form.TwitterCard,
			TwitterTitle:       form.TwitterTitle,
			TwitterDescription: form.TwitterDescription,
			TwitterImage:       form.TwitterImage,
		})
		if err != nil {
			return PageSEOSettings{}, err
		}
		w.changed(ctx)
		return out, nil
	}

	err = w.store.PageSEO.Update(ctx, key, records.Patch{
		"page_name":           firstNonEmpty(strings.TrimSpace(form.PageName), existing.PageName),
		"seo_title":           form.SEOTitle,
		"meta_description":    form.MetaDescription,
		"keywords":            form.Keywords,
		"canonical_url":       form.CanonicalURL,
		"robots_meta":         form.RobotsMeta,
		"og_title":            form.OGTitle,
		"og_description":      form.OGDescription,
		"og_image":            form.OGImage,
		"og_type":             form.OGType,
		"twitter_card":        form.TwitterCard,
		"twitter_title":       form.TwitterTitle,
		"twitter_description": form.TwitterDescription,
		"twitter_image":       form.TwitterImage,
	})
	if err != nil {
		return PageSEOSettings{}, err
	}
	w.changed(ctx)
	out, err := w.store.PageSEO.GetOne(ctx, key)
	if err != nil {
		return PageSEOSettings{}, err
	}
	if out == nil {
		return PageSEOSettings{}, ErrNotFound
	}
	return *out, nil
}

func validPosition(position int) error {
	if position < 0 || position >= len(HomepageSlots) {
		return invalidField("position", "is not a home page slot")
	}
	return nil
}

// ListHomepageImages returns the stored home page images by position.
func (w *Workflows) ListHomepageImages(ctx context.Context) ([]HomepageImage, error) {
	if _, err := w.authorize(ctx); err != nil {
		return nil, err
	}
	return w.store.HomepageImages.List(ctx, records.Query{OrderBy: []records.Order{records.Asc("position")}})
}

// SetHomepageImage stores a new image for position, replacing any previous
// one. An empty alt keeps the stored text.
func (w *Workflows) SetHomepageImage(ctx context.Context, position int, u *Upload, alt string) (HomepageImage, error) {
	if _, err := w.authorize(ctx); err != nil {
		return HomepageImage{}, err
	}
	if err := validPosition(position); err != nil {
		return HomepageImage{}, err
	}
	if !u.present() {
		return HomepageImage{}, invalidField("image", "is required")
	}
	key := records.Eq("position", position)
	existing, err := w.store.HomepageImages.GetOne(ctx, key)
	if err != nil {
		return HomepageImage{}, err
	}

	staged, err := w.stage(ctx, assets.BucketImages, u, &imaging.Full, w.slotPath("homepage", "position_"+strconv.Itoa(position)))
	if err != nil {
		return HomepageImage{}, err
	}
	alt = strings.TrimSpace(alt)
	rec := HomepageImage{Position: position, ImageURL: staged.URL, AltText: alt}
	oldURL := ""
	if existing == nil {
		rec, err = w.store.HomepageImages.Insert(ctx, rec)
	} else {
		oldURL = existing.ImageURL
		rec.Model = existing.Model
		rec.AltText = firstNonEmpty(alt, existing.AltText)
		err = w.store.HomepageImages.Update(ctx, key, records.Patch{"image_url": rec.ImageURL, "alt_text": rec.AltText})
	}
	if err := w.settle(ctx, assets.BucketImages, staged, oldURL, rec.ImageURL, err); err != nil {
		return HomepageImage{}, err
	}
	return rec, nil
}

// SetHomepageImageAlt changes only the alt text of a stored home page image.
func (w *Workflows) SetHomepageImageAlt(ctx context.Context, position int, alt string) error {
	if _, err := w.authorize(ctx); err != nil {
		return err
	}
	if err := validPosition(position); err != nil {
		return err
	}
	err := w.store.HomepageImages.Update(ctx, records.Eq("position", position), records.Patch{"alt_text": strings.TrimSpace(alt)})
	if records.IsNotFound(err) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	w.changed(ctx)
	return nil
}

// ResetHomepageImage removes the stored image so the default shows again.
func (w *Workflows) ResetHomepageImage(ctx context.Context, position int) error {
	if _, err := w.authorize(ctx); err != nil {
		return err
	}
	if err := validPosition(position); err != nil {
		return err
	}
	key := records.Eq("position", position)
	existing, err := w.store.HomepageImages.GetOne(ctx, key)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if err := w.store.HomepageImages.Remove(ctx, key); err != nil {
		return err
	}
	if existing.ImageURL != "" {
		w.assets.DeleteURL(ctx, assets.BucketImages, existing.ImageURL)
	}
	w.changed(ctx)
	return nil
}

// ListAboutImages returns the stored about images by display order.
func (w *Workflows) ListAboutImages(ctx context.Context) ([]AboutPageImage, error) {
	if _, err := w.authorize(ctx); err != nil {
		return nil, err
	}
	return w.store.AboutImages.List(ctx, records.Query{
		OrderBy: []records.Order{records.Asc("display_order"), records.Asc("image_key")},
	})
}

// SetAboutImage stores a new image for the slot key under pages/.
func (w *Workflows) SetAboutImage(ctx context.Context, key string, u *Upload, alt string) (AboutPageImage, error) {
	if _, err := w.authorize(ctx); err != nil {
		return AboutPageImage{}, err
	}
	if _, ok := aboutSlot(key); !ok {
		return AboutPageImage{}, invalidField("image_key", "is not a known image slot")
	}
	if !u.present() {
		return AboutPageImage{}, invalidField("image", "is required")
	}
	filter := records.Eq("image_key", key)
	existing, err := w.store.AboutImages.GetOne(ctx, filter)
	if err != nil {
		return AboutPageImage{}, err
	}

	staged, err := w.stage(ctx, assets.BucketImages, u, &imaging.Full, w.slotPath("pages", key))
	if err != nil {
		return AboutPageImage{}, err
	}
	alt = strings.TrimSpace(alt)
	rec := AboutPageImage{ImageKey: key, ImageURL: staged.URL, AltText: alt, DisplayOrder: aboutOrder(key)}
	oldURL := ""
	if existing == nil {
		rec, err = w.store.AboutImages.Insert(ctx, rec)
	} else {
		oldURL = existing.ImageURL
		rec.Model = existing.Model
		rec.AltText = firstNonEmpty(alt, existing.AltText)
		err = w.store.AboutImages.Update(ctx, filter, records.Patch{"image_url": rec.ImageURL, "alt_text": rec.AltText})
	}
	if err := w.settle(ctx, assets.BucketImages, staged, oldURL, rec.ImageURL, err); err != nil {
		return AboutPageImage{}, err
	}
	return rec, nil
}

// SetAboutImageAlt changes only the alt text of a stored about image.
func (w *Workflows) SetAboutImageAlt(ctx context.Context, key, alt string) error {
	if _, err := w.authorize(ctx); err != nil {
		return err
	}
	err := w.store.AboutImages.Update(ctx, records.Eq("image_key", key), records.Patch{"alt_text": strings.TrimSpace(alt)})
	if records.IsNotFound(err) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	w.changed(ctx)
	return nil
}

// ResetAboutImage clears the stored image for key and deletes the object.
// The row is kept so its display order survives.
func (w *Workflows) ResetAboutImage(ctx context.Context, key string) error {
	if _, err := w.authorize(ctx); err != nil {
		return err
	}
	filter := records.Eq("image_key", key)
	existing, err := w.store.AboutImages.GetOne(ctx, filter)
	if err != nil {
		return err
	}
	if existing == nil || existing.ImageURL == "" {
		return nil
	}
	if err := w.store.AboutImages.Update(ctx, filter, records.Patch{"image_url": ""}); err != nil {
		return err
	}
	w.assets.DeleteURL(ctx, assets.BucketImages, existing.ImageURL)
	w.changed(ctx)
	return nil
}

func aboutOrder(key string) int {
	for i, s := range AboutImageSlots {
		if s.Key == key {
			return i
		}
	}
	return len(AboutImageSlots)
}

// ListSectionBackgrounds returns the stored section backgrounds.
func (w *Workflows) ListSectionBackgrounds(ctx context.Context) ([]SectionBackground, error) {
	if _, err := w.authorize(ctx); err != nil {
		return nil, err
	}
	return w.store.SectionBackgrounds.List(ctx, records.Query{OrderBy: []records.Order{records.Asc("section_key")}})
}

// SetSectionBackground stores media behind a home page section. A nil upload
// only changes the overlay opacity of an existing background.
func (w *Workflows) SetSectionBackground(ctx context.Context, key string, u *Upload, opacity float64) (SectionBackground, error) {
	if _, err := w.authorize(ctx); err != nil {
		return SectionBackground{}, err
	}
	if !contains(SectionKeys, key) {
		return SectionBackground{}, invalidField("section_key", "is not a home page section")
	}
	if opacity < 0 || opacity > 1 {
		return SectionBackground{}, invalidField("overlay_opacity", "must be between 0 and 1")
	}
	filter := records.Eq("section_key", key)
	existing, err := w.store.SectionBackgrounds.GetOne(ctx, filter)
	if err != nil {
		return SectionBackground{}, err
	}
	if !u.present() {
		if existing == nil {
			return SectionBackground{}, invalidField("media", "is required")
		}
		if err := w.store.SectionBackgrounds.Update(ctx, filter, records.Patch{"overlay_opacity": opacity}); err != nil {
			return SectionBackground{}, err
		}
		w.changed(ctx)
		existing.OverlayOpacity = opacity
		return *existing, nil
	}

	kind, err := mediaKind(u)
	if err != nil {
		return SectionBackground{}, err
	}
	var preset *imaging.Constraints
	if kind == MediaImage {
		preset = &imaging.Full
	}
	staged, err := w.stage(ctx, assets.BucketImages, u, preset, w.slotPath("sections", key))
	if err != nil {
		return SectionBackground{}, err
	}
	rec := SectionBackground{SectionKey: key, MediaURL: staged.URL, MediaType: kind, OverlayOpacity: opacity}
	oldURL := ""
	if existing == nil {
		rec, err = w.store.SectionBackgrounds.Insert(ctx, rec)
	} else {
		oldURL = existing.MediaURL
		rec.Model = existing.Model
		err = w.store.SectionBackgrounds.Update(ctx, filter, records.Patch{
			"media_url":       rec.MediaURL,
			"media_type":      rec.MediaType,
			"overlay_opacity": rec.OverlayOpacity,
		})
	}
	if err := w.settle(ctx, assets.BucketImages, staged, oldURL, rec.MediaURL, err); err != nil {
		return SectionBackground{}, err
	}
	return rec, nil
}

// ResetSectionBackground removes a section background and its media.
func (w *Workflows) ResetSectionBackground(ctx context.Context, key string) error {
	if _, err := w.authorize(ctx); err != nil {
		return err
	}
	filter := records.Eq("section_key", key)
	existing, err := w.store.SectionBackgrounds.GetOne(ctx, filter)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if err := w.store.SectionBackgrounds.Remove(ctx, filter); err != nil {
		return err
	}
	if existing.MediaURL != "" {
		w.assets.DeleteURL(ctx, assets.BucketImages, existing.MediaURL)
	}
	w.changed(ctx)
	return nil
}

// Stats returns dashboard counts.
func (w *Workflows) Stats(ctx context.Context) (Stats, error) {
	if _, err := w.authorize(ctx); err != nil {
		return Stats{}, err
	}
	return w.store.Stats(ctx)
}

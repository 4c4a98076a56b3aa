package atelier

import (
	"context"
	"strings"

	"github.com/eringen/atelier/assets"
	"github.com/eringen/atelier/imaging"
	"github.com/eringen/atelier/records"
)

// ServiceForm is the editable part of a Service.
type ServiceForm struct {
	Title        string  `json:"title" form:"title" validate:"required,max=200"`
	Description  string  `json:"description" form:"description"`
	IconName     string  `json:"icon_name" form:"icon_name" validate:"icon"`
	MediaURL     string  `json:"media_url" form:"media_url"`
	MediaType    string  `json:"media_type" form:"media_type" validate:"omitempty,oneof=image video"`
	RemoveMedia  bool    `json:"remove_media" form:"remove_media"`
	DisplayOrder int     `json:"display_order" form:"display_order" validate:"gte=0"`
	Published    bool    `json:"published" form:"published"`
	Media        *Upload `json:"-" form:"-" validate:"-"`
}

// ListServices returns every service by display order.
func (w *Workflows) ListServices(ctx context.Context) ([]Service, error) {
	if _, err := w.authorize(ctx); err != nil {
		return nil, err
	}
	return w.store.Services.List(ctx, records.Query{
		OrderBy: []records.Order{records.Asc("display_order"), records.Asc("created_at")},
	})
}

func (w *Workflows) loadService(ctx context.Context, id string) (Service, error) {
	s, err := w.store.Services.GetOne(ctx, records.ByID(id))
	if err != nil {
		return Service{}, err
	}
	if s == nil {
		return Service{}, ErrNotFound
	}
	return *s, nil
}

// SaveService creates or updates a service. Uploaded images are compressed
// with the Featured preset; videos are stored unchanged. Media lives in the
// images bucket under services/.
func (w *Workflows) SaveService(ctx context.Context, id string, form ServiceForm) (Service, error) {
	if _, err := w.authorize(ctx); err != nil {
		return Service{}, err
	}
	form.Title = strings.TrimSpace(form.Title)
	form.MediaURL = strings.TrimSpace(form.MediaURL)
	if err := w.check(form); err != nil {
		return Service{}, err
	}

	var existing Service
	if id != "" {
		var err error
		if existing, err = w.loadService(ctx, id); err != nil {
			return Service{}, err
		}
	}

	mediaURL := firstNonEmpty(form.MediaURL, existing.MediaURL)
	mediaType := firstNonEmpty(form.MediaType, existing.MediaType)
	if form.RemoveMedia {
		mediaURL, mediaType = "", ""
	}
	var staged *assets.Object
	if form.Media.present() {
		kind, err := mediaKind(form.Media)
		if err != nil {
			return Service{}, err
		}
		var preset *imaging.Constraints
		if kind == MediaImage {
			preset = &imaging.Featured
		}
		if staged, err = w.stage(ctx, assets.BucketImages, form.Media, preset, w.slotPath("services", "service")); err != nil {
			return Service{}, err
		}
		mediaURL, mediaType = staged.URL, kind
	}
	if mediaURL != "" && mediaType == "" {
		mediaType = MediaImage
	}

	rec := Service{
		Model:        existing.Model,
		Title:        form.Title,
		Description:  form.Description,
		IconName:     form.IconName,
		MediaURL:     mediaURL,
		MediaType:    mediaType,
		DisplayOrder: form.DisplayOrder,
		Published:    form.Published,
	}
	var err error
	if id == "" {
		rec, err = w.store.Services.Insert(ctx, rec)
	} else {
		err = w.store.Services.Update(ctx, records.ByID(id), records.Patch{
			"title":         rec.Title,
			"description":   rec.Description,
			"icon_name":     rec.IconName,
			"media_url":     rec.MediaURL,
			"media_type":    rec.MediaType,
			"display_order": rec.DisplayOrder,
			"published":     rec.Published,
		})
	}
	if err := w.settle(ctx, assets.BucketImages, staged, existing.MediaURL, mediaURL, err); err != nil {
		return Service{}, err
	}
	if id == "" {
		return rec, nil
	}
	return w.loadService(ctx, id)
}

// DeleteService removes the service and then, best effort, its media.
func (w *Workflows) DeleteService(ctx context.Context, id string) error {
	if _, err := w.authorize(ctx); err != nil {
		return err
	}
	s, err := w.loadService(ctx, id)
	if err != nil {
		return err
	}
	if err := w.store.Services.Remove(ctx, records.ByID(id)); err != nil {
		return err
	}
	if s.MediaURL != "" {
		w.assets.DeleteURL(ctx, assets.BucketImages, s.MediaURL)
	}
	w.changed(ctx)
	return nil
}

// ToggleServicePublished flips the published flag and returns the new value.
func (w *Workflows) ToggleServicePublished(ctx context.Context, id string) (bool, error) {
	if _, err := w.authorize(ctx); err != nil {
		return false, err
	}
	s, err := w.loadService(ctx, id)
	if err != nil {
		return false, err
	}
	next := !s.Published
	if err := w.store.Services.Update(ctx, records.ByID(id), records.Patch{"published": next}); err != nil {
		return s.Published, err
	}
	w.changed(ctx)
	return next, nil
}

// mediaKind classifies an upload as image or video by its content.
func mediaKind(u *Upload) (string, error) {
	ct := assets.DetectContentType(u.Filename, u.Data)
	switch {
	case strings.HasPrefix(ct, "image/"):
		return MediaImage, nil
	case strings.HasPrefix(ct, "video/"):
		return MediaVideo, nil
	}
	return "", invalidField("media", "must be an image or a video")
}

// TestimonialForm is the editable part of a Testimonial.
type TestimonialForm struct {
	Quote        string `json:"quote" form:"quote" validate:"required,max=2000"`
	Author       string `json:"author" form:"author" validate:"required,max=200"`
	Location     string `json:"location" form:"location" validate:"max=200"`
	DisplayOrder int    `json:"display_order" form:"display_order" validate:"gte=0"`
	Published    bool   `json:"published" form:"published"`
}

// ListTestimonials returns every testimonial by display order.
func (w *Workflows) ListTestimonials(ctx context.Context) ([]Testimonial, error) {
	if _, err := w.authorize(ctx); err != nil {
		return nil, err
	}
	return w.store.Testimonials.List(ctx, records.Query{
		OrderBy: []records.Order{records.Asc("display_order"), records.Asc("created_at")},
	})
}

func (w *Workflows) loadTestimonial(ctx context.Context, id string) (Testimonial, error) {
	t, err := w.store.Testimonials.GetOne(ctx, records.ByID(id))
	if err != nil {
		return Testimonial{}, err
	}
	if t == nil {
		return Testimonial{}, ErrNotFound
	}
	return *t, nil
}

// SaveTestimonial creates or updates a testimonial.
func (w *Workflows) SaveTestimonial(ctx context.Context, id string, form TestimonialForm) (Testimonial, error) {
	if _, err := w.authorize(ctx); err != nil {
		return Testimonial{}, err
	}
	form.Quote = strings.TrimSpace(form.Quote)
	form.Author = strings.TrimSpace(form.Author)
	form.Location = strings.TrimSpace(form.Location)
	if err := w.check(form); err != nil {
		return Testimonial{}, err
	}
	rec := Testimonial{
		Quote:        form.Quote,
		Author:       form.Author,
		Location:     form.Location,
		DisplayOrder: form.DisplayOrder,
		Published:    form.Published,
	}
	if id == "" {
		out, err := w.store.Testimonials.Insert(ctx, rec)
		if err != nil {
			return Testimonial{}, err
		}
		w.changed(ctx)
		return out, nil
	}
	err := w.store.Testimonials.Update(ctx, records.ByID(id), records.Patch{
		"quote":         rec.Quote,
		"author":        rec.Author,
		"location":      rec.Location,
		"display_order": rec.DisplayOrder,
		"published":     rec.Published,
	})
	if records.IsNotFound(err) {
		return Testimonial{}, ErrNotFound
	}
	if err != nil {
		return Testimonial{}, err
	}
	w.changed(ctx)
	return w.loadTestimonial(ctx, id)
}

// DeleteTestimonial removes a testimonial.
func (w *Workflows) DeleteTestimonial(ctx context.Context, id string) error {
	if _, err := w.authorize(ctx); err != nil {
		return err
	}
	if err := w.store.Testimonials.Remove(ctx, records.ByID(id)); err != nil {
		return err
	}
	w.changed(ctx)
	return nil
}

// ToggleTestimonialPublished flips the published flag and returns the new
// value.
func (w *Workflows) ToggleTestimonialPublished(ctx context.Context, id string) (bool, error) {
	if _, err := w.authorize(ctx); err != nil {
		return false, err
	}
	t, err := w.loadTestimonial(ctx, id)
	if err != nil {
		return false, err
	}
	next := !t.Published
	if err := w.store.Testimonials.Update(ctx, records.ByID(id), records.Patch{"published": next}); err != nil {
		return t.Published, err
	}
	w.changed(ctx)
	return next, nil
}

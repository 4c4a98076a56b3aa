package atelier

import (
	"context"
	"strings"

	"github.com/eringen/atelier/assets"
	"github.com/eringen/atelier/imaging"
	"github.com/eringen/atelier/records"
)

// ProjectForm is the editable part of a Project.
type ProjectForm struct {
	Title           string  `json:"title" form:"title" validate:"required,max=200"`
	Description     string  `json:"description" form:"description"`
	ClientNames     string  `json:"client_names" form:"client_names" validate:"max=200"`
	EventDate       string  `json:"event_date" form:"event_date" validate:"omitempty,datetime=2006-01-02"`
	EventType       string  `json:"event_type" form:"event_type" validate:"max=100"`
	Location        string  `json:"location" form:"location" validate:"max=200"`
	Featured        bool    `json:"featured" form:"featured"`
	Published       bool    `json:"published" form:"published"`
	GalleryURL      string  `json:"gallery_url" form:"gallery_url" validate:"required,url"`
	ThumbnailURL    string  `json:"thumbnail_url" form:"thumbnail_url"`
	RemoveThumbnail bool    `json:"remove_thumbnail" form:"remove_thumbnail"`
	AccessCode      string  `json:"access_code" form:"access_code" validate:"max=64"`
	IsLocked        bool    `json:"is_locked" form:"is_locked"`
	Thumbnail       *Upload `json:"-" form:"-" validate:"-"`
}

func (f *ProjectForm) normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.ClientNames = strings.TrimSpace(f.ClientNames)
	f.EventDate = strings.TrimSpace(f.EventDate)
	f.EventType = strings.TrimSpace(f.EventType)
	f.Location = strings.TrimSpace(f.Location)
	f.GalleryURL = strings.TrimSpace(f.GalleryURL)
	f.ThumbnailURL = strings.TrimSpace(f.ThumbnailURL)
	f.AccessCode = strings.TrimSpace(f.AccessCode)
}

// ProjectFilter selects projects in the admin list.
type ProjectFilter string

const (
	ProjectsAll       ProjectFilter = "all"
	ProjectsPublished ProjectFilter = "published"
	ProjectsDraft     ProjectFilter = "draft"
	ProjectsLocked    ProjectFilter = "locked"
)

// ListProjects returns projects for the admin, newest first.
func (w *Workflows) ListProjects(ctx context.Context, filter ProjectFilter) ([]Project, error) {
	if _, err := w.authorize(ctx); err != nil {
		return nil, err
	}
	q := records.Query{OrderBy: []records.Order{records.Desc("created_at")}}
	switch filter {
	case ProjectsPublished:
		q.Filters = append(q.Filters, records.Eq("published", true))
	case ProjectsDraft:
		q.Filters = append(q.Filters, records.Eq("published", false))
	case ProjectsLocked:
		q.Filters = append(q.Filters, records.Eq("is_locked", true))
	case ProjectsAll, "":
	default:
		return nil, invalidField("filter", "must be one of all, published, draft, locked")
	}
	return w.store.Projects.List(ctx, q)
}

// GetProject returns one project, access code included.
func (w *Workflows) GetProject(ctx context.Context, id string) (Project, error) {
	if _, err := w.authorize(ctx); err != nil {
		return Project{}, err
	}
	return w.loadProject(ctx, id)
}

func (w *Workflows) loadProject(ctx context.Context, id string) (Project, error) {
	p, err := w.store.Projects.GetOne(ctx, records.ByID(id))
	if err != nil {
		return Project{}, err
	}
	if p == nil {
		return Project{}, ErrNotFound
	}
	return *p, nil
}

// SaveProject creates a project when id is empty and updates it otherwise.
// A new thumbnail is compressed with the Thumbnail preset and stored in the
// project-thumbnails bucket; the one it replaces is deleted afterwards.
func (w *Workflows) SaveProject(ctx context.Context, id string, form ProjectForm) (Project, error) {
	if _, err := w.authorize(ctx); err != nil {
		return Project{}, err
	}
	form.normalize()
	if err := w.check(form); err != nil {
		return Project{}, err
	}

	var existing Project
	if id != "" {
		var err error
		if existing, err = w.loadProject(ctx, id); err != nil {
			return Project{}, err
		}
	}
	if form.IsLocked && form.AccessCode == "" {
		form.AccessCode = GenerateAccessCode()
	}

	thumb := firstNonEmpty(form.ThumbnailURL, existing.ThumbnailURL)
	if form.RemoveThumbnail {
		thumb = ""
	}
	var staged *assets.Object
	if form.Thumbnail.present() {
		var err error
		if staged, err = w.stage(ctx, assets.BucketProjectThumbnails, form.Thumbnail, &imaging.Thumbnail, nil); err != nil {
			return Project{}, err
		}
		thumb = staged.URL
	}

	rec := Project{
		Model:        existing.Model,
		Title:        form.Title,
		Description:  form.Description,
		ClientNames:  form.ClientNames,
		EventDate:    form.EventDate,
		EventType:    form.EventType,
		Location:     form.Location,
		Featured:     form.Featured,
		Published:    form.Published,
		GalleryURL:   form.GalleryURL,
		ThumbnailURL: thumb,
		AccessCode:   form.AccessCode,
		IsLocked:     form.IsLocked,
	}

	var err error
	if id == "" {
		rec, err = w.store.Projects.Insert(ctx, rec)
	} else {
		err = w.store.Projects.Update(ctx, records.ByID(id), records.Patch{
			"title":         rec.Title,
			"description":   rec.Description,
			"client_names":  rec.ClientNames,
			"event_date":    rec.EventDate,
			"event_type":    rec.EventType,
			"location":      rec.Location,
			"featured":      rec.Featured,
			"published":     rec.Published,
			"gallery_url":   rec.GalleryURL,
			"thumbnail_url": rec.ThumbnailURL,
			"access_code":   rec.AccessCode,
			"is_locked":     rec.IsLocked,
		})
	}
	if err := w.settle(ctx, assets.BucketProjectThumbnails, staged, existing.ThumbnailURL, thumb, err); err != nil {
		return Project{}, err
	}
	if id == "" {
		return rec, nil
	}
	return w.loadProject(ctx, id)
}

// DeleteProject removes the project and then, best effort, its thumbnail.
func (w *Workflows) DeleteProject(ctx context.Context, id string) error {
	if _, err := w.authorize(ctx); err != nil {
		return err
	}
	p, err := w.loadProject(ctx, id)
	if err != nil {
		return err
	}
	if err := w.store.Projects.Remove(ctx, records.ByID(id)); err != nil {
		return err
	}
	if p.ThumbnailURL != "" {
		w.assets.DeleteURL(ctx, assets.BucketProjectThumbnails, p.ThumbnailURL)
	}
	w.changed(ctx)
	return nil
}

// ToggleProjectPublished flips the published flag and returns the new value.
func (w *Workflows) ToggleProjectPublished(ctx context.Context, id string) (bool, error) {
	if _, err := w.authorize(ctx); err != nil {
		return false, err
	}
	p, err := w.loadProject(ctx, id)
	if err != nil {
		return false, err
	}
	next := !p.Published
	if err := w.store.Projects.Update(ctx, records.ByID(id), records.Patch{"published": next}); err != nil {
		return p.Published, err
	}
	w.changed(ctx)
	return next, nil
}

// ToggleProjectLocked flips is_locked and returns the new value. Locking a
// project without an access code assigns a generated one.
func (w *Workflows) ToggleProjectLocked(ctx context.Context, id string) (bool, error) {
	if _, err := w.authorize(ctx); err != nil {
		return false, err
	}
	p, err := w.loadProject(ctx, id)
	if err != nil {
		return false, err
	}
	next := !p.IsLocked
	patch := records.Patch{"is_locked": next}
	if next && p.AccessCode == "" {
		patch["access_code"] = GenerateAccessCode()
	}
	if err := w.store.Projects.Update(ctx, records.ByID(id), patch); err != nil {
		return p.IsLocked, err
	}
	w.changed(ctx)
	return next, nil
}

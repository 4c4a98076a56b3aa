package atelier

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"github.com/microcosm-cc/bluemonday"

	"github.com/eringen/atelier/assets"
	"github.com/eringen/atelier/imaging"
)

// Upload is a file picked in an admin form.
type Upload struct {
	Filename string
	Data     []byte
}

func (u *Upload) present() bool {
	return u != nil && len(u.Data) > 0
}

// WorkflowConfig wires the dependencies of Workflows. Store and Assets are
// required; the rest fall back to sensible defaults.
type WorkflowConfig struct {
	Store     *Store
	Assets    *assets.Client
	Auth      Authenticator
	Cache     *ContentCache
	Processor *imaging.Processor
	Logger    *log.Logger
	Metrics   *Metrics
	Now       func() time.Time
}

// Workflows implements the admin content operations. Each write checks the
// caller's identity, transcodes and uploads any new media, writes the record,
// retires the media it replaced and invalidates the public cache, in that
// order.
type Workflows struct {
	store    *Store
	assets   *assets.Client
	auth     Authenticator
	cache    *ContentCache
	images   *imaging.Processor
	logger   *log.Logger
	metrics  *Metrics
	validate *validator.Validate
	policy   *bluemonday.Policy
	now      func() time.Time
}

// NewWorkflows returns Workflows over cfg.
func NewWorkflows(cfg WorkflowConfig) *Workflows {
	w := &Workflows{
		store:    cfg.Store,
		assets:   cfg.Assets,
		auth:     cfg.Auth,
		cache:    cfg.Cache,
		images:   cfg.Processor,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		validate: newValidator(),
		policy:   bluemonday.UGCPolicy(),
		now:      cfg.Now,
	}
	if w.auth == nil {
		w.auth = ContextAuth{}
	}
	if w.images == nil {
		w.images = imaging.NewProcessor()
	}
	if w.logger == nil {
		w.logger = log.New("workflows")
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w
}

// authorize returns the acting identity or ErrNotAuthenticated.
func (w *Workflows) authorize(ctx context.Context) (string, error) {
	id, ok := w.auth.Identity(ctx)
	if !ok {
		return "", ErrNotAuthenticated
	}
	return id, nil
}

func (w *Workflows) check(form any) error {
	if err := w.validate.Struct(form); err != nil {
		return fromValidator(err)
	}
	return nil
}

// transcode compresses an image upload with preset and names the result
// after the uploaded file.
func (w *Workflows) transcode(u *Upload, preset imaging.Constraints) (*Upload, error) {
	start := time.Now()
	res, err := w.images.Transcode(u.Data, preset)
	w.metrics.observeTranscode(start)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(path.Base(u.Filename), path.Ext(u.Filename))
	if base == "" || base == "." || base == "/" {
		base = "image"
	}
	return &Upload{Filename: base + res.Ext, Data: res.Data}, nil
}

// stage transcodes (when preset is non-nil) and uploads u. An empty
// objectPath lets the asset client generate one.
func (w *Workflows) stage(ctx context.Context, bucket string, u *Upload, preset *imaging.Constraints, objectPath func(ext string) string) (*assets.Object, error) {
	if preset != nil {
		var err error
		if u, err = w.transcode(u, *preset); err != nil {
			return nil, err
		}
	}
	p := ""
	if objectPath != nil {
		p = objectPath(strings.ToLower(path.Ext(u.Filename)))
	}
	obj, err := w.assets.Upload(ctx, bucket, u.Data, u.Filename, p)
	if err != nil {
		w.logger.Errorj(log.JSON{"msg": "upload failed", "bucket": bucket, "error": err.Error()})
		return nil, err
	}
	return &obj, nil
}

// settle finishes a save after the record write. On failure the freshly
// staged object is removed so nothing orphaned is left behind. On success the
// previous object is retired when the record no longer points at it.
func (w *Workflows) settle(ctx context.Context, bucket string, staged *assets.Object, oldURL, newURL string, writeErr error) error {
	if writeErr != nil {
		if staged != nil {
			w.assets.Delete(ctx, bucket, staged.Path)
		}
		w.logger.Errorj(log.JSON{"msg": "record write failed", "bucket": bucket, "error": writeErr.Error()})
		return writeErr
	}
	if oldURL != "" && oldURL != newURL {
		w.assets.DeleteURL(ctx, bucket, oldURL)
	}
	w.cache.Invalidate(ctx)
	return nil
}

// slotPath returns a path generator for fixed image slots, e.g.
// "pages/hero_1700000000000_k3x9.jpg". The timestamp keeps each replacement
// at a fresh URL.
func (w *Workflows) slotPath(dir, name string) func(ext string) string {
	return func(ext string) string {
		return fmt.Sprintf("%s/%s_%s_%s%s", dir, name, strconv.FormatInt(w.now().UnixMilli(), 10), assets.RandomToken(4), ext)
	}
}

// changed invalidates the public cache after a write that touched no media.
func (w *Workflows) changed(ctx context.Context) {
	w.cache.Invalidate(ctx)
}

// Package assets stores binary objects (images and videos) in named buckets
// and maps them to public URLs.
package assets

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
)

// Buckets used by the site.
const (
	BucketImages            = "images"
	BucketProjectThumbnails = "project-thumbnails"
	BucketBlogImages        = "blog-images"
)

// publicPrefix is the path under which objects are publicly addressable.
const publicPrefix = "/storage/v1/object/public/"

// Backend is the object store the client writes through.
type Backend interface {
	// Put writes data at bucket/path. With upsert false an existing object
	// is an error.
	Put(ctx context.Context, bucket, path string, data []byte, contentType string, upsert bool) error
	// Remove deletes the given paths from bucket in one call.
	Remove(ctx context.Context, bucket string, paths ...string) error
}

// Object is a stored object and its public URL.
type Object struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// UploadError is returned when a payload could not be written.
type UploadError struct {
	Bucket string
	Path   string
	Reason string
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s/%s: %s", e.Bucket, e.Path, e.Reason)
}

func (e *UploadError) Unwrap() error { return e.Err }

// IsUploadError reports whether err is (or wraps) an *UploadError.
func IsUploadError(err error) bool {
	var ue *UploadError
	return errors.As(err, &ue)
}

// Hooks observe client activity. Either field may be nil.
type Hooks struct {
	Uploaded func(bucket string, err error)
	Deleted  func(bucket string, ok bool)
}

// Client uploads, deletes and addresses objects in a Backend.
type Client struct {
	backend Backend
	base    string
	logger  *log.Logger
	hooks   Hooks
	now     func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger used for best-effort failures.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// WithHooks installs observation hooks (metrics).
func WithHooks(h Hooks) ClientOption {
	return func(c *Client) { c.hooks = h }
}

// WithClock overrides the time source used for generated paths and cache
// busting.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// NewClient returns a Client writing to backend whose objects are served
// from publicBase (scheme and host, optionally with a path prefix).
func NewClient(backend Backend, publicBase string, opts ...ClientOption) *Client {
	c := &Client{
		backend: backend,
		base:    strings.TrimRight(publicBase, "/"),
		logger:  log.New("assets"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload stores data in bucket. When path is empty one is generated as
// {bucket}/{bucket}_{unix ms}_{random}.{ext}, ext taken from filename.
func (c *Client) Upload(ctx context.Context, bucket string, data []byte, filename, path string) (Object, error) {
	return c.put(ctx, bucket, data, filename, path, false)
}

// Upsert is Upload that overwrites an existing object at path.
func (c *Client) Upsert(ctx context.Context, bucket string, data []byte, filename, path string) (Object, error) {
	return c.put(ctx, bucket, data, filename, path, true)
}

func (c *Client) put(ctx context.Context, bucket string, data []byte, filename, objectPath string, upsert bool) (Object, error) {
	if objectPath == "" {
		objectPath = c.GeneratePath(bucket, filename)
	}
	objectPath = strings.TrimLeft(objectPath, "/")

	var err error
	switch {
	case bucket == "":
		err = &UploadError{Bucket: bucket, Path: objectPath, Reason: "bucket is required"}
	case len(data) == 0:
		err = &UploadError{Bucket: bucket, Path: objectPath, Reason: "empty payload"}
	case !validPath(objectPath):
		err = &UploadError{Bucket: bucket, Path: objectPath, Reason: "invalid object path"}
	default:
		if perr := c.backend.Put(ctx, bucket, objectPath, data, DetectContentType(filename, data), upsert); perr != nil {
			err = &UploadError{Bucket: bucket, Path: objectPath, Reason: perr.Error(), Err: perr}
		}
	}
	if c.hooks.Uploaded != nil {
		c.hooks.Uploaded(bucket, err)
	}
	if err != nil {
		return Object{}, err
	}
	return Object{URL: c.PublicURL(bucket, objectPath), Path: objectPath}, nil
}

// Delete removes bucket/path. Failures are logged and reported as false;
// they never abort the caller's workflow.
func (c *Client) Delete(ctx context.Context, bucket, objectPath string) bool {
	ok := true
	if err := c.backend.Remove(ctx, bucket, objectPath); err != nil {
		c.logger.Warnj(log.JSON{"msg": "delete object failed", "bucket": bucket, "path": objectPath, "error": err.Error()})
		ok = false
	}
	if c.hooks.Deleted != nil {
		c.hooks.Deleted(bucket, ok)
	}
	return ok
}

// DeleteURL deletes the object behind a managed URL. Foreign URLs are a
// no-op and report true.
func (c *Client) DeleteURL(ctx context.Context, bucket, rawURL string) bool {
	p, ok := c.ResolvePath(rawURL, bucket)
	if !ok {
		return true
	}
	return c.Delete(ctx, bucket, p)
}

// Replace deletes the object behind currentURL (if managed) and uploads data.
func (c *Client) Replace(ctx context.Context, bucket, currentURL string, data []byte, filename, objectPath string) (Object, error) {
	c.DeleteURL(ctx, bucket, currentURL)
	return c.Upload(ctx, bucket, data, filename, objectPath)
}

// PublicURL derives the public URL of bucket/path without any I/O.
func (c *Client) PublicURL(bucket, objectPath string) string {
	segments := strings.Split(strings.TrimLeft(objectPath, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return c.base + publicPrefix + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}

// ResolvePath maps a URL issued by PublicURL back to its object path. It
// reports false for URLs outside this store or bucket.
func (c *Client) ResolvePath(rawURL, bucket string) (string, bool) {
	if rawURL == "" || bucket == "" {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	base, err := url.Parse(c.base)
	if err != nil {
		return "", false
	}
	if base.Host != "" && !strings.EqualFold(u.Host, base.Host) {
		return "", false
	}
	if base.Host == "" && u.Host != "" {
		return "", false
	}
	prefix := strings.TrimRight(base.Path, "/") + publicPrefix + bucket + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}
	p := strings.TrimPrefix(u.Path, prefix)
	if p == "" {
		return "", false
	}
	return p, true
}

// Managed reports whether rawURL points into this store.
func (c *Client) Managed(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	base, err := url.Parse(c.base)
	if err != nil {
		return false
	}
	if base.Host != "" && !strings.EqualFold(u.Host, base.Host) {
		return false
	}
	return strings.HasPrefix(u.Path, strings.TrimRight(base.Path, "/")+publicPrefix)
}

// CacheBust appends a volatile t=<unix ms> parameter to managed URLs so that
// an in-place replacement is not masked by HTTP caches. Other URLs are
// returned unchanged.
func (c *Client) CacheBust(rawURL string) string {
	if !c.Managed(rawURL) {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}

// GeneratePath returns {bucket}/{bucket}_{unix ms}_{random6}{ext}.
func (c *Client) GeneratePath(bucket, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "." {
		ext = ""
	}
	return fmt.Sprintf("%s/%s_%d_%s%s", bucket, bucket, c.now().UnixMilli(), RandomToken(6), ext)
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// RandomToken returns n random lower-case base-36 characters.
func RandomToken(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(base36)))
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(fmt.Sprintf("assets: read random: %v", err))
		}
		b[i] = base36[v.Int64()]
	}
	return string(b)
}

// DetectContentType sniffs data, falling back to the filename extension.
func DetectContentType(filename string, data []byte) string {
	ct := http.DetectContentType(data)
	if ct != "application/octet-stream" {
		if i := strings.Index(ct, ";"); i >= 0 {
			ct = ct[:i]
		}
		return ct
	}
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	}
	return ct
}

// validPath rejects empty, absolute and dot-segment paths.
func validPath(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DiskBackend stores objects as files under Root/bucket/path. The HTTP layer
// serves Root at the public prefix.
type DiskBackend struct {
	Root string
}

// NewDiskBackend returns a DiskBackend rooted at dir, creating it if needed.
func NewDiskBackend(dir string) (*DiskBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &DiskBackend{Root: dir}, nil
}

func (d *DiskBackend) file(bucket, path string) string {
	return filepath.Join(d.Root, bucket, filepath.FromSlash(path))
}

// Put implements Backend.
func (d *DiskBackend) Put(_ context.Context, bucket, path string, data []byte, _ string, upsert bool) error {
	if !validPath(bucket) || !validPath(path) {
		return fmt.Errorf("invalid object path %q", bucket+"/"+path)
	}
	name := d.file(bucket, path)
	if !upsert {
		if _, err := os.Stat(name); err == nil {
			return fmt.Errorf("%s/%s: %w", bucket, path, ErrObjectExists)
		}
	}
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("create bucket dir: %w", err)
	}
	// Write to a sibling temp file first so readers never see a torn object.
	tmp, err := os.CreateTemp(filepath.Dir(name), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close object: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod object: %w", err)
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("commit object: %w", err)
	}
	return nil
}

// Remove implements Backend. Objects that are already gone are ignored.
func (d *DiskBackend) Remove(_ context.Context, bucket string, paths ...string) error {
	var errs []error
	for _, p := range paths {
		if !validPath(bucket) || !validPath(p) {
			errs = append(errs, fmt.Errorf("invalid object path %q", bucket+"/"+p))
			continue
		}
		if err := os.Remove(d.file(bucket, p)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

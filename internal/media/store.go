// Package media stores uploaded recipe images on a filesystem or in S3.
package media

import (
	"context"
	"io"
	"os"
	"path"

	"github.com/spf13/afero"
)

// Store persists media objects by key.
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// FSStore keeps objects on an afero filesystem, one file per key.
type FSStore struct {
	fs afero.Fs
}

// NewFSStore wraps an existing filesystem.
func NewFSStore(fs afero.Fs) *FSStore {
	return &FSStore{fs: fs}
}

// NewOSStore stores objects under root on the local disk.
func NewOSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return NewFSStore(afero.NewBasePathFs(afero.NewOsFs(), root)), nil
}

func (s *FSStore) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if err := s.fs.MkdirAll(path.Dir(key), 0o755); err != nil {
		return err
	}
	return afero.WriteReader(s.fs, key, r)
}

// Delete removes key; a missing key is not an error.
func (s *FSStore) Delete(_ context.Context, key string) error {
	err := s.fs.Remove(key)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *FSStore) Exists(_ context.Context, key string) (bool, error) {
	return afero.Exists(s.fs, key)
}

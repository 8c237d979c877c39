// Package storage persists documents and their label sidecars in an
// object store addressed by path. The backing filesystem is abstracted
// through afero so tests run against memory and production against disk
// (or any mounted bucket).
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/spf13/afero"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("object not found")

const (
	objectFilePerm = 0o640
	objectDirPerm  = 0o750
)

// Store is the minimal object storage contract the engine needs: whole
// objects in, whole objects out, no partial writes.
type Store interface {
	Get(ctx context.Context, objectPath string) ([]byte, error)
	Put(ctx context.Context, objectPath string, data []byte) error
	Exists(ctx context.Context, objectPath string) (bool, error)
	Delete(ctx context.Context, objectPath string) error
}

// FsStore implements Store on top of an afero filesystem.
type FsStore struct {
	fs afero.Fs
}

// NewOSStore creates a store rooted at a directory on the local
// filesystem.
func NewOSStore(root string) *FsStore {
	return &FsStore{fs: afero.NewBasePathFs(afero.NewOsFs(), root)}
}

// NewMemStore creates an in-memory store.
func NewMemStore() *FsStore {
	return &FsStore{fs: afero.NewMemMapFs()}
}

// NewStore wraps an arbitrary afero filesystem.
func NewStore(fs afero.Fs) *FsStore {
	return &FsStore{fs: fs}
}

// Get reads a whole object.
func (s *FsStore) Get(ctx context.Context, objectPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, objectPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, objectPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", objectPath, err)
	}
	return data, nil
}

// Put writes a whole object, replacing any prior content.
func (s *FsStore) Put(ctx context.Context, objectPath string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := path.Dir(objectPath); dir != "." && dir != "/" {
		if err := s.fs.MkdirAll(dir, objectDirPerm); err != nil {
			return fmt.Errorf("failed to create object directory %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(s.fs, objectPath, data, objectFilePerm); err != nil {
		return fmt.Errorf("failed to write object %s: %w", objectPath, err)
	}
	return nil
}

// Exists reports whether an object is present.
func (s *FsStore) Exists(ctx context.Context, objectPath string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := afero.Exists(s.fs, objectPath)
	if err != nil {
		return false, fmt.Errorf("failed to stat object %s: %w", objectPath, err)
	}
	return ok, nil
}

// Delete removes an object. Deleting a missing object is not an error.
func (s *FsStore) Delete(ctx context.Context, objectPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.fs.Remove(objectPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete object %s: %w", objectPath, err)
	}
	return nil
}

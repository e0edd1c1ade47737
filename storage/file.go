package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samber/oops"
)

// FileBackend stores every key as <dir>/<key>.json. Writes go through a
// temporary file and a rename so readers never see a partial value.
type FileBackend struct {
	dir string
	mu  sync.Mutex
}

// NewFileBackend creates dir if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, oops.Code("STORAGE_CONFIG_INVALID").Errorf("file backend requires a directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, oops.Code("STORAGE_INIT_FAILED").With("dir", dir).Wrap(err)
	}
	return &FileBackend{dir: dir}, nil
}

// Dir returns the backing directory.
func (f *FileBackend) Dir() string { return f.dir }

func (f *FileBackend) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", ErrInvalidKey
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *FileBackend) Get(ctx context.Context, key string) ([]byte, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, oops.Code("STORAGE_READ_FAILED").With("key", key).Wrap(err)
	}
	return raw, nil
}

func (f *FileBackend) Set(ctx context.Context, key string, value []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, "."+key+".*.tmp")
	if err != nil {
		return oops.Code("STORAGE_WRITE_FAILED").With("key", key).Wrap(err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return oops.Code("STORAGE_WRITE_FAILED").With("key", key).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return oops.Code("STORAGE_WRITE_FAILED").With("key", key).Wrap(err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return oops.Code("STORAGE_WRITE_FAILED").With("key", key).Wrap(err)
	}
	return nil
}

func (f *FileBackend) Delete(ctx context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return oops.Code("STORAGE_DELETE_FAILED").With("key", key).Wrap(err)
	}
	return nil
}

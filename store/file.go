package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// File stores each document as <dir>/<path>.json. Writes go to a temp file
// in the same directory, are synced and then renamed over the target.
// Subscriptions only see changes made through this File value.
type File struct {
	dir string
	mu  sync.Mutex
	hub *hub
}

func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("store dir must be set")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &File{dir: dir, hub: newHub()}, nil
}

func (f *File) filename(path string) string {
	return filepath.Join(f.dir, filepath.FromSlash(path)+".json")
}

func (f *File) read(path string) ([]byte, error) {
	b, err := os.ReadFile(f.filename(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}

func (f *File) write(path string, value []byte) error {
	name := f.filename(path)
	if value == nil {
		if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", path, err)
		}
		f.hub.publish(path, nil)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(name), filepath.Base(name)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	f.hub.publish(path, clone(value))
	return nil
}

func (f *File) Get(_ context.Context, path string) ([]byte, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := f.read(path)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return b, nil
}

func (f *File) Set(_ context.Context, path string, value []byte) error {
	if err := validatePath(path); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(path, value)
}

func (f *File) Update(_ context.Context, path string, fn UpdateFunc) error {
	if err := validatePath(path); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	cur, err := f.read(path)
	if err != nil {
		return err
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	return f.write(path, next)
}

func (f *File) Subscribe(ctx context.Context, path string) (<-chan []byte, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, err := f.read(path)
	if err != nil {
		return nil, err
	}
	return f.hub.subscribe(ctx, path, cur)
}

func (f *File) Close() error {
	f.hub.close()
	return nil
}

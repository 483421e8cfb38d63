// Package store is a small JSON document store addressed by slash paths
// such as "dashboards/alice". Backends keep the same semantics: Set is last
// write wins, Update is an atomic read-modify-write of one path and
// Subscribe yields the value now and after every change.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rustyeddy/misterpips/pkg/id"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrConflict    = errors.New("document changed concurrently")
	ErrInvalidPath = errors.New("invalid document path")
	ErrClosed      = errors.New("store closed")
)

// UpdateFunc receives the current bytes (nil when absent) and returns the
// replacement. Returning nil bytes deletes the document. Returning an error
// aborts the update and leaves the document unchanged.
type UpdateFunc func(cur []byte) ([]byte, error)

type Store interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Set(ctx context.Context, path string, value []byte) error
	Update(ctx context.Context, path string, fn UpdateFunc) error

	// Subscribe delivers the current value (nil when absent) and then each
	// new value. Slow readers only see the latest value. The channel is
	// closed when ctx ends or the store is closed.
	Subscribe(ctx context.Context, path string) (<-chan []byte, error)

	Close() error
}

// Path joins segments into a document path.
func Path(segments ...string) string {
	return strings.Join(segments, "/")
}

func validatePath(p string) error {
	if p == "" || strings.HasPrefix(p, "/") || strings.HasSuffix(p, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." || strings.ContainsAny(seg, `\:`) {
			return fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	return nil
}

func GetJSON[T any](ctx context.Context, s Store, path string) (T, error) {
	var v T
	b, err := s.Get(ctx, path)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", path, err)
	}
	return v, nil
}

func SetJSON[T any](ctx context.Context, s Store, path string, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return s.Set(ctx, path, b)
}

// UpdateJSON decodes the document into a T (zero value and exists=false
// when absent), lets fn mutate it and writes it back atomically. The stored
// value is returned.
func UpdateJSON[T any](ctx context.Context, s Store, path string, fn func(v *T, exists bool) error) (T, error) {
	var out T
	err := s.Update(ctx, path, func(cur []byte) ([]byte, error) {
		var v T
		exists := cur != nil
		if exists {
			if err := json.Unmarshal(cur, &v); err != nil {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
		}
		if err := fn(&v, exists); err != nil {
			return nil, err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", path, err)
		}
		out = v
		return b, nil
	})
	return out, err
}

// Push adds v as a new child of the map stored at path under a fresh,
// time-ordered key and returns the key.
func Push[T any](ctx context.Context, s Store, path string, v T) (string, error) {
	key := id.New()
	_, err := UpdateJSON(ctx, s, path, func(m *map[string]T, _ bool) error {
		if *m == nil {
			*m = make(map[string]T)
		}
		(*m)[key] = v
		return nil
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// Delete removes the document at path. Missing documents are not an error.
func Delete(ctx context.Context, s Store, path string) error {
	return s.Update(ctx, path, func([]byte) ([]byte, error) { return nil, nil })
}

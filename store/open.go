package store

import (
	"context"
	"fmt"
)

type Options struct {
	Type  string // memory | file | redis
	Dir   string
	Redis RedisOptions
}

// Open builds the backend named by opts.Type.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Type {
	case "", "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(opts.Dir)
	case "redis":
		return NewRedis(ctx, opts.Redis)
	}
	return nil, fmt.Errorf("unknown store type %q", opts.Type)
}

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const defaultUpdateRetries = 10

// Redis keeps each document in a string key and announces every write on a
// pub/sub channel, so subscribers in other processes see changes too.
type Redis struct {
	client  *redis.Client
	prefix  string
	retries int
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // prepended to keys and channels, "misterpips:" if empty

	// UpdateRetries bounds optimistic retries before Update gives up with
	// ErrConflict.
	UpdateRetries int
}

func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return NewRedisFromClient(client, opts.Prefix, opts.UpdateRetries), nil
}

func NewRedisFromClient(client *redis.Client, prefix string, retries int) *Redis {
	if prefix == "" {
		prefix = "misterpips:"
	}
	if retries <= 0 {
		retries = defaultUpdateRetries
	}
	return &Redis{client: client, prefix: prefix, retries: retries}
}

func (r *Redis) key(path string) string     { return r.prefix + "doc:" + path }
func (r *Redis) channel(path string) string { return r.prefix + "changes:" + path }

func (r *Redis) Get(ctx context.Context, path string) ([]byte, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	b, err := r.client.Get(ctx, r.key(path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", path, err)
	}
	return b, nil
}

func (r *Redis) Set(ctx context.Context, path string, value []byte) error {
	if err := validatePath(path); err != nil {
		return err
	}
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		r.queueWrite(ctx, p, path, value)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", path, err)
	}
	return nil
}

// Change messages carry a one-byte kind so an empty document is not
// mistaken for a deletion.
const (
	msgSet    = "="
	msgDelete = "-"
)

func (r *Redis) queueWrite(ctx context.Context, p redis.Pipeliner, path string, value []byte) {
	if value == nil {
		p.Del(ctx, r.key(path))
		p.Publish(ctx, r.channel(path), msgDelete)
		return
	}
	p.Set(ctx, r.key(path), value, 0)
	p.Publish(ctx, r.channel(path), msgSet+string(value))
}

// decodeChange turns a change message back into a value, nil for a deletion.
func decodeChange(payload string) ([]byte, bool) {
	switch {
	case payload == msgDelete:
		return nil, true
	case strings.HasPrefix(payload, msgSet):
		return []byte(payload[len(msgSet):]), true
	}
	return nil, false
}

// Update runs fn inside WATCH/MULTI and retries when another client wrote
// the key in between.
func (r *Redis) Update(ctx context.Context, path string, fn UpdateFunc) error {
	if err := validatePath(path); err != nil {
		return err
	}
	key := r.key(path)

	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			cur = nil
		} else if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			r.queueWrite(ctx, p, path, next)
			return nil
		})
		return err
	}

	for i := 0; i < r.retries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			log.Debug().Str("path", path).Int("attempt", i+1).Msg("store: update conflict, retrying")
			continue
		}
		return err
	}
	return fmt.Errorf("%w: %s after %d attempts", ErrConflict, path, r.retries)
}

func (r *Redis) Subscribe(ctx context.Context, path string) (<-chan []byte, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}

	ps := r.client.Subscribe(ctx, r.channel(path))
	// wait for the subscription so no write between here and Get is lost
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", path, err)
	}

	cur, err := r.Get(ctx, path)
	if err != nil && !errors.Is(err, ErrNotFound) {
		ps.Close()
		return nil, err
	}

	out := make(chan []byte, 1)
	out <- cur

	go func() {
		defer close(out)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				v, ok := decodeChange(msg.Payload)
				if !ok {
					log.Warn().Str("path", path).Msg("store: ignoring malformed change message")
					continue
				}
				select {
				case out <- v:
				default:
					select {
					case <-out:
					default:
					}
					out <- v
				}
			}
		}
	}()
	return out, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

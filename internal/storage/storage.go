// Package storage provides the secure key-value credential store used by the API client.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Store persists credentials such as the auth token. Get reports absence with ok=false;
// absence is a valid state, not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options controls encryption and retention for concrete store implementations.
type Options struct {
	// Secret seeds the at-rest encryption key. Required for bbolt.
	Secret []byte
	// TTL bounds how long an entry stays readable. Zero keeps entries until deleted.
	TTL             time.Duration
	CleanupInterval time.Duration
}

const (
	TypeBBolt  = "bbolt"
	TypeMemory = "memory"
	TypeNone   = "none"

	defaultCleanupInterval = time.Hour
)

var (
	// ErrEmptyKey is returned when a credential key is blank.
	ErrEmptyKey = errors.New("credential key is empty")
	// ErrCorrupt is returned when a stored entry cannot be decoded or authenticated.
	ErrCorrupt = errors.New("credential entry is corrupt or sealed with a different secret")
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeMemory:
		return newMemoryStore(opts), nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.TTL < 0 {
		opts.TTL = 0
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

func checkKey(ctx context.Context, key string) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}

// expiryFor returns the absolute expiry for an entry written at now, zero meaning none.
func expiryFor(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

func expired(expiry, now time.Time) bool {
	return !expiry.IsZero() && !expiry.After(now)
}

type noopStore struct{}

func (noopStore) Close() error                                      { return nil }
func (noopStore) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (noopStore) Set(context.Context, string, string) error         { return nil }
func (noopStore) Delete(context.Context, string) error              { return nil }

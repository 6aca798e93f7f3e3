package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	credentialBucket = "credentials"
	expiryValueBytes = 8
)

// boltStore implements a Store backed by BoltDB. Each value is laid out as an
// 8-byte big-endian unix expiry (0 = none) followed by the sealed payload.
type boltStore struct {
	db              *bolt.DB
	sealer          *sealer
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	ttl             time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	s, err := newSealer(opts.Secret)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(credentialBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		sealer:          s,
		ttl:             opts.TTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Get returns the decrypted value for key. Expired entries read as absent.
func (b *boltStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := checkKey(ctx, key); err != nil {
		return "", false, err
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return "", false, err
	}

	var (
		sealed  []byte
		isStale bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(credentialBucket))
		if bucket == nil {
			return fmt.Errorf("credential bucket missing")
		}
		value := bucket.Get([]byte(key))
		if value == nil {
			return nil
		}
		expiry, payload, ok := decodeEntry(value)
		if !ok {
			return ErrCorrupt
		}
		if expired(expiry, now) {
			isStale = true
			return nil
		}
		// value is only valid for the life of the transaction
		sealed = append([]byte(nil), payload...)
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("read credential %q: %w", key, err)
	}

	if isStale {
		if err := b.deleteIfExpired(key, now); err != nil {
			return "", false, err
		}
		return "", false, nil
	}
	if sealed == nil {
		return "", false, nil
	}

	plain, err := b.sealer.open(key, sealed)
	if err != nil {
		return "", false, fmt.Errorf("read credential %q: %w", key, err)
	}
	return string(plain), true, nil
}

// Set seals and stores value under key, replacing any previous entry.
func (b *boltStore) Set(ctx context.Context, key, value string) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	sealed, err := b.sealer.seal(key, []byte(value))
	if err != nil {
		return fmt.Errorf("seal credential %q: %w", key, err)
	}
	entry := encodeEntry(expiryFor(now, b.ttl), sealed)

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(credentialBucket))
		if bucket == nil {
			return fmt.Errorf("credential bucket missing")
		}
		return bucket.Put([]byte(key), entry)
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (b *boltStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	return b.delete(key)
}

func (b *boltStore) delete(key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(credentialBucket))
		if bucket == nil {
			return fmt.Errorf("credential bucket missing")
		}
		return bucket.Delete([]byte(key))
	})
}

// deleteIfExpired removes key if the stored entry is still expired at now.
// The check and the delete share one write transaction so a concurrent Set is
// never undone.
func (b *boltStore) deleteIfExpired(key string, now time.Time) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(credentialBucket))
		if bucket == nil {
			return fmt.Errorf("credential bucket missing")
		}
		value := bucket.Get([]byte(key))
		if value == nil {
			return nil
		}
		expiry, _, ok := decodeEntry(value)
		if !ok || !expired(expiry, now) {
			return nil
		}
		return bucket.Delete([]byte(key))
	})
}

// maybeCleanupExpired removes expired entries on a fixed cadence so stale
// credentials do not linger on disk.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b.ttl <= 0 {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(credentialBucket))
		if bucket == nil {
			return fmt.Errorf("credential bucket missing")
		}

		var stale [][]byte
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, _, ok := decodeEntry(v)
			if !ok || expired(expiry, now) {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func encodeEntry(expiry time.Time, sealed []byte) []byte {
	buf := make([]byte, expiryValueBytes+len(sealed))
	if !expiry.IsZero() {
		binary.BigEndian.PutUint64(buf, uint64(expiry.Unix()))
	}
	copy(buf[expiryValueBytes:], sealed)
	return buf
}

// decodeEntry splits a stored value into its expiry and sealed payload.
func decodeEntry(value []byte) (time.Time, []byte, bool) {
	if len(value) <= expiryValueBytes {
		return time.Time{}, nil, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix < 0 {
		return time.Time{}, nil, false
	}
	var expiry time.Time
	if unix > 0 {
		expiry = time.Unix(unix, 0)
	}
	return expiry, value[expiryValueBytes:], true
}

package server

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist remembers logged-out token ids until the token would have
// expired anyway.
type Denylist interface {
	Deny(ctx context.Context, jti string, ttl time.Duration) error
	Denied(ctx context.Context, jti string) (bool, error)
}

// RedisDenylist stores denied ids as <prefix>:deny:<jti> with a TTL.
type RedisDenylist struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisDenylist(rdb redis.UniversalClient, prefix string) *RedisDenylist {
	if prefix == "" {
		prefix = "authdemo"
	}
	return &RedisDenylist{rdb: rdb, prefix: prefix}
}

func (d *RedisDenylist) key(jti string) string { return d.prefix + ":deny:" + jti }

func (d *RedisDenylist) Deny(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.rdb.Set(ctx, d.key(jti), 1, ttl).Err()
}

func (d *RedisDenylist) Denied(ctx context.Context, jti string) (bool, error) {
	n, err := d.rdb.Exists(ctx, d.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryDenylist is a process-local Denylist.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{entries: make(map[string]time.Time), now: time.Now}
}

func (d *MemoryDenylist) Deny(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	for id, until := range d.entries {
		if !now.Before(until) {
			delete(d.entries, id)
		}
	}
	d.entries[jti] = now.Add(ttl)
	return nil
}

func (d *MemoryDenylist) Denied(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.entries[jti]
	return ok && d.now().Before(until), nil
}

// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package rediscache provides a persistent cache tier backed by Redis.
//
// A Store is normally used as the Persistent tier of a cache.Tiered, so
// that responses whose storage policy is cache.Allowed survive process
// restarts and are shared between processes.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/gogama/nrequest/cache"
)

// DefaultPrefix is the key prefix used when Store.Prefix is empty.
const DefaultPrefix = "nrequest"

// A Store is a cache.Cache that keeps response bodies in Redis.
type Store struct {
	// Client is the Redis client. It must not be nil.
	Client goredis.UniversalClient
	// Prefix is prepended to every key, separated by a colon. If empty,
	// DefaultPrefix is used.
	Prefix string
	// TTL is the expiry set on stored entries. Zero means entries never
	// expire.
	TTL time.Duration
}

// New returns a Store that connects to the Redis server at addr.
func New(addr string, ttl time.Duration) *Store {
	return &Store{
		Client: goredis.NewClient(&goredis.Options{Addr: addr}),
		TTL:    ttl,
	}
}

// Load implements cache.Cache.
func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.Client.Get(ctx, s.fullKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("nrequest/rediscache: load %q: %w", key, err)
	}
	return data, true, nil
}

// Store implements cache.Cache. Entries are only written when policy is
// cache.Allowed, since Redis is not memory-only storage from the
// perspective of the caller.
func (s *Store) Store(ctx context.Context, key string, data []byte, policy cache.StoragePolicy) error {
	if policy != cache.Allowed {
		return nil
	}
	if err := s.Client.Set(ctx, s.fullKey(key), data, s.TTL).Err(); err != nil {
		return fmt.Errorf("nrequest/rediscache: store %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *Store) Close() error {
	return s.Client.Close()
}

func (s *Store) fullKey(key string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + ":" + key
}

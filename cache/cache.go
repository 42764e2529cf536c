// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cache defines the response cache capability consumed by the
// request pipeline, together with a process-local Memory cache and a
// Tiered cache that places entries according to their StoragePolicy.
//
// The pipeline only reads and writes through the Cache interface; it
// never evicts entries itself. A persistent tier backed by Redis lives
// in package cache/rediscache.
package cache

import (
	"context"
	"sync"
)

// A StoragePolicy governs where a cached response may live.
type StoragePolicy int

const (
	// AllowedInMemoryOnly permits storing the response in memory only.
	AllowedInMemoryOnly StoragePolicy = iota
	// Allowed permits storing the response in memory and in persistent
	// storage.
	Allowed
	// NotAllowed forbids storing the response.
	NotAllowed
)

var policyNames = []string{
	"allowed_in_memory_only",
	"allowed",
	"not_allowed",
}

func (p StoragePolicy) String() string {
	if p >= 0 && int(p) < len(policyNames) {
		return policyNames[p]
	}
	return "unknown"
}

// A Cache stores response bodies keyed by request identity.
//
// Implementations must be safe for concurrent use by multiple
// goroutines. Load reports a miss with ok == false and a nil error.
type Cache interface {
	Load(ctx context.Context, key string) (data []byte, ok bool, err error)
	Store(ctx context.Context, key string, data []byte, policy StoragePolicy) error
}

// Memory is an unbounded in-process Cache. Its zero value is an empty
// cache ready for use.
//
// Memory ignores the storage policy except for NotAllowed, which it
// honours by not storing anything.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// Load returns a copy of the entry stored under key.
func (m *Memory) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

// Store saves a copy of data under key.
func (m *Memory) Store(_ context.Context, key string, data []byte, policy StoragePolicy) error {
	if policy == NotAllowed {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = append([]byte(nil), data...)
	return nil
}

// Delete removes the entry stored under key, if any.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Tiered combines a memory tier with an optional persistent tier.
//
// Store always writes to Memory unless the policy is NotAllowed, and
// writes to Persistent only when the policy is Allowed. Load consults
// Memory first and falls back to Persistent, warming Memory on a
// persistent hit.
type Tiered struct {
	Memory     Cache
	Persistent Cache
}

// Load implements Cache.
func (t *Tiered) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if t.Memory != nil {
		data, ok, err := t.Memory.Load(ctx, key)
		if err != nil || ok {
			return data, ok, err
		}
	}
	if t.Persistent == nil {
		return nil, false, nil
	}
	data, ok, err := t.Persistent.Load(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	if t.Memory != nil {
		if err = t.Memory.Store(ctx, key, data, AllowedInMemoryOnly); err != nil {
			return nil, false, err
		}
	}
	return data, true, nil
}

// Store implements Cache.
func (t *Tiered) Store(ctx context.Context, key string, data []byte, policy StoragePolicy) error {
	if policy == NotAllowed {
		return nil
	}
	if t.Memory != nil {
		if err := t.Memory.Store(ctx, key, data, AllowedInMemoryOnly); err != nil {
			return err
		}
	}
	if policy == Allowed && t.Persistent != nil {
		return t.Persistent.Store(ctx, key, data, Allowed)
	}
	return nil
}

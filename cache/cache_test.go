// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := &Memory{}

	data, ok, err := m.Load(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)

	src := []byte("foo")
	require.NoError(t, m.Store(ctx, "k", src, AllowedInMemoryOnly))
	src[0] = 'x'
	data, ok, err = m.Load(ctx, "k")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("foo"), data)

	require.NoError(t, m.Store(ctx, "n", []byte("bar"), NotAllowed))
	assert.Equal(t, 1, m.Len())

	m.Delete("k")
	assert.Equal(t, 0, m.Len())
}

func TestTiered(t *testing.T) {
	ctx := context.Background()

	t.Run("memory only policy", func(t *testing.T) {
		mem := &Memory{}
		persistent := newMockCache(t)
		tc := &Tiered{Memory: mem, Persistent: persistent}
		require.NoError(t, tc.Store(ctx, "k", []byte("v"), AllowedInMemoryOnly))
		assert.Equal(t, 1, mem.Len())
		persistent.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
	t.Run("allowed policy", func(t *testing.T) {
		mem := &Memory{}
		persistent := newMockCache(t)
		persistent.On("Store", ctx, "k", []byte("v"), Allowed).Return(nil).Once()
		tc := &Tiered{Memory: mem, Persistent: persistent}
		require.NoError(t, tc.Store(ctx, "k", []byte("v"), Allowed))
		assert.Equal(t, 1, mem.Len())
		persistent.AssertExpectations(t)
	})
	t.Run("not allowed policy", func(t *testing.T) {
		mem := &Memory{}
		persistent := newMockCache(t)
		tc := &Tiered{Memory: mem, Persistent: persistent}
		require.NoError(t, tc.Store(ctx, "k", []byte("v"), NotAllowed))
		assert.Equal(t, 0, mem.Len())
	})
	t.Run("persistent hit warms memory", func(t *testing.T) {
		mem := &Memory{}
		persistent := newMockCache(t)
		persistent.On("Load", ctx, "k").Return([]byte("v"), true, nil).Once()
		tc := &Tiered{Memory: mem, Persistent: persistent}

		data, ok, err := tc.Load(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v"), data)

		data, ok, err = tc.Load(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v"), data)
		persistent.AssertExpectations(t)
	})
	t.Run("persistent error", func(t *testing.T) {
		expectedErr := errors.New("down")
		persistent := newMockCache(t)
		persistent.On("Load", ctx, "k").Return(nil, false, expectedErr).Once()
		tc := &Tiered{Memory: &Memory{}, Persistent: persistent}
		_, ok, err := tc.Load(ctx, "k")
		assert.False(t, ok)
		assert.Same(t, expectedErr, err)
	})
	t.Run("no tiers", func(t *testing.T) {
		tc := &Tiered{}
		_, ok, err := tc.Load(ctx, "k")
		assert.False(t, ok)
		assert.NoError(t, err)
		assert.NoError(t, tc.Store(ctx, "k", []byte("v"), Allowed))
	})
}

func TestStoragePolicyString(t *testing.T) {
	assert.Equal(t, "allowed", Allowed.String())
	assert.Equal(t, "allowed_in_memory_only", AllowedInMemoryOnly.String())
	assert.Equal(t, "not_allowed", NotAllowed.String())
	assert.Equal(t, "unknown", StoragePolicy(7).String())
}

type mockCache struct {
	mock.Mock
}

func newMockCache(t *testing.T) *mockCache {
	m := &mockCache{}
	m.Test(t)
	return m
}

func (m *mockCache) Load(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Bool(1), args.Error(2)
}

func (m *mockCache) Store(ctx context.Context, key string, data []byte, policy StoragePolicy) error {
	args := m.Called(ctx, key, data, policy)
	return args.Error(0)
}

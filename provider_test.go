// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nrequest

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogama/nrequest/request"
	"github.com/gogama/nrequest/status"
)

func TestNewProvider(t *testing.T) {
	a, b, c, d := &request.Funcs{}, &request.Funcs{}, &request.Funcs{}, &request.Funcs{}

	t.Run("own only", func(t *testing.T) {
		p := NewProvider([]request.Plugin{a, b})
		assert.Equal(t, []request.Plugin{a, b}, p.Plugins())
	})
	t.Run("own then nested in order", func(t *testing.T) {
		p := NewProvider([]request.Plugin{a},
			NewProvider([]request.Plugin{b, c}),
			NewProvider(nil, NewProvider([]request.Plugin{d})))
		assert.Equal(t, []request.Plugin{a, b, c, d}, p.Plugins())
	})
	t.Run("own list copied", func(t *testing.T) {
		own := []request.Plugin{a}
		p := NewProvider(own)
		own[0] = b
		assert.Equal(t, []request.Plugin{a}, p.Plugins())
		got := p.Plugins()
		got[0] = c
		assert.Equal(t, []request.Plugin{a}, p.Plugins())
	})
	t.Run("nested consulted each time", func(t *testing.T) {
		list := []request.Plugin{b}
		p := NewProvider([]request.Plugin{a}, ProviderFunc(func() []request.Plugin { return list }))
		assert.Equal(t, []request.Plugin{a, b}, p.Plugins())
		list = []request.Plugin{c, d}
		assert.Equal(t, []request.Plugin{a, c, d}, p.Plugins())
	})
	t.Run("nil", func(t *testing.T) {
		assert.Panics(t, func() { NewProvider([]request.Plugin{nil}) })
		assert.Panics(t, func() { NewProvider(nil, nil) })
		assert.Empty(t, NewProvider(nil).Plugins())
	})
}

func TestDefaultProvider(t *testing.T) {
	plugins := DefaultProvider.Plugins()
	require.Len(t, plugins, 1)
	err := plugins[0].Verify(&request.ResponseData{Response: &http.Response{StatusCode: 404}}, nil)
	assert.Equal(t, status.NotFound, err)
}

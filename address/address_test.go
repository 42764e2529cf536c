// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package address

import (
	"errors"
	urlpkg "net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressURL(t *testing.T) {
	testCases := []struct {
		name     string
		addr     Address
		slash    bool
		expected string
	}{
		{
			name:     "signin with slash",
			addr:     New("api.example.com", WithPath("signin", "v1.0"), WithQuery(QueryItems{"user": "foo"})),
			slash:    true,
			expected: "https://api.example.com/signin/v1.0/?user=foo",
		},
		{
			name:     "signin without slash",
			addr:     New("api.example.com", WithPath("signin", "v1.0"), WithQuery(QueryItems{"user": "foo"})),
			expected: "https://api.example.com/signin/v1.0?user=foo",
		},
		{
			name:     "slash ignored without query",
			addr:     New("api.example.com", WithPath("signin")),
			slash:    true,
			expected: "https://api.example.com/signin",
		},
		{
			name:     "host only",
			addr:     New("example.com"),
			expected: "https://example.com",
		},
		{
			name:     "http with port",
			addr:     New("localhost", WithScheme(HTTP), WithPort(8080), WithPath("a")),
			expected: "http://localhost:8080/a",
		},
		{
			name:     "custom scheme",
			addr:     New("example.com", WithScheme(Other("ws")), WithPath("socket")),
			expected: "ws://example.com/socket",
		},
		{
			name:     "no scheme",
			addr:     New("example.com", WithScheme(NoScheme), WithPath("x")),
			expected: "//example.com/x",
		},
		{
			name:     "empty segments dropped",
			addr:     New("example.com", WithPath("", "/a/", "", "b//c/")),
			expected: "https://example.com/a/b/c",
		},
		{
			name:     "endpoint",
			addr:     Endpoint("example.com", "/v2/users/"),
			expected: "https://example.com/v2/users",
		},
		{
			name:     "query sorted",
			addr:     New("example.com", WithQuery(QueryItems{"b": "2", "a": "1"})),
			expected: "https://example.com?a=1&b=2",
		},
		{
			name:     "host lower-cased",
			addr:     New("API.Example.COM"),
			expected: "https://api.example.com",
		},
		{
			name:     "ipv6",
			addr:     New("::1", WithScheme(HTTP), WithPort(80)),
			expected: "http://[::1]:80",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			u, err := testCase.addr.URL(testCase.slash)
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, u.String())
		})
	}
}

func TestAddressRender(t *testing.T) {
	noScheme := New("api.example.com", WithScheme(NoScheme), WithQuery(QueryItems{"a": "1"}))
	testCases := []struct {
		name     string
		addr     Address
		opts     RenderOptions
		expected string
	}{
		{"scheme-relative by default", noScheme, RenderOptions{AddSlashAfterEndpoint: true}, "//api.example.com/?a=1"},
		{"slashes removed", noScheme, RenderOptions{AddSlashAfterEndpoint: true, RemoveSlashesBeforeEmptyScheme: true}, "api.example.com/?a=1"},
		{"slashes removed with path", New("api.example.com", WithScheme(NoScheme), WithPath("v1")), RenderOptions{RemoveSlashesBeforeEmptyScheme: true}, "api.example.com/v1"},
		{"scheme kept", New("api.example.com", WithPath("v1")), RenderOptions{RemoveSlashesBeforeEmptyScheme: true}, "https://api.example.com/v1"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			u, err := testCase.addr.Render(testCase.opts)
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, u.String())
		})
	}

	_, err := New("", WithScheme(NoScheme)).Render(RenderOptions{RemoveSlashesBeforeEmptyScheme: true})
	assert.ErrorIs(t, err, ErrLackAddress)
}

func TestAddressURLLackAddress(t *testing.T) {
	testCases := []struct {
		name string
		addr Address
	}{
		{"empty host", New("")},
		{"space in scheme", New("example.com", WithScheme(Other("ht tp")))},
		{"digit leading scheme", New("example.com", WithScheme(Other("1http")))},
		{"path in host", New("example.com/path")},
		{"port in host", New("example.com:80")},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			u, err := testCase.addr.URL(false)
			assert.Nil(t, u)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrLackAddress))
			var encErr *EncodingError
			require.True(t, errors.As(err, &encErr))
			assert.Equal(t, LackAddress, encErr.Reason)
		})
	}
}

func TestAddressRoundTripHost(t *testing.T) {
	hosts := []string{"api.example.com", "localhost", "10.0.0.1", "my_service.internal", "bücher.example"}
	for _, host := range hosts {
		a := New(host, WithPath("p", "q"), WithQuery(QueryItems{"k": "v w"}))
		u, err := a.URL(true)
		require.NoError(t, err, host)
		reparsed, err := urlpkg.Parse(u.String())
		require.NoError(t, err)
		assert.Equal(t, u.Hostname(), reparsed.Hostname())
	}
}

func TestAddressOpaqueURL(t *testing.T) {
	u, err := urlpkg.Parse("https://example.com/a?b=c")
	require.NoError(t, err)
	a := FromURL(u)
	assert.True(t, a.IsURL())

	rendered, err := a.URL(true)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a?b=c", rendered.String())
	assert.NotSame(t, u, rendered)

	assert.Panics(t, func() { FromURL(nil) })
}

func TestAddressAppend(t *testing.T) {
	base := New("example.com", WithPath("v1"), WithQuery(QueryItems{"a": "1", "b": "2"}))

	t.Run("path", func(t *testing.T) {
		a := base.Append("users", "42/")
		assert.Equal(t, []string{"v1", "users", "42"}, a.Path())
		assert.Equal(t, []string{"v1"}, base.Path())
	})
	t.Run("query override", func(t *testing.T) {
		a := base.AppendQuery(QueryItems{"b": "3", "c": "4"})
		assert.Equal(t, QueryItems{"a": "1", "b": "3", "c": "4"}, a.Query())
		assert.Equal(t, QueryItems{"a": "1", "b": "2"}, base.Query())
	})
	t.Run("query idempotent", func(t *testing.T) {
		once := base.AppendQuery(QueryItems{"b": "3"})
		twice := once.AppendQuery(QueryItems{"b": "3"})
		assert.True(t, once.Equal(twice))
	})
	t.Run("opaque converted", func(t *testing.T) {
		opaque, err := Parse("http://example.com:81/x/y?q=1")
		require.NoError(t, err)
		a := opaque.Append("z").AppendQuery(QueryItems{"r": "2"})
		assert.False(t, a.IsURL())
		assert.Equal(t, HTTP, a.Scheme())
		assert.Equal(t, "example.com", a.Host())
		assert.Equal(t, 81, a.Port())
		assert.Equal(t, "http://example.com:81/x/y/z?q=1&r=2", a.String())
	})
}

func TestAddressEqual(t *testing.T) {
	a := New("example.com", WithPath("a"))
	assert.True(t, a.Equal(New("example.com", WithPath("a"))))
	assert.False(t, a.Equal(New("example.com", WithPath("b"))))
	assert.False(t, a.Equal(New("example.com", WithPath("a"), WithPort(1))))
	opaque, _ := Parse("https://example.com/a")
	assert.False(t, a.Equal(opaque))
	assert.True(t, opaque.Equal(FromURL(&urlpkg.URL{Scheme: "https", Host: "example.com", Path: "/a"})))
}

func TestEncodingError(t *testing.T) {
	err := &EncodingError{Reason: InvalidMethod, Target: "G T"}
	assert.Equal(t, `nrequest/address: invalid method "G T"`, err.Error())
	assert.False(t, errors.Is(err, ErrLackAddress))
	assert.Equal(t, "reason(9)", Reason(9).String())
}

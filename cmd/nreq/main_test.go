// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(r.Method + " " + r.Header.Get("X-Foo") + " " + string(b)))
	})
	mux.HandleFunc("/png", func(w http.ResponseWriter, _ *http.Request) {
		_ = png.Encode(w, image.NewRGBA(image.Rect(0, 0, 3, 2)))
	})
	mux.HandleFunc("/missing", http.NotFound)
	mux.HandleFunc("/teapot", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func runArgs(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun(t *testing.T) {
	server := newServer(t)

	t.Run("get", func(t *testing.T) {
		code, out, errOut := runArgs("-H", "X-Foo: bar", server.URL+"/echo")
		require.Equal(t, 0, code, errOut)
		assert.Equal(t, "GET bar ", out)
	})
	t.Run("data implies post", func(t *testing.T) {
		code, out, errOut := runArgs("-d", "hello", server.URL+"/echo")
		require.Equal(t, 0, code, errOut)
		assert.Equal(t, "POST  hello", out)
	})
	t.Run("explicit method", func(t *testing.T) {
		code, out, errOut := runArgs("-X", "put", "-d", "x", "--timeout", "5s", server.URL+"/echo")
		require.Equal(t, 0, code, errOut)
		assert.Equal(t, "PUT  x", out)
	})
	t.Run("image", func(t *testing.T) {
		code, out, errOut := runArgs("--image", server.URL+"/png")
		require.Equal(t, 0, code, errOut)
		assert.Equal(t, "3x2\n", out)
	})
	t.Run("status error", func(t *testing.T) {
		code, out, errOut := runArgs(server.URL + "/missing")
		assert.Equal(t, 1, code)
		assert.Empty(t, out)
		assert.Equal(t, "nreq: server returned 404 (not found)\n", errOut)

		code, _, errOut = runArgs(server.URL + "/teapot")
		assert.Equal(t, 1, code)
		assert.Equal(t, "nreq: server returned 418 (other(418))\n", errOut)
	})
	t.Run("verbose", func(t *testing.T) {
		code, _, errOut := runArgs("-v", server.URL+"/echo")
		require.Equal(t, 0, code, errOut)
		assert.Contains(t, errOut, "nrequest: sending request")
		assert.Contains(t, errOut, "nrequest: finished exchange")
	})
	t.Run("usage", func(t *testing.T) {
		code, _, errOut := runArgs()
		assert.Equal(t, 2, code)
		assert.Contains(t, errOut, "usage: nreq")
	})
	t.Run("bad flag", func(t *testing.T) {
		code, _, _ := runArgs("--nope", server.URL)
		assert.Equal(t, 2, code)
	})
	t.Run("malformed header", func(t *testing.T) {
		code, _, errOut := runArgs("-H", "nocolon", server.URL+"/echo")
		assert.Equal(t, 2, code)
		assert.Contains(t, errOut, `malformed header "nocolon"`)
	})
	t.Run("missing config", func(t *testing.T) {
		code, _, errOut := runArgs("--config", t.TempDir()+"/nope.yaml", server.URL)
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "nrequest/config: read config")
	})
}

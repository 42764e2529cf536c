// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugins

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/gogama/nrequest/request"
)

// ErrTokenExpired is raised during the Verify stage when the bearer
// token is a JWT whose exp claim has passed.
var ErrTokenExpired = errors.New("nrequest/plugins: bearer token expired")

// ErrNoTokenProvider is raised during the Verify stage by a Bearer
// whose Tokens field is nil.
var ErrNoTokenProvider = errors.New("nrequest/plugins: bearer has no token provider")

// A TokenProvider supplies bearer tokens.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc is an adapter to allow ordinary functions to be used as a
// TokenProvider.
type TokenFunc func(ctx context.Context) (string, error)

// Token calls f(ctx).
func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// An Invalidator is a TokenProvider that can discard a token the server
// rejected, so that the next call to Token fetches a fresh one.
type Invalidator interface {
	Invalidate(token string)
}

type bearerToken struct{}

type bearerErr struct{}

// Bearer is a plugin that authenticates requests with an OAuth bearer
// token.
//
// In the Prepare stage Bearer fetches a token and sets the
// Authorization header. If the token is a JWT with an expired exp
// claim, or the provider fails, no header is set and the Verify stage
// fails the exchange with ErrTokenExpired or the provider error. The
// token signature is never checked; that is the server's job.
//
// If the server answers 401 and Tokens implements Invalidator, the
// token is invalidated during the DidReceive stage.
type Bearer struct {
	// Tokens supplies the tokens. If nil, every exchange fails in the
	// Verify stage with ErrNoTokenProvider.
	Tokens TokenProvider
	// Leeway is subtracted from a JWT's expiry before it is compared
	// with the current time.
	Leeway time.Duration
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Prepare implements request.Plugin.
func (b *Bearer) Prepare(_ *request.Parameters, r *http.Request, info *request.UserInfo) {
	if b.Tokens == nil {
		info.Set(bearerErr{}, ErrNoTokenProvider)
		return
	}
	token, err := b.Tokens.Token(r.Context())
	if err != nil {
		info.Set(bearerErr{}, fmt.Errorf("nrequest/plugins: bearer token: %w", err))
		return
	}
	if b.expired(token) {
		info.Set(bearerErr{}, ErrTokenExpired)
		return
	}
	info.Set(bearerToken{}, token)
	r.Header.Set("Authorization", "Bearer "+token)
}

// WillSend implements request.Plugin.
func (b *Bearer) WillSend(*request.Parameters, *http.Request, *request.UserInfo) {}

// DidReceive implements request.Plugin.
func (b *Bearer) DidReceive(_ *request.Parameters, d *request.ResponseData, info *request.UserInfo) {
	if d.StatusCode() != http.StatusUnauthorized {
		return
	}
	inv, ok := b.Tokens.(Invalidator)
	if !ok {
		return
	}
	if token, ok := request.Get[string](info, bearerToken{}); ok {
		inv.Invalidate(token)
	}
}

// Verify implements request.Plugin.
func (b *Bearer) Verify(_ *request.ResponseData, info *request.UserInfo) error {
	err, _ := request.Get[error](info, bearerErr{})
	return err
}

// DidFinish implements request.Plugin.
func (b *Bearer) DidFinish(*request.Parameters, *request.ResponseData, *request.UserInfo, interface{}) {}

// expired reports whether token is a JWT that has expired. Tokens which
// are not JWTs, or carry no exp claim, never expire.
func (b *Bearer) expired(token string) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	claims := &gojwt.RegisteredClaims{}
	if _, _, err := gojwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	return !now().Before(claims.ExpiresAt.Time.Add(-b.Leeway))
}

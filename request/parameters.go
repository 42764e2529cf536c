// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gogama/nrequest/address"
	"github.com/gogama/nrequest/cache"
	"github.com/gogama/nrequest/queue"
)

// DefaultTimeout is the request timeout used when none is given.
const DefaultTimeout = 60 * time.Second

// A CachePolicy selects how the pipeline consults the response cache.
type CachePolicy int

const (
	// UseProtocolCachePolicy ignores the cache on load and stores
	// successful responses if CacheSettings permit.
	UseProtocolCachePolicy CachePolicy = iota
	// ReloadIgnoringCacheData always loads from the transport and sends
	// Cache-Control: no-cache unless the request already sets it.
	ReloadIgnoringCacheData
	// ReturnCacheDataElseLoad serves a cached body when present and
	// loads from the transport otherwise.
	ReturnCacheDataElseLoad
	// ReturnCacheDataDontLoad serves a cached body when present and
	// fails the exchange otherwise.
	ReturnCacheDataDontLoad
)

var cachePolicyNames = []string{
	"use_protocol_cache_policy",
	"reload_ignoring_cache_data",
	"return_cache_data_else_load",
	"return_cache_data_dont_load",
}

func (p CachePolicy) String() string {
	if p >= 0 && int(p) < len(cachePolicyNames) {
		return cachePolicyNames[p]
	}
	return "unknown"
}

// ReadsCache indicates whether the policy serves cached bodies.
func (p CachePolicy) ReadsCache() bool {
	return p == ReturnCacheDataElseLoad || p == ReturnCacheDataDontLoad
}

// CacheSettings names the cache used for an exchange, where responses
// may be stored, and the queue cache writes run on.
type CacheSettings struct {
	Cache         cache.Cache
	StoragePolicy cache.StoragePolicy
	// Queue runs cache writes. Nil means writes run inline, before the
	// DidFinish stage.
	Queue queue.Queue
}

// Parameters describes one request.
//
// Parameters should be treated as immutable once constructed. Build a
// new value with New, or derive one with AddPlugins or WithAddress.
type Parameters struct {
	// Address is where the request is sent.
	Address address.Address

	// AddSlashAfterEndpoint inserts a "/" between the path and the query
	// when the address has query items.
	AddSlashAfterEndpoint bool

	// RemoveSlashesBeforeEmptyScheme renders an address without a
	// scheme as "host/path" rather than "//host/path".
	RemoveSlashesBeforeEmptyScheme bool

	// Method is the HTTP method. The empty method means GET.
	Method Method

	// Header holds the request headers. It is cloned into every request
	// built from the Parameters.
	Header http.Header

	// Body is the request body. Nil means Empty.
	Body Body

	// Codec encodes Encode bodies and decodes typed responses. Nil means
	// JSON.
	Codec Codec

	// Timeout bounds the whole exchange. Zero means DefaultTimeout, a
	// negative value means no timeout.
	Timeout time.Duration

	// CacheSettings enables response caching. Nil disables it.
	CacheSettings *CacheSettings

	// CachePolicy selects how the cache is consulted.
	CachePolicy CachePolicy

	// Queue receives the completion callback. Nil means the queue passed
	// at call time, or failing that queue.Default.
	Queue queue.Queue

	// Plugins run after the provider's plugins, in order.
	Plugins []Plugin

	// LoggingEnabled allows logging plugins to record request and
	// response bodies.
	LoggingEnabled bool

	// UserInfo seeds the UserInfo of every exchange.
	UserInfo map[interface{}]interface{}

	ctx context.Context
}

// An Option configures Parameters in New.
type Option func(*Parameters)

// New returns Parameters for addr with opts applied.
func New(addr address.Address, opts ...Option) *Parameters {
	p := &Parameters{Address: addr}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithHeader sets one request header, replacing earlier values.
func WithHeader(key, value string) Option {
	return func(p *Parameters) {
		if p.Header == nil {
			p.Header = make(http.Header)
		}
		p.Header.Set(key, value)
	}
}

// WithHeaders merges h into the request headers.
func WithHeaders(h http.Header) Option {
	return func(p *Parameters) {
		if p.Header == nil {
			p.Header = make(http.Header, len(h))
		}
		for k, vs := range h {
			p.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
		}
	}
}

// WithMethod sets the HTTP method.
func WithMethod(m Method) Option {
	return func(p *Parameters) { p.Method = m }
}

// WithBody sets the request body.
func WithBody(b Body) Option {
	return func(p *Parameters) { p.Body = b }
}

// WithTimeout sets the exchange timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Parameters) { p.Timeout = d }
}

// WithCache enables caching in c with the given storage policy.
func WithCache(c cache.Cache, policy cache.StoragePolicy) Option {
	return func(p *Parameters) {
		cs := CacheSettings{Cache: c, StoragePolicy: policy}
		if p.CacheSettings != nil {
			cs.Queue = p.CacheSettings.Queue
		}
		p.CacheSettings = &cs
	}
}

// WithCacheQueue schedules cache writes on q. It has no effect unless
// a cache is configured with WithCache, before or after it.
func WithCacheQueue(q queue.Queue) Option {
	return func(p *Parameters) {
		var cs CacheSettings
		if p.CacheSettings != nil {
			cs = *p.CacheSettings
		}
		cs.Queue = q
		p.CacheSettings = &cs
	}
}

// WithCachePolicy sets the cache policy.
func WithCachePolicy(cp CachePolicy) Option {
	return func(p *Parameters) { p.CachePolicy = cp }
}

// WithQueue sets the completion queue.
func WithQueue(q queue.Queue) Option {
	return func(p *Parameters) { p.Queue = q }
}

// WithPlugins appends plugins.
func WithPlugins(plugins ...Plugin) Option {
	return func(p *Parameters) { p.Plugins = append(p.Plugins, plugins...) }
}

// WithLogging sets LoggingEnabled.
func WithLogging(enabled bool) Option {
	return func(p *Parameters) { p.LoggingEnabled = enabled }
}

// WithUserInfo seeds one user info entry.
func WithUserInfo(key, value interface{}) Option {
	if key == nil {
		panic("nrequest/request: nil user info key")
	}
	return func(p *Parameters) {
		if p.UserInfo == nil {
			p.UserInfo = make(map[interface{}]interface{})
		}
		p.UserInfo[key] = value
	}
}

// WithCodec sets the codec.
func WithCodec(c Codec) Option {
	return func(p *Parameters) { p.Codec = c }
}

// WithSlashAfterEndpoint sets AddSlashAfterEndpoint.
func WithSlashAfterEndpoint(add bool) Option {
	return func(p *Parameters) { p.AddSlashAfterEndpoint = add }
}

// WithoutSlashesBeforeEmptyScheme sets RemoveSlashesBeforeEmptyScheme.
func WithoutSlashesBeforeEmptyScheme(remove bool) Option {
	return func(p *Parameters) { p.RemoveSlashesBeforeEmptyScheme = remove }
}

// AddPlugins returns a copy of p with plugins appended to the existing
// plugin list. The receiver is not modified.
func (p *Parameters) AddPlugins(plugins ...Plugin) *Parameters {
	q := p.clone()
	q.Plugins = append(q.Plugins, plugins...)
	return q
}

// WithAddress returns a copy of p targeting addr.
func (p *Parameters) WithAddress(addr address.Address) *Parameters {
	q := p.clone()
	q.Address = addr
	return q
}

// Context returns the parent context of exchanges run with p. The
// returned context is always non-nil; it defaults to the background
// context.
func (p *Parameters) Context() context.Context {
	if p.ctx != nil {
		return p.ctx
	}
	return context.Background()
}

// WithContext returns a copy of p whose exchanges derive their
// context from ctx. Values carried by ctx reach the transport and the
// plugins through the request context, and canceling ctx cancels the
// exchange. The provided ctx must be non-nil.
func (p *Parameters) WithContext(ctx context.Context) *Parameters {
	if ctx == nil {
		panic("nrequest/request: nil context")
	}
	q := p.clone()
	q.ctx = ctx
	return q
}

// clone returns a copy of p sharing no mutable state with it.
func (p *Parameters) clone() *Parameters {
	q := *p
	q.Header = p.Header.Clone()
	if p.Plugins != nil {
		q.Plugins = append(make([]Plugin, 0, len(p.Plugins)), p.Plugins...)
	}
	if p.UserInfo != nil {
		q.UserInfo = make(map[interface{}]interface{}, len(p.UserInfo))
		for k, v := range p.UserInfo {
			q.UserInfo[k] = v
		}
	}
	if p.CacheSettings != nil {
		cs := *p.CacheSettings
		q.CacheSettings = &cs
	}
	return &q
}

// EffectiveTimeout returns the timeout applied to the exchange, or zero
// if it is unbounded.
func (p *Parameters) EffectiveTimeout() time.Duration {
	switch {
	case p.Timeout == 0:
		return DefaultTimeout
	case p.Timeout < 0:
		return 0
	default:
		return p.Timeout
	}
}

// EffectiveCodec returns p.Codec, or JSON if it is nil.
func (p *Parameters) EffectiveCodec() Codec {
	if p.Codec == nil {
		return JSON
	}
	return p.Codec
}

// ToRequest builds the HTTP request described by p.
//
// ToRequest fails with an *address.EncodingError whose reason is
// address.InvalidMethod, address.LackAddress or address.InvalidBody if
// the method, address or body cannot be encoded.
func (p *Parameters) ToRequest(ctx context.Context) (*http.Request, error) {
	if ctx == nil {
		return nil, errors.New("nrequest/request: nil context")
	}
	if !p.Method.Valid() {
		return nil, &address.EncodingError{Reason: address.InvalidMethod, Target: string(p.Method)}
	}
	u, err := p.Address.Render(address.RenderOptions{
		AddSlashAfterEndpoint:          p.AddSlashAfterEndpoint,
		RemoveSlashesBeforeEmptyScheme: p.RemoveSlashesBeforeEmptyScheme,
	})
	if err != nil {
		return nil, err
	}
	r, err := http.NewRequestWithContext(ctx, p.Method.String(), u.String(), nil)
	if err != nil {
		return nil, &address.EncodingError{Reason: address.LackAddress, Target: u.String(), Err: err}
	}
	r.Header = p.Header.Clone()
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if p.CachePolicy == ReloadIgnoringCacheData && r.Header.Get("Cache-Control") == "" {
		r.Header.Set("Cache-Control", "no-cache")
	}
	body := p.Body
	if body == nil {
		body = Empty()
	}
	if err = body.Fill(r, p.EffectiveCodec()); err != nil {
		return nil, &address.EncodingError{Reason: address.InvalidBody, Err: err}
	}
	return r, nil
}

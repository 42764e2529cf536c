// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nrequest

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/gogama/nrequest/cache"
	"github.com/gogama/nrequest/queue"
	"github.com/gogama/nrequest/request"
)

var nopLogger = zerolog.Nop()

// A Client executes requests described by request.Parameters through a
// Transport, running a plugin chain around each exchange. Its zero
// value is a valid configuration.
//
// The zero value client uses DoerTransport with http.DefaultClient (from
// net/http) as the transport, DefaultProvider as the plugin provider,
// and a disabled logger.
//
// Client is safe for concurrent use by multiple goroutines. Exchanges
// share nothing with each other except the Client and the plugins.
//
// Each exchange moves through a fixed sequence of stages:
//
// • the HTTP request is built from the parameters; if that fails, the
// exchange fails with an *address.EncodingError and no plugin runs;
//
// • Prepare and WillSend run over the plugin chain;
//
// • the request is served from cache, if the cache policy allows and
// the cache has an entry, or is handed to the transport;
//
// • DidReceive runs over the plugin chain;
//
// • if the transport reported an error, the error is delivered as-is
// and the payload is never inspected; otherwise Verify runs over the
// chain, stopping at the first error, and the payload is decoded into
// the requested shape;
//
// • DidFinish runs over the plugin chain and the result is delivered
// exactly once on the response queue.
//
// The plugin chain of an exchange is the provider's plugins followed by
// the parameters' plugins.
//
// The context of every HTTP request derives from the parameters'
// context (see request.Parameters.WithContext), so its values and
// deadline reach the plugins and the transport.
//
// The Client never retries. Retry and backoff belong in the transport
// or in a plugin.
type Client struct {
	// Transport performs the network exchange.
	//
	// If Transport is nil, a DoerTransport using http.DefaultClient is
	// used.
	Transport Transport
	// Provider supplies the plugins run ahead of the per-request
	// plugins.
	//
	// If Provider is nil, DefaultProvider is used.
	Provider Provider
	// Logger receives engine diagnostics: transport contract violations
	// and cache failures.
	//
	// If Logger is nil, nothing is logged.
	Logger *zerolog.Logger
}

// CloseIdleConnections invokes the same method on the client's
// transport.
//
// If the transport has no CloseIdleConnections method, this method does
// nothing.
func (c *Client) CloseIdleConnections() {
	if ic, ok := c.transport().(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (c *Client) transport() Transport {
	if c.Transport == nil {
		return DoerTransport{}
	}
	return c.Transport
}

func (c *Client) provider() Provider {
	if c.Provider == nil {
		return DefaultProvider
	}
	return c.Provider
}

func (c *Client) logger() *zerolog.Logger {
	if c.Logger == nil {
		return &nopLogger
	}
	return c.Logger
}

// newTask sets up one exchange and returns its unstarted task.
//
// The decode function converts a verified response into the value
// handed to DidFinish and deliver. The deliver function receives either
// that value or the error that ended the exchange, never both.
func (c *Client) newTask(p *request.Parameters, q queue.Queue,
	decode func(*request.ResponseData) (interface{}, error),
	deliver func(interface{}, error)) *Task {
	if p == nil {
		panic("nrequest: nil parameters")
	}
	if q == nil {
		q = p.Queue
	}
	if q == nil {
		q = queue.Default
	}
	t := newTask(p.Context())
	x := &exchange{
		client:  c,
		task:    t,
		params:  p,
		queue:   q,
		decode:  decode,
		deliver: deliver,
	}
	t.run = x.start
	t.abort = func() {
		x.fail(ErrCanceled)
	}
	return t
}

type exchange struct {
	client  *Client
	task    *Task
	params  *request.Parameters
	queue   queue.Queue
	decode  func(*request.ResponseData) (interface{}, error)
	deliver func(interface{}, error)

	chain     Chain
	info      *request.UserInfo
	req       *http.Request
	cancelReq context.CancelFunc
	received  int32
}

func (x *exchange) start() {
	ctx := x.task.ctx
	if timeout := x.params.EffectiveTimeout(); timeout > 0 {
		ctx, x.cancelReq = context.WithTimeout(ctx, timeout)
	} else {
		ctx, x.cancelReq = context.WithCancel(ctx)
	}
	r, err := x.params.ToRequest(ctx)
	if err != nil {
		x.fail(err)
		return
	}
	x.req = r
	x.chain = NewChain(x.client.provider().Plugins()...).PushBack(x.params.Plugins...)
	x.info = request.NewUserInfo(x.params.UserInfo)

	x.task.enter(Prepare)
	x.chain.Prepare(x.params, r, x.info)
	x.task.enter(WillSend)
	x.chain.WillSend(x.params, r, x.info)

	if x.task.ctx.Err() != nil {
		x.receive(&request.ResponseData{Request: r, Err: ErrCanceled})
		return
	}

	policy := x.params.CachePolicy
	if policy.ReadsCache() {
		if d := x.loadCache(); d != nil {
			x.receive(d)
			return
		}
		if policy == request.ReturnCacheDataDontLoad {
			x.receive(&request.ResponseData{Request: r, Err: ErrCacheMiss})
			return
		}
	}

	x.client.transport().Execute(r, x.complete)
}

func (x *exchange) complete(d *request.ResponseData) {
	if !atomic.CompareAndSwapInt32(&x.received, 0, 1) {
		x.client.logger().Error().
			Str("method", x.req.Method).
			Str("url", x.req.URL.String()).
			Msg("nrequest: transport completed more than once, result dropped")
		return
	}
	if d == nil {
		d = &request.ResponseData{Err: errNoResponseData}
	}
	if d.Request == nil {
		d.Request = x.req
	}
	x.receive(d)
}

func (x *exchange) receive(d *request.ResponseData) {
	x.cancelReq()
	x.task.enter(DidReceive)
	x.chain.DidReceive(x.params, d, x.info)

	var v interface{}
	var err error
	if d.Err != nil {
		err = d.Err
	} else {
		x.task.enter(Verify)
		if err = x.chain.Verify(d, x.info); err == nil {
			if v, err = x.decode(d); err == nil {
				x.storeCache(d)
			} else {
				v = nil
			}
		}
	}

	x.task.enter(DidFinish)
	x.chain.DidFinish(x.params, d, x.info, v)
	x.task.finish(x.queue, func() {
		x.deliver(v, err)
	})
}

func (x *exchange) fail(err error) {
	if x.cancelReq != nil {
		x.cancelReq()
	}
	x.task.finish(x.queue, func() {
		x.deliver(nil, err)
	})
}

func cacheKey(r *http.Request) string {
	return r.Method + " " + r.URL.String()
}

func (x *exchange) cache() cache.Cache {
	if s := x.params.CacheSettings; s != nil {
		return s.Cache
	}
	return nil
}

func (x *exchange) loadCache() *request.ResponseData {
	c := x.cache()
	if c == nil {
		return nil
	}
	start := time.Now()
	key := cacheKey(x.req)
	data, ok, err := c.Load(x.req.Context(), key)
	if err != nil {
		x.client.logger().Warn().Err(err).Str("key", key).Msg("nrequest: cache load failed")
		return nil
	}
	if !ok {
		return nil
	}
	return &request.ResponseData{
		Request:   x.req,
		Body:      data,
		FromCache: true,
		Start:     start,
		End:       time.Now(),
	}
}

func (x *exchange) storeCache(d *request.ResponseData) {
	c := x.cache()
	if c == nil || d.FromCache || d.StatusCode() != http.StatusOK || len(d.Body) == 0 {
		return
	}
	settings := x.params.CacheSettings
	if settings.StoragePolicy == cache.NotAllowed {
		return
	}
	key := cacheKey(d.Request)
	store := func(data []byte) {
		if err := c.Store(context.Background(), key, data, settings.StoragePolicy); err != nil {
			x.client.logger().Warn().Err(err).Str("key", key).Msg("nrequest: cache store failed")
		}
	}
	if settings.Queue == nil {
		store(d.Body)
		return
	}
	// The body may reach the caller before the write runs.
	data := append([]byte(nil), d.Body...)
	settings.Queue.Schedule(func() { store(data) })
}

// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugins

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gogama/nrequest/request"
)

// DefaultMaxLoggedBody is the number of response body bytes Logger
// records when MaxBody is zero.
const DefaultMaxLoggedBody = 4096

// Logger is a plugin that records the lifecycle of each exchange on a
// zerolog logger at debug level, and failed exchanges at warn level.
//
// Request and response bodies are only logged for parameters with
// LoggingEnabled set.
type Logger struct {
	// Log receives the records. If nil, nothing is logged.
	Log *zerolog.Logger
	// MaxBody caps the logged response body. Zero means
	// DefaultMaxLoggedBody, a negative value disables response body
	// logging.
	MaxBody int
}

var nopLogger = zerolog.Nop()

func (l *Logger) log() *zerolog.Logger {
	if l.Log == nil {
		return &nopLogger
	}
	return l.Log
}

// Prepare implements request.Plugin.
func (l *Logger) Prepare(*request.Parameters, *http.Request, *request.UserInfo) {}

// WillSend implements request.Plugin.
func (l *Logger) WillSend(p *request.Parameters, r *http.Request, info *request.UserInfo) {
	e := l.log().Debug().
		Str("method", r.Method).
		Str("url", r.URL.String())
	if id, ok := ExchangeID(info); ok {
		e.Str("request_id", id)
	}
	if p.LoggingEnabled && p.Body != nil {
		e.Object("body", p.Body)
	}
	e.Msg("nrequest: sending request")
}

// DidReceive implements request.Plugin.
func (l *Logger) DidReceive(p *request.Parameters, d *request.ResponseData, info *request.UserInfo) {
	var e *zerolog.Event
	if d.Err != nil {
		e = l.log().Warn().Err(d.Err).Stringer("category", d.Category())
	} else {
		e = l.log().Debug()
	}
	e.Str("method", d.Request.Method).
		Str("url", d.Request.URL.String()).
		Int("status", d.StatusCode()).
		Bool("from_cache", d.FromCache).
		Int("bytes", len(d.Body)).
		Dur("duration", d.Duration())
	if id, ok := ExchangeID(info); ok {
		e.Str("request_id", id)
	}
	if p.LoggingEnabled && l.MaxBody >= 0 && len(d.Body) > 0 {
		limit := l.MaxBody
		if limit == 0 {
			limit = DefaultMaxLoggedBody
		}
		body := d.Body
		if len(body) > limit {
			body = body[:limit]
		}
		e.Bytes("body", body)
	}
	e.Msg("nrequest: received response")
}

// Verify implements request.Plugin.
func (l *Logger) Verify(*request.ResponseData, *request.UserInfo) error {
	return nil
}

// DidFinish implements request.Plugin.
func (l *Logger) DidFinish(_ *request.Parameters, d *request.ResponseData, info *request.UserInfo, v interface{}) {
	var e *zerolog.Event
	if v == nil {
		e = l.log().Warn()
	} else {
		e = l.log().Debug()
	}
	e.Str("method", d.Request.Method).
		Str("url", d.Request.URL.String()).
		Bool("ok", v != nil)
	if id, ok := ExchangeID(info); ok {
		e.Str("request_id", id)
	}
	e.Msg("nrequest: finished exchange")
}

// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugins

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/gogama/nrequest/request"
)

// TracerName is the instrumentation name used when Tracing has no
// Tracer.
const TracerName = "github.com/gogama/nrequest/plugins"

type spanKey struct{}

// Tracing is a plugin that wraps each exchange in an OpenTelemetry
// client span. The span starts in the Prepare stage, its context is
// injected into the request headers, and it ends in the DidFinish
// stage.
type Tracing struct {
	// Tracer starts the spans. Defaults to the tracer named TracerName
	// from the global provider.
	Tracer trace.Tracer
	// Propagator injects the span context into request headers.
	// Defaults to the global propagator.
	Propagator propagation.TextMapPropagator
}

// Prepare implements request.Plugin.
func (t *Tracing) Prepare(_ *request.Parameters, r *http.Request, info *request.UserInfo) {
	tracer := t.Tracer
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	ctx, span := tracer.Start(r.Context(), "HTTP "+r.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("url.full", r.URL.String()),
			attribute.String("server.address", r.URL.Hostname()),
		))
	prop := t.Propagator
	if prop == nil {
		prop = otel.GetTextMapPropagator()
	}
	prop.Inject(ctx, propagation.HeaderCarrier(r.Header))
	info.Set(spanKey{}, span)
}

// WillSend implements request.Plugin.
func (t *Tracing) WillSend(*request.Parameters, *http.Request, *request.UserInfo) {}

// DidReceive implements request.Plugin.
func (t *Tracing) DidReceive(_ *request.Parameters, d *request.ResponseData, info *request.UserInfo) {
	span, ok := request.Get[trace.Span](info, spanKey{})
	if !ok {
		return
	}
	if code := d.StatusCode(); code != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", code))
	}
	if d.FromCache {
		span.SetAttributes(attribute.Bool("nrequest.from_cache", true))
	}
	if d.Err != nil {
		span.RecordError(d.Err)
		span.SetStatus(codes.Error, d.Err.Error())
	}
}

// Verify implements request.Plugin.
func (t *Tracing) Verify(*request.ResponseData, *request.UserInfo) error {
	return nil
}

// DidFinish implements request.Plugin.
func (t *Tracing) DidFinish(_ *request.Parameters, d *request.ResponseData, info *request.UserInfo, v interface{}) {
	span, ok := request.Get[trace.Span](info, spanKey{})
	if !ok {
		return
	}
	if v == nil && d.Err == nil {
		span.SetStatus(codes.Error, "response rejected")
	}
	span.End()
}

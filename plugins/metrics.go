// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugins

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/gogama/nrequest/request"
)

// Metric instrument names recorded by Metrics.
const (
	RequestCountMetric    = "http.client.request.count"
	RequestDurationMetric = "http.client.request.duration"
)

// Metrics is a plugin that records a request counter and a duration
// histogram for every finished exchange. Both instruments carry the
// request method, the response status code, whether the response
// came from the cache and whether the exchange produced a value.
//
// The zero value uses the meter named TracerName from the global
// provider. A Metrics must not be copied after first use.
type Metrics struct {
	// Meter creates the instruments. Defaults to the global meter.
	Meter metric.Meter

	once     sync.Once
	count    metric.Int64Counter
	duration metric.Float64Histogram
}

func (m *Metrics) init() {
	meter := m.Meter
	if meter == nil {
		meter = otel.Meter(TracerName)
	}
	var err error
	m.count, err = meter.Int64Counter(RequestCountMetric,
		metric.WithDescription("Number of finished HTTP client requests."),
		metric.WithUnit("{request}"))
	if err != nil {
		m.count = noop.Int64Counter{}
	}
	m.duration, err = meter.Float64Histogram(RequestDurationMetric,
		metric.WithDescription("Duration of HTTP client exchanges."),
		metric.WithUnit("s"))
	if err != nil {
		m.duration = noop.Float64Histogram{}
	}
}

// Prepare implements request.Plugin.
func (m *Metrics) Prepare(*request.Parameters, *http.Request, *request.UserInfo) {}

// WillSend implements request.Plugin.
func (m *Metrics) WillSend(*request.Parameters, *http.Request, *request.UserInfo) {}

// DidReceive implements request.Plugin.
func (m *Metrics) DidReceive(*request.Parameters, *request.ResponseData, *request.UserInfo) {}

// Verify implements request.Plugin.
func (m *Metrics) Verify(*request.ResponseData, *request.UserInfo) error {
	return nil
}

// DidFinish implements request.Plugin.
func (m *Metrics) DidFinish(_ *request.Parameters, d *request.ResponseData, _ *request.UserInfo, v interface{}) {
	m.once.Do(m.init)
	method := http.MethodGet
	ctx := context.Background()
	if d.Request != nil {
		if d.Request.Method != "" {
			method = d.Request.Method
		}
		ctx = d.Request.Context()
	}
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("http.response.status_code", strconv.Itoa(d.StatusCode())),
		attribute.Bool("nrequest.from_cache", d.FromCache),
		attribute.Bool("nrequest.ok", v != nil),
	)
	m.count.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Duration().Seconds(), attrs)
}

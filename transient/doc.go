// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies transport failures reported by an
// exchange: client-side timeouts, cancellations, refused connections and
// reset connections. The request pipeline never retries on its own, so
// the categories exist for callers and plugins that decide what to do
// with a failed exchange, and for bucketing failures in logs and traces.
package transient

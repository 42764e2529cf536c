// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads client configuration from a YAML file, a .env
// file and NREQ_ prefixed environment variables, and builds a ready to
// use nrequest.Client together with default request options.
//
// Environment variables override the file. Nested keys are joined with
// an underscore, so log.level is read from NREQ_LOG_LEVEL and
// cache.redis.addr from NREQ_CACHE_REDIS_ADDR.
package config

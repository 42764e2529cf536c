// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command nreq sends one HTTP request through the nrequest pipeline and
// writes the response body to standard output.
//
// Usage:
//
//	nreq [flags] URL
//
// Client settings come from nreq.yaml, .env and NREQ_ environment
// variables, see package config. Flags override them for one request.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/gogama/nrequest"
	"github.com/gogama/nrequest/address"
	"github.com/gogama/nrequest/config"
	"github.com/gogama/nrequest/request"
	"github.com/gogama/nrequest/status"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	method     string
	headers    []string
	data       string
	configFile string
	envFile    string
	verbose    bool
	image      bool
	timeout    time.Duration
	timeoutSet bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var o options
	fs := pflag.NewFlagSet("nreq", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&o.method, "request", "X", "", "HTTP method (default GET, or POST with --data)")
	fs.StringArrayVarP(&o.headers, "header", "H", nil, `request header "Name: value", repeatable`)
	fs.StringVarP(&o.data, "data", "d", "", "request body")
	fs.StringVar(&o.configFile, "config", "", "config file")
	fs.StringVar(&o.envFile, "env-file", "", ".env file")
	fs.DurationVar(&o.timeout, "timeout", 0, "request timeout, negative for none")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "log exchange lifecycle to stderr")
	fs.BoolVar(&o.image, "image", false, "decode the response as an image and print its size")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	o.timeoutSet = fs.Changed("timeout")
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: nreq [flags] URL")
		return 2
	}

	var loadOpts []config.LoaderOption
	if o.configFile != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(o.configFile))
	}
	if o.envFile != "" {
		loadOpts = append(loadOpts, config.WithEnvFile(o.envFile))
	}
	cfg, err := config.Load(loadOpts...)
	if err != nil {
		fmt.Fprintln(stderr, "nreq:", err)
		return 1
	}
	if o.verbose {
		cfg.Log.Level = "debug"
		cfg.Log.Exchanges = true
		cfg.Request.Logging = true
	}
	s := cfg.Build(stderr)
	defer func() { _ = s.Close() }()

	p, err := o.params(s, fs.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, "nreq:", err)
		return 2
	}

	if o.image {
		img, err := nrequest.DoImage(ctx, s.Client, p)
		if err != nil {
			return fail(stderr, err)
		}
		b := img.Bounds()
		fmt.Fprintf(stdout, "%dx%d\n", b.Dx(), b.Dy())
		return 0
	}
	body, err := nrequest.DoData(ctx, s.Client, p)
	if err != nil {
		return fail(stderr, err)
	}
	_, _ = stdout.Write(body)
	return 0
}

func (o *options) params(s *config.Setup, rawURL string) (*request.Parameters, error) {
	addr, err := address.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	var opts []request.Option
	method := request.Method(strings.ToUpper(o.method))
	if method == "" && o.data != "" {
		method = request.POST
	}
	if method != "" {
		opts = append(opts, request.WithMethod(method))
	}
	if o.data != "" {
		opts = append(opts, request.WithBody(request.Data([]byte(o.data), "")))
	}
	if len(o.headers) > 0 {
		h := make(http.Header, len(o.headers))
		for _, line := range o.headers {
			name, value, ok := strings.Cut(line, ":")
			if !ok {
				return nil, fmt.Errorf("malformed header %q", line)
			}
			h.Add(strings.TrimSpace(name), strings.TrimSpace(value))
		}
		opts = append(opts, request.WithHeaders(h))
	}
	if o.timeoutSet {
		opts = append(opts, request.WithTimeout(o.timeout))
	}
	return s.Params(addr, opts...), nil
}

func fail(stderr io.Writer, err error) int {
	var code status.Code
	if errors.As(err, &code) {
		fmt.Fprintf(stderr, "nreq: server returned %d (%s)\n", code.Int(), code.String())
		return 1
	}
	fmt.Fprintln(stderr, "nreq:", err)
	return 1
}

// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package address

import (
	"net"
	urlpkg "net/url"
	"strconv"
	"strings"

	"golang.org/x/net/idna"
)

// hostProfile maps hosts to their lower-case ASCII form. Underscores are
// tolerated because they are common in internal host names.
var hostProfile = idna.New(idna.MapForLookup(), idna.Transitional(false), idna.StrictDomainName(false))

// A Scheme is the scheme component of a structured Address. The empty
// Scheme, NoScheme, renders a scheme-relative URL such as
// "//example.com/path".
type Scheme string

const (
	// NoScheme omits the scheme from the rendered URL.
	NoScheme Scheme = ""
	// HTTP is the "http" scheme.
	HTTP Scheme = "http"
	// HTTPS is the "https" scheme, and the default for New.
	HTTPS Scheme = "https"
)

// Other returns a custom scheme, for example Other("ws").
func Other(s string) Scheme {
	return Scheme(s)
}

// QueryItems maps query parameter names to values. Keys are unique, so
// appending an item whose key already exists replaces the old value.
type QueryItems map[string]string

// An Address describes the target of a request. It is either an opaque,
// pre-built URL (see FromURL) or a structured representation made of a
// scheme, host, optional port, path segments and query items (see New).
//
// Address is a value type. Append and AppendQuery return new values and
// never modify the receiver, so an Address may be shared freely between
// goroutines and request parameters.
type Address struct {
	raw    *urlpkg.URL
	scheme Scheme
	host   string
	port   int
	path   []string
	query  QueryItems
}

// An Option customizes a structured Address built by New or Endpoint.
type Option func(*Address)

// WithScheme sets the scheme. Use NoScheme to omit it.
func WithScheme(s Scheme) Option {
	return func(a *Address) {
		a.scheme = s
	}
}

// WithPort sets the port. A port of zero means no explicit port.
func WithPort(port int) Option {
	return func(a *Address) {
		a.port = port
	}
}

// WithPath appends path segments.
func WithPath(segments ...string) Option {
	return func(a *Address) {
		a.path = appendSegments(a.path, segments)
	}
}

// WithQuery merges query items, later items overriding earlier ones.
func WithQuery(items QueryItems) Option {
	return func(a *Address) {
		a.query = mergeQuery(a.query, items)
	}
}

// New returns a structured Address for host. The scheme defaults to
// HTTPS unless overridden with WithScheme.
func New(host string, opts ...Option) Address {
	a := Address{
		scheme: HTTPS,
		host:   host,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// Endpoint returns a structured Address for host with a single endpoint
// path component, which may itself contain "/" separators.
func Endpoint(host, endpoint string, opts ...Option) Address {
	return New(host, append([]Option{WithPath(endpoint)}, opts...)...)
}

// FromURL returns an opaque Address. Rendering an opaque Address returns
// a copy of u unchanged.
//
// FromURL panics if u is nil.
func FromURL(u *urlpkg.URL) Address {
	if u == nil {
		panic("nrequest/address: nil URL")
	}
	u2 := *u
	return Address{raw: &u2}
}

// Parse parses rawURL and returns it as an opaque Address.
func Parse(rawURL string) (Address, error) {
	u, err := urlpkg.Parse(rawURL)
	if err != nil {
		return Address{}, err
	}
	return FromURL(u), nil
}

// IsURL reports whether a is an opaque URL address.
func (a Address) IsURL() bool {
	return a.raw != nil
}

// Scheme returns the scheme of the structured representation of a.
func (a Address) Scheme() Scheme {
	return a.structured().scheme
}

// Host returns the host of the structured representation of a.
func (a Address) Host() string {
	return a.structured().host
}

// Port returns the port of the structured representation of a, or zero
// if no port is set.
func (a Address) Port() int {
	return a.structured().port
}

// Path returns a copy of the path segments of a.
func (a Address) Path() []string {
	s := a.structured()
	return append([]string(nil), s.path...)
}

// Query returns a copy of the query items of a.
func (a Address) Query() QueryItems {
	return mergeQuery(nil, a.structured().query)
}

// Append returns a new Address with the given path segments appended.
// Segments are split on "/" and empty segments are dropped.
//
// Appending to an opaque URL address first converts it into its
// structured representation.
func (a Address) Append(segments ...string) Address {
	s := a.structured()
	s.path = appendSegments(append([]string(nil), s.path...), segments)
	s.query = mergeQuery(nil, s.query)
	return s
}

// AppendQuery returns a new Address with items merged into the existing
// query items. Items whose keys already exist replace the old values;
// all other existing items are kept.
func (a Address) AppendQuery(items QueryItems) Address {
	s := a.structured()
	s.path = append([]string(nil), s.path...)
	s.query = mergeQuery(s.query, items)
	return s
}

// Equal reports whether a and b describe the same address.
func (a Address) Equal(b Address) bool {
	if a.IsURL() || b.IsURL() {
		return a.IsURL() && b.IsURL() && a.raw.String() == b.raw.String()
	}
	if a.scheme != b.scheme || a.host != b.host || a.port != b.port ||
		len(a.path) != len(b.path) || len(a.query) != len(b.query) {
		return false
	}
	for i := range a.path {
		if a.path[i] != b.path[i] {
			return false
		}
	}
	for k, v := range a.query {
		if w, ok := b.query[k]; !ok || w != v {
			return false
		}
	}
	return true
}

// String renders a without a trailing slash. If rendering fails, the
// empty string is returned.
func (a Address) String() string {
	u, err := a.URL(false)
	if err != nil {
		return ""
	}
	return u.String()
}

// URL renders a into a transport-ready URL.
//
// An opaque address is returned unchanged. A structured address is
// assembled from its scheme, host and port; path segments are joined
// with "/" and prefixed with "/"; and if there are query items, a
// trailing "/" is optionally added after the path (when
// addSlashAfterEndpoint is true) before the query string.
//
// The rendered URL is parsed back and its host compared with the
// original host. If they differ, for example because a malformed scheme
// caused the host to be read as part of the path, URL returns an
// EncodingError with reason LackAddress instead of a broken URL.
func (a Address) URL(addSlashAfterEndpoint bool) (*urlpkg.URL, error) {
	return a.Render(RenderOptions{AddSlashAfterEndpoint: addSlashAfterEndpoint})
}

// RenderOptions adjust how Render assembles a URL.
type RenderOptions struct {
	// AddSlashAfterEndpoint adds a "/" between the path and the query
	// string of an address with query items.
	AddSlashAfterEndpoint bool
	// RemoveSlashesBeforeEmptyScheme renders an address without a
	// scheme as "host/path?query" instead of the scheme-relative
	// "//host/path?query".
	RemoveSlashesBeforeEmptyScheme bool
}

// Render renders a into a URL according to o. See URL.
func (a Address) Render(o RenderOptions) (*urlpkg.URL, error) {
	u, err := a.render(o.AddSlashAfterEndpoint)
	if err != nil {
		return nil, err
	}
	if o.RemoveSlashesBeforeEmptyScheme && u.Scheme == "" && u.Host != "" {
		opaque, query, _ := strings.Cut(strings.TrimPrefix(u.String(), "//"), "?")
		return &urlpkg.URL{Opaque: opaque, RawQuery: query}, nil
	}
	return u, nil
}

func (a Address) render(addSlashAfterEndpoint bool) (*urlpkg.URL, error) {
	if a.raw != nil {
		u := *a.raw
		return &u, nil
	}

	host, err := normalizeHost(a.host)
	if err != nil {
		return nil, lackAddress(a.host, err)
	}

	u := &urlpkg.URL{
		Scheme: string(a.scheme),
		Host:   joinHostPort(host, a.port),
	}

	if p := joinSegments(a.path); p != "" {
		u.Path = "/" + p
	}

	if len(a.query) > 0 {
		if addSlashAfterEndpoint {
			u.Path += "/"
		}
		values := make(urlpkg.Values, len(a.query))
		for k, v := range a.query {
			values.Set(k, v)
		}
		u.RawQuery = values.Encode()
	}

	parsed, err := urlpkg.Parse(u.String())
	if err != nil {
		return nil, lackAddress(a.host, err)
	}
	if parsed.Hostname() != host {
		return nil, lackAddress(a.host, nil)
	}
	return parsed, nil
}

func (a Address) structured() Address {
	if a.raw == nil {
		return a
	}

	u := a.raw
	s := Address{
		scheme: Scheme(u.Scheme),
		host:   u.Hostname(),
	}
	if p := u.Port(); p != "" {
		s.port, _ = strconv.Atoi(p)
	}
	s.path = appendSegments(nil, []string{u.Path})
	for k, v := range u.Query() {
		if len(v) > 0 {
			if s.query == nil {
				s.query = make(QueryItems)
			}
			s.query[k] = v[0]
		}
	}
	return s
}

func normalizeHost(host string) (string, error) {
	if host == "" {
		return "", errEmptyHost
	}
	if ip := net.ParseIP(strings.Trim(host, "[]")); ip != nil {
		return ip.String(), nil
	}
	return hostProfile.ToASCII(host)
}

func joinHostPort(host string, port int) string {
	if port > 0 {
		return net.JoinHostPort(host, strconv.Itoa(port))
	}
	if ip := net.ParseIP(host); ip != nil && strings.Contains(host, ":") {
		return "[" + host + "]"
	}
	return host
}

func appendSegments(dst, segments []string) []string {
	for _, s := range segments {
		for _, part := range strings.Split(s, "/") {
			if part != "" {
				dst = append(dst, part)
			}
		}
	}
	return dst
}

func joinSegments(segments []string) string {
	return strings.Join(appendSegments(nil, segments), "/")
}

func mergeQuery(dst, src QueryItems) QueryItems {
	if len(dst) == 0 && len(src) == 0 {
		return nil
	}
	merged := make(QueryItems, len(dst)+len(src))
	for k, v := range dst {
		merged[k] = v
	}
	for k, v := range src {
		merged[k] = v
	}
	return merged
}

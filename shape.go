// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nrequest

import (
	"bytes"
	"image"
	"reflect"
	// Register the standard image formats with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	// Register additional image formats with image.Decode.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/gogama/nrequest/request"
)

// A Shape converts a verified response into a typed value. Shapes only
// run after every Verify plugin has accepted the response, and never
// when the transport failed.
//
// An error returned by Decode is delivered wrapped in a *DecodeError.
//
// Adding a response shape means adding a Shape; the exchange logic in
// Client is shared by all of them.
type Shape[T any] interface {
	// Name identifies the shape in DecodeError messages.
	Name() string
	Decode(d *request.ResponseData, p *request.Parameters) (T, error)
}

type decodable[T any] struct{}

// Decodable returns a Shape that decodes the body into a T with the
// parameters' codec. An empty body is an error, unless T can itself
// represent absence (a pointer, map, slice or interface type), in which
// case it yields the zero T.
func Decodable[T any]() Shape[T] {
	return decodable[T]{}
}

func nilable[T any]() bool {
	switch reflect.TypeOf((*T)(nil)).Elem().Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return true
	default:
		return false
	}
}

func (decodable[T]) Name() string { return "decodable" }

func (decodable[T]) Decode(d *request.ResponseData, p *request.Parameters) (T, error) {
	var v T
	if len(d.Body) == 0 {
		if nilable[T]() {
			return v, nil
		}
		return v, ErrEmptyBody
	}
	err := p.EffectiveCodec().Decode(d.Body, &v)
	return v, err
}

type optional[T any] struct{}

// Optional returns a Shape that decodes the body into a T with the
// parameters' codec. An empty body yields a nil pointer and no error.
func Optional[T any]() Shape[*T] {
	return optional[T]{}
}

func (optional[T]) Name() string { return "optional" }

func (optional[T]) Decode(d *request.ResponseData, p *request.Parameters) (*T, error) {
	if len(d.Body) == 0 {
		return nil, nil
	}
	v := new(T)
	if err := p.EffectiveCodec().Decode(d.Body, v); err != nil {
		return nil, err
	}
	return v, nil
}

type data struct{}

// Data is the Shape that passes the body through untouched. It never
// fails, and an empty body yields an empty, non-nil slice.
var Data Shape[[]byte] = data{}

func (data) Name() string { return "data" }

func (data) Decode(d *request.ResponseData, _ *request.Parameters) ([]byte, error) {
	if d.Body == nil {
		return []byte{}, nil
	}
	return d.Body, nil
}

type img struct{}

// Image is the Shape that decodes the body as an image. GIF, JPEG, PNG,
// BMP and WebP are supported.
var Image Shape[image.Image] = img{}

func (img) Name() string { return "image" }

func (img) Decode(d *request.ResponseData, _ *request.Parameters) (image.Image, error) {
	if len(d.Body) == 0 {
		return nil, ErrEmptyBody
	}
	m, _, err := image.Decode(bytes.NewReader(d.Body))
	return m, err
}

type ignorable struct{}

// Ignorable is the Shape that discards the body. The exchange succeeds
// whenever verification passes.
var Ignorable Shape[struct{}] = ignorable{}

func (ignorable) Name() string { return "ignorable" }

func (ignorable) Decode(*request.ResponseData, *request.Parameters) (struct{}, error) {
	return struct{}{}, nil
}

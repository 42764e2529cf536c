// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	urlpkg "net/url"

	"github.com/rs/zerolog"
)

const badBodyTypeMsg = "nrequest/request: invalid type (for body use nil, " +
	"string, []byte, io.Reader or io.ReadCloser)"

// A Body knows how to serialize itself into an outgoing HTTP request,
// and how to describe itself in a structured log line.
//
// Fill sets the request body, its length and, if the request does not
// already declare one, its Content-Type. Codec is the codec configured
// on the request parameters.
type Body interface {
	Fill(r *http.Request, codec Codec) error
	zerolog.LogObjectMarshaler
}

// Empty returns the empty body.
func Empty() Body {
	return emptyBody{}
}

// Data returns a body that sends b verbatim with the given content type.
// If contentType is empty, no Content-Type is set.
func Data(b []byte, contentType string) Body {
	return dataBody{data: b, contentType: contentType}
}

// Raw buffers a generic body value and returns it as a Data body. See
// BodyBytes for the accepted types.
func Raw(body interface{}, contentType string) (Body, error) {
	b, err := BodyBytes(body)
	if err != nil {
		return nil, err
	}
	return Data(b, contentType), nil
}

// Encode returns a body that serializes v with the request codec when
// the request is built.
func Encode(v interface{}) Body {
	return encodableBody{value: v}
}

// Form returns a body that sends values URL-encoded, with content type
// application/x-www-form-urlencoded.
func Form(values urlpkg.Values) Body {
	return formBody{values: values}
}

// A Part is one part of a multipart/form-data body.
type Part struct {
	// Name is the form field name.
	Name string
	// FileName, if set, marks the part as a file upload.
	FileName string
	// ContentType of the part. Defaults to application/octet-stream
	// for file parts and is omitted for plain fields.
	ContentType string
	// Data is the part content.
	Data []byte
}

// Multipart returns a multipart/form-data body made of parts.
func Multipart(parts ...Part) Body {
	return multipartBody{parts: parts}
}

type emptyBody struct{}

func (emptyBody) Fill(*http.Request, Codec) error {
	return nil
}

func (emptyBody) MarshalZerologObject(e *zerolog.Event) {
	e.Str("kind", "empty")
}

type dataBody struct {
	data        []byte
	contentType string
}

func (b dataBody) Fill(r *http.Request, _ Codec) error {
	setBody(r, b.data, b.contentType)
	return nil
}

func (b dataBody) MarshalZerologObject(e *zerolog.Event) {
	e.Str("kind", "data").Int("length", len(b.data))
	if b.contentType != "" {
		e.Str("content_type", b.contentType)
	}
}

type encodableBody struct {
	value interface{}
}

func (b encodableBody) Fill(r *http.Request, codec Codec) error {
	if codec == nil {
		codec = JSON
	}
	data, err := codec.Encode(b.value)
	if err != nil {
		return err
	}
	setBody(r, data, codec.ContentType())
	return nil
}

func (b encodableBody) MarshalZerologObject(e *zerolog.Event) {
	e.Str("kind", "encodable").Interface("value", b.value)
}

type formBody struct {
	values urlpkg.Values
}

func (b formBody) Fill(r *http.Request, _ Codec) error {
	setBody(r, []byte(b.values.Encode()), "application/x-www-form-urlencoded")
	return nil
}

func (b formBody) MarshalZerologObject(e *zerolog.Event) {
	e.Str("kind", "form").Str("value", b.values.Encode())
}

type multipartBody struct {
	parts []Part
}

func (b multipartBody) Fill(r *http.Request, _ Codec) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, part := range b.parts {
		if err := writePart(w, part); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	setBody(r, buf.Bytes(), w.FormDataContentType())
	return nil
}

func (b multipartBody) MarshalZerologObject(e *zerolog.Event) {
	names := zerolog.Arr()
	for _, part := range b.parts {
		names.Str(part.Name)
	}
	e.Str("kind", "multipart").Array("parts", names)
}

func writePart(w *multipart.Writer, part Part) error {
	var pw io.Writer
	var err error
	switch {
	case part.FileName == "" && part.ContentType == "":
		pw, err = w.CreateFormField(part.Name)
	default:
		h := make(map[string][]string)
		disposition := `form-data; name="` + escapeQuotes(part.Name) + `"`
		if part.FileName != "" {
			disposition += `; filename="` + escapeQuotes(part.FileName) + `"`
		}
		h["Content-Disposition"] = []string{disposition}
		contentType := part.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h["Content-Type"] = []string{contentType}
		pw, err = w.CreatePart(h)
	}
	if err != nil {
		return err
	}
	_, err = pw.Write(part.Data)
	return err
}

func escapeQuotes(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func setBody(r *http.Request, data []byte, contentType string) {
	if len(data) > 0 {
		r.Body = io.NopCloser(bytes.NewReader(data))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
		r.ContentLength = int64(len(data))
	}
	if contentType != "" && r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", contentType)
	}
}

// BodyBytes converts a generic body value to a byte slice.
//
// The body parameter may be nil, or it may be a string, []byte,
// io.Reader, or io.ReadCloser. The conversion logic is:
//
// • If body is nil, a nil byte slice and no error is returned.
//
// • If body is a []byte, body itself and no error is returned.
//
// • If body is a string, the built-in conversion from string to byte
// slice, and no error, is returned.
//
// • If body is an io.Reader or io.ReadCloser, the result of reading
// the whole contents of the reader (and closing it if it implements
// Closer) is returned. If reading from the reader (and closing it if
// applicable) causes an error, the return value is a nil byte slice
// and the error.
//
// • If body is any other type than those listed above, a nil byte slice
// and an error is returned.
func BodyBytes(body interface{}) ([]byte, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case io.ReadCloser:
		b, err := io.ReadAll(x)
		if err != nil {
			return nil, err
		}
		err = x.Close()
		if err != nil {
			return nil, err
		}
		return b, nil
	case io.Reader:
		return BodyBytes(io.NopCloser(x))
	default:
		return nil, errors.New(badBodyTypeMsg)
	}
}

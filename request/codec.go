// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"encoding/json"
)

// A Codec encodes request bodies and decodes response bodies. Codecs
// are pluggable per request through Parameters.Codec.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type Codec interface {
	// ContentType is the media type of encoded data, used as the
	// request Content-Type when a body is encoded with the codec.
	ContentType() string
	// Encode serializes v.
	Encode(v interface{}) ([]byte, error)
	// Decode deserializes data into the value pointed to by v.
	Decode(data []byte, v interface{}) error
}

// JSON is the default Codec. It uses encoding/json.
var JSON Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) ContentType() string {
	return "application/json"
}

func (jsonCodec) Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Decode(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

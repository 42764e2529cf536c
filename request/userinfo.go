// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

// UserInfo is the metadata bag of a single exchange. Plugins use it to
// pass arbitrary data between lifecycle stages, for example a span
// started in WillSend and ended in DidFinish.
//
// A fresh UserInfo is created for every exchange, seeded from
// Parameters.UserInfo, and discarded when the exchange ends. It is
// exclusively owned by its exchange and is not safe for concurrent use.
//
// Keys follow the same rules as the key parameter in context.WithValue,
// namely:
//
// • a key may not be nil;
//
// • a key must be comparable;
//
// • a key should not be of type string or any other built-in type to
// avoid collisions between different plugins putting data into the
// same exchange.
type UserInfo struct {
	values map[interface{}]interface{}
}

// NewUserInfo returns a UserInfo containing a copy of seed.
func NewUserInfo(seed map[interface{}]interface{}) *UserInfo {
	u := &UserInfo{}
	for k, v := range seed {
		u.Set(k, v)
	}
	return u
}

// Set stores value under key, replacing any earlier value.
func (u *UserInfo) Set(key, value interface{}) {
	if key == nil {
		panic("nrequest/request: nil user info key")
	}
	if u.values == nil {
		u.values = make(map[interface{}]interface{})
	}
	u.values[key] = value
}

// Value returns the value stored under key, or nil.
func (u *UserInfo) Value(key interface{}) interface{} {
	if u == nil {
		return nil
	}
	return u.values[key]
}

// Lookup returns the value stored under key and whether it was present.
func (u *UserInfo) Lookup(key interface{}) (interface{}, bool) {
	if u == nil {
		return nil, false
	}
	v, ok := u.values[key]
	return v, ok
}

// Delete removes key.
func (u *UserInfo) Delete(key interface{}) {
	if u != nil {
		delete(u.values, key)
	}
}

// Len returns the number of stored keys.
func (u *UserInfo) Len() int {
	if u == nil {
		return 0
	}
	return len(u.values)
}

// Get returns the value stored under key if it is present and has
// type T.
func Get[T any](u *UserInfo, key interface{}) (T, bool) {
	v, ok := u.Lookup(key)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

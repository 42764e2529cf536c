// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugins

import (
	"github.com/gogama/nrequest/request"
	"github.com/gogama/nrequest/status"
)

type statusCode struct {
	request.Base
}

// StatusCode returns a plugin that fails the Verify stage with a
// status.Code error for every response status other than 200. An
// exchange without a status is accepted.
func StatusCode() request.Plugin {
	return statusCode{}
}

func (statusCode) Verify(d *request.ResponseData, _ *request.UserInfo) error {
	return status.Verify(d.StatusCode())
}

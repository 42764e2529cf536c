// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nrequest

// A Stage identifies one of the fixed points in an exchange at which
// the plugin chain runs. Every stage runs over the whole plugin list,
// in list order, before the next stage begins.
type Stage int

const (
	// Prepare identifies the stage that runs after the HTTP request has
	// been built from the request parameters but before anything else
	// happens.
	//
	// Prepare plugins may modify the request, for example by adding
	// headers, and may seed user info. Prepare cannot abort the
	// exchange.
	Prepare Stage = iota
	// WillSend identifies the stage that runs immediately before the
	// request is handed to the transport (or served from cache).
	//
	// When the client runs WillSend, the request is final.
	WillSend
	// DidReceive identifies the stage that runs after the transport has
	// delivered its result, whether a response or a transport error.
	//
	// DidReceive plugins may update user info but cannot abort the
	// exchange.
	DidReceive
	// Verify identifies the stage in which plugins may reject the
	// response. The first plugin to return an error aborts the
	// exchange, and no later Verify plugin runs.
	//
	// Verify does not run if the transport failed.
	Verify
	// DidFinish identifies the stage that runs at the end of every
	// exchange whose request was built, after decoding. DidFinish
	// plugins observe the decoded value, which is nil if the exchange
	// failed, and cannot change the outcome.
	DidFinish
	// stageSentinel provides the total number of stages typed as a
	// Stage.
	stageSentinel

	// numStages provides the total number of stages as an int.
	numStages = int(stageSentinel)
)

var stageNames = []string{
	"Prepare",
	"WillSend",
	"DidReceive",
	"Verify",
	"DidFinish",
}

// Stages returns a slice containing all stages of an exchange, in the
// order in which they occur.
func Stages() []Stage {
	return []Stage{
		Prepare,
		WillSend,
		DidReceive,
		Verify,
		DidFinish,
	}
}

// Name returns the name of the stage.
func (s Stage) Name() string {
	if s < 0 || int(s) >= numStages {
		return "Unknown"
	}
	return stageNames[int(s)]
}

// String returns the name of the stage.
func (s Stage) String() string {
	return s.Name()
}

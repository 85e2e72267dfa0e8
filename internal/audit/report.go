// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package audit

import (
	"time"
)

// Status classifies the outcome of a single handler slot in a dispatch.
type Status string

// Handler slot outcomes.
const (
	StatusOK             Status = "ok"
	StatusUnknownHandler Status = "unknown_handler"
	StatusFailed         Status = "failed"
)

// Result is the tagged outcome of one handler invocation. Err is set for
// StatusUnknownHandler and StatusFailed and nil otherwise.
type Result struct {
	Handler  string
	Status   Status
	Err      error
	Duration time.Duration
}

// Report collects the per-handler results of one phase dispatch. An empty
// Results slice means no handlers were configured for the call site,
// which is the expected no-op path, not a failure.
type Report struct {
	Phase    Phase
	Target   string
	Results  []Result
	Duration time.Duration
}

// OK reports whether every handler slot succeeded.
func (r Report) OK() bool {
	for _, res := range r.Results {
		if res.Status != StatusOK {
			return false
		}
	}
	return true
}

// Failures returns the results that did not succeed.
func (r Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Status != StatusOK {
			failed = append(failed, res)
		}
	}
	return failed
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package audit

import (
	"github.com/samber/oops"
)

// Error codes for audit dispatch failures.
const (
	CodeUnknownHandler = "UNKNOWN_HANDLER"
	CodeHandlerFailed  = "HANDLER_FAILED"
	CodeHandlerPanic   = "HANDLER_PANIC"
	CodeBadAttachment  = "BAD_ATTACHMENT"
)

// ErrUnknownHandler creates an error for a configured name with no
// registry entry.
func ErrUnknownHandler(name string) error {
	return oops.Code(CodeUnknownHandler).
		With("handler", name).
		Errorf("unknown audit handler: %s", name)
}

// ErrHandlerFailed wraps an error returned by a handler operation.
func ErrHandlerFailed(name string, phase Phase, cause error) error {
	return oops.Code(CodeHandlerFailed).
		With("handler", name).
		With("phase", phase.String()).
		Wrap(cause)
}

// ErrHandlerPanic creates an error for a handler operation that panicked.
func ErrHandlerPanic(name string, phase Phase, recovered any) error {
	return oops.Code(CodeHandlerPanic).
		With("handler", name).
		With("phase", phase.String()).
		Errorf("audit handler panicked: %v", recovered)
}

// ErrBadAttachment creates an error for an attachment target pattern that
// does not compile.
func ErrBadAttachment(target string, cause error) error {
	return oops.Code(CodeBadAttachment).
		With("target", target).
		Wrap(cause)
}

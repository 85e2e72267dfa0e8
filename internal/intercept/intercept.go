// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

// Package intercept adapts plain Go calls to the audit dispatch engine.
//
// The engine itself never intercepts anything; it only reacts to phase
// triggers. Interceptor is the host-side adapter that supplies those
// triggers: it wraps a function call and fires BEFORE on entry,
// AFTER_RETURNING on success, and AFTER_THROWING on error or panic —
// never more than one of the latter two per call. The business outcome
// always passes through unchanged.
package intercept

import (
	"context"

	"github.com/samber/oops"

	"github.com/auditaspect/auditaspect/internal/audit"
)

// Func is a business call wrapped by the interceptor.
type Func func(ctx context.Context) (any, error)

// Interceptor wraps business calls and triggers audit phases around them.
type Interceptor struct {
	bindings   *audit.Bindings
	dispatcher *audit.Dispatcher
}

// New creates an interceptor over the given bindings and dispatcher.
func New(bindings *audit.Bindings, dispatcher *audit.Dispatcher) (*Interceptor, error) {
	if bindings == nil {
		return nil, oops.Errorf("intercept: bindings must not be nil")
	}
	if dispatcher == nil {
		return nil, oops.Errorf("intercept: dispatcher must not be nil")
	}
	return &Interceptor{bindings: bindings, dispatcher: dispatcher}, nil
}

// Call runs fn as the body of typeName.method, notifying the resolved
// audit handlers around it.
//
// The return value and error of fn are passed through untouched, and a
// panic in fn is re-raised with its original value after AFTER_THROWING
// handlers have run. Handler activity can never alter, suppress, or
// replace the business outcome.
func (i *Interceptor) Call(ctx context.Context, typeName, method string, args []any, fn Func) (ret any, err error) {
	site := i.bindings.Site(typeName, method)
	inv := audit.NewInvocation(site, args...)

	i.dispatcher.Dispatch(ctx, audit.PhaseBefore, inv)

	defer func() {
		if r := recover(); r != nil {
			inv.Err = oops.With("recovered", r).Errorf("panic in %s: %v", inv.Target(), r)
			i.dispatcher.Dispatch(ctx, audit.PhaseAfterThrowing, inv)
			panic(r)
		}
	}()

	ret, err = fn(ctx)
	if err != nil {
		inv.Err = err
		i.dispatcher.Dispatch(ctx, audit.PhaseAfterThrowing, inv)
		return ret, err
	}

	inv.Result = ret
	i.dispatcher.Dispatch(ctx, audit.PhaseAfterReturning, inv)
	return ret, nil
}

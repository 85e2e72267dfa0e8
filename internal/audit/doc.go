// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

// Package audit implements declarative, fail-safe audit dispatch around
// business calls.
//
// # Overview
//
// Call sites declare, via configuration attached at type or method
// granularity, which named handlers observe an invocation. The engine
// resolves the handler list per invocation, looks each name up in a frozen
// registry, and invokes the phase-appropriate operation with full fail
// isolation: a misbehaving handler can never affect the business call or
// the other handlers in the list.
//
// # Phases
//
// A call can be observed at three moments:
//
//   - PhaseBefore: before the target invocation runs
//   - PhaseAfterReturning: after a successful return
//   - PhaseAfterThrowing: after the invocation fails
//
// Each phase trigger is an independent resolve-and-dispatch cycle. The
// engine never couples BEFORE to the AFTER phases; the interception layer
// (see package intercept) decides which triggers fire.
//
// # Resolution
//
// A non-empty method-level Config fully replaces the type-level one; the
// two lists are never merged. Duplicate names keep their first occurrence.
// A call site with no configuration at either level is a legitimate no-op.
//
// # Failure containment
//
// Handler errors and panics are caught at the dispatch boundary,
// classified (ok / unknown_handler / failed), recorded in the per-phase
// Report, logged, and counted in Prometheus metrics. Nothing originating
// inside the engine propagates to the business call.
//
// # Example
//
//	registry := audit.NewRegistry(map[string]audit.Handler{
//	    "logAudit": handlers.NewLogHandler(nil),
//	})
//	dispatcher, _ := audit.NewDispatcher(registry)
//
//	site := audit.Site{
//	    Type:       "UserService",
//	    Method:     "Create",
//	    TypeConfig: &audit.Config{Handlers: []string{"logAudit"}},
//	}
//	inv := audit.NewInvocation(site, req)
//	report := dispatcher.Dispatch(ctx, audit.PhaseBefore, inv)
package audit

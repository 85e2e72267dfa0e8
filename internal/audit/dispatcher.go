// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// ErrNilRegistry is returned when a Dispatcher is constructed without a
// registry.
var ErrNilRegistry = oops.Errorf("audit: registry must not be nil")

// Dispatcher drives the fire-and-forget notification of resolved handlers
// for one phase of an intercepted call. Handlers run strictly in resolved
// order, synchronously, on the calling goroutine; handlers commonly read
// call-scoped state that is only valid during the original call, so the
// dispatcher performs no asynchronous handoff.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

// DispatcherOption configures a Dispatcher during construction.
type DispatcherOption func(*Dispatcher)

// WithLogger overrides the logger used for phase diagnostics.
// Defaults to slog.Default.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a dispatcher over the given frozen registry.
func NewDispatcher(registry *Registry, opts ...DispatcherOption) (*Dispatcher, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	d := &Dispatcher{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch resolves the handler list for the invocation's call site and
// invokes the phase-appropriate operation on each handler in order.
//
// Every handler failure (unknown name, error return, panic) is contained
// at its own slot: it is classified, recorded in the Report, logged, and
// counted, and the remaining handlers still run. Nothing this method does
// can affect the business call's outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, phase Phase, inv *Invocation) Report {
	target := inv.Target()
	report := Report{Phase: phase, Target: target}

	names := Resolve(inv.Site)
	if len(names) == 0 {
		d.logger.DebugContext(ctx, "audit dispatch skipped: no handlers",
			"phase", phase.String(),
			"target", target,
		)
		return report
	}

	d.logger.DebugContext(ctx, "audit dispatch start",
		"phase", phase.String(),
		"target", target,
		"handler_count", len(names),
		"handlers", names,
	)
	recordDispatch(phase)

	start := time.Now()
	report.Results = make([]Result, 0, len(names))
	for _, name := range names {
		report.Results = append(report.Results, d.invoke(ctx, phase, name, inv))
	}
	report.Duration = time.Since(start)

	d.logger.DebugContext(ctx, "audit dispatch done",
		"phase", phase.String(),
		"target", target,
		"duration_ns", report.Duration.Nanoseconds(),
	)
	return report
}

// invoke runs a single handler slot inside the failure boundary.
func (d *Dispatcher) invoke(ctx context.Context, phase Phase, name string, inv *Invocation) Result {
	handler, ok := d.registry.Lookup(name)
	if !ok {
		d.logger.WarnContext(ctx, "audit handler unknown",
			"phase", phase.String(),
			"handler", name,
			"target", inv.Target(),
		)
		recordHandlerInvocation(name, phase, StatusUnknownHandler)
		return Result{Handler: name, Status: StatusUnknownHandler, Err: ErrUnknownHandler(name)}
	}

	start := time.Now()
	err := d.call(ctx, phase, name, handler, inv)
	duration := time.Since(start)
	recordHandlerDuration(name, phase, duration)

	if err != nil {
		d.logger.WarnContext(ctx, "audit handler failed",
			"phase", phase.String(),
			"handler", name,
			"target", inv.Target(),
			"duration_ns", duration.Nanoseconds(),
			"error", err,
		)
		recordHandlerInvocation(name, phase, StatusFailed)
		return Result{Handler: name, Status: StatusFailed, Err: err, Duration: duration}
	}

	d.logger.DebugContext(ctx, "audit handler ok",
		"phase", phase.String(),
		"handler", name,
		"target", inv.Target(),
		"duration_ns", duration.Nanoseconds(),
	)
	recordHandlerInvocation(name, phase, StatusOK)
	return Result{Handler: name, Status: StatusOK, Duration: duration}
}

// call invokes the phase-specific handler operation, converting error
// returns and panics into classified errors.
func (d *Dispatcher) call(ctx context.Context, phase Phase, name string, h Handler, inv *Invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrHandlerPanic(name, phase, r)
		}
	}()

	switch phase {
	case PhaseBefore:
		err = h.Before(ctx, inv)
	case PhaseAfterReturning:
		err = h.AfterReturning(ctx, inv, inv.Result)
	case PhaseAfterThrowing:
		err = h.AfterThrowing(ctx, inv, inv.Err)
	}
	if err != nil {
		err = ErrHandlerFailed(name, phase, err)
	}
	return err
}

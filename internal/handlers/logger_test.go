// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogHandler_LogsEachPhase(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHandler(slog.New(slog.NewTextHandler(&buf, nil)))
	inv := testInvocation("DemoService", "Ok")

	require.NoError(t, h.Before(context.Background(), inv))
	require.NoError(t, h.AfterReturning(context.Background(), inv, "ret"))

	out := buf.String()
	assert.Contains(t, out, "phase=BEFORE")
	assert.Contains(t, out, "phase=AFTER_RETURNING")
	assert.Contains(t, out, "target=DemoService#Ok")
}

func TestLogHandler_AfterThrowingLogsErrorClass(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHandler(slog.New(slog.NewTextHandler(&buf, nil)))
	inv := testInvocation("DemoService", "Boom")

	err := oops.Code("INVALID_ARGUMENT").Errorf("expected")
	require.NoError(t, h.AfterThrowing(context.Background(), inv, err))

	out := buf.String()
	assert.Contains(t, out, "phase=AFTER_THROWING")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "error_class=INVALID_ARGUMENT")
}

func TestLogHandler_NilLoggerFallsBackToDefault(t *testing.T) {
	h := NewLogHandler(nil)
	assert.NotNil(t, h.logger)
}

func TestFailingHandler_AlwaysErrors(t *testing.T) {
	h := FailingHandler{}
	inv := testInvocation("DemoService", "Boom")

	assert.Error(t, h.Before(context.Background(), inv))
	assert.Error(t, h.AfterReturning(context.Background(), inv, nil))
	assert.Error(t, h.AfterThrowing(context.Background(), inv, oops.Errorf("cause")))
}

func TestErrorClass(t *testing.T) {
	assert.Equal(t, "INVALID_ARGUMENT", errorClass(oops.Code("INVALID_ARGUMENT").Errorf("x")))
	assert.Equal(t, "*errors.errorString", errorClass(assert.AnError))
}

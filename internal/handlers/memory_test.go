// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package handlers

import (
	"context"
	"sync"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryHandler_RecordsPhases(t *testing.T) {
	h := NewMemoryHandler()
	inv := testInvocation("DemoService", "Ok")

	require.NoError(t, h.Before(context.Background(), inv))
	require.NoError(t, h.AfterReturning(context.Background(), inv, "ret"))
	require.NoError(t, h.AfterThrowing(context.Background(), inv, oops.Errorf("expected")))

	assert.Equal(t, []string{
		"BEFORE:DemoService#Ok",
		"AFTER_RETURNING:DemoService#Ok",
		"AFTER_THROWING:DemoService#Ok",
	}, h.Events())
}

func TestMemoryHandler_EventsReturnsCopy(t *testing.T) {
	h := NewMemoryHandler()
	require.NoError(t, h.Before(context.Background(), testInvocation("Svc", "M")))

	events := h.Events()
	events[0] = "mutated"

	assert.Equal(t, []string{"BEFORE:Svc#M"}, h.Events())
}

func TestMemoryHandler_Reset(t *testing.T) {
	h := NewMemoryHandler()
	require.NoError(t, h.Before(context.Background(), testInvocation("Svc", "M")))

	h.Reset()

	assert.Empty(t, h.Events())
}

func TestMemoryHandler_ConcurrentUse(t *testing.T) {
	h := NewMemoryHandler()
	inv := testInvocation("Svc", "M")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = h.Before(context.Background(), inv)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, h.Events(), 1000)
}

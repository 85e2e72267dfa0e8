// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "auditaspect", cmd.Use)
	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "demo")
	assert.Contains(t, names, "migrate")
	assert.Contains(t, names, "purge")
}

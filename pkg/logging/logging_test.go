// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"daml.com/x/depgraph/pkg/depgraphconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	t.Setenv(depgraphconfig.LogLevelEnvVar, "warn")
	require.NoError(t, InitLoggingTo(&buf))

	slog.Info("hidden")
	slog.Warn("shown", "module", ":app")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "module=:app")

	t.Setenv(depgraphconfig.LogLevelEnvVar, "chatty")
	assert.Error(t, InitLoggingTo(&buf))
}

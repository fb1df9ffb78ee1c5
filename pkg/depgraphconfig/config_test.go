// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package depgraphconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnvVar, home)

	config, err := Get()
	require.NoError(t, err)
	assert.Equal(t, home, config.HomePath)
	assert.Equal(t, filepath.Join(home, DefaultGraphFile), config.GraphPath)
	assert.True(t, config.ProbeSiblings())
	assert.Equal(t, YamlStore, GraphStoreKind(config.GraphPath))
}

func TestConfigFile(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, ConfigFilename), []byte("graph: graphs/main.db\nstat-sources: false\n"), 0644))

	config, err := GetWithCustomHome(home)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "graphs", "main.db"), config.GraphPath)
	assert.Equal(t, SqliteStore, GraphStoreKind(config.GraphPath))
	assert.False(t, config.ProbeSiblings())

	t.Run("env vars win", func(t *testing.T) {
		t.Setenv(GraphEnvVar, "/elsewhere/graph.yaml")
		t.Setenv(StatSourcesEnvVar, "true")

		config, err := GetWithCustomHome(home)
		require.NoError(t, err)
		assert.Equal(t, "/elsewhere/graph.yaml", config.GraphPath)
		assert.True(t, config.ProbeSiblings())
	})

	t.Run("invalid bool", func(t *testing.T) {
		t.Setenv(StatSourcesEnvVar, "sometimes")
		_, err := GetWithCustomHome(home)
		assert.Error(t, err)
	})
}

func TestConfigFileIsDirectory(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(home, ConfigFilename), 0755))

	_, err := GetWithCustomHome(home)
	assert.Error(t, err)
}

func TestGraphStoreKind(t *testing.T) {
	tests := map[string]StoreKind{
		"graph.yaml":     YamlStore,
		"graph":          YamlStore,
		"graph.db":       SqliteStore,
		"Graph.SQLITE":   SqliteStore,
		"/x/y/g.sqlite3": SqliteStore,
		"/x/y.db/g.yaml": YamlStore,
	}
	for path, want := range tests {
		assert.Equal(t, want, GraphStoreKind(path), path)
	}
}

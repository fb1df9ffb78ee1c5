// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleTargetEquality(t *testing.T) {
	tests := []struct {
		name  string
		a, b  ModuleTarget
		equal bool
	}{
		{
			name:  "identical",
			a:     NewModuleTarget("/repo", ":app", Main),
			b:     NewModuleTarget("/repo", ":app", Main),
			equal: true,
		},
		{
			name:  "trailing separator",
			a:     NewModuleTarget("/repo/", ":app", Main),
			b:     NewModuleTarget("/repo", ":app", Main),
			equal: true,
		},
		{
			name:  "case difference",
			a:     NewModuleTarget("/Repo", ":app", Main),
			b:     NewModuleTarget("/repo", ":app", Main),
			equal: true,
		},
		{
			name:  "windows separators",
			a:     NewModuleTarget(`C:\work\repo`, ":app", Main),
			b:     NewModuleTarget("c:/work/repo", ":app", Main),
			equal: true,
		},
		{
			name:  "different source set",
			a:     NewModuleTarget("/repo", ":app", Main),
			b:     NewModuleTarget("/repo", ":app", UnitTest),
			equal: false,
		},
		{
			name:  "different project",
			a:     NewModuleTarget("/repo", ":app", Main),
			b:     NewModuleTarget("/repo", ":lib", Main),
			equal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a == tt.b)
		})
	}
}

func TestModuleTargetSymlinkedRoot(t *testing.T) {
	dir := t.TempDir()
	realDir := filepath.Join(dir, "realDir")
	require.NoError(t, os.Mkdir(realDir, 0755))
	link := filepath.Join(dir, "link")
	if err := os.Symlink(realDir, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	assert.Equal(t, NewModuleTarget(realDir, ":app", Main), NewModuleTarget(link, ":app", Main))
}

func TestSourceSetIsTest(t *testing.T) {
	assert.False(t, Main.IsTest())
	assert.False(t, TestFixtures.IsTest())
	assert.True(t, UnitTest.IsTest())
	assert.True(t, AndroidTest.IsTest())
	assert.True(t, ScreenshotTest.IsTest())
	assert.True(t, SourceSetName("commonTest").IsTest())
	assert.False(t, SourceSetName("commonMain").IsTest())
	assert.False(t, SourceSetName("commonMain").IsWellKnown())
}

func TestLibraryIdentity(t *testing.T) {
	c, err := ParseCoordinates("com.google.guava:guava:33.0.0")
	require.NoError(t, err)

	withCoordinates := NewLibraryIdentity(&c, "/cache/guava.jar")
	assert.Equal(t, "com.google.guava:guava:33.0.0", withCoordinates.Name)
	assert.True(t, withCoordinates.HasCoordinates())
	assert.Equal(t, withCoordinates, NewLibraryIdentity(&c, "/elsewhere/guava.jar"))

	withoutCoordinates := NewLibraryIdentity(nil, "/cache/guava.jar")
	assert.Equal(t, "/cache/guava.jar", withoutCoordinates.Name)
	assert.False(t, withoutCoordinates.HasCoordinates())

	_, err = ParseCoordinates("guava")
	assert.Error(t, err)
}

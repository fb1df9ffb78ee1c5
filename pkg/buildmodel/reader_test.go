// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package buildmodel

import (
	"os"
	"path/filepath"
	"testing"

	"daml.com/x/depgraph/pkg/buildmodel/testdata"
	"daml.com/x/depgraph/pkg/identity"
	"daml.com/x/depgraph/pkg/projectgraph"
	"daml.com/x/depgraph/pkg/reference"
	"daml.com/x/depgraph/pkg/resolutionerrors"
	"daml.com/x/depgraph/pkg/testutil"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadModel(t *testing.T) {
	p := testutil.TestdataPath(t, "models", "sample.yaml")
	dir := filepath.Dir(p)

	model, err := ReadModel(p)
	require.NoError(t, err)
	assert.Equal(t, "8.4.0", model.ModelVersion.String())
	assert.False(t, model.IsLegacy())
	require.Len(t, model.Modules, 6)

	app := model.Modules[0]
	assert.Equal(t, identity.NewModuleTarget("/repo", ":app", identity.Main), app.Target)
	assert.Equal(t, []string{filepath.Join(dir, "app/build/libs/app-main.jar")}, app.Outputs)
	require.Len(t, app.Dependencies, 4)

	guava := app.Dependencies[0]
	assert.True(t, guava.Exported)
	assert.Equal(t, reference.PlainArtifact{
		File:        "/caches/guava-33.0.jar",
		Coordinates: &identity.Coordinates{Group: "com.google.guava", Artifact: "guava", Version: "33.0"},
		Sources:     []string{},
		Annotations: []string{},
	}, guava.Reference)

	assert.Equal(t, reference.PreResolvedModule{
		BuildRoot:   "/repo",
		ProjectPath: ":feature",
		SourceSet:   identity.TestFixtures,
		LintJar:     filepath.Join(dir, "feature/build/lint.jar"),
	}, app.Dependencies[2].Reference)
	assert.Equal(t, reference.KmpAggregateModule{BuildRoot: "/repo", ProjectPath: ":shared"}, app.Dependencies[3].Reference)

	unitTest := model.Modules[1]
	junit, ok := unitTest.Dependencies[0].Reference.(reference.PlainArtifact)
	require.True(t, ok)
	assert.Equal(t, "junit:junit:4.13", junit.Coordinates.String())
	assert.Equal(t, reference.Unknown{Raw: "files(generated)"}, unitTest.Dependencies[3].Reference)
	assert.Equal(t, projectgraph.Test, unitTest.Dependencies[0].ScopeOf(unitTest.Target))

	fixtures := model.Modules[3]
	assert.Equal(t, projectgraph.Compile, fixtures.Dependencies[0].Scope)

	jvm := model.Modules[5]
	assert.Equal(t, []identity.SourceSetName{"commonMain"}, jvm.DependsOn)
	assert.Equal(t, identity.SourceSetName("jvmMain"), jvm.MainSourceSet)
}

func TestReadLegacyModel(t *testing.T) {
	model, err := ReadModelContents(testdata.Legacy, "/models/legacy.yaml")
	require.NoError(t, err)
	assert.True(t, model.IsLegacy())

	assert.Equal(t, reference.MultiTargetModule{
		BuildRoot:   "/repo",
		ProjectPath: ":lib",
		Artifact:    "/models/lib/build/lib.jar",
		SourceSet:   "debug",
	}, model.Modules[0].Dependencies[0].Reference)
}

func TestReadModelErrors(t *testing.T) {
	tests := []struct {
		name     string
		contents []byte
	}{
		{"kmp aggregate on an old model", testdata.OldKmpAggregate},
		{"wrong kind", testdata.WrongKind},
		{"unknown dependency kind", testdata.UnknownDependencyKind},
		{"bad coordinates", testdata.BadCoordinates},
		{"bad scope", testdata.BadScope},
		{"missing build root", testdata.MissingBuildRoot},
		{"not yaml", []byte("modules: [")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadModelContents(tt.contents, "/models/model.yaml")
			require.Error(t, err)
			resErr := resolutionerrors.Standardize(err)
			assert.Equal(t, resolutionerrors.MalformedModel, resErr.Code)
			assert.True(t, resErr.IsFatal())
		})
	}
}

func TestReadCompressedModel(t *testing.T) {
	contents, err := os.ReadFile(testutil.TestdataPath(t, "models", "sample.yaml"))
	require.NoError(t, err)

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll(contents, nil)
	require.NoError(t, enc.Close())

	p := filepath.Join(t.TempDir(), "model.yaml.zst")
	require.NoError(t, os.WriteFile(p, compressed, 0644))

	model, err := ReadModel(p)
	require.NoError(t, err)
	assert.Len(t, model.Modules, 6)
}

func TestReadMissingModel(t *testing.T) {
	_, err := ReadModel(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Equal(t, resolutionerrors.MalformedModel, resolutionerrors.Standardize(err).Code)
}

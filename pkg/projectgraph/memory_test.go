// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package projectgraph

import (
	"context"
	"testing"

	"daml.com/x/depgraph/pkg/identity"
	"daml.com/x/depgraph/pkg/library"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	app     = identity.NewModuleTarget("/repo", ":app", identity.Main)
	appTest = identity.NewModuleTarget("/repo", ":app", identity.UnitTest)
	feature = identity.NewModuleTarget("/repo", ":feature", identity.Main)
)

func guava() *library.ResolvedLibrary {
	return &library.ResolvedLibrary{
		Identity:    identity.LibraryIdentity{Name: "com.google.guava:guava:33.0.0", Coordinates: identity.Coordinates{Group: "com.google.guava", Artifact: "guava", Version: "33.0.0"}},
		Kind:        library.Java,
		BinaryPaths: []string{"/caches/guava-33.0.0.jar"},
		Level:       library.ProjectLevel,
	}
}

func seeded(t *testing.T) *MemoryStore {
	store := NewMemoryStore()
	g := guava()
	require.NoError(t, store.AddEdges(context.Background(), &Changeset{
		Modules:   []identity.ModuleTarget{app, appTest, feature},
		Libraries: []*library.ResolvedLibrary{g},
		Edges: []Edge{
			{From: app, Library: g, Scope: Compile},
			{From: app, Module: &feature, Scope: Compile},
		},
	}))
	return store
}

func TestMemoryStoreLookups(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)

	got, err := store.LookupProjectLibrary(ctx, guava().Identity)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.SameContent(guava()))

	got, err = store.LookupModuleLibrary(ctx, app, guava().Identity)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err := store.LookupModule(ctx, feature)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.LookupModule(ctx, feature.WithSourceSet(identity.UnitTest))
	require.NoError(t, err)
	assert.False(t, ok)

	edges, err := store.ModuleEdges(ctx, app)
	require.NoError(t, err)
	assert.Len(t, edges, 2)
}

func TestMemoryStoreAdditiveMerge(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)

	// re-adding the same content is a no-op, a new edge is appended
	require.NoError(t, store.AddEdges(ctx, &Changeset{
		Modules:   []identity.ModuleTarget{app},
		Libraries: []*library.ResolvedLibrary{guava()},
		Edges: []Edge{
			{From: app, Library: guava(), Scope: Compile},
			{From: app, Module: &feature, Scope: Test},
		},
	}))

	edges, err := store.ModuleEdges(ctx, app)
	require.NoError(t, err)
	assert.Len(t, edges, 3)

	libs, err := store.Libraries(ctx)
	require.NoError(t, err)
	assert.Len(t, libs, 1)

	modules, err := store.Modules(ctx)
	require.NoError(t, err)
	assert.Equal(t, []identity.ModuleTarget{app, appTest, feature}, modules)
}

func TestMemoryStoreRejectsWholeChangeset(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)

	conflicting := guava()
	conflicting.BinaryPaths = []string{"/elsewhere/guava.jar"}
	unknown := identity.NewModuleTarget("/repo", ":ghost", identity.Main)

	tests := []struct {
		name    string
		changes *Changeset
	}{
		{
			name: "conflicting library",
			changes: &Changeset{
				Modules:   []identity.ModuleTarget{appTest},
				Libraries: []*library.ResolvedLibrary{conflicting},
				Edges:     []Edge{{From: appTest, Module: &app, Scope: Test}},
			},
		},
		{
			name: "edge to unknown module",
			changes: &Changeset{
				Edges: []Edge{
					{From: appTest, Module: &app, Scope: Test},
					{From: appTest, Module: &unknown, Scope: Test},
				},
			},
		},
		{
			name: "self edge",
			changes: &Changeset{
				Edges: []Edge{{From: app, Module: &app, Scope: Compile}},
			},
		},
		{
			name: "edge to unknown library",
			changes: &Changeset{
				Edges: []Edge{{From: appTest, Library: &library.ResolvedLibrary{Identity: identity.LibraryIdentity{Name: "x"}, Kind: library.Unknown, Level: library.ProjectLevel}, Scope: Test}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, store.AddEdges(ctx, tt.changes))

			edges, err := store.ModuleEdges(ctx, appTest)
			require.NoError(t, err)
			assert.Empty(t, edges)
		})
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)

	moduleLib := &library.ResolvedLibrary{
		Identity:    guava().Identity,
		Kind:        library.Java,
		BinaryPaths: []string{"/vendored/guava.jar"},
		Level:       library.ModuleLevel,
		Owner:       appTest,
	}
	require.NoError(t, store.AddEdges(ctx, &Changeset{
		Libraries: []*library.ResolvedLibrary{moduleLib},
		Edges:     []Edge{{From: appTest, Library: moduleLib, Scope: Test}},
	}))

	bytes, err := yaml.Marshal(store.TakeSnapshot())
	require.NoError(t, err)

	var s Snapshot
	require.NoError(t, yaml.Unmarshal(bytes, &s))
	restored, err := NewMemoryStoreFromSnapshot(ctx, &s)
	require.NoError(t, err)

	assert.Equal(t, store.TakeSnapshot(), restored.TakeSnapshot())

	got, err := restored.LookupModuleLibrary(ctx, appTest, guava().Identity)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"/vendored/guava.jar"}, got.BinaryPaths)
}

func TestSnapshotRejectsWrongKind(t *testing.T) {
	_, err := NewMemoryStoreFromSnapshot(context.Background(), &Snapshot{})
	assert.Error(t, err)
}

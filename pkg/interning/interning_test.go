// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package interning

import (
	"context"
	"errors"
	"testing"

	"daml.com/x/depgraph/pkg/identity"
	"daml.com/x/depgraph/pkg/library"
	"daml.com/x/depgraph/pkg/projectgraph"
	"daml.com/x/depgraph/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	app     = identity.NewModuleTarget("/repo", ":app", identity.Main)
	feature = identity.NewModuleTarget("/repo", ":feature", identity.Main)
	guavaID = identity.LibraryIdentity{Name: "/caches/guava.jar"}
)

func builderFor(id identity.LibraryIdentity, path string, calls *int) Builder {
	return func() (*library.ResolvedLibrary, error) {
		*calls++
		return &library.ResolvedLibrary{Identity: id, Kind: library.Java, BinaryPaths: []string{path}}, nil
	}
}

func TestDedupAcrossModules(t *testing.T) {
	ctx := testutil.Context(t)
	c := New(projectgraph.NewMemoryStore())

	calls := 0
	a, err := c.GetOrCreate(ctx, app, guavaID, builderFor(guavaID, "/caches/guava.jar", &calls))
	require.NoError(t, err)
	b, err := c.GetOrCreate(ctx, feature, guavaID, builderFor(guavaID, "/caches/guava.jar", &calls))
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []*library.ResolvedLibrary{a}, c.Created())
	assert.Equal(t, library.ProjectLevel, a.Level)

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestReusesPersistedLibraries(t *testing.T) {
	ctx := testutil.Context(t)
	store := projectgraph.NewMemoryStore()

	project := &library.ResolvedLibrary{Identity: guavaID, Kind: library.Java, BinaryPaths: []string{"/caches/guava.jar"}, Level: library.ProjectLevel}
	override := &library.ResolvedLibrary{Identity: guavaID, Kind: library.Java, BinaryPaths: []string{"/vendored/guava.jar"}, Level: library.ModuleLevel, Owner: app}
	require.NoError(t, store.AddEdges(ctx, &projectgraph.Changeset{
		Modules:   []identity.ModuleTarget{app, feature},
		Libraries: []*library.ResolvedLibrary{project, override},
	}))

	c := New(store)
	calls := 0

	// project-scoped record is reused by a module without override
	got, err := c.GetOrCreate(ctx, feature, guavaID, builderFor(guavaID, "/caches/guava.jar", &calls))
	require.NoError(t, err)
	assert.Equal(t, library.ProjectLevel, got.Level)

	// the module-local override is never replaced by the project record, even after it was interned
	got, err = c.GetOrCreate(ctx, app, guavaID, builderFor(guavaID, "/caches/guava.jar", &calls))
	require.NoError(t, err)
	assert.Equal(t, library.ModuleLevel, got.Level)
	assert.Equal(t, []string{"/vendored/guava.jar"}, got.BinaryPaths)

	again, err := c.GetOrCreate(ctx, app, guavaID, builderFor(guavaID, "/caches/guava.jar", &calls))
	require.NoError(t, err)
	assert.Same(t, got, again)

	assert.Zero(t, calls)
	assert.Empty(t, c.Created())
}

type failingLookup struct{}

func (failingLookup) LookupModuleLibrary(context.Context, identity.ModuleTarget, identity.LibraryIdentity) (*library.ResolvedLibrary, error) {
	return nil, errors.New("storage offline")
}

func (failingLookup) LookupProjectLibrary(context.Context, identity.LibraryIdentity) (*library.ResolvedLibrary, error) {
	return nil, errors.New("storage offline")
}

func TestErrors(t *testing.T) {
	ctx := testutil.Context(t)
	calls := 0

	_, err := New(failingLookup{}).GetOrCreate(ctx, app, guavaID, builderFor(guavaID, "/caches/guava.jar", &calls))
	assert.ErrorContains(t, err, "storage offline")

	c := New(projectgraph.NewMemoryStore())
	_, err = c.GetOrCreate(ctx, app, guavaID, func() (*library.ResolvedLibrary, error) {
		return &library.ResolvedLibrary{Identity: guavaID, Kind: library.Java}, nil
	})
	assert.Error(t, err, "java library without binaries is invalid")

	other := identity.LibraryIdentity{Name: "other"}
	_, err = c.GetOrCreate(ctx, app, other, builderFor(guavaID, "/caches/guava.jar", &calls))
	assert.Error(t, err)
	assert.Empty(t, c.Created())
}

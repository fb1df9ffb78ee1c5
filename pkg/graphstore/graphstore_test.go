// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package graphstore

import (
	"path/filepath"
	"testing"

	"daml.com/x/depgraph/pkg/identity"
	"daml.com/x/depgraph/pkg/projectgraph"
	"daml.com/x/depgraph/pkg/projectgraph/filestore"
	"daml.com/x/depgraph/pkg/projectgraph/sqlitestore"
	"daml.com/x/depgraph/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		file   string
		assert func(t *testing.T, s Store)
	}{
		{"graph.yaml", func(t *testing.T, s Store) { assert.IsType(t, &filestore.Store{}, s) }},
		{"graph.db", func(t *testing.T, s Store) { assert.IsType(t, &sqlitestore.Store{}, s) }},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			ctx := testutil.Context(t)
			path := filepath.Join(t.TempDir(), tt.file)

			s, err := Open(ctx, path)
			require.NoError(t, err)
			tt.assert(t, s)

			app := identity.NewModuleTarget("/repo", ":app", identity.Main)
			require.NoError(t, s.AddEdges(ctx, &projectgraph.Changeset{Modules: []identity.ModuleTarget{app}}))
			require.NoError(t, s.Close())

			reopened, err := Open(ctx, path)
			require.NoError(t, err)
			defer reopened.Close()
			ok, err := reopened.LookupModule(ctx, app)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

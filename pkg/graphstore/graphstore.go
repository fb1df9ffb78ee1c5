// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package graphstore

import (
	"context"
	"io"
	"log/slog"

	"daml.com/x/depgraph/pkg/depgraphconfig"
	"daml.com/x/depgraph/pkg/projectgraph"
	"daml.com/x/depgraph/pkg/projectgraph/filestore"
	"daml.com/x/depgraph/pkg/projectgraph/sqlitestore"
)

// Store is a persisted project graph
type Store interface {
	projectgraph.Repository
	projectgraph.Lister
	io.Closer
}

// Open opens the store at path, picking the backend from the file extension
func Open(ctx context.Context, path string) (Store, error) {
	kind := depgraphconfig.GraphStoreKind(path)
	slog.DebugContext(ctx, "opening project graph", "path", path, "store", string(kind))

	if kind == depgraphconfig.SqliteStore {
		s, err := sqlitestore.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	s, err := filestore.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package filestore keeps a project graph in a single YAML snapshot file.
// Writers on the same machine are serialized through a lock file next to the snapshot.
package filestore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"daml.com/x/depgraph/pkg/identity"
	"daml.com/x/depgraph/pkg/library"
	"daml.com/x/depgraph/pkg/projectgraph"
	"daml.com/x/depgraph/pkg/utils"
	"github.com/goccy/go-yaml"
)

const lockSuffix = ".lock"

type Store struct {
	path string

	mu  sync.RWMutex
	mem *projectgraph.MemoryStore
}

// Open loads the snapshot at path. A missing file is an empty graph.
func Open(ctx context.Context, path string) (*Store, error) {
	mem, err := load(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, mem: mem}, nil
}

func load(ctx context.Context, path string) (*projectgraph.MemoryStore, error) {
	bytes, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return projectgraph.NewMemoryStore(), nil
	} else if err != nil {
		return nil, err
	}

	var s projectgraph.Snapshot
	if err := yaml.Unmarshal(bytes, &s); err != nil {
		return nil, fmt.Errorf("failed to parse project graph %s: %w", path, err)
	}
	mem, err := projectgraph.NewMemoryStoreFromSnapshot(ctx, &s)
	if err != nil {
		return nil, fmt.Errorf("invalid project graph %s: %w", path, err)
	}
	return mem, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) current() *projectgraph.MemoryStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mem
}

func (s *Store) LookupModuleLibrary(ctx context.Context, owner identity.ModuleTarget, id identity.LibraryIdentity) (*library.ResolvedLibrary, error) {
	return s.current().LookupModuleLibrary(ctx, owner, id)
}

func (s *Store) LookupProjectLibrary(ctx context.Context, id identity.LibraryIdentity) (*library.ResolvedLibrary, error) {
	return s.current().LookupProjectLibrary(ctx, id)
}

func (s *Store) LookupModule(ctx context.Context, target identity.ModuleTarget) (bool, error) {
	return s.current().LookupModule(ctx, target)
}

func (s *Store) ModuleEdges(ctx context.Context, target identity.ModuleTarget) ([]projectgraph.Edge, error) {
	return s.current().ModuleEdges(ctx, target)
}

func (s *Store) Libraries(ctx context.Context) ([]*library.ResolvedLibrary, error) {
	return s.current().Libraries(ctx)
}

func (s *Store) Modules(ctx context.Context) ([]identity.ModuleTarget, error) {
	return s.current().Modules(ctx)
}

// AddEdges merges changes into the latest snapshot on disk and replaces the file.
// Nothing is written when the changeset is rejected.
func (s *Store) AddEdges(ctx context.Context, changes *projectgraph.Changeset) error {
	if changes == nil || changes.IsEmpty() {
		return nil
	}

	return utils.WithFileLock(ctx, s.path+lockSuffix, func() error {
		// another process may have committed since Open
		mem, err := load(ctx, s.path)
		if err != nil {
			return err
		}
		if err := mem.AddEdges(ctx, changes); err != nil {
			return err
		}

		bytes, err := yaml.Marshal(mem.TakeSnapshot())
		if err != nil {
			return fmt.Errorf("failed to marshal project graph: %w", err)
		}
		if err := utils.WriteFileAtomic(s.path, bytes, 0644); err != nil {
			return fmt.Errorf("failed to write project graph %s: %w", s.path, err)
		}
		slog.DebugContext(ctx, "project graph written", "path", s.path,
			"libraries", len(changes.Libraries), "edges", len(changes.Edges))

		s.mu.Lock()
		s.mem = mem
		s.mu.Unlock()
		return nil
	})
}

var _ projectgraph.Repository = (*Store)(nil)
var _ projectgraph.Lister = (*Store)(nil)

// Close is a no-op, the snapshot is written on every commit
func (s *Store) Close() error {
	return nil
}

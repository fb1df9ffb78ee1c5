// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package projectgraph

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"daml.com/x/depgraph/pkg/identity"
	"daml.com/x/depgraph/pkg/library"
)

var ErrConflictingLibrary = errors.New("a different library with the same identity already exists")

// MemoryStore is an in-memory Repository. It backs the YAML file store and tests.
type MemoryStore struct {
	mu sync.RWMutex

	modules      map[identity.ModuleTarget][]Edge
	moduleOrder  []identity.ModuleTarget
	libraries    map[LibraryKey]*library.ResolvedLibrary
	libraryOrder []LibraryKey
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		modules:   map[identity.ModuleTarget][]Edge{},
		libraries: map[LibraryKey]*library.ResolvedLibrary{},
	}
}

func (m *MemoryStore) LookupModuleLibrary(_ context.Context, owner identity.ModuleTarget, id identity.LibraryIdentity) (*library.ResolvedLibrary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.libraries[LibraryKey{Identity: id, Level: library.ModuleLevel, Owner: owner}], nil
}

func (m *MemoryStore) LookupProjectLibrary(_ context.Context, id identity.LibraryIdentity) (*library.ResolvedLibrary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.libraries[LibraryKey{Identity: id, Level: library.ProjectLevel}], nil
}

func (m *MemoryStore) LookupModule(_ context.Context, target identity.ModuleTarget) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.modules[target]
	return ok, nil
}

func (m *MemoryStore) ModuleEdges(_ context.Context, target identity.ModuleTarget) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.modules[target]), nil
}

func (m *MemoryStore) Libraries(_ context.Context) ([]*library.ResolvedLibrary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*library.ResolvedLibrary, 0, len(m.libraryOrder))
	for _, k := range m.libraryOrder {
		out = append(out, m.libraries[k])
	}
	return out, nil
}

func (m *MemoryStore) Modules(_ context.Context) ([]identity.ModuleTarget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.moduleOrder), nil
}

// AddEdges validates the whole changeset before touching the store
func (m *MemoryStore) AddEdges(_ context.Context, changes *Changeset) error {
	if changes == nil || changes.IsEmpty() {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	newModules := map[identity.ModuleTarget]bool{}
	for _, t := range changes.Modules {
		if t.IsZero() {
			return fmt.Errorf("cannot add a module without coordinates")
		}
		if _, ok := m.modules[t]; !ok {
			newModules[t] = true
		}
	}
	knownModule := func(t identity.ModuleTarget) bool {
		_, ok := m.modules[t]
		return ok || newModules[t]
	}

	newLibraries := map[LibraryKey]*library.ResolvedLibrary{}
	var newLibraryOrder []LibraryKey
	for _, l := range changes.Libraries {
		if err := l.Validate(); err != nil {
			return err
		}
		k := KeyOf(l)
		existing, ok := m.libraries[k]
		if !ok {
			existing, ok = newLibraries[k]
		}
		if ok {
			if !existing.SameContent(l) {
				return fmt.Errorf("%w: %s", ErrConflictingLibrary, l)
			}
			continue
		}
		if l.Level == library.ModuleLevel && !knownModule(l.Owner) {
			return fmt.Errorf("library %s is owned by unknown module %s", l, l.Owner)
		}
		newLibraries[k] = l
		newLibraryOrder = append(newLibraryOrder, k)
	}
	lookupLibrary := func(k LibraryKey) *library.ResolvedLibrary {
		if l, ok := m.libraries[k]; ok {
			return l
		}
		return newLibraries[k]
	}

	present := map[EdgeKey]bool{}
	for _, edges := range m.modules {
		for _, e := range edges {
			present[e.Key()] = true
		}
	}

	var newEdges []Edge
	for _, e := range changes.Edges {
		if err := e.Validate(); err != nil {
			return err
		}
		if !knownModule(e.From) {
			return fmt.Errorf("edge %s starts at unknown module", e)
		}
		if e.Module != nil && !knownModule(*e.Module) {
			return fmt.Errorf("edge %s points at unknown module", e)
		}
		if e.Library != nil {
			stored := lookupLibrary(KeyOf(e.Library))
			if stored == nil {
				return fmt.Errorf("edge %s points at unknown library", e)
			}
			e.Library = stored
		}
		if present[e.Key()] {
			continue
		}
		present[e.Key()] = true
		newEdges = append(newEdges, e)
	}

	for _, t := range changes.Modules {
		if newModules[t] {
			m.modules[t] = nil
			m.moduleOrder = append(m.moduleOrder, t)
			delete(newModules, t)
		}
	}
	for _, k := range newLibraryOrder {
		m.libraries[k] = newLibraries[k]
		m.libraryOrder = append(m.libraryOrder, k)
	}
	for _, e := range newEdges {
		m.modules[e.From] = append(m.modules[e.From], e)
	}
	return nil
}

var _ Repository = (*MemoryStore)(nil)
var _ Lister = (*MemoryStore)(nil)

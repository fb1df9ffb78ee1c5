// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package interning

import (
	"context"
	"fmt"

	"daml.com/x/depgraph/pkg/identity"
	"daml.com/x/depgraph/pkg/library"
	"daml.com/x/depgraph/pkg/projectgraph"
	"daml.com/x/depgraph/pkg/resolutionerrors"
)

// LibraryLookup is the read-only part of the persisted graph the cache consults
type LibraryLookup interface {
	LookupModuleLibrary(ctx context.Context, owner identity.ModuleTarget, id identity.LibraryIdentity) (*library.ResolvedLibrary, error)
	LookupProjectLibrary(ctx context.Context, id identity.LibraryIdentity) (*library.ResolvedLibrary, error)
}

var _ LibraryLookup = (projectgraph.Repository)(nil)

type Builder func() (*library.ResolvedLibrary, error)

type moduleKey struct {
	owner identity.ModuleTarget
	id    identity.LibraryIdentity
}

// Cache interns library records for one resolution pass.
// It is not safe for concurrent use.
type Cache struct {
	graph LibraryLookup

	project map[identity.LibraryIdentity]*library.ResolvedLibrary
	module  map[moduleKey]*library.ResolvedLibrary
	created []*library.ResolvedLibrary

	hits, misses int
}

func New(graph LibraryLookup) *Cache {
	return &Cache{
		graph:   graph,
		project: map[identity.LibraryIdentity]*library.ResolvedLibrary{},
		module:  map[moduleKey]*library.ResolvedLibrary{},
	}
}

// GetOrCreate returns the library record consumer should depend on for id.
//
// Lookup order:
//  1. a record already interned in this pass (module-scoped for consumer first, then project-scoped)
//  2. a module-scoped record of consumer in the persisted graph
//  3. a project-scoped record in the persisted graph
//
// builder only runs when all of them miss; the new record is registered at project level.
// A module-scoped record always shadows a project-scoped one for its owner.
func (c *Cache) GetOrCreate(ctx context.Context, consumer identity.ModuleTarget, id identity.LibraryIdentity, builder Builder) (*library.ResolvedLibrary, error) {
	mk := moduleKey{owner: consumer, id: id}
	if l, ok := c.module[mk]; ok {
		if l != nil {
			c.hits++
			return l, nil
		}
	} else {
		l, err := c.graph.LookupModuleLibrary(ctx, consumer, id)
		if err != nil {
			return nil, resolutionerrors.NewRepositoryFailureError(fmt.Errorf("looking up module library %s of %s: %w", id, consumer, err))
		}
		// misses are remembered as nil
		c.module[mk] = l
		if l != nil {
			c.hits++
			return l, nil
		}
	}

	if l, ok := c.project[id]; ok {
		c.hits++
		return l, nil
	}

	l, err := c.graph.LookupProjectLibrary(ctx, id)
	if err != nil {
		return nil, resolutionerrors.NewRepositoryFailureError(fmt.Errorf("looking up project library %s: %w", id, err))
	}
	if l != nil {
		c.hits++
		c.project[id] = l
		return l, nil
	}

	c.misses++
	l, err = builder()
	if err != nil {
		return nil, err
	}
	if l.Identity != id {
		return nil, fmt.Errorf("library builder for %s produced %s", id, l.Identity)
	}
	l.Level = library.ProjectLevel
	l.Owner = identity.ModuleTarget{}
	if err := l.Validate(); err != nil {
		return nil, err
	}

	c.project[id] = l
	c.created = append(c.created, l)
	return l, nil
}

// Created lists the records built during this pass, in creation order
func (c *Cache) Created() []*library.ResolvedLibrary {
	return c.created
}

// Stats returns how many lookups were served by an existing record and how many built a new one
func (c *Cache) Stats() (hits, misses int) {
	return c.hits, c.misses
}

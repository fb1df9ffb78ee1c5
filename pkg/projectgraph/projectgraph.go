// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package projectgraph abstracts the host's persisted module/library graph.
// Resolution only reads from it and hands it one additive Changeset per pass.
package projectgraph

import (
	"context"
	"fmt"

	"daml.com/x/depgraph/pkg/identity"
	"daml.com/x/depgraph/pkg/library"
)

type Scope string

const (
	Compile Scope = "compile"
	Test    Scope = "test"
)

// Edge is one resolved dependency of a module: exactly one of Library and Module is set
type Edge struct {
	From    identity.ModuleTarget
	Library *library.ResolvedLibrary
	Module  *identity.ModuleTarget

	Scope    Scope
	Exported bool
	// ProductionOnTest makes test-fixtures symbols visible to main-scope code
	ProductionOnTest bool
}

// LibraryKey locates a library record: the same identity can exist once at project level and
// once per owning module
type LibraryKey struct {
	Identity identity.LibraryIdentity
	Level    library.Level
	Owner    identity.ModuleTarget
}

func KeyOf(l *library.ResolvedLibrary) LibraryKey {
	return LibraryKey{Identity: l.Identity, Level: l.Level, Owner: l.Owner}
}

// EdgeKey is the semantic identity of an edge: same target, scope and flags
type EdgeKey struct {
	From             identity.ModuleTarget
	Module           identity.ModuleTarget
	Library          LibraryKey
	Scope            Scope
	Exported         bool
	ProductionOnTest bool
}

func (e Edge) Key() EdgeKey {
	k := EdgeKey{From: e.From, Scope: e.Scope, Exported: e.Exported, ProductionOnTest: e.ProductionOnTest}
	if e.Module != nil {
		k.Module = *e.Module
	}
	if e.Library != nil {
		k.Library = KeyOf(e.Library)
	}
	return k
}

// TargetKey identifies what the edge points at, ignoring scope and flags
func (e Edge) TargetKey() string {
	if e.Module != nil {
		return "module:" + e.Module.String()
	}
	if e.Library != nil {
		return "library:" + e.Library.String()
	}
	return ""
}

func (e Edge) IsSelfReference() bool {
	return e.Module != nil && *e.Module == e.From
}

func (e Edge) Validate() error {
	if e.From.IsZero() {
		return fmt.Errorf("edge has no source module")
	}
	if (e.Library == nil) == (e.Module == nil) {
		return fmt.Errorf("edge from %s must point at exactly one library or module", e.From)
	}
	if e.IsSelfReference() {
		return fmt.Errorf("edge from %s points at itself", e.From)
	}
	if e.Scope != Compile && e.Scope != Test {
		return fmt.Errorf("edge from %s has invalid scope %q", e.From, e.Scope)
	}
	return nil
}

func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s (%s)", e.From, e.TargetKey(), e.Scope)
}

// Changeset is everything one resolution pass adds to the graph
type Changeset struct {
	Modules   []identity.ModuleTarget
	Libraries []*library.ResolvedLibrary
	Edges     []Edge
}

func (c *Changeset) IsEmpty() bool {
	return len(c.Modules) == 0 && len(c.Libraries) == 0 && len(c.Edges) == 0
}

// Repository is the persisted project graph. Lookups return (nil, nil) on a miss.
type Repository interface {
	LookupModuleLibrary(ctx context.Context, owner identity.ModuleTarget, id identity.LibraryIdentity) (*library.ResolvedLibrary, error)
	LookupProjectLibrary(ctx context.Context, id identity.LibraryIdentity) (*library.ResolvedLibrary, error)
	LookupModule(ctx context.Context, target identity.ModuleTarget) (bool, error)
	ModuleEdges(ctx context.Context, target identity.ModuleTarget) ([]Edge, error)

	// AddEdges applies a changeset additively and atomically: either all of it is visible
	// afterwards or none of it is
	AddEdges(ctx context.Context, changes *Changeset) error
}

// Lister is implemented by repositories that can enumerate their contents
type Lister interface {
	Libraries(ctx context.Context) ([]*library.ResolvedLibrary, error)
	Modules(ctx context.Context) ([]identity.ModuleTarget, error)
}

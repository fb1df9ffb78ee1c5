// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package materializer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"daml.com/x/depgraph/pkg/buildmodel"
	"daml.com/x/depgraph/pkg/expander"
	"daml.com/x/depgraph/pkg/identity"
	"daml.com/x/depgraph/pkg/interning"
	"daml.com/x/depgraph/pkg/library"
	"daml.com/x/depgraph/pkg/projectgraph"
	"daml.com/x/depgraph/pkg/reference"
	"daml.com/x/depgraph/pkg/resolutionerrors"
)

type Options struct {
	Library library.BuildOptions
}

// ModuleResult holds the edges resolved for one module
type ModuleResult struct {
	Module identity.ModuleTarget
	// Edges is the full resolved dependency list in classpath order
	Edges []projectgraph.Edge
	// Added is the subset of Edges not yet present in the graph
	Added    []projectgraph.Edge
	LintJars []string
	Warnings []*resolutionerrors.ResolutionError
}

// Materializer turns a module's classpath into typed edges.
// It is not safe for concurrent use.
type Materializer struct {
	expander *expander.Expander
	cache    *interning.Cache
	graph    projectgraph.Repository
	opts     Options

	// modules known to exist, either part of this pass or found in the graph
	known map[identity.ModuleTarget]bool
}

func New(e *expander.Expander, c *interning.Cache, graph projectgraph.Repository, passModules []identity.ModuleTarget, opts Options) *Materializer {
	known := make(map[identity.ModuleTarget]bool, len(passModules))
	for _, t := range passModules {
		known[t] = true
	}
	return &Materializer{expander: e, cache: c, graph: graph, opts: opts, known: known}
}

type dedupKey struct {
	target string
	scope  projectgraph.Scope
}

// Materialize resolves every dependency of mod. A returned error is fatal for the whole pass.
func (m *Materializer) Materialize(ctx context.Context, mod buildmodel.Module) (*ModuleResult, error) {
	from := mod.Target
	result := &ModuleResult{Module: from}
	seen := map[dedupKey]int{}

	// a repeated (target, scope) keeps its first classpath position; it is exported if any
	// of the repeats is
	emit := func(e projectgraph.Edge) {
		k := dedupKey{target: e.TargetKey(), scope: e.Scope}
		if i, ok := seen[k]; ok {
			result.Edges[i].Exported = result.Edges[i].Exported || e.Exported
			return
		}
		seen[k] = len(result.Edges)
		result.Edges = append(result.Edges, e)
	}
	warn := func(w *resolutionerrors.ResolutionError) {
		slog.WarnContext(ctx, "dropping dependency", "module", from.String(), "code", w.Code, "err", w.Error())
		result.Warnings = append(result.Warnings, w)
	}

	for _, dep := range mod.Dependencies {
		exp, err := m.expander.Expand(from, dep.Reference)
		if err != nil {
			return nil, fmt.Errorf("resolving %s of %s: %w", dep.Reference, from, err)
		}
		if exp.Warning != nil {
			warn(exp.Warning)
			continue
		}

		if mr, ok := dep.Reference.(reference.ModuleReference); ok && mr.LintJarPath() != "" && !slices.Contains(result.LintJars, mr.LintJarPath()) {
			result.LintJars = append(result.LintJars, mr.LintJarPath())
		}

		scope := dep.ScopeOf(from)

		switch {
		case exp.Library != nil:
			artifact := *exp.Library
			lib, err := m.cache.GetOrCreate(ctx, from, library.IdentityOf(artifact), func() (*library.ResolvedLibrary, error) {
				return library.FromArtifact(artifact, m.opts.Library), nil
			})
			if err != nil {
				return nil, fmt.Errorf("interning %s for %s: %w", artifact, from, err)
			}
			emit(projectgraph.Edge{From: from, Library: lib, Scope: scope, Exported: dep.Exported})

		case exp.Unknown != nil:
			unknown := *exp.Unknown
			if unknown.File == "" {
				warn(resolutionerrors.NewUnknownDependencyError(from.String(), fmt.Errorf("%s has no binary to link against", unknown)))
				continue
			}
			lib, err := m.cache.GetOrCreate(ctx, from, library.UnknownIdentityOf(unknown), func() (*library.ResolvedLibrary, error) {
				built, _ := library.FromUnknown(unknown)
				return built, nil
			})
			if err != nil {
				return nil, fmt.Errorf("interning %s for %s: %w", unknown, from, err)
			}
			emit(projectgraph.Edge{From: from, Library: lib, Scope: scope, Exported: dep.Exported})

		default:
			for _, target := range exp.Modules {
				// production/test symmetry makes the build report self dependencies; they mean nothing here
				if target == from {
					continue
				}
				exists, err := m.moduleExists(ctx, target)
				if err != nil {
					return nil, err
				}
				if !exists {
					warn(resolutionerrors.NewModuleNotFoundError(from.String(), fmt.Errorf("%s is not part of the project graph", target)))
					continue
				}
				t := target
				emit(projectgraph.Edge{
					From:             from,
					Module:           &t,
					Scope:            scope,
					Exported:         dep.Exported,
					ProductionOnTest: isProductionOnTest(from, t),
				})
			}
		}
	}

	existing, err := m.graph.ModuleEdges(ctx, from)
	if err != nil {
		return nil, resolutionerrors.NewRepositoryFailureError(fmt.Errorf("reading edges of %s: %w", from, err))
	}
	present := make(map[projectgraph.EdgeKey]bool, len(existing))
	for _, e := range existing {
		present[e.Key()] = true
	}
	for _, e := range result.Edges {
		if !present[e.Key()] {
			result.Added = append(result.Added, e)
		}
	}

	return result, nil
}

func (m *Materializer) moduleExists(ctx context.Context, target identity.ModuleTarget) (bool, error) {
	if exists, ok := m.known[target]; ok {
		return exists, nil
	}
	exists, err := m.graph.LookupModule(ctx, target)
	if err != nil {
		return false, resolutionerrors.NewRepositoryFailureError(fmt.Errorf("looking up module %s: %w", target, err))
	}
	m.known[target] = exists
	return exists, nil
}

// isProductionOnTest is only true for main code consuming test fixtures.
// Test code consuming test fixtures is an ordinary edge.
func isProductionOnTest(from, to identity.ModuleTarget) bool {
	return from.SourceSet == identity.Main && to.SourceSet == identity.TestFixtures
}

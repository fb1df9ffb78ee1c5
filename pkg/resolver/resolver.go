// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"daml.com/x/depgraph/pkg/artifactindex"
	"daml.com/x/depgraph/pkg/buildmodel"
	"daml.com/x/depgraph/pkg/expander"
	"daml.com/x/depgraph/pkg/identity"
	"daml.com/x/depgraph/pkg/interning"
	"daml.com/x/depgraph/pkg/library"
	"daml.com/x/depgraph/pkg/materializer"
	"daml.com/x/depgraph/pkg/projectgraph"
	"daml.com/x/depgraph/pkg/resolutionerrors"
	"github.com/samber/lo"
)

type Options struct {
	Library library.BuildOptions
	// DryRun resolves without committing anything to the graph
	DryRun bool
}

// Result is the outcome of one successful pass
type Result struct {
	Modules      []*materializer.ModuleResult
	NewLibraries []*library.ResolvedLibrary
	Warnings     []*resolutionerrors.ResolutionError
	Committed    bool
}

// AddedEdges counts edges that were not in the graph before this pass
func (r *Result) AddedEdges() int {
	return lo.SumBy(r.Modules, func(m *materializer.ModuleResult) int { return len(m.Added) })
}

type Resolver struct {
	graph projectgraph.Repository
	main  expander.MainSourceSetResolver
	opts  Options
}

func New(graph projectgraph.Repository, opts Options) *Resolver {
	return &Resolver{graph: graph, opts: opts}
}

// WithMainSourceSetResolver overrides the main source sets declared by the build model
func (r *Resolver) WithMainSourceSetResolver(main expander.MainSourceSetResolver) *Resolver {
	r.main = main
	return r
}

// Resolve runs one resolution pass over modules, in the given order.
// Either everything the pass found is committed to the graph, or an error is returned and the
// graph is left untouched; the caller is expected to fall back to a full re-import.
func (r *Resolver) Resolve(ctx context.Context, modules []buildmodel.Module) (*Result, error) {
	targets := make([]identity.ModuleTarget, 0, len(modules))
	seen := map[identity.ModuleTarget]bool{}
	for _, m := range modules {
		if m.Target.IsZero() {
			return nil, resolutionerrors.NewMalformedModelError(fmt.Errorf("module without coordinates"))
		}
		if seen[m.Target] {
			return nil, resolutionerrors.NewMalformedModelError(fmt.Errorf("module %s is declared more than once", m.Target))
		}
		seen[m.Target] = true
		targets = append(targets, m.Target)
	}

	index := buildIndex(modules)
	dependsOn := buildDependsOn(modules)
	main := r.main
	if main == nil {
		main = modelMainSourceSets(modules)
	}

	cache := interning.New(r.graph)
	m := materializer.New(expander.New(index, dependsOn, main), cache, r.graph, targets, materializer.Options{Library: r.opts.Library})

	result := &Result{}
	changes := &projectgraph.Changeset{Modules: targets}
	for _, mod := range modules {
		moduleResult, err := m.Materialize(ctx, mod)
		if err != nil {
			slog.ErrorContext(ctx, "dependency resolution pass failed", "module", mod.Target.String(), "err", err.Error())
			return nil, fmt.Errorf("dependency resolution pass failed: %w", err)
		}
		result.Modules = append(result.Modules, moduleResult)
		result.Warnings = append(result.Warnings, moduleResult.Warnings...)
		changes.Edges = append(changes.Edges, moduleResult.Added...)
	}
	result.NewLibraries = cache.Created()
	changes.Libraries = result.NewLibraries

	hits, misses := cache.Stats()
	slog.InfoContext(ctx, "dependency resolution pass complete",
		"modules", len(modules),
		"indexedArtifacts", index.Len(),
		"newLibraries", len(result.NewLibraries),
		"newEdges", len(changes.Edges),
		"libraryHits", hits,
		"libraryMisses", misses,
		"warnings", len(result.Warnings),
	)

	if r.opts.DryRun {
		return result, nil
	}
	if err := r.graph.AddEdges(ctx, changes); err != nil {
		return nil, resolutionerrors.NewRepositoryFailureError(fmt.Errorf("committing resolution pass: %w", err))
	}
	result.Committed = true
	return result, nil
}

func buildIndex(modules []buildmodel.Module) *artifactindex.Index {
	idx := artifactindex.New()
	for _, m := range modules {
		for _, out := range m.Outputs {
			idx.Add(m.Target, out)
		}
	}
	return idx
}

func buildDependsOn(modules []buildmodel.Module) *expander.DependsOnGraph {
	g := expander.NewDependsOnGraph()
	for _, m := range modules {
		g.Add(m.Target, m.DependsOn...)
	}
	return g
}

// modelMainSourceSets answers main source set lookups from what the modules themselves declare
func modelMainSourceSets(modules []buildmodel.Module) expander.MainSourceSetResolver {
	mains := map[identity.ProjectCoordinates]identity.SourceSetName{}
	for _, m := range modules {
		if m.MainSourceSet == "" {
			continue
		}
		if _, ok := mains[m.Target.Project()]; !ok {
			mains[m.Target.Project()] = m.MainSourceSet
		}
	}
	return expander.MainSourceSetResolverFunc(func(p identity.ProjectCoordinates) (identity.SourceSetName, bool) {
		s, ok := mains[p]
		return s, ok
	})
}

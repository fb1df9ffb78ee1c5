// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package expander

import (
	"fmt"

	"daml.com/x/depgraph/pkg/artifactindex"
	"daml.com/x/depgraph/pkg/identity"
	"daml.com/x/depgraph/pkg/reference"
	"daml.com/x/depgraph/pkg/resolutionerrors"
	"github.com/samber/lo"
)

// MainSourceSetResolver names the designated main source set of a multiplatform project
type MainSourceSetResolver interface {
	MainSourceSet(project identity.ProjectCoordinates) (identity.SourceSetName, bool)
}

type MainSourceSetResolverFunc func(project identity.ProjectCoordinates) (identity.SourceSetName, bool)

func (f MainSourceSetResolverFunc) MainSourceSet(project identity.ProjectCoordinates) (identity.SourceSetName, bool) {
	return f(project)
}

// Expansion is what one unresolved reference turned into. At most one of Library, Modules and
// Unknown is populated; Warning is set when the reference was dropped.
type Expansion struct {
	Library *reference.PlainArtifact
	Modules []identity.ModuleTarget
	Unknown *reference.Unknown
	Warning *resolutionerrors.ResolutionError
}

// Expander turns unresolved references into module targets or library candidates.
// It is not safe for concurrent use.
type Expander struct {
	index     *artifactindex.Index
	dependsOn *DependsOnGraph
	main      MainSourceSetResolver
}

func New(index *artifactindex.Index, dependsOn *DependsOnGraph, main MainSourceSetResolver) *Expander {
	if dependsOn == nil {
		dependsOn = NewDependsOnGraph()
	}
	return &Expander{index: index, dependsOn: dependsOn, main: main}
}

// Expand resolves ref as seen from consumer. The returned error is always fatal for the pass.
func (e *Expander) Expand(consumer identity.ModuleTarget, ref reference.UnresolvedReference) (Expansion, error) {
	switch r := ref.(type) {
	case reference.PlainArtifact:
		return e.expandArtifact(r), nil
	case reference.PreResolvedModule:
		return Expansion{Modules: []identity.ModuleTarget{r.Target()}}, nil
	case reference.MultiTargetModule:
		return e.expandMultiTarget(r)
	case reference.KmpAggregateModule:
		return e.expandKmpAggregate(consumer, r), nil
	case reference.Unknown:
		return Expansion{Unknown: &r}, nil
	default:
		return Expansion{}, resolutionerrors.NewMalformedModelError(fmt.Errorf("unsupported dependency reference %T on %s", ref, consumer))
	}
}

// expandArtifact falls back to an external library when no module of the build produces the
// file. This changes the dependency kind depending on what the index knows in this pass, and is
// deliberate: published binaries are the common case.
func (e *Expander) expandArtifact(a reference.PlainArtifact) Expansion {
	if producers := e.index.Lookup(a.File); len(producers) > 0 {
		return Expansion{Modules: producers}
	}
	return Expansion{Library: &a}
}

func (e *Expander) expandMultiTarget(m reference.MultiTargetModule) (Expansion, error) {
	project := m.Project()

	var seeds []identity.ModuleTarget
	if m.Artifact != "" {
		seeds = e.index.Lookup(m.Artifact)
	}
	if len(seeds) == 0 {
		sourceSet := lo.Ternary(m.SourceSet != "", m.SourceSet, identity.Main)
		seeds = []identity.ModuleTarget{{BuildRoot: project.BuildRoot, ProjectPath: project.ProjectPath, SourceSet: sourceSet}}
	}

	// the artifact must be produced by the referenced project itself; linking to whichever
	// module happens to produce it would silently point the edge elsewhere
	for _, s := range seeds {
		if s.BuildRoot != project.BuildRoot {
			return Expansion{}, resolutionerrors.NewBuildIdMismatchError(fmt.Errorf(
				"%s expanded to %s which belongs to build %q, expected build %q", m, s, s.BuildRoot, project.BuildRoot))
		}
		if s.ProjectPath != project.ProjectPath {
			return Expansion{}, resolutionerrors.NewBuildIdMismatchError(fmt.Errorf(
				"%s expanded to %s which belongs to project %q, expected project %q", m, s, s.ProjectPath, project.ProjectPath))
		}
	}

	return Expansion{Modules: e.dependsOn.Closure(seeds...)}, nil
}

func (e *Expander) expandKmpAggregate(consumer identity.ModuleTarget, k reference.KmpAggregateModule) Expansion {
	project := k.Project()
	if e.main != nil {
		if sourceSet, ok := e.main.MainSourceSet(project); ok && sourceSet != "" {
			return Expansion{Modules: []identity.ModuleTarget{{BuildRoot: project.BuildRoot, ProjectPath: project.ProjectPath, SourceSet: sourceSet}}}
		}
	}
	return Expansion{Warning: resolutionerrors.NewMainSourceSetUnresolvedError(
		consumer.String(), fmt.Errorf("could not determine the main source set of %s", project))}
}

// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolution

import (
	"slices"

	"daml.com/x/depgraph/pkg/library"
	"daml.com/x/depgraph/pkg/materializer"
	"daml.com/x/depgraph/pkg/projectgraph"
	"daml.com/x/depgraph/pkg/resolutionerrors"
	"daml.com/x/depgraph/pkg/resolver"
	"daml.com/x/depgraph/pkg/schema"
	"github.com/samber/lo"
)

const (
	ApiVersion = "v1"
	Kind       = "Resolution"
)

// Resolution is the printable report of one resolution pass
type Resolution struct {
	schema.ManifestMeta `yaml:",inline"`
	Committed           bool                                `yaml:"committed"`
	Modules             []*Module                           `yaml:"modules"`
	NewLibraries        []*Library                          `yaml:"new-libraries,omitempty"`
	Warnings            []*resolutionerrors.ResolutionError `yaml:"warnings,omitempty"`
}

type Module struct {
	Target       string        `yaml:"target"`
	Dependencies []*Dependency `yaml:"dependencies,omitempty"`
	LintJars     []string      `yaml:"lint-jars,omitempty"`
}

// Dependency is one edge. Exactly one of Module and Library is set.
type Dependency struct {
	Module           string `yaml:"module,omitempty"`
	Library          string `yaml:"library,omitempty"`
	Scope            string `yaml:"scope"`
	Exported         bool   `yaml:"exported,omitempty"`
	ProductionOnTest bool   `yaml:"production-on-test,omitempty"`
	// Added is false for edges that were already in the graph
	Added bool `yaml:"added"`
}

type Library struct {
	Name        string   `yaml:"name"`
	Kind        string   `yaml:"kind"`
	Level       string   `yaml:"level"`
	Owner       string   `yaml:"owner,omitempty"`
	Binaries    []string `yaml:"binaries,omitempty"`
	Sources     []string `yaml:"sources,omitempty"`
	Javadoc     string   `yaml:"javadoc,omitempty"`
	Annotations []string `yaml:"annotations,omitempty"`
}

func New(result *resolver.Result) *Resolution {
	r := &Resolution{
		ManifestMeta: schema.New(Kind, ApiVersion),
		Committed:    result.Committed,
		Warnings:     result.Warnings,
		NewLibraries: lo.Map(result.NewLibraries, func(l *library.ResolvedLibrary, _ int) *Library { return FromLibrary(l) }),
	}
	for _, m := range result.Modules {
		r.Modules = append(r.Modules, fromModule(m))
	}
	return r
}

func fromModule(m *materializer.ModuleResult) *Module {
	added := lo.SliceToMap(m.Added, func(e projectgraph.Edge) (projectgraph.EdgeKey, bool) {
		return e.Key(), true
	})

	out := &Module{Target: m.Module.String(), LintJars: m.LintJars}
	for _, e := range m.Edges {
		d := &Dependency{
			Scope:            string(e.Scope),
			Exported:         e.Exported,
			ProductionOnTest: e.ProductionOnTest,
			Added:            added[e.Key()],
		}
		if e.Module != nil {
			d.Module = e.Module.String()
		} else {
			d.Library = e.Library.String()
		}
		out.Dependencies = append(out.Dependencies, d)
	}
	return out
}

func FromLibrary(l *library.ResolvedLibrary) *Library {
	out := &Library{
		Name:        l.Identity.Name,
		Kind:        string(l.Kind),
		Level:       string(l.Level),
		Binaries:    slices.Clone(l.BinaryPaths),
		Sources:     slices.Clone(l.SourcePaths),
		Javadoc:     l.DocPath,
		Annotations: slices.Clone(l.AnnotationPaths),
	}
	if !l.Owner.IsZero() {
		out.Owner = l.Owner.String()
	}
	return out
}

// Summary counts what the pass found
type Summary struct {
	Modules      int
	Edges        int
	AddedEdges   int
	NewLibraries int
	Warnings     int
}

func (r *Resolution) Summary() Summary {
	s := Summary{Modules: len(r.Modules), NewLibraries: len(r.NewLibraries), Warnings: len(r.Warnings)}
	for _, m := range r.Modules {
		s.Edges += len(m.Dependencies)
		s.AddedEdges += lo.CountBy(m.Dependencies, func(d *Dependency) bool { return d.Added })
	}
	return s
}

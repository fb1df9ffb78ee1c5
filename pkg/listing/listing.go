// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package listing renders the contents of a project graph as tables
package listing

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"daml.com/x/depgraph/pkg/identity"
	"daml.com/x/depgraph/pkg/library"
	"daml.com/x/depgraph/pkg/projectgraph"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"
)

type Library struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Level    string `json:"level"`
	Owner    string `json:"owner,omitempty"`
	Binaries int    `json:"binaries"`
	Sources  bool   `json:"sources,omitempty"`
	Javadoc  bool   `json:"javadoc,omitempty"`
}

type Libraries []*Library

func NewLibraries(libs []*library.ResolvedLibrary) Libraries {
	r := Libraries(lo.Map(libs, func(l *library.ResolvedLibrary, _ int) *Library {
		row := &Library{
			Name:     l.Identity.Name,
			Kind:     string(l.Kind),
			Level:    string(l.Level),
			Binaries: len(l.BinaryPaths),
			Sources:  len(l.SourcePaths) > 0,
			Javadoc:  l.DocPath != "",
		}
		if !l.Owner.IsZero() {
			row.Owner = l.Owner.String()
		}
		return row
	}))
	r.Sort()
	return r
}

// Sort puts project libraries first, then sorts by name
func (v Libraries) Sort() {
	slices.SortFunc(v, func(a, b *Library) int {
		if a.Level != b.Level {
			if a.Level == string(library.ProjectLevel) {
				return -1
			}
			return 1
		}
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Owner, b.Owner))
	})
}

func (v Libraries) Table() string {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		Headers("NAME", "KIND", "LEVEL", "BINARIES", "ATTACHMENTS").
		Rows(lo.Map(v, func(row *Library, _ int) []string {
			name := row.Name
			level := row.Level
			switch {
			case row.Owner != "":
				level = fmt.Sprintf("%s (%s)", row.Level, row.Owner)
				name = lipgloss.NewStyle().
					Faint(true).
					Italic(true).
					Render(name)
			case row.Kind == string(library.Unknown):
				name = lipgloss.NewStyle().
					Foreground(lipgloss.Color("3")).
					Render(name)
			}

			return []string{
				name,
				row.Kind,
				level,
				strconv.Itoa(row.Binaries),
				attachments(row),
			}
		})...).
		String()
}

func attachments(row *Library) string {
	var a []string
	if row.Sources {
		a = append(a, "sources")
	}
	if row.Javadoc {
		a = append(a, "javadoc")
	}
	if len(a) == 0 {
		return "-"
	}
	return fmt.Sprint(a)
}

type Module struct {
	Target         string `json:"target"`
	ModuleEdges    int    `json:"moduleEdges"`
	LibraryEdges   int    `json:"libraryEdges"`
	ProductionTest bool   `json:"productionOnTest,omitempty"`
}

type Modules []*Module

// NewModules reads every module of graph along with its edge counts
func NewModules(ctx context.Context, graph interface {
	projectgraph.Repository
	projectgraph.Lister
}) (Modules, error) {
	targets, err := graph.Modules(ctx)
	if err != nil {
		return nil, err
	}

	var r Modules
	for _, t := range targets {
		edges, err := graph.ModuleEdges(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("reading edges of %s: %w", t, err)
		}
		r = append(r, newModule(t, edges))
	}
	slices.SortFunc(r, func(a, b *Module) int { return cmp.Compare(a.Target, b.Target) })
	return r, nil
}

func newModule(t identity.ModuleTarget, edges []projectgraph.Edge) *Module {
	return &Module{
		Target:         t.String(),
		ModuleEdges:    lo.CountBy(edges, func(e projectgraph.Edge) bool { return e.Module != nil }),
		LibraryEdges:   lo.CountBy(edges, func(e projectgraph.Edge) bool { return e.Library != nil }),
		ProductionTest: lo.ContainsBy(edges, func(e projectgraph.Edge) bool { return e.ProductionOnTest }),
	}
}

func (v Modules) Table() string {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		Headers("MODULE", "MODULES", "LIBRARIES", "").
		Rows(lo.Map(v, func(row *Module, _ int) []string {
			target := row.Target
			if row.ModuleEdges+row.LibraryEdges == 0 {
				target = lipgloss.NewStyle().
					Faint(true).
					Render(target)
			}
			return []string{
				target,
				strconv.Itoa(row.ModuleEdges),
				strconv.Itoa(row.LibraryEdges),
				lo.Ternary(row.ProductionTest, "production-on-test", ""),
			}
		})...).
		String()
}

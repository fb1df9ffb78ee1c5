// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package projectgraph

import (
	"context"
	"fmt"

	"daml.com/x/depgraph/pkg/identity"
	"daml.com/x/depgraph/pkg/library"
	"daml.com/x/depgraph/pkg/schema"
	"github.com/samber/lo"
)

const (
	SnapshotKind    = "ProjectGraph"
	SnapshotVersion = "v1"
)

var SnapshotMeta = schema.New(SnapshotKind, SnapshotVersion)

// Snapshot is the serialized form of a project graph
type Snapshot struct {
	schema.ManifestMeta `yaml:",inline"`
	Modules             []*ModuleRecord  `yaml:"modules"`
	Libraries           []*LibraryRecord `yaml:"libraries"`
}

type TargetRecord struct {
	BuildRoot   string `yaml:"build-root"`
	ProjectPath string `yaml:"project-path"`
	SourceSet   string `yaml:"source-set"`
}

type ModuleRecord struct {
	TargetRecord `yaml:",inline"`
	Dependencies []*DependencyRecord `yaml:"dependencies,omitempty"`
}

type LibraryRef struct {
	Name  string        `yaml:"name"`
	Level library.Level `yaml:"level"`
	Owner *TargetRecord `yaml:"owner,omitempty"`
}

type DependencyRecord struct {
	Module           *TargetRecord `yaml:"module,omitempty"`
	Library          *LibraryRef   `yaml:"library,omitempty"`
	Scope            Scope         `yaml:"scope"`
	Exported         bool          `yaml:"exported,omitempty"`
	ProductionOnTest bool          `yaml:"production-on-test,omitempty"`
}

type LibraryRecord struct {
	Name        string                `yaml:"name"`
	Coordinates *identity.Coordinates `yaml:"coordinates,omitempty"`
	Kind        library.Kind          `yaml:"kind"`
	Level       library.Level         `yaml:"level"`
	Owner       *TargetRecord         `yaml:"owner,omitempty"`
	Binaries    []string              `yaml:"binaries,omitempty"`
	Sources     []string              `yaml:"sources,omitempty"`
	Doc         string                `yaml:"doc,omitempty"`
	Annotations []string              `yaml:"annotations,omitempty"`
}

func ToTargetRecord(t identity.ModuleTarget) *TargetRecord {
	return &TargetRecord{BuildRoot: t.BuildRoot, ProjectPath: t.ProjectPath, SourceSet: string(t.SourceSet)}
}

func (r *TargetRecord) Target() identity.ModuleTarget {
	if r == nil {
		return identity.ModuleTarget{}
	}
	return identity.NewModuleTarget(r.BuildRoot, r.ProjectPath, identity.SourceSetName(r.SourceSet))
}

func ToLibraryRecord(l *library.ResolvedLibrary) *LibraryRecord {
	r := &LibraryRecord{
		Name:        l.Identity.Name,
		Kind:        l.Kind,
		Level:       l.Level,
		Binaries:    l.BinaryPaths,
		Sources:     l.SourcePaths,
		Doc:         l.DocPath,
		Annotations: l.AnnotationPaths,
	}
	if l.Identity.HasCoordinates() {
		c := l.Identity.Coordinates
		r.Coordinates = &c
	}
	if l.Level == library.ModuleLevel {
		r.Owner = ToTargetRecord(l.Owner)
	}
	return r
}

func (r *LibraryRecord) Library() *library.ResolvedLibrary {
	l := &library.ResolvedLibrary{
		Identity:        identity.LibraryIdentity{Name: r.Name},
		Kind:            r.Kind,
		Level:           r.Level,
		Owner:           r.Owner.Target(),
		BinaryPaths:     r.Binaries,
		SourcePaths:     r.Sources,
		DocPath:         r.Doc,
		AnnotationPaths: r.Annotations,
	}
	if r.Coordinates != nil {
		l.Identity.Coordinates = *r.Coordinates
	}
	return l
}

// TakeSnapshot serializes the store in insertion order
func (m *MemoryStore) TakeSnapshot() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := &Snapshot{ManifestMeta: SnapshotMeta}
	for _, k := range m.libraryOrder {
		s.Libraries = append(s.Libraries, ToLibraryRecord(m.libraries[k]))
	}
	for _, t := range m.moduleOrder {
		rec := &ModuleRecord{TargetRecord: *ToTargetRecord(t)}
		rec.Dependencies = lo.Map(m.modules[t], func(e Edge, _ int) *DependencyRecord {
			d := &DependencyRecord{Scope: e.Scope, Exported: e.Exported, ProductionOnTest: e.ProductionOnTest}
			if e.Module != nil {
				d.Module = ToTargetRecord(*e.Module)
			} else {
				d.Library = &LibraryRef{Name: e.Library.Identity.Name, Level: e.Library.Level}
				if e.Library.Level == library.ModuleLevel {
					d.Library.Owner = ToTargetRecord(e.Library.Owner)
				}
			}
			return d
		})
		s.Modules = append(s.Modules, rec)
	}
	return s
}

// NewMemoryStoreFromSnapshot rebuilds a store, validating the snapshot as one changeset
func NewMemoryStoreFromSnapshot(ctx context.Context, s *Snapshot) (*MemoryStore, error) {
	if err := SnapshotMeta.ValidateSchema(s.ManifestMeta); err != nil {
		return nil, err
	}

	libs := map[LibraryKey]*library.ResolvedLibrary{}
	byRef := map[string]*library.ResolvedLibrary{}
	changes := &Changeset{}
	for _, r := range s.Libraries {
		l := r.Library()
		libs[KeyOf(l)] = l
		byRef[libraryRefKey(r.Name, r.Level, r.Owner)] = l
		changes.Libraries = append(changes.Libraries, l)
	}

	for _, mod := range s.Modules {
		from := mod.Target()
		changes.Modules = append(changes.Modules, from)
		for _, d := range mod.Dependencies {
			e := Edge{From: from, Scope: d.Scope, Exported: d.Exported, ProductionOnTest: d.ProductionOnTest}
			switch {
			case d.Module != nil:
				t := d.Module.Target()
				e.Module = &t
			case d.Library != nil:
				l, ok := byRef[libraryRefKey(d.Library.Name, d.Library.Level, d.Library.Owner)]
				if !ok {
					return nil, fmt.Errorf("module %s depends on unknown library %q", from, d.Library.Name)
				}
				e.Library = l
			default:
				return nil, fmt.Errorf("module %s has a dependency without target", from)
			}
			changes.Edges = append(changes.Edges, e)
		}
	}

	store := NewMemoryStore()
	if err := store.AddEdges(ctx, changes); err != nil {
		return nil, err
	}
	return store, nil
}

func libraryRefKey(name string, level library.Level, owner *TargetRecord) string {
	return fmt.Sprintf("%s|%s|%s", name, level, lo.Ternary(owner != nil, owner.Target().String(), ""))
}

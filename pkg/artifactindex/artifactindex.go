// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package artifactindex

import (
	"slices"
	"strings"

	"daml.com/x/depgraph/pkg/identity"
	"daml.com/x/depgraph/pkg/utils"
	"github.com/samber/lo"
)

// Production is one output file a project is known to produce for one of its source sets
type Production struct {
	File      string
	SourceSet identity.SourceSetName
}

// Index maps the canonical path of a produced file to every module producing it.
// Shared multiplatform source sets legitimately produce the same file for several modules.
type Index struct {
	byFile map[string][]identity.ModuleTarget
}

func New() *Index {
	return &Index{byFile: map[string][]identity.ModuleTarget{}}
}

// Build creates an index from the production pairs of every project of the build
func Build(productions map[identity.ProjectCoordinates][]Production) *Index {
	idx := New()

	// map iteration order is random, keep insertion deterministic
	projects := lo.Keys(productions)
	slices.SortFunc(projects, func(a, b identity.ProjectCoordinates) int {
		if c := strings.Compare(a.BuildRoot, b.BuildRoot); c != 0 {
			return c
		}
		return strings.Compare(a.ProjectPath, b.ProjectPath)
	})

	for _, p := range projects {
		for _, prod := range productions[p] {
			idx.Add(identity.ModuleTarget{BuildRoot: p.BuildRoot, ProjectPath: p.ProjectPath, SourceSet: prod.SourceSet}, prod.File)
		}
	}
	return idx
}

// Add records that target produces file. Adding the same pair twice is a no-op.
func (i *Index) Add(target identity.ModuleTarget, file string) {
	key := utils.CanonicalFilePath(file)
	if key == "" {
		return
	}
	if slices.Contains(i.byFile[key], target) {
		return
	}
	i.byFile[key] = append(i.byFile[key], target)
}

// Lookup returns the modules producing file, or nil when the file is not produced by the build.
// A miss is not an error: the file is then an external library.
func (i *Index) Lookup(file string) []identity.ModuleTarget {
	return slices.Clone(i.byFile[utils.CanonicalFilePath(file)])
}

// Len is the number of distinct files known to the index
func (i *Index) Len() int {
	return len(i.byFile)
}

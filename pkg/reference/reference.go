// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package reference holds the closed set of dependency shapes a build model can hand to the
// expander. The set is sealed: only the variants declared here implement UnresolvedReference.
package reference

import (
	"fmt"

	"daml.com/x/depgraph/pkg/identity"
)

type UnresolvedReference interface {
	fmt.Stringer
	unresolved()
}

// ModuleReference is implemented by the variants pointing at another module of the build
type ModuleReference interface {
	UnresolvedReference
	Project() identity.ProjectCoordinates
	LintJarPath() string
}

// PlainArtifact is a binary with no known module provenance yet
type PlainArtifact struct {
	File        string
	Coordinates *identity.Coordinates
	Android     bool
	Sources     []string
	Javadoc     string
	Annotations []string
}

// PreResolvedModule points at one concrete module/source-set pair
type PreResolvedModule struct {
	BuildRoot   string
	ProjectPath string
	Variant     string
	SourceSet   identity.SourceSetName
	LintJar     string
}

// MultiTargetModule points at whichever source set(s) of a project the build produced for this
// edge. Artifact, when set, is looked up in the artifact index; SourceSet seeds the expansion
// when the artifact is unknown.
type MultiTargetModule struct {
	BuildRoot   string
	ProjectPath string
	Variant     string
	Artifact    string
	SourceSet   identity.SourceSetName
	LintJar     string
}

// KmpAggregateModule refers to the main source set of a multiplatform module
type KmpAggregateModule struct {
	BuildRoot   string
	ProjectPath string
	LintJar     string
}

// Unknown is passed through untouched. File is set when the model still knows a binary for it.
type Unknown struct {
	Raw  string
	File string
}

func (PlainArtifact) unresolved()      {}
func (PreResolvedModule) unresolved()  {}
func (MultiTargetModule) unresolved()  {}
func (KmpAggregateModule) unresolved() {}
func (Unknown) unresolved()            {}

func (p PlainArtifact) String() string {
	if p.Coordinates != nil {
		return fmt.Sprintf("artifact %s (%s)", p.Coordinates, p.File)
	}
	return "artifact " + p.File
}

func (p PreResolvedModule) Target() identity.ModuleTarget {
	return identity.NewModuleTarget(p.BuildRoot, p.ProjectPath, p.SourceSet)
}

func (p PreResolvedModule) Project() identity.ProjectCoordinates {
	return identity.NewProjectCoordinates(p.BuildRoot, p.ProjectPath)
}

func (p PreResolvedModule) LintJarPath() string { return p.LintJar }

func (p PreResolvedModule) String() string {
	return fmt.Sprintf("module %s%s:%s (variant %q)", p.BuildRoot, p.ProjectPath, p.SourceSet, p.Variant)
}

func (m MultiTargetModule) Project() identity.ProjectCoordinates {
	return identity.NewProjectCoordinates(m.BuildRoot, m.ProjectPath)
}

func (m MultiTargetModule) LintJarPath() string { return m.LintJar }

func (m MultiTargetModule) String() string {
	return fmt.Sprintf("multi-target module %s%s (variant %q)", m.BuildRoot, m.ProjectPath, m.Variant)
}

func (k KmpAggregateModule) Project() identity.ProjectCoordinates {
	return identity.NewProjectCoordinates(k.BuildRoot, k.ProjectPath)
}

func (k KmpAggregateModule) LintJarPath() string { return k.LintJar }

func (k KmpAggregateModule) String() string {
	return fmt.Sprintf("kmp module %s%s", k.BuildRoot, k.ProjectPath)
}

func (u Unknown) String() string {
	return "unknown " + u.Raw
}

var (
	_ ModuleReference = PreResolvedModule{}
	_ ModuleReference = MultiTargetModule{}
	_ ModuleReference = KmpAggregateModule{}
)

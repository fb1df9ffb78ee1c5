// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"fmt"
	"slices"
	"strings"

	"daml.com/x/depgraph/pkg/utils"
)

type SourceSetName string

const (
	Main           SourceSetName = "main"
	UnitTest       SourceSetName = "unitTest"
	AndroidTest    SourceSetName = "androidTest"
	TestFixtures   SourceSetName = "testFixtures"
	ScreenshotTest SourceSetName = "screenshotTest"
)

var wellKnown = []SourceSetName{Main, UnitTest, AndroidTest, TestFixtures, ScreenshotTest}

// IsWellKnown is false for arbitrary multiplatform source set names such as "commonMain"
func (s SourceSetName) IsWellKnown() bool {
	return slices.Contains(wellKnown, s)
}

// IsTest reports whether code in this source set is test code.
// Multiplatform source sets follow the "<target>Test" naming convention.
func (s SourceSetName) IsTest() bool {
	switch s {
	case UnitTest, AndroidTest, ScreenshotTest:
		return true
	case Main, TestFixtures:
		return false
	}
	return strings.HasSuffix(string(s), "Test")
}

// ProjectCoordinates identify a project within a (possibly included) build
type ProjectCoordinates struct {
	BuildRoot   string
	ProjectPath string
}

func NewProjectCoordinates(buildRoot, projectPath string) ProjectCoordinates {
	return ProjectCoordinates{BuildRoot: utils.CanonicalPath(buildRoot), ProjectPath: projectPath}
}

func (p ProjectCoordinates) String() string {
	return p.BuildRoot + p.ProjectPath
}

// ModuleTarget uniquely identifies one importable module across the whole build graph,
// including composite builds. BuildRoot is always held in canonical form, so == is structural
// equality that ignores separator, case and symlink differences.
type ModuleTarget struct {
	BuildRoot   string
	ProjectPath string
	SourceSet   SourceSetName
}

func NewModuleTarget(buildRoot, projectPath string, sourceSet SourceSetName) ModuleTarget {
	return ModuleTarget{
		BuildRoot:   utils.CanonicalPath(buildRoot),
		ProjectPath: projectPath,
		SourceSet:   sourceSet,
	}
}

func (m ModuleTarget) Project() ProjectCoordinates {
	return ProjectCoordinates{BuildRoot: m.BuildRoot, ProjectPath: m.ProjectPath}
}

// WithSourceSet returns the sibling module of the same project
func (m ModuleTarget) WithSourceSet(sourceSet SourceSetName) ModuleTarget {
	m.SourceSet = sourceSet
	return m
}

func (m ModuleTarget) IsZero() bool {
	return m == ModuleTarget{}
}

func (m ModuleTarget) String() string {
	return fmt.Sprintf("%s%s:%s", m.BuildRoot, m.ProjectPath, m.SourceSet)
}

// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package buildmodel

import (
	"daml.com/x/depgraph/pkg/identity"
	"daml.com/x/depgraph/pkg/projectgraph"
	"daml.com/x/depgraph/pkg/reference"
)

// Dependency is one classpath entry of a module, in classpath order
type Dependency struct {
	Reference reference.UnresolvedReference
	// Scope is derived from the consuming source set when empty
	Scope    projectgraph.Scope
	Exported bool
}

// Module is everything the build model knows about one importable module
type Module struct {
	Target identity.ModuleTarget
	// Outputs are the files this module produces
	Outputs []string
	// DependsOn lists sibling source sets of the same project this one depends on
	DependsOn []identity.SourceSetName
	// MainSourceSet is the designated main source set of the project, for multiplatform projects
	MainSourceSet identity.SourceSetName
	Dependencies  []Dependency
}

// DefaultScope is Test for test source sets and Compile otherwise
func DefaultScope(consumer identity.SourceSetName) projectgraph.Scope {
	if consumer.IsTest() {
		return projectgraph.Test
	}
	return projectgraph.Compile
}

// ScopeOf returns the effective scope of d as seen from consumer
func (d Dependency) ScopeOf(consumer identity.ModuleTarget) projectgraph.Scope {
	if d.Scope != "" {
		return d.Scope
	}
	return DefaultScope(consumer.SourceSet)
}

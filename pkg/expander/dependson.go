// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package expander

import (
	"slices"

	"daml.com/x/depgraph/pkg/identity"
)

// DependsOnGraph holds the same-project "this source set also depends on that source set"
// links of multiplatform modules
type DependsOnGraph struct {
	edges map[identity.ModuleTarget][]identity.SourceSetName
}

func NewDependsOnGraph() *DependsOnGraph {
	return &DependsOnGraph{edges: map[identity.ModuleTarget][]identity.SourceSetName{}}
}

func (g *DependsOnGraph) Add(module identity.ModuleTarget, dependsOn ...identity.SourceSetName) {
	for _, d := range dependsOn {
		if d == module.SourceSet || slices.Contains(g.edges[module], d) {
			continue
		}
		g.edges[module] = append(g.edges[module], d)
	}
}

// Closure returns the seeds followed by every source set transitively reachable from them,
// breadth first, each module at most once. Cycles and diamonds are fine.
func (g *DependsOnGraph) Closure(seeds ...identity.ModuleTarget) []identity.ModuleTarget {
	seen := map[identity.ModuleTarget]bool{}
	var out []identity.ModuleTarget

	queue := make([]identity.ModuleTarget, 0, len(seeds))
	for _, s := range seeds {
		if !seen[s] {
			seen[s] = true
			queue = append(queue, s)
		}
	}

	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		out = append(out, m)

		for _, d := range g.edges[m] {
			next := m.WithSourceSet(d)
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return out
}

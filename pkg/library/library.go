// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package library

import (
	"fmt"
	"slices"

	"daml.com/x/depgraph/pkg/identity"
)

type Kind string

const (
	Java    Kind = "java"
	Android Kind = "android"
	Unknown Kind = "unknown"
)

// Level says where a library record lives in the project graph
type Level string

const (
	ProjectLevel Level = "project"
	ModuleLevel  Level = "module"
)

type ResolvedLibrary struct {
	Identity        identity.LibraryIdentity
	Kind            Kind
	BinaryPaths     []string
	SourcePaths     []string
	DocPath         string
	AnnotationPaths []string

	Level Level
	// Owner is only set for ModuleLevel libraries
	Owner identity.ModuleTarget
}

func (l *ResolvedLibrary) Validate() error {
	if l.Identity.Name == "" {
		return fmt.Errorf("library has an empty name")
	}
	if (l.Kind == Java || l.Kind == Android) && len(l.BinaryPaths) == 0 {
		return fmt.Errorf("%s library %q has no binary paths", l.Kind, l.Identity)
	}
	switch l.Level {
	case ProjectLevel:
		if !l.Owner.IsZero() {
			return fmt.Errorf("project library %q must not have an owner module", l.Identity)
		}
	case ModuleLevel:
		if l.Owner.IsZero() {
			return fmt.Errorf("module library %q has no owner module", l.Identity)
		}
	default:
		return fmt.Errorf("library %q has invalid level %q", l.Identity, l.Level)
	}
	return nil
}

// SameContent is true when both records describe the same files, regardless of where they live
func (l *ResolvedLibrary) SameContent(other *ResolvedLibrary) bool {
	return l.Identity == other.Identity &&
		l.Kind == other.Kind &&
		slices.Equal(l.BinaryPaths, other.BinaryPaths) &&
		slices.Equal(l.SourcePaths, other.SourcePaths) &&
		l.DocPath == other.DocPath &&
		slices.Equal(l.AnnotationPaths, other.AnnotationPaths)
}

func (l *ResolvedLibrary) String() string {
	if l.Level == ModuleLevel {
		return fmt.Sprintf("%s [module %s]", l.Identity, l.Owner)
	}
	return l.Identity.String()
}

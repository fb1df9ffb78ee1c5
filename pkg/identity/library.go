// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"fmt"
	"strings"
)

// Coordinates are the published (group, artifact, version) of a binary dependency
type Coordinates struct {
	Group    string `yaml:"group"`
	Artifact string `yaml:"artifact"`
	Version  string `yaml:"version"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%s:%s:%s", c.Group, c.Artifact, c.Version)
}

func (c Coordinates) IsZero() bool {
	return c == Coordinates{}
}

// ParseCoordinates parses "group:artifact:version"
func ParseCoordinates(s string) (Coordinates, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Coordinates{}, fmt.Errorf("invalid coordinates %q. Must be of the form 'group:artifact:version'", s)
	}
	return Coordinates{Group: parts[0], Artifact: parts[1], Version: parts[2]}, nil
}

// LibraryIdentity is the interning key of a library.
// Two libraries with equal identity are the same library no matter which module introduced them.
type LibraryIdentity struct {
	Name        string
	Coordinates Coordinates
}

// NewLibraryIdentity derives the identity of a library from its coordinates when known,
// otherwise from the canonical path of its binary
func NewLibraryIdentity(coordinates *Coordinates, canonicalBinaryPath string) LibraryIdentity {
	if coordinates != nil && !coordinates.IsZero() {
		return LibraryIdentity{Name: coordinates.String(), Coordinates: *coordinates}
	}
	return LibraryIdentity{Name: canonicalBinaryPath}
}

func (l LibraryIdentity) HasCoordinates() bool {
	return !l.Coordinates.IsZero()
}

func (l LibraryIdentity) String() string {
	return l.Name
}

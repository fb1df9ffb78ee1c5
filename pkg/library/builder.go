// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package library

import (
	"log/slog"
	"path/filepath"
	"strings"

	"daml.com/x/depgraph/pkg/identity"
	"daml.com/x/depgraph/pkg/reference"
	"daml.com/x/depgraph/pkg/utils"
	"github.com/samber/lo"
)

const (
	sourcesSuffix      = "-sources.jar"
	javadocSuffix      = "-javadoc.jar"
	annotationsArchive = "annotations.zip"
)

type BuildOptions struct {
	// ProbeSiblings looks for <stem>-sources.jar / <stem>-javadoc.jar next to the binary
	// when the model did not provide them
	ProbeSiblings bool
}

// IdentityOf returns the interning key for an artifact
func IdentityOf(a reference.PlainArtifact) identity.LibraryIdentity {
	return identity.NewLibraryIdentity(a.Coordinates, utils.CanonicalFilePath(a.File))
}

// FromArtifact builds a new project-level library record for a binary dependency.
// Attachments given by the model are kept only if they exist on disk.
func FromArtifact(a reference.PlainArtifact, opts BuildOptions) *ResolvedLibrary {
	lib := &ResolvedLibrary{
		Identity:    IdentityOf(a),
		Kind:        lo.Ternary(a.Android, Android, Java),
		BinaryPaths: []string{a.File},
		Level:       ProjectLevel,
	}

	lib.SourcePaths = existing(a.Sources)
	if a.Javadoc != "" && fileExists(a.Javadoc) {
		lib.DocPath = a.Javadoc
	}
	lib.AnnotationPaths = existing(a.Annotations)

	if opts.ProbeSiblings {
		stem := strings.TrimSuffix(a.File, filepath.Ext(a.File))
		if len(lib.SourcePaths) == 0 && fileExists(stem+sourcesSuffix) {
			lib.SourcePaths = []string{stem + sourcesSuffix}
		}
		if lib.DocPath == "" && fileExists(stem+javadocSuffix) {
			lib.DocPath = stem + javadocSuffix
		}
	}

	if a.Android && len(lib.AnnotationPaths) == 0 {
		candidate := filepath.Join(filepath.Dir(a.File), annotationsArchive)
		if fileExists(candidate) {
			lib.AnnotationPaths = []string{candidate}
		}
	}

	return lib
}

// FromUnknown keeps an unknown reference as an opaque library when it still carries a file.
// There is nothing to build otherwise.
func FromUnknown(u reference.Unknown) (*ResolvedLibrary, bool) {
	if u.File == "" {
		return nil, false
	}
	return &ResolvedLibrary{
		Identity:    UnknownIdentityOf(u),
		Kind:        Unknown,
		BinaryPaths: []string{u.File},
		Level:       ProjectLevel,
	}, true
}

// UnknownIdentityOf returns the interning key of an unknown reference carrying a file
func UnknownIdentityOf(u reference.Unknown) identity.LibraryIdentity {
	return identity.NewLibraryIdentity(nil, utils.CanonicalFilePath(u.File))
}

func existing(paths []string) []string {
	return lo.Filter(paths, func(p string, _ int) bool {
		return fileExists(p)
	})
}

func fileExists(p string) bool {
	ok, err := utils.FileExists(p)
	if err != nil {
		slog.Debug("failed to stat library attachment", "path", p, "err", err.Error())
		return false
	}
	return ok
}

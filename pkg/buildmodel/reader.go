// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package buildmodel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"daml.com/x/depgraph/pkg/identity"
	"daml.com/x/depgraph/pkg/projectgraph"
	"daml.com/x/depgraph/pkg/reference"
	"daml.com/x/depgraph/pkg/resolutionerrors"
	"daml.com/x/depgraph/pkg/schema"
	"daml.com/x/depgraph/pkg/utils"
	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/compress/zstd"
)

const (
	BuildModelKind    = "BuildModel"
	BuildModelVersion = "v1"
)

var (
	// models older than this describe module dependencies without a trustworthy source set
	explicitSourceSetsSince = semver.MustParse("8.0.0")
	kmpAggregateSince       = semver.MustParse("8.4.0")
)

const (
	KindArtifact     = "artifact"
	KindModule       = "module"
	KindMultiTarget  = "multiTarget"
	KindKmpAggregate = "kmpAggregate"
	KindUnknown      = "unknown"
)

// Model is a build model as exported by the build tool, ready to be resolved
type Model struct {
	AbsolutePath string
	ModelVersion *semver.Version
	Modules      []Module
}

// IsLegacy is true for models whose module dependencies must be re-expanded from their project
func (m *Model) IsLegacy() bool {
	return m.ModelVersion != nil && m.ModelVersion.LessThan(explicitSourceSetsSince)
}

type modelFile struct {
	schema.ManifestMeta `yaml:",inline"`
	ModelVersion        string        `yaml:"modelVersion"`
	BuildRoot           string        `yaml:"buildRoot"`
	Modules             []*moduleFile `yaml:"modules"`
}

type moduleFile struct {
	BuildRoot     string            `yaml:"buildRoot"`
	ProjectPath   string            `yaml:"projectPath"`
	SourceSet     string            `yaml:"sourceSet"`
	Outputs       []string          `yaml:"outputs"`
	DependsOn     []string          `yaml:"dependsOn"`
	MainSourceSet string            `yaml:"mainSourceSet"`
	Dependencies  []*dependencyFile `yaml:"dependencies"`
}

type dependencyFile struct {
	Kind     string `yaml:"kind"`
	Scope    string `yaml:"scope"`
	Exported bool   `yaml:"exported"`

	// artifact and unknown
	File        string            `yaml:"file"`
	Coordinates *coordinatesField `yaml:"coordinates"`
	Android     bool              `yaml:"android"`
	Sources     []string          `yaml:"sources"`
	Javadoc     string            `yaml:"javadoc"`
	Annotations []string          `yaml:"annotations"`
	Raw         string            `yaml:"raw"`

	// module references
	BuildRoot   string `yaml:"buildRoot"`
	ProjectPath string `yaml:"projectPath"`
	SourceSet   string `yaml:"sourceSet"`
	Variant     string `yaml:"variant"`
	Artifact    string `yaml:"artifact"`
	LintJar     string `yaml:"lintJar"`
}

// coordinatesField accepts both "group:artifact:version" and the expanded mapping
type coordinatesField struct {
	identity.Coordinates
}

func (c *coordinatesField) UnmarshalYAML(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		parsed, err := identity.ParseCoordinates(v)
		if err != nil {
			return err
		}
		c.Coordinates = parsed
	case map[string]any:
		var parsed identity.Coordinates
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return err
		}
		if parsed.Group == "" || parsed.Artifact == "" || parsed.Version == "" {
			return fmt.Errorf("coordinates require 'group', 'artifact' and 'version'")
		}
		c.Coordinates = parsed
	default:
		return fmt.Errorf("unsupported coordinates %v", raw)
	}
	return nil
}

var _ yaml.BytesUnmarshaler = (*coordinatesField)(nil)

// ReadModel reads a build model file. Files ending in .zst are zstd compressed.
// Every problem with the file is a MALFORMED_MODEL error.
func ReadModel(filePath string) (*Model, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, resolutionerrors.NewMalformedModelError(err)
	}
	contents, err := os.ReadFile(abs)
	if err != nil {
		return nil, resolutionerrors.NewMalformedModelError(err)
	}

	if strings.HasSuffix(abs, ".zst") {
		contents, err = decompress(contents)
		if err != nil {
			return nil, resolutionerrors.NewMalformedModelError(fmt.Errorf("decompressing %s: %w", abs, err))
		}
	}

	return ReadModelContents(contents, abs)
}

func decompress(contents []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(contents, nil)
}

// ReadModelContents parses a build model. Relative paths are resolved against the directory of
// absPath.
func ReadModelContents(contents []byte, absPath string) (*Model, error) {
	m, err := readModelContents(contents, absPath)
	if err != nil {
		return nil, resolutionerrors.NewMalformedModelError(err)
	}
	return m, nil
}

func readModelContents(contents []byte, absPath string) (*Model, error) {
	var f modelFile
	if err := yaml.Unmarshal(contents, &f); err != nil {
		return nil, err
	}

	s := schema.New(BuildModelKind, BuildModelVersion)
	if err := s.ValidateSchema(f.ManifestMeta); err != nil {
		return nil, err
	}

	model := &Model{AbsolutePath: absPath}
	if f.ModelVersion != "" {
		v, err := semver.NewVersion(f.ModelVersion)
		if err != nil {
			return nil, fmt.Errorf("invalid 'modelVersion': %w", err)
		}
		model.ModelVersion = v
	}

	r := &modelReader{model: model, baseDir: filepath.Dir(absPath), buildRoot: f.BuildRoot}
	for i, mf := range f.Modules {
		if mf == nil {
			return nil, fmt.Errorf("modules[%d] is empty", i)
		}
		mod, err := r.module(mf)
		if err != nil {
			return nil, fmt.Errorf("modules[%d]: %w", i, err)
		}
		model.Modules = append(model.Modules, mod)
	}
	return model, nil
}

type modelReader struct {
	model     *Model
	baseDir   string
	buildRoot string
}

func (r *modelReader) path(p string) string {
	return utils.ResolvePath(r.baseDir, p)
}

func (r *modelReader) paths(ps []string) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, r.path(p))
	}
	return out
}

func (r *modelReader) root(buildRoot string) (string, error) {
	if buildRoot == "" {
		buildRoot = r.buildRoot
	}
	if buildRoot == "" {
		return "", fmt.Errorf("missing 'buildRoot'")
	}
	return r.path(buildRoot), nil
}

func (r *modelReader) module(mf *moduleFile) (Module, error) {
	if mf.ProjectPath == "" {
		return Module{}, fmt.Errorf("missing 'projectPath'")
	}
	if mf.SourceSet == "" {
		return Module{}, fmt.Errorf("missing 'sourceSet' for %s", mf.ProjectPath)
	}
	root, err := r.root(mf.BuildRoot)
	if err != nil {
		return Module{}, err
	}

	mod := Module{
		Target:        identity.NewModuleTarget(root, mf.ProjectPath, identity.SourceSetName(mf.SourceSet)),
		Outputs:       r.paths(mf.Outputs),
		MainSourceSet: identity.SourceSetName(mf.MainSourceSet),
	}
	for _, d := range mf.DependsOn {
		mod.DependsOn = append(mod.DependsOn, identity.SourceSetName(d))
	}

	for i, df := range mf.Dependencies {
		if df == nil {
			return Module{}, fmt.Errorf("%s: dependencies[%d] is empty", mod.Target, i)
		}
		dep, err := r.dependency(df)
		if err != nil {
			return Module{}, fmt.Errorf("%s: dependencies[%d]: %w", mod.Target, i, err)
		}
		mod.Dependencies = append(mod.Dependencies, dep)
	}
	return mod, nil
}

func (r *modelReader) dependency(df *dependencyFile) (Dependency, error) {
	dep := Dependency{Exported: df.Exported}
	switch projectgraph.Scope(df.Scope) {
	case "", projectgraph.Compile, projectgraph.Test:
		dep.Scope = projectgraph.Scope(df.Scope)
	default:
		return Dependency{}, fmt.Errorf("unsupported scope %q", df.Scope)
	}

	ref, err := r.reference(df)
	if err != nil {
		return Dependency{}, err
	}
	dep.Reference = ref
	return dep, nil
}

func (r *modelReader) reference(df *dependencyFile) (reference.UnresolvedReference, error) {
	switch df.Kind {
	case KindArtifact:
		if df.File == "" {
			return nil, fmt.Errorf("artifact without 'file'")
		}
		a := reference.PlainArtifact{
			File:        r.path(df.File),
			Android:     df.Android,
			Sources:     r.paths(df.Sources),
			Javadoc:     r.path(df.Javadoc),
			Annotations: r.paths(df.Annotations),
		}
		if df.Coordinates != nil {
			a.Coordinates = &df.Coordinates.Coordinates
		}
		return a, nil

	case KindModule:
		root, err := r.moduleReferenceRoot(df)
		if err != nil {
			return nil, err
		}
		if r.model.IsLegacy() {
			// legacy models name the source set the build happened to pick, which is not
			// necessarily the one that produced the artifact
			return reference.MultiTargetModule{
				BuildRoot:   root,
				ProjectPath: df.ProjectPath,
				Variant:     df.Variant,
				Artifact:    r.path(df.Artifact),
				SourceSet:   identity.SourceSetName(df.SourceSet),
				LintJar:     r.path(df.LintJar),
			}, nil
		}
		if df.SourceSet == "" {
			return nil, fmt.Errorf("module reference to %s without 'sourceSet'", df.ProjectPath)
		}
		return reference.PreResolvedModule{
			BuildRoot:   root,
			ProjectPath: df.ProjectPath,
			Variant:     df.Variant,
			SourceSet:   identity.SourceSetName(df.SourceSet),
			LintJar:     r.path(df.LintJar),
		}, nil

	case KindMultiTarget:
		root, err := r.moduleReferenceRoot(df)
		if err != nil {
			return nil, err
		}
		return reference.MultiTargetModule{
			BuildRoot:   root,
			ProjectPath: df.ProjectPath,
			Variant:     df.Variant,
			Artifact:    r.path(df.Artifact),
			SourceSet:   identity.SourceSetName(df.SourceSet),
			LintJar:     r.path(df.LintJar),
		}, nil

	case KindKmpAggregate:
		if r.model.ModelVersion != nil && r.model.ModelVersion.LessThan(kmpAggregateSince) {
			return nil, fmt.Errorf("%q dependencies require modelVersion %s or later, got %s",
				KindKmpAggregate, kmpAggregateSince, r.model.ModelVersion)
		}
		root, err := r.moduleReferenceRoot(df)
		if err != nil {
			return nil, err
		}
		return reference.KmpAggregateModule{
			BuildRoot:   root,
			ProjectPath: df.ProjectPath,
			LintJar:     r.path(df.LintJar),
		}, nil

	case KindUnknown:
		return reference.Unknown{Raw: df.Raw, File: r.path(df.File)}, nil

	case "":
		return nil, fmt.Errorf("missing 'kind'")
	default:
		return nil, fmt.Errorf("unsupported dependency kind %q", df.Kind)
	}
}

func (r *modelReader) moduleReferenceRoot(df *dependencyFile) (string, error) {
	if df.ProjectPath == "" {
		return "", fmt.Errorf("%s reference without 'projectPath'", df.Kind)
	}
	return r.root(df.BuildRoot)
}

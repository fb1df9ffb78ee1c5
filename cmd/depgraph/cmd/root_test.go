// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"daml.com/x/depgraph/pkg/builtincommand"
	"daml.com/x/depgraph/pkg/cli"
	"daml.com/x/depgraph/pkg/depgraphconfig"
	"daml.com/x/depgraph/pkg/listing"
	"daml.com/x/depgraph/pkg/resolution"
	"daml.com/x/depgraph/pkg/resolutionerrors"
	"daml.com/x/depgraph/pkg/testutil"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RootSuite struct {
	suite.Suite
	home string
}

func TestSuite(t *testing.T) {
	suite.Run(t, &RootSuite{})
}

func (suite *RootSuite) SetupTest() {
	suite.home = testutil.WithEnv(suite.T(), depgraphconfig.HomeEnvVar)
}

type output struct {
	stdout, stderr string
}

func runDepgraph(t *testing.T, args ...string) (output, error) {
	var stdout, stderr bytes.Buffer
	inv := &cli.Invocation{
		Stdout: &stdout,
		Stderr: &stderr,
		Stdin:  &bytes.Buffer{},
		OsArgs: append([]string{"depgraph"}, args...),
	}
	cmd, err := RootCmd(inv)
	require.NoError(t, err)
	err = cmd.ExecuteContext(testutil.Context(t))
	return output{stdout: stdout.String(), stderr: stderr.String()}, err
}

func sampleModel(t *testing.T) string {
	return testutil.TestdataPath(t, "models", "sample.yaml")
}

func resolveYaml(t *testing.T, args ...string) *resolution.Resolution {
	out, err := runDepgraph(t, append([]string{"resolve", "--model", sampleModel(t), "-o", "yaml"}, args...)...)
	require.NoError(t, err, out.stderr)

	var r resolution.Resolution
	require.NoError(t, yaml.Unmarshal([]byte(out.stdout), &r))
	return &r
}

func (suite *RootSuite) TestCommandsAreRegistered() {
	t := suite.T()
	inv := &cli.Invocation{OsArgs: []string{"depgraph"}, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	cmd, err := RootCmd(inv)
	require.NoError(t, err)

	names := lo.Map(cmd.Commands(), func(c *cobra.Command, _ int) string { return c.Name() })
	for _, b := range builtincommand.BuiltinCommands {
		assert.Contains(t, names, string(b))
	}
}

func (suite *RootSuite) TestResolveSummary() {
	t := suite.T()

	out, err := runDepgraph(t, "resolve", "--model", sampleModel(t))
	require.NoError(t, err, out.stderr)
	assert.Contains(t, out.stdout, "resolved 6 modules, 8 dependencies (8 new), 2 new libraries, 1 warnings")
	assert.Contains(t, out.stderr, resolutionerrors.UnknownDependency)

	_, err = os.Stat(filepath.Join(suite.home, depgraphconfig.DefaultGraphFile))
	assert.NoError(t, err)

	out, err = runDepgraph(t, "resolve", "--model", sampleModel(t))
	require.NoError(t, err, out.stderr)
	assert.Contains(t, out.stdout, "8 dependencies (0 new), 0 new libraries")
}

func (suite *RootSuite) TestResolveYaml() {
	t := suite.T()

	first := resolveYaml(t)
	assert.True(t, first.Committed)
	assert.Equal(t, resolution.Kind, first.Kind)
	assert.Len(t, first.NewLibraries, 2)

	second := resolveYaml(t)
	assert.Empty(t, second.NewLibraries)
	assert.Zero(t, second.Summary().AddedEdges)
	assert.Equal(t, first.Summary().Edges, second.Summary().Edges)
}

func (suite *RootSuite) TestResolveDryRun() {
	t := suite.T()

	r := resolveYaml(t, "--dry-run")
	assert.False(t, r.Committed)
	assert.Len(t, r.NewLibraries, 2)

	_, err := os.Stat(filepath.Join(suite.home, depgraphconfig.DefaultGraphFile))
	assert.True(t, os.IsNotExist(err))
}

func (suite *RootSuite) TestResolveIntoSqlite() {
	t := suite.T()
	graph := filepath.Join(suite.home, "graph.db")

	r := resolveYaml(t, "--graph", graph)
	assert.True(t, r.Committed)

	out, err := runDepgraph(t, "libraries", "--graph", graph, "-o", "json")
	require.NoError(t, err, out.stderr)
	var libs listing.Libraries
	require.NoError(t, json.Unmarshal([]byte(out.stdout), &libs))
	assert.Equal(t, []string{"com.google.guava:guava:33.0", "junit:junit:4.13"},
		lo.Map(libs, func(l *listing.Library, _ int) string { return l.Name }))
}

func (suite *RootSuite) TestListings() {
	t := suite.T()
	resolveYaml(t)

	out, err := runDepgraph(t, "libraries")
	require.NoError(t, err, out.stderr)
	assert.Contains(t, out.stdout, "com.google.guava:guava:33.0")

	out, err = runDepgraph(t, "modules", "-o", "json")
	require.NoError(t, err, out.stderr)
	var modules listing.Modules
	require.NoError(t, json.Unmarshal([]byte(out.stdout), &modules))
	assert.Len(t, modules, 6)

	out, err = runDepgraph(t, "modules")
	require.NoError(t, err, out.stderr)
	assert.Contains(t, out.stdout, "production-on-test")
}

func (suite *RootSuite) TestResolveFailures() {
	t := suite.T()

	broken := filepath.Join(suite.home, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("kind: BuildModel\n"), 0644))

	out, err := runDepgraph(t, "resolve", "--model", broken)
	require.Error(t, err)
	assert.Contains(t, out.stderr, resolutionerrors.MalformedModel)

	_, err = runDepgraph(t, "resolve")
	assert.Error(t, err)

	_, err = runDepgraph(t, "resolve", "--model", sampleModel(t), "-o", "xml")
	assert.Error(t, err)
}

func (suite *RootSuite) TestVersion() {
	t := suite.T()

	out, err := runDepgraph(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out.stdout, "version: unknown")

	out, err = runDepgraph(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out.stdout, "build: unknown")
}

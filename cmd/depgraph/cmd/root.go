// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"daml.com/x/depgraph/cmd/depgraph/cmd/libraries"
	"daml.com/x/depgraph/cmd/depgraph/cmd/modules"
	"daml.com/x/depgraph/cmd/depgraph/cmd/resolve"
	versionCmd "daml.com/x/depgraph/cmd/depgraph/cmd/version"
	"daml.com/x/depgraph/pkg/cli"
	"daml.com/x/depgraph/pkg/depgraphconfig"
	"daml.com/x/depgraph/pkg/depgraphversion"
	"daml.com/x/depgraph/pkg/logging"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

const (
	graphGroupId = "graph"
	metaGroupId  = "meta"
)

func RootCmd(inv *cli.Invocation) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:          depgraphconfig.AppName,
		Short:        "resolve build model dependencies into a persisted project graph",
		SilenceUsage: true,
	}

	defer inv.SetOutputStreams(cmd)

	if len(inv.OsArgs) == 0 {
		return nil, fmt.Errorf("Invocation.OsArgs must contain at least one entry similar to os.Args")
	}

	cmd.SetArgs(inv.OsArgs[1:])
	cmd.AddGroup(&cobra.Group{
		ID:    graphGroupId,
		Title: "Project Graph Commands",
	})
	cmd.AddGroup(&cobra.Group{
		ID:    metaGroupId,
		Title: "Meta Commands",
	})

	if err := logging.InitLoggingTo(inv.Stderr); err != nil {
		return nil, err
	}

	config, err := depgraphconfig.Get()
	if err != nil {
		return nil, err
	}
	if err := config.EnsureDirs(); err != nil {
		return nil, err
	}

	cmd.AddCommand(
		setCmdGroup(resolve.Cmd(config), graphGroupId),
		setCmdGroup(libraries.Cmd(config), graphGroupId),
		setCmdGroup(modules.Cmd(config), graphGroupId),
		setCmdGroup(versionCmd.Cmd(), metaGroupId),
	)

	version, err := yaml.Marshal(depgraphversion.Get())
	if err != nil {
		return nil, err
	}
	cmd.Version = string(version)
	cmd.SetVersionTemplate("{{.Version}}")

	return cmd, nil
}

func setCmdGroup(cmd *cobra.Command, groupId string) *cobra.Command {
	cmd.GroupID = groupId
	return cmd
}

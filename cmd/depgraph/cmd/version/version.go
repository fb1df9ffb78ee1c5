// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"daml.com/x/depgraph/pkg/builtincommand"
	"daml.com/x/depgraph/pkg/depgraphversion"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

func Cmd() *cobra.Command {
	return &cobra.Command{
		Use:   string(builtincommand.Version),
		Short: "show the depgraph version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(depgraphversion.Get())
			if err != nil {
				return err
			}
			cmd.Print(string(out))
			return nil
		},
	}
}

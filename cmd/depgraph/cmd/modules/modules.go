// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package modules

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"daml.com/x/depgraph/pkg/builtincommand"
	"daml.com/x/depgraph/pkg/depgraphconfig"
	"daml.com/x/depgraph/pkg/graphstore"
	"daml.com/x/depgraph/pkg/listing"
	"github.com/spf13/cobra"
)

func Cmd(config *depgraphconfig.Config) *cobra.Command {
	var graph, output string

	cmd := &cobra.Command{
		Use:   string(builtincommand.Modules),
		Short: "list the modules of the project graph with their dependency counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if graph == "" {
				graph = config.GraphPath
			}

			store, err := graphstore.Open(cmd.Context(), graph)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					slog.Warn("failed to close project graph", "path", graph, "err", err.Error())
				}
			}()

			rows, err := listing.NewModules(cmd.Context(), store)
			if err != nil {
				return err
			}

			switch output {
			case "json":
				bytes, err := json.MarshalIndent(rows, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(bytes))
			case "":
				cmd.Println(rows.Table())
			default:
				return fmt.Errorf("unsupported output %q. Must be 'json'", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&graph, "graph", "g", "", "project graph store, defaults to the configured graph")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format. Only json is supported")
	return cmd
}

// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"daml.com/x/depgraph/pkg/buildmodel"
	"daml.com/x/depgraph/pkg/builtincommand"
	"daml.com/x/depgraph/pkg/depgraphconfig"
	"daml.com/x/depgraph/pkg/graphstore"
	"daml.com/x/depgraph/pkg/library"
	"daml.com/x/depgraph/pkg/resolution"
	"daml.com/x/depgraph/pkg/resolutionerrors"
	"daml.com/x/depgraph/pkg/resolver"
	"daml.com/x/depgraph/pkg/utils"
	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

const (
	OutputSummary = "summary"
	OutputYaml    = "yaml"
)

type options struct {
	model  string
	graph  string
	dryRun bool
	output string
}

func Cmd(config *depgraphconfig.Config) *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:   string(builtincommand.Resolve),
		Short: "resolve a build model into the project graph",
		Long: `resolve a build model into the project graph

	Every dependency of every module in the model becomes an edge to another module or to a
	shared library. The graph is only updated when the whole model resolved; on failure nothing
	is written and the import should be retried from scratch.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != OutputSummary && opts.output != OutputYaml {
				return fmt.Errorf("unsupported output %q. Must be one of (%s, %s)", opts.output, OutputSummary, OutputYaml)
			}
			if opts.graph == "" {
				opts.graph = config.GraphPath
			}

			report, err := run(cmd.Context(), config, opts)
			if err != nil {
				printError(cmd, err)
				return err
			}
			return printReport(cmd, report, opts.output)
		},
	}

	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "path to the build model (.yaml or .yaml.zst)")
	cmd.Flags().StringVarP(&opts.graph, "graph", "g", "", "project graph store, defaults to the configured graph")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "resolve without writing to the project graph")
	cmd.Flags().StringVarP(&opts.output, "output", "o", OutputSummary, "output format, one of (summary, yaml)")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func run(ctx context.Context, config *depgraphconfig.Config, opts options) (*resolution.Resolution, error) {
	model, err := buildmodel.ReadModel(opts.model)
	if err != nil {
		return nil, err
	}

	store, err := graphstore.Open(ctx, opts.graph)
	if err != nil {
		return nil, resolutionerrors.NewRepositoryFailureError(err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.WarnContext(ctx, "failed to close project graph", "path", opts.graph, "err", err.Error())
		}
	}()

	r := resolver.New(store, resolver.Options{
		Library: library.BuildOptions{ProbeSiblings: config.ProbeSiblings()},
		DryRun:  opts.dryRun,
	})
	result, err := r.Resolve(ctx, model.Modules)
	if err != nil {
		return nil, err
	}
	return resolution.New(result), nil
}

func printError(cmd *cobra.Command, err error) {
	var resErr *resolutionerrors.ResolutionError
	if errors.As(err, &resErr) {
		cmd.PrintErrln(color.RedString("resolution failed (%s), nothing was written to the project graph", resErr.Code))
	}
}

func printReport(cmd *cobra.Command, report *resolution.Resolution, output string) error {
	for _, w := range report.Warnings {
		cmd.PrintErrln(color.YellowString("warning: %s", w.Error()))
	}

	if output == OutputYaml {
		bytes, err := yaml.Marshal(report)
		if err != nil {
			return err
		}
		cmd.Print(string(bytes))
		return nil
	}

	printSummary(cmd, report)
	return nil
}

func printSummary(p utils.RawPrinter, report *resolution.Resolution) {
	s := report.Summary()
	p.Printf("%s %d modules, %d dependencies (%s new), %s new libraries, %d warnings\n",
		statusOf(report),
		s.Modules,
		s.Edges,
		color.GreenString("%d", s.AddedEdges),
		color.GreenString("%d", s.NewLibraries),
		s.Warnings,
	)
}

func statusOf(report *resolution.Resolution) string {
	if report.Committed {
		return color.GreenString("resolved")
	}
	return color.CyanString("dry run:")
}

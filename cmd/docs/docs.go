// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	cmd "daml.com/x/depgraph/cmd/depgraph/cmd"
	"daml.com/x/depgraph/pkg/cli"
	"daml.com/x/depgraph/pkg/depgraphconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func main() {
	ctx, cancelFn := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancelFn()

	if err := getDocsCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}

}

func getDocsCmd() *cobra.Command {
	var format string

	docsCmd := &cobra.Command{
		Use:   "docs <output dir>",
		Short: "generate depgraph CLI commands reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]

			var useRst bool
			switch format {
			case "rst":
				useRst = true
			case "md":
				useRst = false
			default:
				return fmt.Errorf("only --format rst or --format md are supported")
			}

			if err := genDocs(dir, useRst); err != nil {
				cmd.SilenceUsage = true
				return err
			}

			fmt.Printf("successfully generated at %s\n", dir)
			return nil
		},
	}

	docsCmd.Flags().StringVar(&format, "format", "", "(required) md or rst")
	_ = docsCmd.MarkFlagRequired("format")

	return docsCmd
}

func genDocs(dir string, useRst bool) error {
	tmp, err := os.MkdirTemp("", "depgraph-docs")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	// keep the user's config out of the generated defaults
	if err := os.Setenv(depgraphconfig.HomeEnvVar, tmp); err != nil {
		return err
	}

	inv := &cli.Invocation{OsArgs: []string{os.Args[0]}, Stdout: os.Stdout, Stderr: os.Stderr, Stdin: os.Stdin}
	root, err := cmd.RootCmd(inv)
	if err != nil {
		return err
	}
	root.DisableAutoGenTag = true

	_, err = os.ReadDir(dir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	for _, c := range root.Commands() {
		c.Hidden = false
	}

	if useRst {
		if err := doc.GenReSTTreeCustom(root, dir, prependRSTHeader, linkHandler); err != nil {
			return err
		}
		fmt.Println("generating index.rst...")
		return generateTOC(dir)

	} else {
		return doc.GenMarkdownTreeCustom(root, dir, prependFrontMatter, func(s string) string {
			return s
		})
	}
}

// add a Jekyll/Just-the-Docs front-matter block
func prependFrontMatter(filename string) string {
	title := titleOf(filename, ".md")
	return fmt.Sprintf(`---
layout: default
title: %s
parent: CLI reference
---

`, title)
}

func prependRSTHeader(filename string) string {
	title := titleOf(filename, ".rst")
	return fmt.Sprintf("%s\n%s\n\n", title, strings.Repeat("=", len(title)))
}

// titleOf turns "depgraph_resolve.md" into "Depgraph Resolve"
func titleOf(filename, ext string) string {
	words := strings.Split(strings.TrimSuffix(filepath.Base(filename), ext), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func linkHandler(name, ref string) string {
	return fmt.Sprintf(":ref:`%s <%s>`", name, ref)
}

func generateTOC(outputDir string) error {
	tocHeader := `.. toctree::
   :maxdepth: 2
   :caption: CLI Reference:

`

	f, err := os.Create(filepath.Join(outputDir, "index.rst"))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(tocHeader); err != nil {
		return err
	}

	commands, err := os.ReadDir(outputDir)
	if err != nil {
		return fmt.Errorf("error reading output directory: %v", err)
	}

	for _, c := range commands {
		if filepath.Ext(c.Name()) == ".rst" && c.Name() != "index.rst" {
			line := fmt.Sprintf("   %s\n", strings.TrimSuffix(c.Name(), ".rst"))
			if _, err := f.WriteString(line); err != nil {
				return err
			}
		}
	}

	return nil
}

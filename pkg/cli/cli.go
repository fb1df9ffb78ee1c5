// Copyright (c) 2017-2025 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// Invocation carries the process streams and arguments of one depgraph run
type Invocation struct {
	Stderr, Stdout io.Writer
	Stdin          io.Reader
	// must contain at least one argument, namely the depgraph binary name, similar to os.Args
	OsArgs []string
}

func (inv *Invocation) SetOutputStreams(cmd *cobra.Command) {
	cmd.SetOut(inv.Stdout)
	cmd.SetErr(inv.Stderr)
	cmd.SetIn(inv.Stdin)

	lo.ForEach(cmd.Commands(), func(sub *cobra.Command, _ int) {
		inv.SetOutputStreams(sub)
	})
}

// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"github.com/spf13/cobra"
)

// RawPrinter is the printing surface of a cobra command, so output helpers can be handed the
// command itself
type RawPrinter interface {
	Print(i ...interface{})
	Println(i ...interface{})
	Printf(format string, i ...interface{})
	PrintErr(i ...interface{})
	PrintErrln(i ...interface{})
	PrintErrf(format string, i ...interface{})
}

var _ RawPrinter = (*cobra.Command)(nil)

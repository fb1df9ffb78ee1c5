// Copyright (c) 2017-2025 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package builtincommand

type BuiltinCommand string

const (
	Resolve   BuiltinCommand = "resolve"
	Libraries BuiltinCommand = "libraries"
	Modules   BuiltinCommand = "modules"
	Version   BuiltinCommand = "version"
)

var BuiltinCommands = []BuiltinCommand{Resolve, Libraries, Modules, Version}

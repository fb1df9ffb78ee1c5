// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package depgraphconfig

const envVarPrefix = "DEPGRAPH_"

const (
	// HomeEnvVar
	// DEPGRAPH_HOME is the absolute path to the `depgraph` home directory
	HomeEnvVar = envVarPrefix + "HOME"

	// LogLevelEnvVar
	// DEPGRAPH_LOG_LEVEL sets the log level.
	// 	Default: info
	//  Possible values: debug info warn error
	LogLevelEnvVar = envVarPrefix + "LOG_LEVEL"

	// GraphEnvVar
	// DEPGRAPH_GRAPH overrides the project graph store.
	// Paths ending in .db or .sqlite are SQLite databases, anything else is a YAML snapshot.
	GraphEnvVar = envVarPrefix + "GRAPH"

	// StatSourcesEnvVar
	// DEPGRAPH_STAT_SOURCES disables looking for -sources.jar and -javadoc.jar next to library binaries
	// the build model did not provide attachments for.
	// 	Default: true
	StatSourcesEnvVar = envVarPrefix + "STAT_SOURCES"
)

// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package depgraphconfig

const (
	AppName          = "depgraph"
	ConfigFilename   = "depgraph-config.yaml"
	DefaultGraphFile = "project-graph.yaml"
)

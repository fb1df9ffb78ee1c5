// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package testdata

import _ "embed"

//go:embed legacy.yaml
var Legacy []byte

//go:embed oldKmpAggregate.yaml
var OldKmpAggregate []byte

//go:embed wrongKind.yaml
var WrongKind []byte

//go:embed unknownDependencyKind.yaml
var UnknownDependencyKind []byte

//go:embed badCoordinates.yaml
var BadCoordinates []byte

//go:embed badScope.yaml
var BadScope []byte

//go:embed missingBuildRoot.yaml
var MissingBuildRoot []byte

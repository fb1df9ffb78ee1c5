// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolutionerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardize(t *testing.T) {
	assert.Nil(t, Standardize(nil))

	mismatch := NewBuildIdMismatchError(errors.New("boom"))
	wrapped := fmt.Errorf("resolving :app: %w", mismatch)
	assert.Same(t, mismatch, Standardize(wrapped))

	unknown := Standardize(errors.New("other"))
	assert.Equal(t, UnknownError, unknown.Code)
}

func TestIsFatal(t *testing.T) {
	assert.True(t, NewBuildIdMismatchError(nil).IsFatal())
	assert.True(t, NewMalformedModelError(nil).IsFatal())
	assert.True(t, NewUnknownError(nil).IsFatal())
	assert.False(t, NewMainSourceSetUnresolvedError(":app", nil).IsFatal())
	assert.False(t, NewModuleNotFoundError(":app", nil).IsFatal())
	assert.False(t, NewUnknownDependencyError(":app", nil).IsFatal())
}

func TestError(t *testing.T) {
	err := NewModuleNotFoundError("/repo:app:main", errors.New(":lib is not part of the graph"))
	assert.Equal(t, "MODULE_NOT_FOUND [/repo:app:main]: :lib is not part of the graph", err.Error())
	assert.Equal(t, "BUILD_ID_MISMATCH", NewBuildIdMismatchError(nil).Error())
}

func TestYaml(t *testing.T) {
	err := NewMainSourceSetUnresolvedError("/repo:app:main", errors.New("no main source set for :kmp"))
	bytes, mErr := yaml.Marshal(err)
	require.NoError(t, mErr)

	var back ResolutionError
	require.NoError(t, yaml.Unmarshal(bytes, &back))
	assert.Equal(t, err.Code, back.Code)
	assert.Equal(t, err.Module, back.Module)
	assert.EqualError(t, back.Cause, "no main source set for :kmp")
}

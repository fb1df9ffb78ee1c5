// Copyright (c) 2017-2025 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolutionerrors

import (
	"errors"
	"fmt"
)

const (
	// fatal: the whole pass is discarded
	BuildIdMismatch   = "BUILD_ID_MISMATCH"
	MalformedModel    = "MALFORMED_MODEL"
	RepositoryFailure = "REPOSITORY_FAILURE"
	UnknownError      = "UNKNOWN_ERROR"

	// recoverable: the edge is dropped and the pass continues
	MainSourceSetUnresolved = "MAIN_SOURCE_SET_UNRESOLVED"
	ModuleNotFound          = "MODULE_NOT_FOUND"
	UnknownDependency       = "UNKNOWN_DEPENDENCY"
)

var recoverable = map[string]bool{
	MainSourceSetUnresolved: true,
	ModuleNotFound:          true,
	UnknownDependency:       true,
}

type ResolutionError struct {
	Code  string
	Cause error
	// Module is the consuming module the problem was found on, if any
	Module string
}

func (r *ResolutionError) Error() string {
	prefix := r.Code
	if r.Module != "" {
		prefix = fmt.Sprintf("%s [%s]", r.Code, r.Module)
	}
	if r.Cause != nil {
		return prefix + ": " + r.Cause.Error()
	}
	return prefix
}

func (r *ResolutionError) IsFatal() bool {
	return !recoverable[r.Code]
}

func (r *ResolutionError) MarshalYAML() (interface{}, error) {
	var causeStr string
	if r.Cause != nil {
		causeStr = r.Cause.Error()
	}
	m := map[string]interface{}{
		"code":  r.Code,
		"cause": causeStr,
	}
	if r.Module != "" {
		m["module"] = r.Module
	}
	return m, nil
}

func (r *ResolutionError) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var aux struct {
		Code   string `yaml:"code"`
		Cause  string `yaml:"cause"`
		Module string `yaml:"module"`
	}
	if err := unmarshal(&aux); err != nil {
		return err
	}
	r.Code = aux.Code
	r.Module = aux.Module
	if aux.Cause != "" {
		r.Cause = errors.New(aux.Cause)
	}
	return nil
}

func (r *ResolutionError) Unwrap() error {
	return r.Cause
}

var _ error = (*ResolutionError)(nil)

func NewBuildIdMismatchError(cause error) *ResolutionError {
	return &ResolutionError{
		Code:  BuildIdMismatch,
		Cause: cause,
	}
}

func NewMalformedModelError(cause error) *ResolutionError {
	return &ResolutionError{
		Code:  MalformedModel,
		Cause: cause,
	}
}

func NewRepositoryFailureError(cause error) *ResolutionError {
	return &ResolutionError{
		Code:  RepositoryFailure,
		Cause: cause,
	}
}

func NewMainSourceSetUnresolvedError(module string, cause error) *ResolutionError {
	return &ResolutionError{
		Code:   MainSourceSetUnresolved,
		Cause:  cause,
		Module: module,
	}
}

func NewModuleNotFoundError(module string, cause error) *ResolutionError {
	return &ResolutionError{
		Code:   ModuleNotFound,
		Cause:  cause,
		Module: module,
	}
}

func NewUnknownDependencyError(module string, cause error) *ResolutionError {
	return &ResolutionError{
		Code:   UnknownDependency,
		Cause:  cause,
		Module: module,
	}
}

func NewUnknownError(cause error) *ResolutionError {
	return &ResolutionError{
		Code:  UnknownError,
		Cause: cause,
	}
}

func Standardize(err error) *ResolutionError {
	if err == nil {
		return nil
	}

	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		return resErr
	}

	return NewUnknownError(err)
}

// Copyright (c) 2017-2025 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var windowsVolume = regexp.MustCompile(`^[A-Za-z]:/`)

// ResolvePath makes p absolute against basePath. Paths that are already absolute on any OS
// are returned as is.
func ResolvePath(basePath, p string) string {
	if p == "" || IsAbsPath(p) {
		return p
	}
	return filepath.Clean(filepath.Join(basePath, filepath.FromSlash(p)))
}

// IsAbsPath reports whether p is absolute on this OS, or is a drive letter path recorded on Windows
func IsAbsPath(p string) bool {
	return filepath.IsAbs(p) || isAbsSlashed(strings.ReplaceAll(p, `\`, "/"))
}

// CanonicalPath is the canonical form of a build root. On top of CanonicalFilePath the result is
// case folded, so the same build opened through differently cased paths is one build.
func CanonicalPath(p string) string {
	return strings.ToLower(CanonicalFilePath(p))
}

// CanonicalFilePath normalizes a file path so that equal locations compare equal as strings:
//   - relative paths are made absolute against the working directory
//   - symlinks are resolved when the path exists on this machine
//   - backslashes become forward slashes
//
// Case is preserved: "Foo.jar" and "foo.jar" are different binaries on a case sensitive
// filesystem. Paths recorded on another OS (e.g. "C:\repo") are kept as absolute paths and only
// normalized textually.
func CanonicalFilePath(p string) string {
	if p == "" {
		return ""
	}

	slashed := strings.ReplaceAll(p, `\`, "/")
	if !isAbsSlashed(slashed) {
		if abs, err := filepath.Abs(filepath.FromSlash(slashed)); err == nil {
			slashed = filepath.ToSlash(abs)
		}
	}

	if resolved, err := filepath.EvalSymlinks(filepath.FromSlash(slashed)); err == nil {
		slashed = filepath.ToSlash(resolved)
	}

	return path.Clean(slashed)
}

func isAbsSlashed(p string) bool {
	return strings.HasPrefix(p, "/") || windowsVolume.MatchString(p)
}

func FileExists(path string) (bool, error) {
	s, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !s.IsDir(), nil
}

func DirExists(path string) (bool, error) {
	s, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return s.IsDir(), nil
}

func EnsureDirs(dirs ...string) error {
	for _, d := range dirs {
		if err := os.MkdirAll(d, os.ModePerm); err != nil && !os.IsExist(err) {
			return err
		}
	}
	return nil
}

// WriteFileAtomic writes data to a temp file next to dst and renames it into place,
// so readers observe either the old or the new contents
func WriteFileAtomic(dst string, data []byte, perm os.FileMode) error {
	if err := EnsureDirs(filepath.Dir(dst)); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, perm); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}

// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !unix

package common

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

func IsExecutable(path string) bool {
	return isExecutable(path)
}

func isExecutable(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return false
	}
	if runtime.GOOS == "windows" {
		return strings.EqualFold(filepath.Ext(path), ".exe")
	}
	return fi.Mode().Perm()&0111 != 0
}

func executableNames(file string) []string {
	if runtime.GOOS == "windows" && filepath.Ext(file) == "" {
		return []string{file + ".exe", file}
	}
	return []string{file}
}

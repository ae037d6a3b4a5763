// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

package common

import "golang.org/x/sys/unix"

// IsExecutable reports whether path names a regular file the current user
// may execute.
func IsExecutable(path string) bool {
	return isExecutable(path)
}

func isExecutable(path string) bool {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return false
	}
	if st.Mode&unix.S_IFMT != unix.S_IFREG {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}

func executableNames(file string) []string {
	return []string{file}
}

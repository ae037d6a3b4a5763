// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package common

import (
	"fmt"
	"runtime"
)

type Platform struct {
	GOOS, GOARCH string
}

func (p Platform) String() string {
	return fmt.Sprintf("%s/%s", p.GOOS, p.GOARCH)
}

// triples maps platforms to the target triples used in the file names of
// prebuilt release archives.
var triples = map[Platform]string{
	{"linux", "amd64"}:   "x86_64-unknown-linux-gnu",
	{"linux", "arm64"}:   "aarch64-unknown-linux-gnu",
	{"darwin", "amd64"}:  "x86_64-apple-darwin",
	{"darwin", "arm64"}:  "aarch64-apple-darwin",
	{"windows", "amd64"}: "x86_64-pc-windows-msvc",
}

// Triple returns the target triple for p, if prebuilt binaries are
// published for it.
func (p Platform) Triple() (string, bool) {
	t, ok := triples[p]
	return t, ok
}

// OSName is the runner OS name used as the default cache key prefix.
func (p Platform) OSName() string {
	switch p.GOOS {
	case "linux":
		return "Linux"
	case "darwin":
		return "macOS"
	case "windows":
		return "Windows"
	}
	return p.GOOS
}

func CurrentPlatform() Platform {
	return Platform{
		GOOS:   runtime.GOOS,
		GOARCH: runtime.GOARCH,
	}
}

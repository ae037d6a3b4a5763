// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command perfcheck builds a command-line tool in release mode, times it
// against a fixture with a benchmarking utility and reports its size.
package main

import (
	"os"

	"golang.org/x/perfcheck/cli/subcommands"
)

func main() {
	subcommands.Register(&runCmd{})
	subcommands.Register(&keyCmd{})
	subcommands.Register(&getCmd{})
	subcommands.Register(&sizeCmd{})
	os.Exit(subcommands.Run())
}

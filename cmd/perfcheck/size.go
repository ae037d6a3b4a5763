// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"golang.org/x/perfcheck/pipeline"
)

const sizeUsage = `Prints the size of a file in bytes.

Usage: %s size <file>
`

type sizeCmd struct {
	stdout io.Writer
}

func (*sizeCmd) Name() string     { return "size" }
func (*sizeCmd) Synopsis() string { return "Prints the size of a file." }
func (*sizeCmd) PrintUsage(w io.Writer, base string) {
	fmt.Fprintf(w, sizeUsage, base)
}

func (*sizeCmd) SetFlags(*flag.FlagSet) {}

func (c *sizeCmd) Run(_ context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one file")
	}
	_, err := pipeline.ReportSize(stdout(c.stdout), args[0])
	return err
}

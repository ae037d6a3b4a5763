// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"golang.org/x/perfcheck/cache"
	"golang.org/x/perfcheck/common"
	"golang.org/x/perfcheck/common/log"
)

const keyUsage = `Prints the cache key for the lock files of a source directory.

Usage: %s key [flags] <config>
`

type keyCmd struct {
	workDir string
	files   bool

	stdout io.Writer
}

func (*keyCmd) Name() string     { return "key" }
func (*keyCmd) Synopsis() string { return "Prints the cache key." }
func (*keyCmd) PrintUsage(w io.Writer, base string) {
	fmt.Fprintf(w, keyUsage, base)
}

func (c *keyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.workDir, "work-dir", "", "source directory, overriding source.dir in the configuration")
	f.BoolVar(&c.files, "files", false, "also print the matched lock files")
}

func (c *keyCmd) Run(_ context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one configuration file, got %d arguments", len(args))
	}
	cfg, err := common.ReadConfigFile(args[0])
	if err != nil {
		return err
	}
	dir := cfg.Source.Dir
	if c.workDir != "" {
		dir = c.workDir
	}
	digest, files, err := cache.HashFiles(dir, cfg.Cache.LockFiles)
	if err != nil {
		return err
	}
	log.Printf("Hashed %d lock files in %s", len(files), dir)
	w := stdout(c.stdout)
	fmt.Fprintln(w, cache.Key(cfg.Cache.KeyPrefix, digest))
	if c.files {
		for _, f := range files {
			fmt.Fprintf(w, "\t%s\n", f)
		}
	}
	return nil
}

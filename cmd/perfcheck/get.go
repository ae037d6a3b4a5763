// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"golang.org/x/perfcheck/common/gcs"
	"golang.org/x/perfcheck/common/log"
	"golang.org/x/perfcheck/fetch"
)

const getUsage = `Downloads a fixture.

Supported URL schemes are http, https, gs and file. If dst is omitted, the
last element of the URL path is used.

Usage: %s get [flags] <url> [dst]
`

type getCmd struct {
	auth   gcs.AuthOption
	sha256 string
}

func (*getCmd) Name() string     { return "get" }
func (*getCmd) Synopsis() string { return "Downloads a fixture." }
func (*getCmd) PrintUsage(w io.Writer, base string) {
	fmt.Fprintf(w, getUsage, base)
}

func (c *getCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.auth, "auth", fmt.Sprintf("authentication method for gs:// URLs (options: %s)", gcs.AuthOptions()))
	f.StringVar(&c.sha256, "sha256", "", "expected SHA-256 of the download, in hex")
}

func (c *getCmd) Run(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("expected a URL and an optional destination")
	}
	url := args[0]
	dst := fetch.FileName(url)
	if len(args) == 2 {
		dst = args[1]
	}
	fx, err := fetch.Get(ctx, url, dst, &fetch.Options{SHA256: c.sha256, Auth: c.auth})
	if err != nil {
		return err
	}
	log.Printf("Downloaded %s to %s: %d bytes, sha256 %s", url, fx.Path, fx.Size, fx.SHA256)
	return nil
}

// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package install downloads prebuilt binaries of named packages into a
// directory that the pipeline places on PATH.
package install

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"runtime"

	"golang.org/x/perfcheck/common"
	"golang.org/x/perfcheck/common/log"
	"golang.org/x/perfcheck/fetch"
)

// Installer installs packages from a Registry into BinDir.
type Installer struct {
	// BinDir receives the installed executables.
	BinDir   string
	Registry Registry
	Platform common.Platform

	// Client is used for downloads. Nil means http.DefaultClient.
	Client *http.Client
}

// Install installs each named package in order, stopping at the first
// failure. A binary already present in BinDir, for example one restored
// from the cache, is reused.
func (in *Installer) Install(ctx context.Context, names ...string) ([]string, error) {
	if err := os.MkdirAll(in.BinDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("creating %s: %v", in.BinDir, err)
	}
	var installed []string
	for _, name := range names {
		pkg, err := in.Registry.Lookup(name)
		if err != nil {
			return installed, err
		}
		bin, err := in.installOne(ctx, pkg)
		if err != nil {
			return installed, fmt.Errorf("installing %s: %w", name, err)
		}
		installed = append(installed, bin)
	}
	return installed, nil
}

func (in *Installer) binaryPath(pkg *Package) string {
	name := pkg.Binary
	if in.Platform.GOOS == "windows" && filepath.Ext(name) == "" {
		name += ".exe"
	}
	return filepath.Join(in.BinDir, name)
}

func (in *Installer) installOne(ctx context.Context, pkg *Package) (string, error) {
	dst := in.binaryPath(pkg)
	if common.IsExecutable(dst) {
		log.Printf("%s already installed at %s", pkg.Name, dst)
		return dst, nil
	}
	u, err := pkg.ArchiveURL(in.Platform)
	if err != nil {
		return "", err
	}
	log.Printf("Downloading %s %s from %s", pkg.Name, pkg.Version, u)
	rc, err := fetch.Open(ctx, u, &fetch.Options{Client: in.Client})
	if err != nil {
		return "", err
	}
	defer rc.Close()
	if err := extractBinary(rc, path.Base(filepath.ToSlash(dst)), dst); err != nil {
		return "", fmt.Errorf("extracting %s: %w", u, err)
	}
	log.Printf("Installed %s to %s", pkg.Name, dst)
	return dst, nil
}

// extractBinary copies the first regular file in the tar.gz stream r whose
// base name is name to dst, marking it executable.
func extractBinary(r io.Reader, name, dst string) error {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return fmt.Errorf("archive contains no file named %s", name)
		} else if err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeReg || path.Base(hdr.Name) != name {
			continue
		}
		tmp, err := os.CreateTemp(filepath.Dir(dst), name+".*")
		if err != nil {
			return err
		}
		if _, err := io.Copy(tmp, tr); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return err
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			return err
		}
		if runtime.GOOS != "windows" {
			if err := os.Chmod(tmp.Name(), 0755); err != nil {
				os.Remove(tmp.Name())
				return err
			}
		}
		return os.Rename(tmp.Name(), dst)
	}
}

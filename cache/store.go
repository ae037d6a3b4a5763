// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cache computes lock-file keyed cache keys and saves and restores
// cache entries: the dependency and build directories captured in a single
// compressed archive named after the key.
package cache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/perfcheck/common/fileutil"
)

// ErrNotInCache is returned by Restore when no entry matches.
var ErrNotInCache = errors.New("not found in cache")

// Store holds cache entries. Entries are immutable: saving under a key
// that already exists is a no-op.
type Store interface {
	// Restore extracts the entry saved for key and the same paths, in
	// the same order. It returns ErrNotInCache if there is no such entry.
	Restore(ctx context.Context, key string, paths []string) error

	// Save archives paths under key. Paths that do not exist are skipped.
	Save(ctx context.Context, key string, paths []string) error

	// String describes the store's location for logs.
	String() string
}

// archiveName names the entry for key and paths. Entries record paths by
// position, so the name includes a digest of the path list: a changed list
// never restores an entry saved for a different one.
func archiveName(key string, paths []string) string {
	h := sha256.New()
	for _, p := range paths {
		fmt.Fprintf(h, "%s\n", filepath.ToSlash(p))
	}
	return fmt.Sprintf("%s-%s.tar.gz", key, canonicalizeHash(h)[:16])
}

// DefaultDir is the default DirStore location, under the user cache directory.
func DefaultDir() string {
	cache, err := os.UserCacheDir()
	if err == nil {
		cache = filepath.Join(cache, "perfcheck")
	}
	return cache
}

// ResolvePaths expands "~/" and makes every path absolute relative to dir.
func ResolvePaths(dir string, paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		e, err := fileutil.ExpandHome(p)
		if err != nil {
			return nil, fmt.Errorf("expanding %s: %v", p, err)
		}
		if !filepath.IsAbs(e) {
			e = filepath.Join(dir, e)
		}
		out = append(out, filepath.Clean(e))
	}
	return out, nil
}

// Disabled is a Store that never holds an entry.
type Disabled struct{}

func (Disabled) Restore(context.Context, string, []string) error { return ErrNotInCache }
func (Disabled) Save(context.Context, string, []string) error    { return nil }
func (Disabled) String() string                                  { return "disabled" }

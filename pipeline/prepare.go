// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/perfcheck/cache"
	"golang.org/x/perfcheck/common/log"
	"golang.org/x/perfcheck/source"
)

// Prepare checks out the source and restores the cache entry matching the
// lock files. A cache miss only means a slower build.
type Prepare struct{}

func (Prepare) Name() string { return "prepare" }

func (Prepare) Run(ctx context.Context, st *State) error {
	cfg := st.Config
	co, err := source.Get(ctx, source.Spec{
		Repo:     cfg.Source.Repo,
		Ref:      cfg.Source.Ref,
		Dir:      cfg.Source.Dir,
		Progress: st.Stderr(),
	})
	if err != nil {
		return err
	}
	st.Checkout = co

	digest, files, err := cache.HashFiles(co.Dir, cfg.Cache.LockFiles)
	if err != nil {
		return fmt.Errorf("computing cache key: %w", err)
	}
	st.CacheKey = cache.Key(cfg.Cache.KeyPrefix, digest)
	log.Printf("Cache key %s (from %d lock files)", st.CacheKey, len(files))

	st.CachePaths, err = cache.ResolvePaths(co.Dir, cfg.Cache.Paths)
	if err != nil {
		return err
	}
	log.Printf("Checking cache: %s", st.Store)
	err = st.Store.Restore(ctx, st.CacheKey, st.CachePaths)
	switch {
	case errors.Is(err, cache.ErrNotInCache):
		log.Printf("Cache miss for %s", st.CacheKey)
	case err != nil:
		return fmt.Errorf("restoring cache: %w", err)
	default:
		st.CacheHit = true
		log.Printf("Cache restored from key %s", st.CacheKey)
	}
	return nil
}

// Post saves a new entry under the same key if the restore missed.
func (Prepare) Post(ctx context.Context, st *State) error {
	if st.CacheHit || st.CacheKey == "" {
		return nil
	}
	log.Printf("Saving cache entry %s to %s", st.CacheKey, st.Store)
	return st.Store.Save(ctx, st.CacheKey, st.CachePaths)
}

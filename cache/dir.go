// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cache

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DirStore keeps entries as files in a local directory.
type DirStore struct {
	Dir string
}

func (s *DirStore) String() string { return s.Dir }

func (s *DirStore) Restore(ctx context.Context, key string, paths []string) error {
	f, err := os.Open(filepath.Join(s.Dir, archiveName(key, paths)))
	if os.IsNotExist(err) {
		return ErrNotInCache
	} else if err != nil {
		return fmt.Errorf("failed to check cache: %v", err)
	}
	defer f.Close()
	if err := extractArchive(f, paths); err != nil {
		return fmt.Errorf("restoring %s: %w", f.Name(), err)
	}
	return nil
}

func (s *DirStore) Save(ctx context.Context, key string, paths []string) (err error) {
	if err := os.MkdirAll(s.Dir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create cache directory: %v", err)
	}
	dst := filepath.Join(s.Dir, archiveName(key, paths))
	if _, err := os.Stat(dst); err == nil {
		return nil
	}
	// Write to a temporary file first so a failed save never leaves a
	// truncated entry behind under the real name.
	tmp, err := os.CreateTemp(s.Dir, archiveName(key, paths)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	ar := newArchiveReader(ctx, paths)
	_, err = io.Copy(tmp, ar)
	if cerr := ar.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

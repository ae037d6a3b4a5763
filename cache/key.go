// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cache

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

func canonicalizeHash(h hash.Hash) string {
	return fmt.Sprintf("%x", h.Sum(nil))
}

func HashStream(r io.Reader) (string, error) {
	hash := sha256.New()
	if _, err := io.Copy(hash, r); err != nil {
		return "", err
	}
	return canonicalizeHash(hash), nil
}

func HashFile(name string) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return HashStream(f)
}

// MatchLockFiles returns the slash-separated paths, relative to dir, of
// the files matching any of patterns, in lexical order. A pattern that
// begins with "**/" matches its remainder against the trailing path
// elements at any depth; other patterns are matched against the whole
// relative path.
func MatchLockFiles(dir string, patterns []string) ([]string, error) {
	for _, p := range patterns {
		if _, err := path.Match(strings.TrimPrefix(p, "**/"), ""); err != nil {
			return nil, fmt.Errorf("bad lock file pattern %q: %v", p, err)
		}
	}
	var matches []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, pat := range patterns {
			if matchLockFile(pat, rel) {
				matches = append(matches, rel)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func matchLockFile(pattern, rel string) bool {
	if !strings.HasPrefix(pattern, "**/") {
		ok, _ := path.Match(pattern, rel)
		return ok
	}
	pattern = strings.TrimPrefix(pattern, "**/")
	n := strings.Count(pattern, "/") + 1
	elems := strings.Split(rel, "/")
	if len(elems) < n {
		return false
	}
	ok, _ := path.Match(pattern, strings.Join(elems[len(elems)-n:], "/"))
	return ok
}

// HashFiles computes the digest identifying the lock files under dir that
// match patterns: the SHA-256 of the concatenated SHA-256 sums of each
// file, in lexical path order. It is an error for nothing to match.
func HashFiles(dir string, patterns []string) (digest string, files []string, err error) {
	files, err = MatchLockFiles(dir, patterns)
	if err != nil {
		return "", nil, err
	}
	if len(files) == 0 {
		return "", nil, fmt.Errorf("no lock files matching %s in %s", strings.Join(patterns, ", "), dir)
	}
	outer := sha256.New()
	for _, f := range files {
		inner := sha256.New()
		r, err := os.Open(filepath.Join(dir, filepath.FromSlash(f)))
		if err != nil {
			return "", nil, err
		}
		_, err = io.Copy(inner, r)
		r.Close()
		if err != nil {
			return "", nil, fmt.Errorf("hashing %s: %v", f, err)
		}
		outer.Write(inner.Sum(nil))
	}
	return canonicalizeHash(outer), files, nil
}

// Key joins a prefix and a lock-file digest into a cache key.
func Key(prefix, digest string) string {
	return fmt.Sprintf("%s-%s", prefix, digest)
}

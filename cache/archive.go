// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cache

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/perfcheck/common/log"
	"golang.org/x/sync/errgroup"
)

// Entries are named "<index>/<path relative to root>", where index is the
// root's position in the list passed to Save.

func writeArchive(ctx context.Context, w io.Writer, roots []string) error {
	gw := gzip.NewWriter(w)
	tw := tar.NewWriter(gw)
	for i, root := range roots {
		if _, err := os.Lstat(root); os.IsNotExist(err) {
			log.Printf("Cache path %s does not exist, skipping", root)
			continue
		} else if err != nil {
			return err
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			link := ""
			if info.Mode()&os.ModeSymlink != 0 {
				if link, err = os.Readlink(path); err != nil {
					return err
				}
			}
			hdr, err := tar.FileInfoHeader(info, link)
			if err != nil {
				return err
			}
			hdr.Name = strconv.Itoa(i) + "/" + filepath.ToSlash(rel)
			if info.IsDir() {
				hdr.Name += "/"
			}
			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				return nil
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			_, err = io.Copy(tw, f)
			return err
		})
		if err != nil {
			return fmt.Errorf("archiving %s: %w", root, err)
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gw.Close()
}

// archiveReader streams an archive produced concurrently into a pipe.
type archiveReader struct {
	pr *io.PipeReader
	g  *errgroup.Group
}

func newArchiveReader(ctx context.Context, roots []string) *archiveReader {
	pr, pw := io.Pipe()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := writeArchive(ctx, pw, roots)
		pw.CloseWithError(err)
		return err
	})
	return &archiveReader{pr: pr, g: g}
}

func (a *archiveReader) Read(p []byte) (int, error) {
	return a.pr.Read(p)
}

// Close stops the producer if it is still running and returns its error.
func (a *archiveReader) Close() error {
	a.pr.Close()
	return a.g.Wait()
}

// extractArchive restores an archive written by writeArchive into roots.
// Entries may not leave their root, either by name or through a symbolic
// link. Links are created after every other entry so that no entry is
// written through a link from the same archive.
func extractArchive(r io.Reader, roots []string) error {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer gr.Close()

	type link struct {
		path, target string
	}
	var links []link

	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		idx, rel, ok := strings.Cut(hdr.Name, "/")
		if !ok {
			return fmt.Errorf("malformed cache entry name %q", hdr.Name)
		}
		i, err := strconv.Atoi(idx)
		if err != nil || i < 0 || i >= len(roots) {
			return fmt.Errorf("cache entry %q does not belong to any cache path", hdr.Name)
		}
		rel = filepath.FromSlash(strings.TrimSuffix(rel, "/"))
		if rel != "" && !filepath.IsLocal(rel) {
			return fmt.Errorf("cache entry %q escapes its cache path", hdr.Name)
		}
		if err := checkNoLinks(roots[i], rel); err != nil {
			return fmt.Errorf("cache entry %q: %w", hdr.Name, err)
		}
		fullpath := filepath.Join(roots[i], rel)
		mode := os.FileMode(hdr.Mode).Perm()
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(fullpath, mode|0700); err != nil {
				return err
			}
		case tar.TypeSymlink:
			links = append(links, link{fullpath, hdr.Linkname})
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(fullpath), os.ModePerm); err != nil {
				return err
			}
			// Never write through an existing link at the entry itself.
			if fi, err := os.Lstat(fullpath); err == nil && fi.Mode()&os.ModeSymlink != 0 {
				if err := os.Remove(fullpath); err != nil {
					return err
				}
			}
			f, err := os.OpenFile(fullpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			if err := os.Chtimes(fullpath, hdr.ModTime, hdr.ModTime); err != nil {
				return err
			}
		default:
			log.Printf("Skipping cache entry %s of unsupported type %c", hdr.Name, hdr.Typeflag)
		}
	}
	for _, l := range links {
		if err := os.MkdirAll(filepath.Dir(l.path), os.ModePerm); err != nil {
			return err
		}
		os.Remove(l.path)
		if err := os.Symlink(l.target, l.path); err != nil {
			return err
		}
	}
	return nil
}

// checkNoLinks reports an error if any directory between root and the
// parent of rel is a symbolic link.
func checkNoLinks(root, rel string) error {
	dir := root
	elems := strings.Split(rel, string(filepath.Separator))
	for _, e := range elems[:len(elems)-1] {
		dir = filepath.Join(dir, e)
		fi, err := os.Lstat(dir)
		if os.IsNotExist(err) {
			return nil
		} else if err != nil {
			return err
		}
		if fi.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("parent %s is a symbolic link", dir)
		}
	}
	return nil
}

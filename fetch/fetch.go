// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fetch retrieves single remote files, such as benchmark fixtures
// and release archives, into the local filesystem.
package fetch

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/perfcheck/common/gcs"
	"golang.org/x/perfcheck/common/log"
)

// ErrChecksum is returned when a download does not match its expected SHA-256.
var ErrChecksum = errors.New("checksum mismatch")

// Fixture describes a file retrieved by Get.
type Fixture struct {
	Path   string
	Size   int64
	SHA256 string
}

// Options configures a download.
type Options struct {
	// SHA256, if set, is the expected hex digest of the content.
	SHA256 string

	// Auth selects credentials for gs:// URLs.
	Auth gcs.AuthOption

	// Client is used for http and https URLs. Nil means
	// http.DefaultClient.
	Client *http.Client
}

// Open returns a reader for the content at rawURL. Any non-2xx HTTP
// status is an error.
func Open(ctx context.Context, rawURL string, opts *Options) (io.ReadCloser, error) {
	if opts == nil {
		opts = &Options{}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %v", rawURL, err)
	}
	switch u.Scheme {
	case "http", "https":
		return openHTTP(ctx, rawURL, opts.Client)
	case "gs":
		return openGCS(ctx, rawURL, opts.Auth)
	case "file":
		return os.Open(filepath.FromSlash(u.Path))
	case "":
		return nil, fmt.Errorf("%q is not an absolute URL", rawURL)
	}
	return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
}

func openHTTP(ctx context.Context, rawURL string, client *http.Client) (io.ReadCloser, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	log.CommandPrintf("curl -fsSL -O %s", rawURL)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", rawURL, resp.Status)
	}
	return resp.Body, nil
}

type gcsReader struct {
	io.ReadCloser
	close func() error
}

func (r *gcsReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.close(); err == nil {
		err = cerr
	}
	return err
}

func openGCS(ctx context.Context, rawURL string, auth gcs.AuthOption) (io.ReadCloser, error) {
	bucket, object, err := gcs.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	log.CommandPrintf("gsutil cp %s .", rawURL)
	client, err := gcs.NewClient(ctx, auth, false)
	if err != nil {
		return nil, err
	}
	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}
	return &gcsReader{ReadCloser: rc, close: client.Close}, nil
}

// FileName returns the last path element of rawURL, for use as a default
// download name.
func FileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || strings.HasSuffix(u.Path, "/") {
		return "fixture"
	}
	return filepath.Base(filepath.FromSlash(u.Path))
}

// Get downloads rawURL to dst. The file is written under a temporary name
// and renamed into place only once the download (and checksum, if
// requested) succeeds, so dst never holds partial content.
func Get(ctx context.Context, rawURL, dst string, opts *Options) (*Fixture, error) {
	if opts == nil {
		opts = &Options{}
	}
	rc, err := Open(ctx, rawURL, opts)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*")
	if err != nil {
		return nil, err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	hash := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, hash), rc)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	sum := fmt.Sprintf("%x", hash.Sum(nil))
	if opts.SHA256 != "" && !strings.EqualFold(opts.SHA256, sum) {
		return nil, fmt.Errorf("%s: %w: expected %s, got %s", rawURL, ErrChecksum, opts.SHA256, sum)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return nil, err
	}
	return &Fixture{Path: dst, Size: n, SHA256: sum}, nil
}

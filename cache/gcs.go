// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"

	"golang.org/x/perfcheck/common/gcs"
)

// GCSStore keeps entries as objects in a Google Cloud Storage bucket.
type GCSStore struct {
	Bucket string
	Prefix string
	Auth   gcs.AuthOption
}

func (s *GCSStore) String() string {
	return fmt.Sprintf("gs://%s/%s", s.Bucket, s.Prefix)
}

func (s *GCSStore) object(client *storage.Client, key string, paths []string) *storage.ObjectHandle {
	return client.Bucket(s.Bucket).Object(path.Join(s.Prefix, archiveName(key, paths)))
}

func (s *GCSStore) Restore(ctx context.Context, key string, paths []string) error {
	client, err := gcs.NewClient(ctx, s.Auth, false)
	if err != nil {
		return err
	}
	defer client.Close()
	rc, err := s.object(client, key, paths).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return ErrNotInCache
	} else if err != nil {
		return fmt.Errorf("failed to check cache: %v", err)
	}
	defer rc.Close()
	return extractArchive(rc, paths)
}

func (s *GCSStore) Save(ctx context.Context, key string, paths []string) error {
	client, err := gcs.NewClient(ctx, s.Auth, true)
	if err != nil {
		return err
	}
	defer client.Close()
	o := s.object(client, key, paths)
	if _, err := o.Attrs(ctx); err == nil {
		return nil
	} else if !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("checking if object exists: %v", err)
	}

	// Only create the object if nobody saved the same key meanwhile.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	wc := o.If(storage.Conditions{DoesNotExist: true}).NewWriter(wctx)
	wc.ContentType = "application/gzip"
	ar := newArchiveReader(ctx, paths)
	_, err = io.Copy(wc, ar)
	if cerr := ar.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// Cancelling the context before Close aborts the upload.
		cancel()
		wc.Close()
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return wc.Close()
}

// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fetch

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fixture = "export const double = (x: number) => x * 2;\n"

func fixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/demo.tsx", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, fixture)
	})
	mux.HandleFunc("/moved.tsx", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/demo.tsx", http.StatusFound)
	})
	mux.HandleFunc("/broken.tsx", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGet(t *testing.T) {
	srv := fixtureServer(t)
	dst := filepath.Join(t.TempDir(), "demo.tsx")
	f, err := Get(context.Background(), srv.URL+"/demo.tsx", dst, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != fixture {
		t.Fatalf("got %q, want %q", b, fixture)
	}
	if f.Size != int64(len(fixture)) {
		t.Errorf("Size = %d, want %d", f.Size, len(fixture))
	}
	if want := fmt.Sprintf("%x", sha256.Sum256([]byte(fixture))); f.SHA256 != want {
		t.Errorf("SHA256 = %s, want %s", f.SHA256, want)
	}
}

func TestGetFollowsRedirects(t *testing.T) {
	srv := fixtureServer(t)
	dst := filepath.Join(t.TempDir(), "demo.tsx")
	if _, err := Get(context.Background(), srv.URL+"/moved.tsx", dst, nil); err != nil {
		t.Fatal(err)
	}
}

func TestGetErrors(t *testing.T) {
	srv := fixtureServer(t)
	for _, tc := range []struct {
		name string
		url  string
		opts *Options
	}{
		{"NotFound", srv.URL + "/missing.tsx", nil},
		{"ServerError", srv.URL + "/broken.tsx", nil},
		{"Relative", "demo.tsx", nil},
		{"Scheme", "ftp://example.com/demo.tsx", nil},
		{"Checksum", srv.URL + "/demo.tsx", &Options{SHA256: strings.Repeat("0", 64)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dst := filepath.Join(t.TempDir(), "demo.tsx")
			if _, err := Get(context.Background(), tc.url, dst, tc.opts); err == nil {
				t.Fatal("expected error")
			}
			if _, err := os.Stat(dst); !os.IsNotExist(err) {
				t.Fatalf("destination exists after a failed download: %v", err)
			}
		})
	}
}

func TestChecksumError(t *testing.T) {
	srv := fixtureServer(t)
	dst := filepath.Join(t.TempDir(), "demo.tsx")
	_, err := Get(context.Background(), srv.URL+"/demo.tsx", dst, &Options{SHA256: strings.Repeat("a", 64)})
	if !errors.Is(err, ErrChecksum) {
		t.Fatalf("expected ErrChecksum, got %v", err)
	}
	sum := fmt.Sprintf("%X", sha256.Sum256([]byte(fixture)))
	if _, err := Get(context.Background(), srv.URL+"/demo.tsx", dst, &Options{SHA256: sum}); err != nil {
		t.Fatalf("upper-case digest rejected: %v", err)
	}
}

func TestGetFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "local.tsx")
	if err := os.WriteFile(src, []byte(fixture), 0644); err != nil {
		t.Fatal(err)
	}
	u := "file://" + filepath.ToSlash(src)
	if !strings.HasPrefix(filepath.ToSlash(src), "/") {
		u = "file:///" + filepath.ToSlash(src)
	}
	dst := filepath.Join(t.TempDir(), "copy.tsx")
	if _, err := Get(context.Background(), u, dst, nil); err != nil {
		t.Fatal(err)
	}
}

func TestFileName(t *testing.T) {
	for in, want := range map[string]string{
		"https://example.com/a/b/demo.tsx?raw=1": "demo.tsx",
		"gs://bucket/fixtures/input.ts":          "input.ts",
		"https://example.com/":                   "fixture",
	} {
		if got := FileName(in); got != want {
			t.Errorf("FileName(%q) = %q, want %q", in, got, want)
		}
	}
}

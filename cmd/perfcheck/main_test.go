// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"

	"golang.org/x/perfcheck/common"
	"golang.org/x/perfcheck/common/log"
)

const testConfig = `
[build]
  artifact = "target/release/ezno"

[measure]
  fixture = "https://example.com/demo.tsx"

[trigger]
  branches = ["main", "release/*"]
`

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(name, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if runtime.GOOS == "windows" {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf, &buf)
	t.Cleanup(func() { log.SetOutput(os.Stdout, os.Stderr) })
	return &buf
}

func TestSize(t *testing.T) {
	p := filepath.Join(t.TempDir(), "ezno")
	if err := os.WriteFile(p, make([]byte, 5242880), 0755); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := (&sizeCmd{stdout: &buf}).Run(context.Background(), []string{p}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "Binary is 5242880 bytes\n" {
		t.Fatalf("size output %q", got)
	}
	if err := (&sizeCmd{stdout: &buf}).Run(context.Background(), []string{p + ".missing"}); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestKey(t *testing.T) {
	captureLog(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "perfcheck.toml")
	writeFile(t, cfgPath, testConfig)
	writeFile(t, filepath.Join(dir, "Cargo.lock"), "version = 3\n")
	writeFile(t, filepath.Join(dir, "parser", "Cargo.lock"), "version = 3\n# parser\n")

	key := func(args ...string) string {
		t.Helper()
		var buf bytes.Buffer
		c := &keyCmd{stdout: &buf}
		if err := c.Run(context.Background(), args); err != nil {
			t.Fatal(err)
		}
		return strings.TrimSpace(buf.String())
	}
	k1 := key(cfgPath)
	prefix := common.CurrentPlatform().OSName() + "-cargo-"
	if !strings.HasPrefix(k1, prefix) || len(k1) != len(prefix)+64 {
		t.Fatalf("malformed key %q", k1)
	}
	if k2 := key(cfgPath); k2 != k1 {
		t.Fatalf("key changed without lock file changes: %s != %s", k2, k1)
	}
	writeFile(t, filepath.Join(dir, "parser", "Cargo.lock"), "version = 3\n# parser 2\n")
	if k3 := key(cfgPath); k3 == k1 {
		t.Fatal("key did not change with the lock file")
	}

	var buf bytes.Buffer
	c := &keyCmd{stdout: &buf, files: true}
	if err := c.Run(context.Background(), []string{cfgPath}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\tCargo.lock\n\tparser/Cargo.lock\n") {
		t.Fatalf("lock files not listed in order:\n%s", buf.String())
	}

	if err := (&keyCmd{workDir: t.TempDir()}).Run(context.Background(), []string{cfgPath}); err == nil {
		t.Fatal("expected error for a directory without lock files")
	}
}

func TestGet(t *testing.T) {
	captureLog(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "demo.tsx")
	content := "const x = () => 1;\n"
	writeFile(t, src, content)
	sum := fmt.Sprintf("%x", sha256.Sum256([]byte(content)))

	dst := filepath.Join(dir, "out", "demo.tsx")
	if err := (&getCmd{sha256: sum}).Run(context.Background(), []string{fileURL(src), dst}); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != content {
		t.Fatalf("downloaded %q, want %q", b, content)
	}

	bad := filepath.Join(dir, "bad.tsx")
	err = (&getCmd{sha256: strings.Repeat("0", 64)}).Run(context.Background(), []string{fileURL(src), bad})
	if err == nil {
		t.Fatal("expected checksum error")
	}
	if _, err := os.Stat(bad); !os.IsNotExist(err) {
		t.Fatalf("file left behind after checksum failure: %v", err)
	}
}

func TestRunSkipped(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "perfcheck.toml")
	writeFile(t, cfgPath, testConfig)
	binDir := filepath.Join(dir, "bin")

	for _, tc := range []struct {
		event, branch string
	}{
		{"push", "feature"},
		{"pull_request", "develop"},
		{"schedule", "main"},
	} {
		var stdout, stderr bytes.Buffer
		c := &runCmd{event: tc.event, branch: tc.branch, binDir: binDir, stdout: &stdout, stderr: &stderr}
		if err := c.Run(context.Background(), []string{cfgPath}); err != nil {
			t.Fatalf("%s on %s: %v", tc.event, tc.branch, err)
		}
		log.SetOutput(os.Stdout, os.Stderr)
		if !strings.Contains(stderr.String(), "Skipping run") {
			t.Errorf("%s on %s: no skip message in %q", tc.event, tc.branch, stderr.String())
		}
		if strings.Contains(stdout.String(), "Binary is") {
			t.Errorf("%s on %s: pipeline ran", tc.event, tc.branch)
		}
	}
	if _, err := os.Stat(binDir); !os.IsNotExist(err) {
		t.Fatalf("skipped runs touched the bin directory: %v", err)
	}
}

func TestRunErrors(t *testing.T) {
	captureLog(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "perfcheck.toml")
	writeFile(t, cfgPath, testConfig)
	ctx := context.Background()

	if err := (&runCmd{}).Run(ctx, nil); err == nil {
		t.Error("expected error without a configuration file")
	}
	if err := (&runCmd{}).Run(ctx, []string{filepath.Join(dir, "missing.toml")}); err == nil {
		t.Error("expected error for a missing configuration file")
	}
	if err := (&runCmd{clean: true}).Run(ctx, []string{cfgPath}); err == nil || !strings.Contains(err.Error(), "source.repo") {
		t.Errorf("expected -clean to require source.repo, got %v", err)
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Fatalf("configuration removed: %v", err)
	}
}

func TestRunCleanKeepsUnrelatedFiles(t *testing.T) {
	captureLog(t)
	const repo = "file:///nonexistent/repo.git"
	ctx := context.Background()

	mustExist := func(t *testing.T, paths ...string) {
		t.Helper()
		for _, p := range paths {
			if _, err := os.Stat(p); err != nil {
				t.Fatalf("%s removed: %v", p, err)
			}
		}
	}

	t.Run("ConfigDir", func(t *testing.T) {
		project := filepath.Join(t.TempDir(), "myproject")
		cfgPath := filepath.Join(project, "perfcheck.toml")
		writeFile(t, cfgPath, "[source]\n  repo = \""+repo+"\"\n"+testConfig)
		precious := filepath.Join(project, "precious.txt")
		writeFile(t, precious, "keep me")

		c := &runCmd{clean: true, binDir: filepath.Join(t.TempDir(), "bin")}
		err := c.Run(ctx, []string{cfgPath})
		if err == nil || !strings.Contains(err.Error(), "configuration file") {
			t.Fatalf("expected refusal to remove the configuration directory, got %v", err)
		}
		mustExist(t, cfgPath, precious)
	})
	t.Run("NotACheckout", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := filepath.Join(dir, "perfcheck.toml")
		writeFile(t, cfgPath, "[source]\n  repo = \""+repo+"\"\n  dir = \"work\"\n"+testConfig)
		precious := filepath.Join(dir, "work", "precious.txt")
		writeFile(t, precious, "keep me")

		if err := (&runCmd{clean: true}).Run(ctx, []string{cfgPath}); err == nil {
			t.Fatal("expected refusal to remove a directory that is not a checkout")
		}
		mustExist(t, precious)
	})
	t.Run("OtherCheckout", func(t *testing.T) {
		work := t.TempDir()
		r, err := git.PlainInit(work, false)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := r.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{"https://example.com/other.git"}}); err != nil {
			t.Fatal(err)
		}
		precious := filepath.Join(work, "precious.txt")
		writeFile(t, precious, "keep me")
		cfgPath := filepath.Join(t.TempDir(), "perfcheck.toml")
		writeFile(t, cfgPath, "[source]\n  repo = \""+repo+"\"\n"+testConfig)

		c := &runCmd{clean: true, workDir: work}
		if err := c.Run(ctx, []string{cfgPath}); err == nil || !strings.Contains(err.Error(), "other.git") {
			t.Fatalf("expected refusal to remove a checkout of another repository, got %v", err)
		}
		mustExist(t, precious)

		if err := checkClean(cfgPath, work, "https://example.com/other.git"); err != nil {
			t.Fatalf("checkout of the configured repository should be removable: %v", err)
		}
		if err := checkClean(cfgPath, filepath.Join(work, "missing"), repo); err != nil {
			t.Fatalf("missing directory should be accepted: %v", err)
		}
	})
}

func TestStore(t *testing.T) {
	for _, tc := range []struct {
		c    runCmd
		want string
	}{
		{runCmd{cache: ""}, "disabled"},
		{runCmd{cache: "/var/cache/perfcheck"}, filepath.FromSlash("/var/cache/perfcheck")},
		{runCmd{cache: "/var/cache/perfcheck", bucket: "perf-cache"}, "gs://perf-cache/"},
	} {
		s, err := tc.c.store()
		if err != nil {
			t.Fatal(err)
		}
		if runtime.GOOS == "windows" && tc.c.bucket == "" && tc.c.cache != "" {
			continue
		}
		if s.String() != tc.want {
			t.Errorf("store for %+v = %s, want %s", tc.c, s, tc.want)
		}
	}
}

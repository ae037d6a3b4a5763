// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package common_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"golang.org/x/perfcheck/common"
)

func TestEnv(t *testing.T) {
	tryLookup := func(t *testing.T, env *common.Env, try, expect string) {
		t.Helper()
		if v, ok := env.Lookup(try); !ok {
			t.Fatalf("expected to find variable %q", try)
		} else if v != expect {
			t.Fatalf("expected to find value %q for %q, instead got %q", expect, try, v)
		}
	}
	tryBadLookup := func(t *testing.T, env *common.Env, try string) {
		t.Helper()
		if v, ok := env.Lookup(try); ok {
			t.Fatalf("expected to not find variable %q, got %q", try, v)
		}
	}

	env, err := common.NewEnv("CARGO_TERM_COLOR=always", "RUSTFLAGS=-C target-cpu=native")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("BadCreate", func(t *testing.T) {
		for _, bad := range []string{"CARGO_TERM_COLOR", "=value"} {
			if _, err := common.NewEnv(bad); err == nil {
				t.Errorf("expected error for %q", bad)
			}
		}
	})
	t.Run("Lookup", func(t *testing.T) {
		tryLookup(t, env, "RUSTFLAGS", "-C target-cpu=native")
		tryBadLookup(t, env, "CARGO_HOME")
	})
	t.Run("Set", func(t *testing.T) {
		env2 := env.MustSet("CARGO_TERM_COLOR=never", "CARGO_PROFILE_RELEASE_DEBUG=true")
		env3 := env2.MustSet("CARGO_INCREMENTAL=0")
		tryLookup(t, env3, "CARGO_TERM_COLOR", "never")
		tryLookup(t, env3, "RUSTFLAGS", "-C target-cpu=native")
		tryLookup(t, env, "CARGO_TERM_COLOR", "always")
		tryBadLookup(t, env, "CARGO_PROFILE_RELEASE_DEBUG")
		tryBadLookup(t, env2, "CARGO_INCREMENTAL")
		want := []string{
			"CARGO_INCREMENTAL=0",
			"CARGO_PROFILE_RELEASE_DEBUG=true",
			"CARGO_TERM_COLOR=never",
			"RUSTFLAGS=-C target-cpu=native",
		}
		if diff := cmp.Diff(want, env3.Collapse()); diff != "" {
			t.Fatalf("unexpected collapse (-want +got):\n%s", diff)
		}
	})
	t.Run("Merge", func(t *testing.T) {
		if got := env.Merge(nil); got != env {
			t.Fatal("merging nil should return the receiver")
		}
		build := common.MustNewEnv("CARGO_PROFILE_RELEASE_DEBUG=true", "CARGO_TERM_COLOR=never")
		merged := env.Merge(build)
		tryLookup(t, merged, "CARGO_PROFILE_RELEASE_DEBUG", "true")
		tryLookup(t, merged, "CARGO_TERM_COLOR", "never")
		tryLookup(t, merged, "RUSTFLAGS", "-C target-cpu=native")
		tryBadLookup(t, env, "CARGO_PROFILE_RELEASE_DEBUG")
	})
	t.Run("PrependPath", func(t *testing.T) {
		sep := string(os.PathListSeparator)
		env2 := env.PrependPath("/opt/bin")
		tryLookup(t, env2, "PATH", "/opt/bin")
		env3 := env2.PrependPath("/home/ci/.cargo/bin")
		tryLookup(t, env3, "PATH", "/home/ci/.cargo/bin"+sep+"/opt/bin")
		tryLookup(t, env2, "PATH", "/opt/bin")
	})
}

func TestEnvLookPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not used on windows")
	}
	dir := t.TempDir()
	tool := filepath.Join(dir, "hyperfine")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes"), []byte("text"), 0644); err != nil {
		t.Fatal(err)
	}
	env := common.MustNewEnv("PATH=/nonexistent").PrependPath(dir)

	got, err := env.LookPath("hyperfine")
	if err != nil {
		t.Fatal(err)
	}
	if got != tool {
		t.Fatalf("LookPath = %s, want %s", got, tool)
	}
	if _, err := env.LookPath("notes"); err == nil {
		t.Error("found a non-executable file")
	}
	if _, err := common.MustNewEnv("PATH=/nonexistent").LookPath("hyperfine"); err == nil {
		t.Error("found a tool outside the Env's PATH")
	}
	if got, err := env.LookPath(tool); err != nil || got != tool {
		t.Errorf("LookPath(%s) = %s, %v", tool, got, err)
	}
	if _, err := env.LookPath(filepath.Join(dir, "notes")); err == nil || !strings.Contains(err.Error(), "not an executable") {
		t.Errorf("expected not-executable error, got %v", err)
	}
}

// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package common_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"golang.org/x/perfcheck/common"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "perfcheck.toml")
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestReadConfigFile(t *testing.T) {
	p := writeConfig(t, `
env = ["CARGO_TERM_COLOR=never", "RUST_BACKTRACE=1"]

[source]
  repo = "https://github.com/kaleidawave/ezno"
  ref = "v0.0.20"
  dir = "ezno"

[cache]
  lockfiles = ["Cargo.lock"]
  paths = ["target/"]

[[tool]]
  name = "hyperfine"
  version = "1.19.0"

[build]
  command = "cargo build --release --bin ezno"
  env = ["CARGO_PROFILE_RELEASE_DEBUG=true", "CARGO_INCREMENTAL=0"]
  artifact = "target/release/ezno"

[measure]
  fixture = "https://example.com/demo.tsx"
  warmup = 0
  runs = 20
  export-json = "hyperfine.json"

[trigger]
  branches = ["main", "release/*"]
`)
	cfg, err := common.ReadConfigFile(p)
	if err != nil {
		t.Fatal(err)
	}
	zero := 0
	want := &common.ConfigFile{
		Source: common.SourceConfig{
			Repo: "https://github.com/kaleidawave/ezno",
			Ref:  "v0.0.20",
			Dir:  filepath.Join(filepath.Dir(p), "ezno"),
		},
		Cache: common.CacheConfig{
			KeyPrefix: common.CurrentPlatform().OSName() + "-cargo",
			LockFiles: []string{"Cargo.lock"},
			Paths:     []string{"target/"},
		},
		Tools: []*common.ToolConfig{{Name: "hyperfine", Version: "1.19.0", Binary: "hyperfine"}},
		Build: common.BuildConfig{
			Command:  "cargo build --release --bin ezno",
			Artifact: "target/release/ezno",
		},
		Measure: common.MeasureConfig{
			Fixture:    "https://example.com/demo.tsx",
			Tool:       "hyperfine",
			Subcommand: "build",
			Warmup:     &zero,
			Runs:       20,
			ExportJSON: "hyperfine.json",
		},
		Trigger: common.TriggerConfig{Branches: []string{"main", "release/*"}},
	}
	ignoreEnv := cmpopts.IgnoreTypes(common.ConfigEnv{})
	if diff := cmp.Diff(want, cfg, ignoreEnv); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"CARGO_TERM_COLOR=never", "RUST_BACKTRACE=1"}, cfg.Env.Collapse()); diff != "" {
		t.Errorf("unexpected env (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"CARGO_INCREMENTAL=0", "CARGO_PROFILE_RELEASE_DEBUG=true"}, cfg.Build.Env.Collapse()); diff != "" {
		t.Errorf("unexpected build env (-want +got):\n%s", diff)
	}
}

func TestConfigDefaults(t *testing.T) {
	p := writeConfig(t, `
[build]
  artifact = "target/release/ezno"

[measure]
  fixture = "https://example.com/demo.tsx"
`)
	cfg, err := common.ReadConfigFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Source.Dir != filepath.Dir(p) {
		t.Errorf("source dir = %s, want %s", cfg.Source.Dir, filepath.Dir(p))
	}
	if cfg.Build.Command != "cargo build --release" {
		t.Errorf("build command = %q", cfg.Build.Command)
	}
	if v, ok := cfg.Build.Env.Lookup("CARGO_PROFILE_RELEASE_DEBUG"); !ok || v != "true" {
		t.Errorf("build env does not request debug symbols: %v", cfg.Build.Env.Collapse())
	}
	if v, ok := cfg.Env.Lookup("CARGO_TERM_COLOR"); !ok || v != "always" {
		t.Errorf("global env = %v", cfg.Env.Collapse())
	}
	if diff := cmp.Diff(common.DefaultCachePaths, cfg.Cache.Paths); diff != "" {
		t.Errorf("unexpected cache paths (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"**/Cargo.lock"}, cfg.Cache.LockFiles); diff != "" {
		t.Errorf("unexpected lock files (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"hyperfine"}, cfg.ToolNames()); diff != "" {
		t.Errorf("unexpected tools (-want +got):\n%s", diff)
	}
	if cfg.Measure.Warmup == nil || *cfg.Measure.Warmup != 3 {
		t.Errorf("warmup = %v, want 3", cfg.Measure.Warmup)
	}
	if cfg.Measure.Tool != "hyperfine" || cfg.Measure.Subcommand != "build" {
		t.Errorf("measure = %+v", cfg.Measure)
	}
	if diff := cmp.Diff([]string{"main"}, cfg.Trigger.Branches); diff != "" {
		t.Errorf("unexpected branches (-want +got):\n%s", diff)
	}
}

func TestConfigErrors(t *testing.T) {
	const required = `
[build]
  artifact = "target/release/ezno"
[measure]
  fixture = "https://example.com/demo.tsx"
`
	for _, tc := range []struct {
		name, content, want string
	}{
		{"MissingArtifact", "[measure]\nfixture = \"https://example.com/demo.tsx\"\n", "build.artifact"},
		{"MissingFixture", "[build]\nartifact = \"ezno\"\n", "measure.fixture"},
		{"UnknownKey", required + "  retries = 3\n", "unknown keys"},
		{"NegativeRuns", strings.Replace(required, "[measure]", "[measure]\n  runs = -1", 1), "measure.runs"},
		{"BadChecksum", strings.Replace(required, "[measure]", "[measure]\n  sha256 = \"abc\"", 1), "sha256"},
		{"DuplicateTool", required + "[[tool]]\nname = \"hyperfine\"\n[[tool]]\nname = \"hyperfine\"\n", "more than once"},
		{"BadEnv", "env = [\"NOEQUALS\"]\n" + required, "not a valid environment variable"},
		{"BadHome", strings.Replace(required, "[build]", "[cache]\n  paths = [\"~ci/.cargo\"]\n[build]", 1), "~/"},
		{"Syntax", "[build\n", "failed to parse"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := common.ReadConfigFile(writeConfig(t, tc.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestPlatform(t *testing.T) {
	for _, tc := range []struct {
		p      common.Platform
		triple string
		os     string
	}{
		{common.Platform{GOOS: "linux", GOARCH: "amd64"}, "x86_64-unknown-linux-gnu", "Linux"},
		{common.Platform{GOOS: "darwin", GOARCH: "arm64"}, "aarch64-apple-darwin", "macOS"},
		{common.Platform{GOOS: "windows", GOARCH: "amd64"}, "x86_64-pc-windows-msvc", "Windows"},
	} {
		triple, ok := tc.p.Triple()
		if !ok || triple != tc.triple {
			t.Errorf("%s: Triple() = %q, %v, want %q", tc.p, triple, ok, tc.triple)
		}
		if got := tc.p.OSName(); got != tc.os {
			t.Errorf("%s: OSName() = %q, want %q", tc.p, got, tc.os)
		}
	}
	if _, ok := (common.Platform{GOOS: "plan9", GOARCH: "386"}).Triple(); ok {
		t.Error("plan9/386 should have no target triple")
	}
}

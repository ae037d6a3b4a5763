// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package common

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

const ConfigHelp = `
The input configuration format is TOML. All sections are optional except
for the artifact path under [build] and the fixture URL under [measure].

          env: environment variables for every sub-process, each of the
               form "X=Y" (default: ["CARGO_TERM_COLOR=always"])
     [source]
         repo: repository URL to clone; empty means use dir as is
          ref: branch, tag or revision to check out (optional)
          dir: checkout directory, relative to the configuration file
               (default: ".")
      [cache]
   key-prefix: prefix of the cache key (default: "<os>-cargo")
    lockfiles: lock file patterns hashed into the key; a leading "**/"
               matches at any depth (default: ["**/Cargo.lock"])
        paths: directories saved and restored, "~/" expands to the home
               directory, others are relative to dir
       [[tool]]
         name: package name known to the installer registry (required)
      version: version to install (optional)
          url: archive URL template over {{.Version}} and {{.Triple}}
               (optional for known packages)
       binary: executable name inside the archive (default: name)
      [build]
      command: build command line (default: "cargo build --release")
          env: stage-scoped variables
               (default: ["CARGO_PROFILE_RELEASE_DEBUG=true"])
     artifact: path of the built executable, relative to dir (required)
    [measure]
      fixture: URL of the input file; http, https, gs and file schemes
               are supported (required)
       sha256: expected hex SHA-256 of the fixture (optional)
         tool: benchmarking utility (default: "hyperfine")
   subcommand: subcommand of the artifact to time (default: "build")
       warmup: warm-up runs before measuring (default: 3)
         runs: measured runs, 0 lets the utility decide (default: 0)
  export-json: file to write the utility's JSON summary to (optional)
    [trigger]
     branches: branches whose pushes and pull requests run the pipeline
               (default: ["main"])

A simple example configuration might look like:

env = ["CARGO_TERM_COLOR=always"]

[build]
  artifact = "target/release/ezno"

[measure]
  fixture = "https://example.com/demo.tsx"
`

type ConfigFile struct {
	Env     ConfigEnv     `toml:"env"`
	Source  SourceConfig  `toml:"source"`
	Cache   CacheConfig   `toml:"cache"`
	Tools   []*ToolConfig `toml:"tool"`
	Build   BuildConfig   `toml:"build"`
	Measure MeasureConfig `toml:"measure"`
	Trigger TriggerConfig `toml:"trigger"`
}

type SourceConfig struct {
	Repo string `toml:"repo"`
	Ref  string `toml:"ref"`
	Dir  string `toml:"dir"`
}

type CacheConfig struct {
	KeyPrefix string   `toml:"key-prefix"`
	LockFiles []string `toml:"lockfiles"`
	Paths     []string `toml:"paths"`
}

type ToolConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	URL     string `toml:"url"`
	Binary  string `toml:"binary"`
}

type BuildConfig struct {
	Command  string    `toml:"command"`
	Env      ConfigEnv `toml:"env"`
	Artifact string    `toml:"artifact"`
}

type MeasureConfig struct {
	Fixture    string `toml:"fixture"`
	SHA256     string `toml:"sha256"`
	Tool       string `toml:"tool"`
	Subcommand string `toml:"subcommand"`
	Warmup     *int   `toml:"warmup"`
	Runs       int    `toml:"runs"`
	ExportJSON string `toml:"export-json"`
}

type TriggerConfig struct {
	Branches []string `toml:"branches"`
}

// DefaultCachePaths are the cargo home directories and the build output
// directory that make up a cache entry.
var DefaultCachePaths = []string{
	"~/.cargo/bin/",
	"~/.cargo/registry/index/",
	"~/.cargo/registry/cache/",
	"~/.cargo/git/db/",
	"target/",
}

const defaultWarmup = 3

// ReadConfigFile parses, defaults and validates the configuration at path.
// Relative source directories are resolved against the file's directory.
func ReadConfigFile(path string) (*ConfigFile, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to absolutize %q: %v", path, err)
	}
	var cfg ConfigFile
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %v", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown keys in %q: %s", path, strings.Join(keys, ", "))
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %q: %w", path, err)
	}
	if !filepath.IsAbs(cfg.Source.Dir) {
		cfg.Source.Dir = filepath.Join(filepath.Dir(path), cfg.Source.Dir)
	}
	return &cfg, nil
}

// ApplyDefaults fills every unset field with its documented default.
func (c *ConfigFile) ApplyDefaults() {
	if c.Env.Env == nil {
		c.Env.Env = MustNewEnv("CARGO_TERM_COLOR=always")
	}
	if c.Source.Dir == "" {
		c.Source.Dir = "."
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = CurrentPlatform().OSName() + "-cargo"
	}
	if len(c.Cache.LockFiles) == 0 {
		c.Cache.LockFiles = []string{"**/Cargo.lock"}
	}
	if c.Cache.Paths == nil {
		c.Cache.Paths = append([]string(nil), DefaultCachePaths...)
	}
	if len(c.Tools) == 0 {
		c.Tools = []*ToolConfig{{Name: "hyperfine"}}
	}
	for _, t := range c.Tools {
		if t.Binary == "" {
			t.Binary = t.Name
		}
	}
	if c.Build.Command == "" {
		c.Build.Command = "cargo build --release"
	}
	if c.Build.Env.Env == nil {
		c.Build.Env.Env = MustNewEnv("CARGO_PROFILE_RELEASE_DEBUG=true")
	}
	if c.Measure.Tool == "" {
		c.Measure.Tool = "hyperfine"
	}
	if c.Measure.Subcommand == "" {
		c.Measure.Subcommand = "build"
	}
	if c.Measure.Warmup == nil {
		w := defaultWarmup
		c.Measure.Warmup = &w
	}
	if len(c.Trigger.Branches) == 0 {
		c.Trigger.Branches = []string{"main"}
	}
}

func (c *ConfigFile) Validate() error {
	if c.Build.Artifact == "" {
		return fmt.Errorf("build.artifact is required")
	}
	if c.Measure.Fixture == "" {
		return fmt.Errorf("measure.fixture is required")
	}
	if c.Measure.Runs < 0 {
		return fmt.Errorf("measure.runs must not be negative")
	}
	if c.Measure.Warmup != nil && *c.Measure.Warmup < 0 {
		return fmt.Errorf("measure.warmup must not be negative")
	}
	if c.Measure.SHA256 != "" && len(c.Measure.SHA256) != 64 {
		return fmt.Errorf("measure.sha256 must be 64 hex digits")
	}
	names := make(map[string]struct{})
	for _, t := range c.Tools {
		if t.Name == "" {
			return fmt.Errorf("tool is missing a name")
		}
		if _, ok := names[t.Name]; ok {
			return fmt.Errorf("tool %q listed more than once", t.Name)
		}
		names[t.Name] = struct{}{}
	}
	for _, p := range c.Cache.Paths {
		if strings.Contains(p, "~") && !strings.HasPrefix(p, "~/") {
			return fmt.Errorf("cache path %q: only a leading ~/ is supported", p)
		}
	}
	return nil
}

// ToolNames returns the configured tool names, sorted.
func (c *ConfigFile) ToolNames() []string {
	names := make([]string, 0, len(c.Tools))
	for _, t := range c.Tools {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// ConfigEnv is an environment variable list in a configuration file. It
// holds only the declared variables; callers layer it over the process
// environment.
type ConfigEnv struct {
	*Env
}

func (c *ConfigEnv) UnmarshalTOML(data interface{}) error {
	ldata, ok := data.([]interface{})
	if !ok {
		return fmt.Errorf("expected data for env to be a list")
	}
	vars := make([]string, 0, len(ldata))
	for _, d := range ldata {
		s, ok := d.(string)
		if !ok {
			return fmt.Errorf("expected data for env to contain strings")
		}
		vars = append(vars, s)
	}
	var err error
	c.Env, err = NewEnv(vars...)
	return err
}

func MustNewEnv(vars ...string) *Env {
	env, err := NewEnv(vars...)
	if err != nil {
		panic(err)
	}
	return env
}

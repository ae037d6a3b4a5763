// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/perfcheck/cache"
	"golang.org/x/perfcheck/common"
	"golang.org/x/perfcheck/common/fileutil"
	"golang.org/x/perfcheck/common/gcs"
	"golang.org/x/perfcheck/common/log"
	"golang.org/x/perfcheck/pipeline"
	"golang.org/x/perfcheck/source"
)

const (
	runUsage = `Runs the build and measurement pipeline described by a configuration file.

The pipeline prepares the source tree and restores the dependency cache,
installs the benchmarking utility, builds the tool under test, then times it
against the fixture and prints its size. The first failing stage ends the
run with a non-zero exit status.

Usage: %s run [flags] <config>
`
	defaultBinDir = "~/.cargo/bin"
)

type runCmd struct {
	workDir string
	cache   string
	bucket  string
	auth    gcs.AuthOption
	binDir  string
	event   string
	branch  string
	clean   bool
	wait    bool
	quiet   bool
	shell   bool

	stdout, stderr io.Writer
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Builds, benchmarks and sizes the tool." }
func (*runCmd) PrintUsage(w io.Writer, base string) {
	fmt.Fprintf(w, runUsage, base)
	fmt.Fprint(w, common.ConfigHelp)
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.workDir, "work-dir", "", "source directory, overriding source.dir in the configuration")
	f.StringVar(&c.cache, "cache", cache.DefaultDir(), "local directory holding cache entries, if set to \"\" the cache is disabled")
	f.StringVar(&c.bucket, "bucket", "", "GCS bucket holding cache entries, used instead of -cache")
	f.Var(&c.auth, "auth", fmt.Sprintf("authentication method for GCS (options: %s)", gcs.AuthOptions()))
	f.StringVar(&c.binDir, "bin-dir", defaultBinDir, "directory installed tools are placed in and prepended to PATH")
	f.StringVar(&c.event, "event", "", "triggering event (push or pull_request); if set, the run is skipped unless the trigger configuration matches")
	f.StringVar(&c.branch, "branch", "", "branch the event applies to (the target branch for pull_request)")
	f.BoolVar(&c.clean, "clean", false, "remove the source directory before cloning; it must be a checkout of source.repo that does not hold the configuration file")
	f.BoolVar(&c.wait, "wait", false, "wait for the system to be idle before running")
	f.BoolVar(&c.quiet, "quiet", false, "don't print activity information")
	f.BoolVar(&c.shell, "shell", false, "print shell commands as they are executed")
}

func (c *runCmd) store() (cache.Store, error) {
	switch {
	case c.bucket != "":
		return &cache.GCSStore{Bucket: c.bucket, Auth: c.auth}, nil
	case c.cache == "":
		return cache.Disabled{}, nil
	}
	dir, err := filepath.Abs(c.cache)
	if err != nil {
		return nil, err
	}
	return &cache.DirStore{Dir: dir}, nil
}

func (c *runCmd) Run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one configuration file, got %d arguments", len(args))
	}
	log.SetActivityLog(!c.quiet)
	log.SetCommandTrace(c.shell)
	log.SetOutput(c.stdout, c.stderr)

	cfg, err := common.ReadConfigFile(args[0])
	if err != nil {
		return err
	}
	if c.workDir != "" {
		if cfg.Source.Dir, err = filepath.Abs(c.workDir); err != nil {
			return err
		}
	}
	if c.event != "" {
		if ok, reason := pipeline.ShouldRun(&cfg.Trigger, c.event, c.branch); !ok {
			log.Printf("Skipping run: %s", reason)
			return nil
		}
	}
	if c.clean {
		if err := checkClean(args[0], cfg.Source.Dir, cfg.Source.Repo); err != nil {
			return err
		}
		log.Printf("Removing %s", cfg.Source.Dir)
		if err := fileutil.RemoveAllIncludingReadonly(cfg.Source.Dir); err != nil {
			return err
		}
	}

	st := pipeline.NewState(cfg)
	if c.stdout != nil {
		st.Out = c.stdout
	}
	if c.stderr != nil {
		st.Err = c.stderr
	}
	st.Auth = c.auth
	if st.Store, err = c.store(); err != nil {
		return err
	}
	if st.BinDir, err = fileutil.ExpandHome(c.binDir); err != nil {
		return err
	}

	if c.wait {
		if err := waitForIdle(ctx); err != nil {
			return err
		}
	}

	if err := pipeline.Run(ctx, st); err != nil {
		log.Error(err)
		var se *pipeline.StageError
		if errors.As(err, &se) {
			return fmt.Errorf("stage %s failed", se.Stage)
		}
		return err
	}
	return nil
}

// checkClean reports whether dir may be removed before cloning repo: it
// must not hold the configuration file and, if it exists, it must be a
// checkout of repo.
func checkClean(cfgPath, dir, repo string) error {
	if repo == "" {
		return fmt.Errorf("-clean requires source.repo to be set")
	}
	abs, err := filepath.Abs(cfgPath)
	if err != nil {
		return err
	}
	if rel, err := filepath.Rel(dir, abs); err == nil && filepath.IsLocal(rel) {
		return fmt.Errorf("-clean: refusing to remove %s, it contains the configuration file; set source.dir or -work-dir", dir)
	}
	if _, err := os.Lstat(dir); os.IsNotExist(err) {
		return nil
	}
	origin, err := source.Origin(dir)
	if err != nil {
		return fmt.Errorf("-clean: refusing to remove %s, it is not a checkout of %s: %v", dir, repo, err)
	}
	if origin != repo {
		return fmt.Errorf("-clean: refusing to remove %s, it is a checkout of %s, not %s", dir, origin, repo)
	}
	return nil
}

func stdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

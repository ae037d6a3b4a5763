// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	shellquote "github.com/kballard/go-shellquote"

	"golang.org/x/perfcheck/common"
	"golang.org/x/perfcheck/common/log"
)

// Build compiles the tool under test. The artifact exists afterwards if
// and only if the build command exited zero.
type Build struct{}

func (Build) Name() string { return "build" }

func artifactPath(st *State) string {
	p := st.Config.Build.Artifact
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(st.Config.Source.Dir, p)
}

func (Build) Run(ctx context.Context, st *State) error {
	cfg := st.Config
	args, err := shellquote.Split(cfg.Build.Command)
	if err != nil {
		return fmt.Errorf("parsing build command %q: %v", cfg.Build.Command, err)
	}
	if len(args) == 0 {
		return fmt.Errorf("empty build command")
	}
	env := st.Env.Merge(cfg.Build.Env.Env)
	tool, err := common.LookTool(args[0], cfg.Source.Dir, env)
	if err != nil {
		return err
	}
	tool.Stdout = st.Stdout()
	tool.Stderr = st.Stderr()

	artifact := artifactPath(st)
	if err := tool.Do(ctx, cfg.Source.Dir, args[1:]...); err != nil {
		// A previous build may have left an artifact behind, for
		// example one restored from the cache. It must not be mistaken
		// for the output of this one.
		if rerr := os.Remove(artifact); rerr == nil {
			log.Printf("Removed stale artifact %s", artifact)
		}
		return fmt.Errorf("build command exited with status %d: %w", common.ExitCode(err), err)
	}

	fi, err := os.Stat(artifact)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNoArtifact, artifact)
	} else if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() || !common.IsExecutable(artifact) {
		return fmt.Errorf("%s is not an executable file", artifact)
	}
	st.Artifact = &Artifact{Path: artifact, Size: fi.Size()}
	log.Printf("Built %s", artifact)
	return nil
}

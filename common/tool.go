// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/perfcheck/common/log"
)

// Tool is an external program invoked by the pipeline.
type Tool struct {
	// Path is the resolved location of the program.
	Path string

	// Env is the complete environment the program runs with.
	Env *Env

	// Stdout and Stderr receive the program's output verbatim. If both
	// are nil, output is captured and stderr is attached to the returned
	// error instead.
	Stdout, Stderr io.Writer
}

// LookTool resolves name against the PATH of env. A relative name with a
// path separator, such as "./build.sh", is resolved against dir, the
// directory the tool will run in.
func LookTool(name, dir string, env *Env) (*Tool, error) {
	if dir != "" && !filepath.IsAbs(name) && strings.ContainsAny(name, `/`+string(filepath.Separator)) {
		name = filepath.Join(dir, name)
	}
	path, err := env.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("looking for %s: %w", name, err)
	}
	return &Tool{Path: path, Env: env}, nil
}

func (t *Tool) command(ctx context.Context, dir string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, t.Path, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	if t.Env != nil {
		cmd.Env = t.Env.Collapse()
	}
	return cmd
}

// Do runs the tool with args in dir and waits for it to exit.
func (t *Tool) Do(ctx context.Context, dir string, args ...string) error {
	cmd := t.command(ctx, dir, args...)
	log.TraceCommand(cmd)
	if t.Stdout != nil || t.Stderr != nil {
		cmd.Stdout = t.Stdout
		cmd.Stderr = t.Stderr
		return cmd.Run()
	}
	// Use cmd.Output to get an ExitError with Stderr populated.
	_, err := cmd.Output()
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		// ExitError includes stderr, but doesn't include it in Error.
		return fmt.Errorf("%w. stderr:\n%s", err, ee.Stderr)
	}
	return err
}

// ExitCode extracts the exit status from an error returned by Do. It
// returns 0 for a nil error and -1 if the process did not exit normally.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}

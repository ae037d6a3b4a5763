// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pipeline runs the build-benchmark-report sequence: prepare the
// source and cache, install the benchmarking utility, build the tool under
// test, then time it against a fixture and report its size.
//
// Stages run strictly in order. The first failing stage ends the run; no
// stage is retried and nothing after it executes.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/perfcheck/cache"
	"golang.org/x/perfcheck/common"
	"golang.org/x/perfcheck/common/gcs"
	"golang.org/x/perfcheck/common/log"
	"golang.org/x/perfcheck/fetch"
	"golang.org/x/perfcheck/install"
	"golang.org/x/perfcheck/source"
)

// ErrNoArtifact is returned when the build artifact is needed but absent.
var ErrNoArtifact = errors.New("build artifact is missing")

// Stage is one step of the pipeline.
type Stage interface {
	Name() string
	Run(ctx context.Context, st *State) error
}

// Poster is implemented by stages with work to do after every stage has
// succeeded, such as saving the cache.
type Poster interface {
	Post(ctx context.Context, st *State) error
}

// Artifact is the executable produced by the build stage.
type Artifact struct {
	Path string
	Size int64
}

// Measurement holds what the measurement stage reported.
type Measurement struct {
	// Summary is parsed from the benchmarking utility's JSON export, or
	// nil if no export was requested.
	Summary *Summary

	// Size is the artifact's length in bytes at measurement time.
	Size int64
}

// State is shared by the stages of a single run. The fields in the first
// group are inputs; the rest are filled in as stages complete.
type State struct {
	Config *common.ConfigFile

	// Env is the environment of every sub-process. The tool installer
	// extends it with the bin directory.
	Env *common.Env

	// Out receives sub-process standard output and the report. Err
	// receives sub-process standard error.
	Out, Err io.Writer

	Store      cache.Store
	BinDir     string
	Registry   install.Registry
	Platform   common.Platform
	Auth       gcs.AuthOption
	HTTPClient *http.Client

	Checkout    *source.Checkout
	CacheKey    string
	CachePaths  []string
	CacheHit    bool
	Installed   []string
	Artifact    *Artifact
	Fixture     *fetch.Fixture
	Measurement *Measurement

	capture *lockedBuffer
}

// NewState returns a State for cfg with output on the process's stdout and
// stderr, no cache, and the default package registry.
func NewState(cfg *common.ConfigFile) *State {
	return &State{
		Config:   cfg,
		Env:      common.NewEnvFromEnviron().Merge(cfg.Env.Env),
		Out:      os.Stdout,
		Err:      os.Stderr,
		Store:    cache.Disabled{},
		Registry: install.DefaultRegistry().Apply(cfg.Tools),
		Platform: common.CurrentPlatform(),
	}
}

// Stdout returns the writer for sub-process standard output during the
// current stage.
func (st *State) Stdout() io.Writer {
	if st.capture == nil {
		return st.Out
	}
	return io.MultiWriter(st.Out, st.capture)
}

// Stderr is like Stdout for standard error.
func (st *State) Stderr() io.Writer {
	if st.capture == nil {
		return st.Err
	}
	return io.MultiWriter(st.Err, st.capture)
}

// Result records the outcome of one stage.
type Result struct {
	Stage    string
	Err      error
	Output   []byte
	Duration time.Duration
}

// OK reports whether the stage succeeded.
func (r *Result) OK() bool { return r.Err == nil }

// StageError reports the stage that ended a run.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// DefaultStages returns the four pipeline stages in order.
func DefaultStages() []Stage {
	return []Stage{
		Prepare{},
		InstallTools{},
		Build{},
		Measure{},
	}
}

// Runner executes an ordered list of stages.
type Runner struct {
	Stages []Stage
}

// Run executes the stages in order and returns a Result for each stage
// that ran. On the first failure it stops and returns a *StageError.
// Post steps run in reverse order only after every stage succeeded; their
// failures are logged but do not fail the run.
func (r *Runner) Run(ctx context.Context, st *State) ([]Result, error) {
	var results []Result
	for _, s := range r.Stages {
		log.Printf("Stage %s", s.Name())
		st.capture = new(lockedBuffer)
		start := time.Now()
		err := s.Run(ctx, st)
		res := Result{
			Stage:    s.Name(),
			Err:      err,
			Output:   st.capture.Bytes(),
			Duration: time.Since(start),
		}
		st.capture = nil
		results = append(results, res)
		if err != nil {
			return results, &StageError{Stage: s.Name(), Err: err}
		}
		log.Printf("Stage %s finished in %v", s.Name(), res.Duration.Round(time.Millisecond))
	}
	for i := len(r.Stages) - 1; i >= 0; i-- {
		p, ok := r.Stages[i].(Poster)
		if !ok {
			continue
		}
		if err := p.Post(ctx, st); err != nil {
			log.Printf("warning: post step of %s failed: %v", r.Stages[i].Name(), err)
		}
	}
	return results, nil
}

// Run runs the default stages.
func Run(ctx context.Context, st *State) error {
	_, err := (&Runner{Stages: DefaultStages()}).Run(ctx, st)
	return err
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

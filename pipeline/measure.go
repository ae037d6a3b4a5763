// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	shellquote "github.com/kballard/go-shellquote"

	"golang.org/x/perfcheck/common"
	"golang.org/x/perfcheck/common/log"
	"golang.org/x/perfcheck/fetch"
)

// Measure downloads the fixture, times the artifact against it with the
// benchmarking utility and reports the artifact's size. Each step runs
// only if the previous one succeeded.
type Measure struct{}

func (Measure) Name() string { return "measure" }

func (Measure) Run(ctx context.Context, st *State) error {
	if st.Artifact == nil {
		return ErrNoArtifact
	}
	cfg := st.Config
	dir := cfg.Source.Dir

	dst := filepath.Join(dir, fetch.FileName(cfg.Measure.Fixture))
	log.Printf("Downloading fixture %s", cfg.Measure.Fixture)
	fx, err := fetch.Get(ctx, cfg.Measure.Fixture, dst, &fetch.Options{
		SHA256: cfg.Measure.SHA256,
		Auth:   st.Auth,
		Client: st.HTTPClient,
	})
	if err != nil {
		return fmt.Errorf("retrieving fixture: %w", err)
	}
	st.Fixture = fx
	log.Printf("Fixture %s: %d bytes, sha256 %s", fx.Path, fx.Size, fx.SHA256)

	summary, err := timeArtifact(ctx, st)
	if err != nil {
		return err
	}

	size, err := ReportSize(st.Out, st.Artifact.Path)
	if err != nil {
		return err
	}
	st.Measurement = &Measurement{Summary: summary, Size: size}
	return nil
}

// BenchArgs returns the benchmarking utility's arguments for timing
// artifact against fixture.
func BenchArgs(cfg *common.MeasureConfig, artifact, fixture, exportJSON string) []string {
	var args []string
	if cfg.Warmup != nil {
		args = append(args, "--warmup", strconv.Itoa(*cfg.Warmup))
	}
	if cfg.Runs > 0 {
		args = append(args, "--runs", strconv.Itoa(cfg.Runs))
	}
	if exportJSON != "" {
		args = append(args, "--export-json", exportJSON)
	}
	return append(args, shellquote.Join(artifact, cfg.Subcommand, fixture))
}

func timeArtifact(ctx context.Context, st *State) (*Summary, error) {
	cfg := st.Config
	tool, err := common.LookTool(cfg.Measure.Tool, cfg.Source.Dir, st.Env)
	if err != nil {
		return nil, err
	}
	tool.Stdout = st.Stdout()
	tool.Stderr = st.Stderr()

	export := cfg.Measure.ExportJSON
	if export != "" && !filepath.IsAbs(export) {
		export = filepath.Join(cfg.Source.Dir, export)
	}
	args := BenchArgs(&cfg.Measure, st.Artifact.Path, st.Fixture.Path, export)
	if err := tool.Do(ctx, cfg.Source.Dir, args...); err != nil {
		return nil, fmt.Errorf("benchmarking %s: %w", st.Artifact.Path, err)
	}
	if export == "" {
		return nil, nil
	}
	summary, err := ReadSummary(export)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", export, err)
	}
	log.Printf("%s", summary)
	return summary, nil
}

// ReportSize writes the size line for the file at path to w and returns
// the size.
func ReportSize(w io.Writer, path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if _, err := fmt.Fprintf(w, "Binary is %d bytes\n", fi.Size()); err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

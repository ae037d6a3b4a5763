// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Summary is the timing summary of one benchmarked command, in seconds,
// as exported by the benchmarking utility.
type Summary struct {
	Command string    `json:"command"`
	Mean    float64   `json:"mean"`
	Stddev  float64   `json:"stddev"`
	Median  float64   `json:"median"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Times   []float64 `json:"times"`
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (s *Summary) String() string {
	return fmt.Sprintf("%s: mean %v ± %v, min %v, max %v over %d runs",
		s.Command, seconds(s.Mean), seconds(s.Stddev), seconds(s.Min), seconds(s.Max), len(s.Times))
}

// ReadSummary parses a JSON export and returns the first result.
func ReadSummary(name string) (*Summary, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	var export struct {
		Results []*Summary `json:"results"`
	}
	if err := json.Unmarshal(b, &export); err != nil {
		return nil, err
	}
	if len(export.Results) == 0 {
		return nil, fmt.Errorf("no results")
	}
	return export.Results[0], nil
}

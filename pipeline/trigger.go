// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"path"

	"golang.org/x/perfcheck/common"
)

const (
	EventPush        = "push"
	EventPullRequest = "pull_request"
)

// ShouldRun reports whether an event on branch triggers the pipeline. For
// pull requests branch is the target branch. Branch entries may be
// path.Match patterns. When the pipeline should not run, the reason is
// returned.
func ShouldRun(cfg *common.TriggerConfig, event, branch string) (bool, string) {
	switch event {
	case EventPush, EventPullRequest:
	default:
		return false, fmt.Sprintf("event %q does not trigger the pipeline", event)
	}
	for _, b := range cfg.Branches {
		if ok, _ := path.Match(b, branch); ok {
			return true, ""
		}
	}
	return false, fmt.Sprintf("branch %q is not one of %v", branch, cfg.Branches)
}

// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package log provides the two loggers used by perfcheck: an activity log
// on stderr describing what the pipeline is doing, and a command trace on
// stdout that prints every sub-process as an equivalent shell command.
package log

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"

	shellquote "github.com/kballard/go-shellquote"
)

var (
	mu             sync.Mutex
	cmdLog, actLog *log.Logger
	cmdOn, actOn   = false, true
	envMap         map[string]string
)

func init() {
	cmdLog = log.New(os.Stdout, "[shell] ", 0)
	actLog = log.New(os.Stderr, "[perfcheck] ", 0)
	envMap = makeEnvironMap()
}

func makeEnvironMap() map[string]string {
	envmap := make(map[string]string)
	for _, e := range os.Environ() {
		s := strings.SplitN(e, "=", 2)
		if len(s) != 2 {
			continue
		}
		envmap[s[0]] = s[1]
	}
	return envmap
}

func SetCommandTrace(on bool) {
	mu.Lock()
	defer mu.Unlock()
	cmdOn = on
}

func SetActivityLog(on bool) {
	mu.Lock()
	defer mu.Unlock()
	actOn = on
}

// SetOutput redirects the command trace and activity log. A nil writer
// leaves the corresponding logger unchanged.
func SetOutput(cmd, act io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if cmd != nil {
		cmdLog.SetOutput(cmd)
	}
	if act != nil {
		actLog.SetOutput(act)
	}
}

func enabled(p *bool) bool {
	mu.Lock()
	defer mu.Unlock()
	return *p
}

// filterAndQuoteEnviron drops variables inherited unchanged from the
// process environment so traces only show what the pipeline added.
func filterAndQuoteEnviron(env []string) []string {
	fenv := make([]string, 0, len(env))
	for _, e := range env {
		s := strings.SplitN(e, "=", 2)
		if len(s) != 2 {
			continue
		}
		if v, ok := envMap[s[0]]; ok && v == s[1] {
			continue
		}
		fenv = append(fenv, fmt.Sprintf("%s=%s", s[0], shellquote.Join(s[1])))
	}
	return fenv
}

func TraceCommand(cmd *exec.Cmd) {
	if !enabled(&cmdOn) {
		return
	}
	senv := ""
	if len(cmd.Env) != 0 {
		senv = strings.Join(filterAndQuoteEnviron(cmd.Env), " ")
	}
	if cmd.Dir != "" {
		cmdLog.Printf("pushd %s", shellquote.Join(cmd.Dir))
	}
	sarg := shellquote.Join(cmd.Args...)
	if senv != "" {
		cmdLog.Printf("%s %s", senv, sarg)
	} else {
		cmdLog.Print(sarg)
	}
	if cmd.Dir != "" {
		cmdLog.Printf("popd")
	}
}

func CommandPrintf(format string, args ...interface{}) {
	if !enabled(&cmdOn) {
		return
	}
	cmdLog.Printf(format, args...)
}

func Printf(format string, args ...interface{}) {
	if !enabled(&actOn) {
		return
	}
	actLog.Printf(format, args...)
}

func Print(args ...interface{}) {
	if !enabled(&actOn) {
		return
	}
	actLog.Print(args...)
}

// Error always logs, regardless of SetActivityLog. Stderr captured in an
// *exec.ExitError is printed after the message.
func Error(err error) {
	actLog.Printf("error: %v", err)
	var ee *exec.ExitError
	if errors.As(err, &ee) && len(ee.Stderr) != 0 {
		actLog.Printf("output:\n%s", string(ee.Stderr))
	}
}

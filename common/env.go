// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package common

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Env is an immutable, layered set of environment variables. Each call to
// Set produces a new layer whose values shadow those of its parent, so a
// stage can extend the pipeline environment without affecting other stages.
type Env struct {
	parent *Env
	data   map[string]string
}

func varsToMap(vars ...string) (map[string]string, error) {
	env := make(map[string]string)
	for _, v := range vars {
		s := strings.SplitN(v, "=", 2)
		if len(s) != 2 || s[0] == "" {
			return nil, fmt.Errorf("%q is not a valid environment variable", v)
		}
		env[s[0]] = s[1]
	}
	return env, nil
}

func NewEnvFromEnviron() *Env {
	env, err := NewEnv(environ()...)
	if err != nil {
		panic(err)
	}
	return env
}

// environ is os.Environ without the entries Windows uses for per-drive
// working directories, which begin with '='.
func environ() []string {
	var vars []string
	for _, v := range os.Environ() {
		if strings.HasPrefix(v, "=") {
			continue
		}
		vars = append(vars, v)
	}
	return vars
}

func NewEnv(vars ...string) (*Env, error) {
	m, err := varsToMap(vars...)
	if err != nil {
		return nil, err
	}
	return &Env{data: m}, nil
}

func (e *Env) Set(vars ...string) (*Env, error) {
	m, err := varsToMap(vars...)
	if err != nil {
		return nil, err
	}
	return &Env{
		data:   m,
		parent: e,
	}, nil
}

func (e *Env) MustSet(vars ...string) *Env {
	env, err := e.Set(vars...)
	if err != nil {
		panic(err)
	}
	return env
}

// Merge layers all variables of o on top of e. A nil o returns e.
func (e *Env) Merge(o *Env) *Env {
	if o == nil {
		return e
	}
	return e.MustSet(o.Collapse()...)
}

func (e *Env) Lookup(name string) (string, bool) {
	for t := e; t != nil; t = t.parent {
		if v, ok := t.data[name]; ok {
			return v, true
		}
	}
	return "", false
}

func (e *Env) Prefix(name, prefix string) *Env {
	v, _ := e.Lookup(name)
	return e.MustSet(fmt.Sprintf("%s=%s%s", name, prefix, v))
}

// PrependPath returns a new Env with dir placed first on PATH.
func (e *Env) PrependPath(dir string) *Env {
	if _, ok := e.Lookup("PATH"); !ok {
		return e.MustSet("PATH=" + dir)
	}
	return e.Prefix("PATH", dir+string(os.PathListSeparator))
}

// LookPath searches the directories of the Env's PATH for an executable
// named file. Unlike exec.LookPath it ignores the process environment, so
// binaries installed into a directory that was only prepended to this Env
// are found.
func (e *Env) LookPath(file string) (string, error) {
	if strings.ContainsRune(file, filepath.Separator) || strings.ContainsRune(file, '/') {
		if isExecutable(file) {
			return file, nil
		}
		return "", fmt.Errorf("%s: not an executable file", file)
	}
	path, _ := e.Lookup("PATH")
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		for _, name := range executableNames(file) {
			p := filepath.Join(dir, name)
			if isExecutable(p) {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("%s: executable file not found in $PATH", file)
}

// Collapse flattens the layers into a sorted KEY=VALUE list suitable for
// exec.Cmd.Env.
func (e *Env) Collapse() []string {
	c := make(map[string]string)
	for t := e; t != nil; t = t.parent {
		for k, v := range t.data {
			if _, ok := c[k]; !ok {
				c[k] = v
			}
		}
	}
	env := make([]string, 0, len(c))
	for k, v := range c {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(env)
	return env
}

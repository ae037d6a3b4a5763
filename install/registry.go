// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package install

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/perfcheck/common"
)

var (
	ErrUnknownPackage = errors.New("unknown package")
	ErrIncompatible   = errors.New("no prebuilt binary for this platform")
)

// Package describes a prebuilt binary published as a release archive.
type Package struct {
	Name    string
	Version string

	// URL is a text/template producing the archive location from
	// .Version and .Triple.
	URL string

	// Binary is the name of the executable inside the archive.
	Binary string
}

type urlData struct {
	Version string
	Triple  string
}

// ArchiveURL expands the package's URL template for platform p.
func (pkg *Package) ArchiveURL(p common.Platform) (string, error) {
	triple, ok := p.Triple()
	if !ok {
		return "", fmt.Errorf("%s on %s: %w", pkg.Name, p, ErrIncompatible)
	}
	tmpl, err := template.New(pkg.Name).Option("missingkey=error").Parse(pkg.URL)
	if err != nil {
		return "", fmt.Errorf("parsing URL template for %s: %v", pkg.Name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, urlData{Version: pkg.Version, Triple: triple}); err != nil {
		return "", fmt.Errorf("expanding URL template for %s: %v", pkg.Name, err)
	}
	return buf.String(), nil
}

// Registry resolves package names to packages.
type Registry map[string]*Package

// DefaultRegistry lists the packages installable without configuration.
func DefaultRegistry() Registry {
	return Registry{
		"hyperfine": {
			Name:    "hyperfine",
			Version: "1.18.0",
			URL:     "https://github.com/sharkdp/hyperfine/releases/download/v{{.Version}}/hyperfine-v{{.Version}}-{{.Triple}}.tar.gz",
			Binary:  "hyperfine",
		},
	}
}

// Lookup returns a copy of the named package.
func (r Registry) Lookup(name string) (*Package, error) {
	pkg, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w (known packages: %s)", name, ErrUnknownPackage, strings.Join(r.Names(), ", "))
	}
	cp := *pkg
	return &cp, nil
}

// Apply overlays configured tools on r: a configured version or URL
// replaces the registry's, and tools with a URL may add new packages.
func (r Registry) Apply(tools []*common.ToolConfig) Registry {
	out := make(Registry, len(r)+len(tools))
	for k, v := range r {
		cp := *v
		out[k] = &cp
	}
	for _, t := range tools {
		pkg, ok := out[t.Name]
		if !ok {
			if t.URL == "" {
				// Left unresolved so that installing it reports
				// ErrUnknownPackage.
				continue
			}
			pkg = &Package{Name: t.Name}
			out[t.Name] = pkg
		}
		if t.Version != "" {
			pkg.Version = t.Version
		}
		if t.URL != "" {
			pkg.URL = t.URL
		}
		if t.Binary != "" {
			pkg.Binary = t.Binary
		}
		if pkg.Binary == "" {
			pkg.Binary = pkg.Name
		}
	}
	return out
}

// Names returns the registered package names, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

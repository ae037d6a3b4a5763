// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/perfcheck/install"
)

// InstallTools installs the configured packages and puts their bin
// directory first on PATH for the remaining stages.
type InstallTools struct{}

func (InstallTools) Name() string { return "install" }

func (InstallTools) Run(ctx context.Context, st *State) error {
	if st.BinDir == "" {
		return fmt.Errorf("no bin directory configured")
	}
	in := &install.Installer{
		BinDir:   st.BinDir,
		Registry: st.Registry,
		Platform: st.Platform,
		Client:   st.HTTPClient,
	}
	installed, err := in.Install(ctx, st.Config.ToolNames()...)
	if err != nil {
		return err
	}
	st.Installed = installed
	st.Env = st.Env.PrependPath(st.BinDir)
	return nil
}

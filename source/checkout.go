// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package source obtains the source tree the pipeline builds.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"golang.org/x/perfcheck/common/log"
)

type Spec struct {
	// Repo is the URL to clone. Empty means Dir already holds the
	// source.
	Repo string

	// Ref is a branch, tag or revision to check out. Empty keeps the
	// current HEAD, or the remote's default branch for fresh clones.
	Ref string

	Dir string

	// Progress receives clone and fetch progress. May be nil.
	Progress io.Writer
}

type Checkout struct {
	Dir string

	// Head is the checked out commit, or empty if Dir is not a git
	// repository.
	Head string

	Cloned bool
}

// Get produces a populated working directory for spec.
func Get(ctx context.Context, spec Spec) (*Checkout, error) {
	co := &Checkout{Dir: spec.Dir}
	repo, err := git.PlainOpen(spec.Dir)
	switch {
	case errors.Is(err, git.ErrRepositoryNotExists) && spec.Repo == "":
		if spec.Ref != "" {
			return nil, fmt.Errorf("cannot check out %s: %s is not a git repository", spec.Ref, spec.Dir)
		}
		log.Printf("Using source in %s", spec.Dir)
		return co, nil
	case errors.Is(err, git.ErrRepositoryNotExists):
		log.CommandPrintf("git clone %s %s", spec.Repo, spec.Dir)
		repo, err = git.PlainCloneContext(ctx, spec.Dir, false, &git.CloneOptions{
			URL:      spec.Repo,
			Progress: spec.Progress,
		})
		if err != nil {
			return nil, fmt.Errorf("cloning %s: %w", spec.Repo, err)
		}
		co.Cloned = true
	case err != nil:
		return nil, fmt.Errorf("opening %s: %w", spec.Dir, err)
	case spec.Repo != "":
		if err := fetch(ctx, repo, spec.Progress); err != nil {
			return nil, err
		}
	}

	if spec.Ref != "" {
		if err := checkout(repo, spec.Ref); err != nil {
			return nil, err
		}
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD in %s: %w", spec.Dir, err)
	}
	co.Head = head.Hash().String()
	log.Printf("Source %s at %s", spec.Dir, co.Head)
	return co, nil
}

func fetch(ctx context.Context, repo *git.Repository, progress io.Writer) error {
	if _, err := repo.Remote(git.DefaultRemoteName); errors.Is(err, git.ErrRemoteNotFound) {
		return nil
	} else if err != nil {
		return err
	}
	log.CommandPrintf("git fetch %s", git.DefaultRemoteName)
	err := repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: git.DefaultRemoteName,
		Tags:       git.AllTags,
		Progress:   progress,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetching %s: %w", git.DefaultRemoteName, err)
	}
	return nil
}

// resolve finds ref as a local name, a remote-tracking branch or a
// revision expression.
func resolve(repo *git.Repository, ref string) (*plumbing.Hash, error) {
	candidates := []string{ref, git.DefaultRemoteName + "/" + ref}
	var firstErr error
	for _, c := range candidates {
		h, err := repo.ResolveRevision(plumbing.Revision(c))
		if err == nil {
			return h, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("resolving %s: %w", ref, firstErr)
}

func checkout(repo *git.Repository, ref string) error {
	h, err := resolve(repo, ref)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	log.CommandPrintf("git checkout --force %s", h)
	if err := wt.Checkout(&git.CheckoutOptions{Hash: *h, Force: true}); err != nil {
		return fmt.Errorf("checking out %s: %w", ref, err)
	}
	return nil
}

// Origin returns the first URL of the origin remote of the repository in
// dir. It returns git.ErrRepositoryNotExists if dir is not a repository.
func Origin(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", err
	}
	remote, err := repo.Remote(git.DefaultRemoteName)
	if err != nil {
		return "", fmt.Errorf("%s: %w", dir, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("%s: remote %s has no URL", dir, git.DefaultRemoteName)
	}
	return urls[0], nil
}

// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package subcommands is the command registry behind the perfcheck binary.
package subcommands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"unicode/utf8"
)

const Version = "v0.1.0"

const (
	usageHeader = `perfcheck %s: build, benchmark and size check

`
	usageTop = `perfcheck prepares a source tree and its dependency cache, installs a
benchmarking utility, builds the tool under test in release mode with debug
symbols, then times it against a fixture and reports its size in bytes.

Usage: %s <subcommand> [subcommand flags] [subcommand args]

Subcommands:
`
)

var (
	base string
	cmds []*command
	out  io.Writer
)

func init() {
	base = filepath.Base(os.Args[0])
	out = os.Stderr
}

type command struct {
	Command
	flags *flag.FlagSet
}

func (c *command) usage() {
	fmt.Fprintf(out, usageHeader, Version)
	c.PrintUsage(out, base)
	c.flags.PrintDefaults()
}

type Command interface {
	Name() string
	Synopsis() string
	PrintUsage(w io.Writer, base string)
	SetFlags(f *flag.FlagSet)
	Run(ctx context.Context, args []string) error
}

// Register adds cmd to the registry. Registering two commands with the same
// name panics.
func Register(cmd Command) {
	for _, c := range cmds {
		if c.Name() == cmd.Name() {
			panic("subcommands: duplicate command " + cmd.Name())
		}
	}
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	f.SetOutput(out)
	cmd.SetFlags(f)
	c := &command{
		Command: cmd,
		flags:   f,
	}
	f.Usage = func() {
		c.usage()
	}
	cmds = append(cmds, c)
}

func usage() {
	fmt.Fprintf(out, usageHeader, Version)
	fmt.Fprintf(out, usageTop, base)
	maxnamelen := 10
	for _, c := range cmds {
		l := utf8.RuneCountInString(c.Name())
		if l > maxnamelen {
			maxnamelen = l
		}
	}
	for _, c := range cmds {
		fmt.Fprintf(out, fmt.Sprintf("  %%%ds: %%s\n", maxnamelen), c.Name(), c.Synopsis())
	}
}

// Run dispatches os.Args to a registered command and returns the process
// exit status. The command's context is cancelled on SIGINT or SIGTERM.
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunArgs(ctx, os.Args[1:])
}

// RunArgs is like Run with explicit arguments, not including the program
// name.
func RunArgs(ctx context.Context, args []string) int {
	if len(args) < 1 {
		usage()
		return 1
	}
	subcmd := args[0]
	if subcmd == "help" {
		if len(args) >= 2 {
			subhelp := args[1]
			for _, cmd := range cmds {
				if cmd.Name() == subhelp {
					cmd.usage()
					return 0
				}
			}
		}
		usage()
		return 0
	}
	var chosen *command
	for _, cmd := range cmds {
		if cmd.Name() == subcmd {
			chosen = cmd
			break
		}
	}
	if chosen == nil {
		fmt.Fprintf(out, "unknown subcommand: %q\n", subcmd)
		fmt.Fprintln(out)
		usage()
		return 1
	}
	if err := chosen.flags.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if err := chosen.Run(ctx, chosen.flags.Args()); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return 1
	}
	return 0
}

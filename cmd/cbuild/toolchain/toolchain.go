// Copyright 2025 cbuild Authors.
// All rights reserved

// Package toolchain contains commands for managing the build toolchain
// staged into a profile's build root.
package toolchain

import (
	"github.com/alecthomas/kong"

	"github.com/distrocore/cbuild/internal/clictx"
)

// Cmd contains commands for managing the build toolchain.
type Cmd struct {
	Bootstrap bootstrapCmd `cmd:"" help:"Ensure the static package manager is staged into the profile's build root."`

	Flags clictx.Flags `embed:""`
}

// AfterApply constructs and binds the shared CLI context to subcommands.
func (c *Cmd) AfterApply(kongCtx *kong.Context) error {
	cctx, err := clictx.NewFromFlags(c.Flags)
	if err != nil {
		return err
	}
	kongCtx.Bind(cctx, c.Flags)
	return nil
}

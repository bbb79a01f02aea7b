// Copyright 2025 cbuild Authors.
// All rights reserved

// Package profile contains commands for managing build profiles.
package profile

import (
	"github.com/alecthomas/kong"

	"github.com/distrocore/cbuild/internal/clictx"
)

// Cmd contains commands for managing build profiles.
type Cmd struct {
	List   listCmd   `cmd:"" help:"List build profiles."`
	Create createCmd `cmd:"" help:"Create a new build profile."`
	Use    useCmd    `cmd:"" help:"Select a build profile as the default."`
	Delete deleteCmd `cmd:"" help:"Delete a build profile."`
	Rename renameCmd `cmd:"" help:"Rename a build profile."`

	Flags clictx.Flags `embed:""`
}

// AfterApply constructs and binds the shared CLI context to subcommands.
func (c *Cmd) AfterApply(kongCtx *kong.Context) error {
	cctx, err := clictx.NewFromFlags(c.Flags, clictx.AllowMissingProfile())
	if err != nil {
		return err
	}
	kongCtx.Bind(cctx, c.Flags)
	return nil
}

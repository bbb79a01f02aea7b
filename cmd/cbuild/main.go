// Copyright 2025 cbuild Authors.
// All rights reserved

package main

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/pterm/pterm"

	"github.com/distrocore/cbuild/cmd/cbuild/profile"
	"github.com/distrocore/cbuild/cmd/cbuild/toolchain"
	"github.com/distrocore/cbuild/cmd/cbuild/version"
	"github.com/distrocore/cbuild/internal/clictx"
	"github.com/distrocore/cbuild/internal/config"
	"github.com/distrocore/cbuild/internal/upterm"
)

// AfterApply configures global settings before executing commands.
func (c *cli) AfterApply(ctx *kong.Context) error { //nolint:unparam // Kong requires an error return.
	if c.Quiet {
		ctx.Stdout, ctx.Stderr = io.Discard, io.Discard
	}
	ctx.BindTo(pterm.DefaultBasicText.WithWriter(ctx.Stdout), (*pterm.TextPrinter)(nil))
	if !c.Pretty {
		// NOTE: enabling styling can make processing output with other
		// tooling difficult.
		pterm.DisableStyling()
	}

	printer := upterm.DefaultObjPrinter
	printer.DryRun = c.DryRun
	printer.Format = c.Format
	printer.Pretty = c.Pretty
	printer.Quiet = c.Quiet

	ctx.Bind(printer)
	ctx.BindTo(&printer, (*upterm.Printer)(nil))
	ctx.Bind(c.Quiet)

	cctx, err := clictx.NewFromFlags(c.Flags, clictx.AllowMissingProfile())
	if err != nil {
		return err
	}
	ctx.Bind(cctx)

	return nil
}

type cli struct {
	Format config.Format    `default:"default"           enum:"default,json,yaml" help:"Format for resolve, build, templates and version output. Can be: json, yaml, default" name:"format"`
	Quiet  config.QuietFlag `help:"Suppress all output." name:"quiet"             short:"q"`
	Pretty bool             `help:"Pretty print output." name:"pretty"`
	DryRun bool             `help:"dry-run output."      name:"dry-run"`

	Flags clictx.Flags `embed:""`

	// Resolve and build packages
	Resolve   resolveCmd   `cmd:"" group:"Resolve and build packages" help:"Resolve a package's dependencies without building or installing anything."`
	Build     buildCmd     `cmd:"" group:"Resolve and build packages" help:"Resolve a package's dependencies and install them into the active profile's build root; fails if any must be built from source."`
	Templates templatesCmd `cmd:"" group:"Resolve and build packages" help:"List build templates found across the active profile's source roots."`

	// Configure cbuild
	Toolchain toolchain.Cmd `cmd:"" group:"Configure cbuild" help:"Manage the build toolchain staged into a profile's build root."`
	Profile   profile.Cmd   `cmd:"" group:"Configure cbuild" help:"Manage build profiles."`
	Help      helpCmd       `cmd:"" group:"Configure cbuild" help:"Show help."`
	Version   version.Cmd   `cmd:"" group:"Configure cbuild" help:"Show current version."`
}

type helpCmd struct{}

func (h *helpCmd) Run(ctx *kong.Context) error {
	_, err := ctx.Parse([]string{"--help"})
	return err
}

const helpDescription = `cbuild resolves and installs the dependencies of a source-based build, modeled on an Alpine-style abuild/apk-tools workflow.`

func main() {
	c := cli{}

	parser := kong.Must(&c,
		kong.Name("cbuild"),
		kong.Description(helpDescription),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}))

	if len(os.Args) == 1 {
		_, err := parser.Parse([]string{"--help"})
		parser.FatalIfErrorf(err)
		return
	}

	kongCtx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	kongCtx.BindTo(context.Background(), (*context.Context)(nil))
	kongCtx.FatalIfErrorf(kongCtx.Run())
}

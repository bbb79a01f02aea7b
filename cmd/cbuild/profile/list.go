// Copyright 2025 cbuild Authors.
// All rights reserved

package profile

import (
	"sort"

	"github.com/alecthomas/kong"
	"github.com/pterm/pterm"

	"github.com/distrocore/cbuild/internal/clictx"
)

var errNoProfiles = "No profiles found"

type listCmd struct{}

// AfterApply binds a table printer for Run.
func (c *listCmd) AfterApply(kongCtx *kong.Context) error {
	kongCtx.Bind(pterm.DefaultTable.WithWriter(kongCtx.Stdout).WithSeparator("   "))
	return nil
}

// Run executes the list command.
func (c *listCmd) Run(p pterm.TextPrinter, pt *pterm.TablePrinter, cctx *clictx.Context) error {
	profiles, err := cctx.Cfg.GetProfiles()
	if err != nil {
		p.Println(errNoProfiles)
		return nil //nolint:nilerr // Successfully list nothing if there are no profiles.
	}

	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	defaultName, _, _ := cctx.Cfg.GetDefaultProfile()

	data := make([][]string, len(names)+1)
	data[0] = []string{"CURRENT", "NAME", "ARCH", "CROSS", "BUILD ROOT"}
	for i, name := range names {
		cursor := ""
		if name == defaultName {
			cursor = "*"
		}
		prof := profiles[name]
		data[i+1] = []string{cursor, name, prof.Arch, boolStr(prof.Cross), prof.BuildRoot}
	}

	return pt.WithHasHeader().WithData(data).Render()
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

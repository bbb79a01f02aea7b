// Copyright 2025 cbuild Authors.
// All rights reserved

package main

import (
	"sort"

	"github.com/spf13/afero"

	"github.com/crossplane/crossplane-runtime/pkg/errors"

	"github.com/distrocore/cbuild/internal/clictx"
	"github.com/distrocore/cbuild/internal/filesystem"
	"github.com/distrocore/cbuild/internal/upterm"
)

// templatesCmd lists every build template found across the active
// profile's source-repository roots.
type templatesCmd struct{}

const templatesTemplate = `{{range .}}{{.}}
{{end}}`

func (c *templatesCmd) Run(cctx *clictx.Context, printer upterm.Printer) error {
	if len(cctx.Profile.SourceRoots) == 0 {
		return errors.New("active profile has no source roots configured")
	}

	fs := afero.NewOsFs()
	var found []string
	for _, root := range cctx.Profile.SourceRoots {
		dirs, err := filesystem.FindNestedFoldersWithPattern(fs, root, "template.py")
		if err != nil {
			return errors.Wrapf(err, "scanning %q for templates", root)
		}
		found = append(found, dirs...)
	}
	sort.Strings(found)

	return printer.PrintTemplate(found, templatesTemplate)
}

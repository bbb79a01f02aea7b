// Copyright 2025 cbuild Authors.
// All rights reserved

// Package version contains the version cmd
package version

import (
	"runtime"

	"github.com/distrocore/cbuild/internal/upterm"
	"github.com/distrocore/cbuild/internal/version"
)

const versionTemplate = `Version:	{{.Version}}
Git Commit:	{{.GitCommit}}
Go Version:	{{.GoVersion}}
OS/Arch:	{{.OS}}/{{.Arch}}
`

type clientVersion struct {
	Version   string `json:"version,omitempty"`
	GitCommit string `json:"gitCommit,omitempty"`
	GoVersion string `json:"goVersion,omitempty"`
	OS        string `json:"os,omitempty"`
	Arch      string `json:"arch,omitempty"`
}

// Cmd is the `cbuild version` command.
type Cmd struct{}

// Run is the implementation of the command.
func (c *Cmd) Run(printer upterm.Printer) error {
	v := clientVersion{
		Version:   version.Version(),
		GitCommit: version.GitCommit(),
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	return printer.PrintTemplate(v, versionTemplate)
}

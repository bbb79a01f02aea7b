// Copyright 2025 cbuild Authors.
// All rights reserved

package profile

import (
	"github.com/spf13/afero"

	"github.com/crossplane/crossplane-runtime/pkg/errors"

	"github.com/distrocore/cbuild/internal/clictx"
	"github.com/distrocore/cbuild/internal/filesystem"
	"github.com/distrocore/cbuild/internal/profile"
)

type createCmd struct {
	Name string `arg:"" help:"Name of the profile to create." required:""`
	Use  bool   `default:"true" help:"Use the new profile after it's created."`

	Arch        string   `default:"x86_64" help:"Target architecture." name:"arch"`
	Cross       bool     `help:"Cross-compile for Arch instead of building natively."`
	BuildRoot   string   `help:"Root directory converged by installs and builds." required:""`
	Sysroot     string   `help:"Root holding target-arch dependencies for a cross profile."`
	Repos       []string `help:"Repository URIs, highest priority first." name:"repo"`
	SourceRoots []string `help:"Source-repository roots probed for build templates." name:"source-root"`
	Mirror      string   `help:"Mirror host used to bootstrap the static package manager."`
	KeyPath     string   `help:"Signing key path; omit to allow untrusted packages."`

	Seed string `help:"Directory tree to copy into BuildRoot before the profile is recorded, seeding a skeleton chroot." name:"seed" type:"existingdir"`
}

func (c *createCmd) Run(cctx *clictx.Context) error {
	if _, err := cctx.Cfg.GetProfile(c.Name); err == nil {
		return errors.Errorf("a profile named %q already exists; use `cbuild profile rename` or delete it first", c.Name)
	}

	if c.Seed != "" {
		fs := afero.NewOsFs()
		empty, err := filesystem.IsFsEmpty(afero.NewBasePathFs(fs, c.BuildRoot))
		if err != nil {
			return errors.Wrap(err, "checking build root")
		}
		if !empty {
			return errors.Errorf("build root %q is not empty; refusing to seed over it", c.BuildRoot)
		}
		if err := filesystem.CopyFolder(fs, c.Seed, c.BuildRoot); err != nil {
			return errors.Wrapf(err, "seeding build root from %q", c.Seed)
		}
	}

	p := profile.Profile{
		Arch:        c.Arch,
		Cross:       c.Cross,
		BuildRoot:   c.BuildRoot,
		Sysroot:     c.Sysroot,
		Repos:       c.Repos,
		SourceRoots: c.SourceRoots,
		Mirror:      c.Mirror,
		KeyPath:     c.KeyPath,
	}

	if err := cctx.Cfg.AddOrUpdateProfile(c.Name, p); err != nil {
		return err
	}

	profiles, err := cctx.Cfg.GetProfiles()
	if err != nil {
		return err
	}
	if c.Use || len(profiles) == 1 {
		if err := cctx.Cfg.SetDefaultProfile(c.Name); err != nil {
			return errors.Wrap(err, "failed to use new profile")
		}
	}

	return errors.Wrap(cctx.CfgSrc.UpdateConfig(cctx.Cfg), "unable to create profile")
}

// Copyright 2025 cbuild Authors.
// All rights reserved

package template

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
	"github.com/spf13/afero"

	"github.com/distrocore/cbuild/internal/depcore"
)

// manifestFile is the sidecar read next to recipeFile by ManifestLoader.
const manifestFile = "meta.json"

// Manifest is the on-disk shape ManifestLoader reads. It mirrors the
// dependency-bearing fields of depcore.BuildContext that a real recipe
// parser would extract; ManifestLoader stands in for that parser, which
// this module treats as an opaque collaborator.
type Manifest struct {
	Pkgver      string               `json:"pkgver"`
	Pkgrel      string               `json:"pkgrel"`
	FullPkgname string               `json:"fullPkgname,omitempty"`

	RunCheck        bool                  `json:"runCheck,omitempty"`
	CheckDepends    []string              `json:"checkDepends,omitempty"`
	HostMakeDepends []string              `json:"hostMakeDepends,omitempty"`
	MakeDepends     []string              `json:"makeDepends,omitempty"`
	Depends         []string              `json:"depends,omitempty"`
	Subpackages     []ManifestSubpackage  `json:"subpackages,omitempty"`
}

// ManifestSubpackage is one entry of Manifest.Subpackages.
type ManifestSubpackage struct {
	PkgName string   `json:"pkgName"`
	Depends []string `json:"depends,omitempty"`
}

// ManifestLoader implements Loader by reading a meta.json file placed next
// to a recipe's template.py, rather than parsing the recipe itself. Recipe
// evaluation (how a real build tool would derive pkgver/pkgrel and
// dependency lists from a template.py's shell variables) is outside this
// module's concern; ManifestLoader only satisfies the Loader contract so
// the rest of the core can be exercised against real, named packages.
type ManifestLoader struct {
	FS afero.Fs
}

// NewManifestLoader returns a ManifestLoader reading manifests through fs.
func NewManifestLoader(fs afero.Fs) *ManifestLoader {
	return &ManifestLoader{FS: fs}
}

// LoadMeta implements Loader by reading the meta.json sibling of path.
func (l *ManifestLoader) LoadMeta(_ context.Context, path string, _ depcore.BuildContext) (Meta, error) {
	m, err := l.LoadManifest(path)
	if err != nil {
		return Meta{}, err
	}
	return Meta{Pkgver: m.Pkgver, Pkgrel: m.Pkgrel, FullPkgname: m.FullPkgname}, nil
}

// LoadManifest reads and parses the meta.json sibling of a recipe path,
// exposing the full dependency manifest beyond the Loader interface's
// narrower Meta contract.
func (l *ManifestLoader) LoadManifest(path string) (Manifest, error) {
	dir := filepath.Dir(path)
	mpath := filepath.Join(dir, manifestFile)

	raw, err := afero.ReadFile(l.FS, mpath)
	if err != nil {
		return Manifest{}, errors.Wrapf(err, "reading manifest %q", mpath)
	}

	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return Manifest{}, errors.Wrapf(err, "parsing manifest %q", mpath)
	}
	return m, nil
}

// BuildContext fills in the dependency-bearing fields of a BuildContext for
// pkgName from the manifest found under root/pkgName/meta.json, leaving the
// caller to set Profile, Stage, DepCheck, StateDir and BuildRoot.
func (l *ManifestLoader) BuildContext(pkgName, root string) (depcore.BuildContext, error) {
	m, err := l.LoadManifest(filepath.Join(root, pkgName, recipeFile))
	if err != nil {
		return depcore.BuildContext{}, err
	}

	bctx := depcore.BuildContext{
		PkgName:         pkgName,
		RunCheck:        m.RunCheck,
		CheckDepends:    m.CheckDepends,
		HostMakeDepends: m.HostMakeDepends,
		MakeDepends:     m.MakeDepends,
		Depends:         m.Depends,
	}
	for _, sp := range m.Subpackages {
		bctx.Subpackages = append(bctx.Subpackages, depcore.Subpackage{
			PkgName: sp.PkgName,
			Depends: sp.Depends,
		})
	}
	return bctx, nil
}

// Copyright 2025 cbuild Authors.
// All rights reserved

// Package bootstrap ensures the static package-manager binary is present
// in a build root before any stage > 0 install operation.
package bootstrap

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/klauspost/pgzip"
	"github.com/spf13/afero"

	"github.com/crossplane/crossplane-runtime/pkg/errors"

	"github.com/distrocore/cbuild/internal/depcore"
)

const (
	// staticBinary is the binary's path inside the build root once
	// installed.
	staticBinary = "usr/bin/apk.static"

	archiveURLFmt = "https://%s/%s/apk-tools-static-bin-%s.apk"
	indexURLFmt   = "https://%s/%s/apk-tools-static-bin-index.json"
)

// Fetcher retrieves bytes over HTTP. The default implementation wraps
// net/http; tests supply an in-memory fake.
type Fetcher interface {
	// Get returns the response body for url. Callers must Close it.
	Get(ctx context.Context, url string) (io.ReadCloser, error)
}

// IndexReader lists the apk-tools-static-bin release versions a mirror
// advertises, for semver-constrained selection.
type IndexReader interface {
	// ListVersions returns the advertised release versions at url.
	ListVersions(ctx context.Context, url string) ([]string, error)
}

// Bootstrapper ensures the static package manager exists in a build root.
type Bootstrapper struct {
	fetcher Fetcher
	index   IndexReader
	fs      afero.Fs
}

// New returns a Bootstrapper using fetcher for archive downloads, index for
// version discovery, and fs for staging and destination writes.
func New(fetcher Fetcher, index IndexReader, fs afero.Fs) *Bootstrapper {
	return &Bootstrapper{fetcher: fetcher, index: index, fs: fs}
}

// EnsureStaticPM ensures <buildRoot>/usr/bin/apk.static exists, fetching
// and extracting it from mirror/arch if not. constraint selects among the
// versions the mirror's index advertises (Masterminds/semver); an empty
// constraint accepts the newest advertised version.
func (b *Bootstrapper) EnsureStaticPM(ctx context.Context, buildRoot, mirror, arch, constraint string) error {
	dest := filepath.Join(buildRoot, staticBinary)
	if ok, err := afero.Exists(b.fs, dest); err == nil && ok {
		return nil
	}

	ver, err := b.selectVersion(ctx, mirror, arch, constraint)
	if err != nil {
		return wrapBootstrap(err, "selecting apk-tools-static-bin version")
	}

	url := fmt.Sprintf(archiveURLFmt, mirror, arch, ver)
	body, err := b.fetcher.Get(ctx, url)
	if err != nil {
		return wrapBootstrapURL(err, url)
	}
	defer body.Close() //nolint:errcheck

	stageRoot := filepath.Join(buildRoot, ".cbuild-bootstrap-stage")
	if err := extractAPK(b.fs, body, stageRoot); err != nil {
		return wrapBootstrapURL(err, url)
	}

	src, err := locateStaticBinary(b.fs, stageRoot)
	if err != nil {
		return wrapBootstrapURL(err, url)
	}

	if err := copyExecutable(b.fs, src, dest); err != nil {
		return wrapBootstrapURL(err, url)
	}
	return nil
}

// copyExecutable copies src to dest on fs, creating dest's parent
// directory if needed and setting mode 0o755 on the result.
func copyExecutable(fs afero.Fs, src, dest string) error {
	data, err := afero.ReadFile(fs, src)
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fs, dest, data, 0o755)
}

func (b *Bootstrapper) selectVersion(ctx context.Context, mirror, arch, constraint string) (string, error) {
	if constraint == "" {
		url := fmt.Sprintf(indexURLFmt, mirror, arch)
		versions, err := b.index.ListVersions(ctx, url)
		if err != nil {
			return "", err
		}
		return newest(versions)
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return "", errors.Wrap(err, "invalid version constraint")
	}

	url := fmt.Sprintf(indexURLFmt, mirror, arch)
	versions, err := b.index.ListVersions(ctx, url)
	if err != nil {
		return "", err
	}

	vs := make([]*semver.Version, 0, len(versions))
	for _, raw := range versions {
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		vs = append(vs, v)
	}
	sort.Sort(semver.Collection(vs))

	for i := len(vs) - 1; i >= 0; i-- {
		if c.Check(vs[i]) {
			return vs[i].Original(), nil
		}
	}
	return "", errors.Errorf("no apk-tools-static-bin release satisfies %q", constraint)
}

func newest(versions []string) (string, error) {
	vs := make([]*semver.Version, 0, len(versions))
	for _, raw := range versions {
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		vs = append(vs, v)
	}
	if len(vs) == 0 {
		return "", errors.New("no apk-tools-static-bin releases advertised")
	}
	sort.Sort(semver.Collection(vs))
	return vs[len(vs)-1].Original(), nil
}

// extractAPK decompresses body (a gzip-compressed tar, the .apk archive
// format) into stageRoot on fs, using pgzip for parallel decompression
// paired with the standard archive/tar reader.
func extractAPK(fs afero.Fs, body io.Reader, stageRoot string) error {
	zr, err := pgzip.NewReader(body)
	if err != nil {
		return errors.Wrap(err, "opening apk archive")
	}
	defer zr.Close() //nolint:errcheck

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading apk archive")
		}

		path := filepath.Join(stageRoot, filepath.Clean(hdr.Name))
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := fs.MkdirAll(path, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			f, err := fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, tr); err != nil { //nolint:gosec
				f.Close() //nolint:errcheck
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		}
	}
}

// staticCandidates are the relative paths, in search order, that typically
// hold the apk.static binary inside the staged archive root.
var staticCandidates = []string{"usr/bin/apk.static", "bin/apk.static", "apk.static"}

func locateStaticBinary(fs afero.Fs, stageRoot string) (string, error) {
	for _, rel := range staticCandidates {
		p := filepath.Join(stageRoot, rel)
		if ok, err := afero.Exists(fs, p); err == nil && ok {
			return p, nil
		}
	}

	found := recursiveFind(fs, stageRoot)
	if found == "" {
		return "", errors.New("apk.static not found in staged archive")
	}
	return found, nil
}

func recursiveFind(fs afero.Fs, root string) string {
	var found string
	_ = afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil || found != "" {
			return nil
		}
		if !info.IsDir() && strings.HasSuffix(path, "/apk.static") {
			found = path
		}
		return nil
	})
	return found
}

func wrapBootstrap(err error, context string) error {
	return errors.Wrapf(depcore.ErrBootstrapFailed, "%s: %v", context, err)
}

func wrapBootstrapURL(err error, url string) error {
	return errors.Wrapf(depcore.ErrBootstrapFailed, "fetching %s: %v", url, err)
}

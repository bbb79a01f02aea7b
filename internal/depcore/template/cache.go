// Copyright 2025 cbuild Authors.
// All rights reserved

// Package template memoizes the version a build template would produce,
// without running the template's build script.
package template

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
	"github.com/spf13/afero"

	"github.com/distrocore/cbuild/internal/depcore"
)

// recipeFile is the filename a source-repository root is probed for, under
// <root>/<pkgname>/.
const recipeFile = "template.py"

// Meta is what a TemplateLoader can extract from a recipe without running
// its build script.
type Meta struct {
	Pkgver     string
	Pkgrel     string
	FullPkgname string
}

// Loader loads template metadata in a non-init mode: enough to learn the
// version a build would produce, without executing the build script.
type Loader interface {
	// LoadMeta loads recipe metadata at path for ctx's package. A zero Meta
	// with no error means the recipe parsed but didn't declare enough to
	// compute a version (pkgver/pkgrel absent).
	LoadMeta(ctx context.Context, path string, bctx depcore.BuildContext) (Meta, error)
}

// entry is a cached lookup outcome. version and fullName are both empty
// when no template was found at all (treated as external-only dep).
type entry struct {
	version  string
	fullName string
	found    bool
}

// Stats reports cumulative cache hit/miss counters.
type Stats struct {
	Hits   int
	Misses int
}

// Cache is the process-wide, memoized pkgname -> (version, full name)
// lookup described by the core's template-version cache. One correct
// answer per key is computed at most once; concurrent lookups of the same
// key are safe.
type Cache struct {
	fs     afero.Fs
	roots  []string
	suffixes []string
	loader Loader

	mu      sync.Mutex
	entries map[string]entry
	stats   Stats
}

// New returns a Cache that probes roots (in declared order) for template
// recipes via fs, stripping suffixes (the auto-subpackage suffix table,
// e.g. "-dev", "-doc") when a bare probe misses, and loading metadata with
// loader.
func New(fs afero.Fs, roots []string, suffixes []string, loader Loader) *Cache {
	return &Cache{
		fs:       fs,
		roots:    roots,
		suffixes: suffixes,
		loader:   loader,
		entries:  make(map[string]entry),
	}
}

// Stats returns a snapshot of the cache's cumulative hit/miss counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Lookup returns the version and canonical full package name that pkgn's
// template would produce, or found=false if no template exists for pkgn
// (treated as an external-only dependency). Repeated lookups of the same
// pkgn are idempotent: the underlying I/O and loader invocation happen at
// most once.
func (c *Cache) Lookup(ctx context.Context, pkgn string, bctx depcore.BuildContext) (version, fullName string, found bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[pkgn]; ok {
		c.stats.Hits++
		return e.version, e.fullName, e.found, nil
	}
	c.stats.Misses++

	root, name, found := c.probe(pkgn)
	if !found {
		c.store(pkgn, entry{})
		return "", "", false, nil
	}

	path := filepath.Join(root, name, recipeFile)
	meta, err := c.loader.LoadMeta(ctx, path, bctx)
	if err != nil {
		return "", "", false, errors.Wrapf(err, "loading template metadata for %q", pkgn)
	}

	if meta.Pkgver == "" || meta.Pkgrel == "" {
		// Recipe exists but version is undetermined: the planner must
		// refuse version-constrained rdeps against it.
		e := entry{fullName: meta.FullPkgname, found: true}
		c.store(pkgn, e)
		return "", meta.FullPkgname, true, nil
	}

	v := meta.Pkgver + "-r" + meta.Pkgrel
	e := entry{version: v, fullName: meta.FullPkgname, found: true}
	c.store(pkgn, e)
	return v, meta.FullPkgname, true, nil
}

// store records e for pkgn. c.mu must be held.
func (c *Cache) store(pkgn string, e entry) {
	c.entries[pkgn] = e
}

// probe locates pkgn (or pkgn with an auto-subpackage suffix stripped)
// under one of c.roots, in declared order. The bare name is tried across
// every root before any suffix-stripped name is tried.
func (c *Cache) probe(pkgn string) (root, name string, found bool) {
	for _, root := range c.roots {
		if c.exists(root, pkgn) {
			return root, pkgn, true
		}
	}
	for _, suffix := range c.suffixes {
		stripped, ok := strings.CutSuffix(pkgn, suffix)
		if !ok || stripped == "" {
			continue
		}
		for _, root := range c.roots {
			if c.exists(root, stripped) {
				return root, stripped, true
			}
		}
	}
	return "", "", false
}

func (c *Cache) exists(root, name string) bool {
	ok, err := afero.Exists(c.fs, filepath.Join(root, name, recipeFile))
	return err == nil && ok
}

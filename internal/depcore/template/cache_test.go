package template

import (
	"context"
	"testing"

	"github.com/spf13/afero"

	"github.com/distrocore/cbuild/internal/depcore"
)

type fakeLoader struct {
	calls int
	metas map[string]Meta
	err   error
}

func (f *fakeLoader) LoadMeta(_ context.Context, path string, _ depcore.BuildContext) (Meta, error) {
	f.calls++
	if f.err != nil {
		return Meta{}, f.err
	}
	return f.metas[path], nil
}

func newFs(t *testing.T, paths ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, p := range paths {
		if err := afero.WriteFile(fs, p, []byte(""), 0o644); err != nil {
			t.Fatalf("seeding fs: %v", err)
		}
	}
	return fs
}

func TestCacheLookupFound(t *testing.T) {
	fs := newFs(t, "/repo/main/musl/template.py")
	loader := &fakeLoader{metas: map[string]Meta{
		"/repo/main/musl/template.py": {Pkgver: "1.2.3", Pkgrel: "0", FullPkgname: "musl-1.2.3-r0"},
	}}
	c := New(fs, []string{"/repo/main"}, nil, loader)

	version, full, found, err := c.Lookup(context.Background(), "musl", depcore.BuildContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || version != "1.2.3-r0" || full != "musl-1.2.3-r0" {
		t.Errorf("Lookup = (%q, %q, %v), want (1.2.3-r0, musl-1.2.3-r0, true)", version, full, found)
	}
}

func TestCacheLookupIsMemoized(t *testing.T) {
	fs := newFs(t, "/repo/main/musl/template.py")
	loader := &fakeLoader{metas: map[string]Meta{
		"/repo/main/musl/template.py": {Pkgver: "1.2.3", Pkgrel: "0", FullPkgname: "musl-1.2.3-r0"},
	}}
	c := New(fs, []string{"/repo/main"}, nil, loader)

	for range 3 {
		if _, _, _, err := c.Lookup(context.Background(), "musl", depcore.BuildContext{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if loader.calls != 1 {
		t.Errorf("loader invoked %d times, want 1 (memoized)", loader.calls)
	}
	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("Stats = %+v, want {Hits:2 Misses:1}", stats)
	}
}

func TestCacheLookupNotFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	loader := &fakeLoader{}
	c := New(fs, []string{"/repo/main"}, nil, loader)

	version, full, found, err := c.Lookup(context.Background(), "doesnotexist", depcore.BuildContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found || version != "" || full != "" {
		t.Errorf("Lookup = (%q, %q, %v), want (\"\", \"\", false)", version, full, found)
	}
	if loader.calls != 0 {
		t.Errorf("loader invoked when no recipe exists")
	}
}

func TestCacheLookupAutoSubpackageSuffix(t *testing.T) {
	fs := newFs(t, "/repo/main/musl/template.py")
	loader := &fakeLoader{metas: map[string]Meta{
		"/repo/main/musl/template.py": {Pkgver: "1.2.3", Pkgrel: "0", FullPkgname: "musl-1.2.3-r0"},
	}}
	c := New(fs, []string{"/repo/main"}, []string{"-dev", "-doc"}, loader)

	version, _, found, err := c.Lookup(context.Background(), "musl-dev", depcore.BuildContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || version != "1.2.3-r0" {
		t.Errorf("Lookup(musl-dev) = (%q, found=%v), want (1.2.3-r0, true)", version, found)
	}
}

func TestCacheLookupUndeterminedVersion(t *testing.T) {
	fs := newFs(t, "/repo/main/partial/template.py")
	loader := &fakeLoader{metas: map[string]Meta{
		"/repo/main/partial/template.py": {FullPkgname: "partial-full"},
	}}
	c := New(fs, []string{"/repo/main"}, nil, loader)

	version, full, found, err := c.Lookup(context.Background(), "partial", depcore.BuildContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || version != "" || full != "partial-full" {
		t.Errorf("Lookup = (%q, %q, %v), want (\"\", partial-full, true)", version, full, found)
	}
}

func TestCacheLookupRootPriorityOrder(t *testing.T) {
	fs := newFs(t, "/repo/low/musl/template.py", "/repo/high/musl/template.py")
	loader := &fakeLoader{metas: map[string]Meta{
		"/repo/high/musl/template.py": {Pkgver: "2.0.0", Pkgrel: "0", FullPkgname: "musl-2.0.0-r0"},
		"/repo/low/musl/template.py":  {Pkgver: "1.0.0", Pkgrel: "0", FullPkgname: "musl-1.0.0-r0"},
	}}
	c := New(fs, []string{"/repo/high", "/repo/low"}, nil, loader)

	version, _, _, err := c.Lookup(context.Background(), "musl", depcore.BuildContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version != "2.0.0-r0" {
		t.Errorf("Lookup picked %q, want the higher-priority root's version 2.0.0-r0", version)
	}
}

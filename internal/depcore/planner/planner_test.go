package planner

import (
	"context"
	"testing"

	depcoreerrors "github.com/crossplane/crossplane-runtime/pkg/errors"
	"github.com/spf13/afero"

	"github.com/distrocore/cbuild/internal/depcore"
	"github.com/distrocore/cbuild/internal/depcore/repo"
	"github.com/distrocore/cbuild/internal/depcore/template"
)

type queryKey struct{ root, arch string }

type fakePM struct {
	results map[queryKey]struct {
		lines []string
		repos []string
	}
}

func (f *fakePM) Search(_ context.Context, _ []string, root, arch string) ([]string, []string, int, error) {
	r := f.results[queryKey{root, arch}]
	return r.lines, r.repos, 0, nil
}

func (f *fakePM) SearchOne(_ context.Context, _, repoURI, root, arch string) ([]string, error) {
	return nil, nil
}

type fakeLoader struct {
	metas map[string]template.Meta
}

func (f *fakeLoader) LoadMeta(_ context.Context, path string, _ depcore.BuildContext) (template.Meta, error) {
	return f.metas[path], nil
}

func newCache(t *testing.T, loader *fakeLoader, paths ...string) *template.Cache {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, p := range paths {
		if err := afero.WriteFile(fs, p, nil, 0o644); err != nil {
			t.Fatalf("seeding fs: %v", err)
		}
	}
	return template.New(fs, []string{"/repo/main"}, nil, loader)
}

func TestPlanSimpleNativeBuild(t *testing.T) {
	loader := &fakeLoader{metas: map[string]template.Meta{
		"/repo/main/B/template.py": {Pkgver: "1.0", Pkgrel: "0", FullPkgname: "B-1.0-r0"},
	}}
	cache := newCache(t, loader, "/repo/main/B/template.py")

	pm := &fakePM{results: map[queryKey]struct {
		lines []string
		repos []string
	}{
		{"/build", ""}: {lines: []string{"B-1.0-r0"}, repos: []string{"main"}},
	}}

	p := &Planner{Cache: cache, PM: pm, Locks: depcore.NewArchLocks(t.TempDir())}
	bctx := depcore.BuildContext{
		PkgName:         "A",
		DepCheck:        true,
		HostMakeDepends: []string{"B"},
		BuildRoot:       "/build",
	}

	res, err := p.Plan(context.Background(), bctx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.HostMissing) != 0 {
		t.Errorf("HostMissing = %v, want empty", res.HostMissing)
	}
	if len(res.HostBinpkgDeps) != 1 || res.HostBinpkgDeps[0] != "B=1.0-r0" {
		t.Errorf("HostBinpkgDeps = %v, want [B=1.0-r0]", res.HostBinpkgDeps)
	}
}

func TestPlanMissingHostDepTriggersChildBuild(t *testing.T) {
	loader := &fakeLoader{metas: map[string]template.Meta{
		"/repo/main/C/template.py": {Pkgver: "2.0", Pkgrel: "1", FullPkgname: "C-2.0-r1"},
	}}
	cache := newCache(t, loader, "/repo/main/C/template.py")

	pm := &fakePM{results: map[queryKey]struct {
		lines []string
		repos []string
	}{
		{"/build", ""}: {}, // repo has no C
	}}

	p := &Planner{Cache: cache, PM: pm, Locks: depcore.NewArchLocks(t.TempDir())}
	bctx := depcore.BuildContext{
		PkgName:         "A",
		DepCheck:        true,
		HostMakeDepends: []string{"C"},
		BuildRoot:       "/build",
	}

	res, err := p.Plan(context.Background(), bctx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.HostMissing) != 1 || res.HostMissing[0] != "C-2.0-r1" {
		t.Errorf("HostMissing = %v, want [C-2.0-r1]", res.HostMissing)
	}
	if len(res.HostBinpkgDeps) != 1 || res.HostBinpkgDeps[0] != "C=2.0-r1" {
		t.Errorf("HostBinpkgDeps = %v, want [C=2.0-r1]", res.HostBinpkgDeps)
	}
}

func TestPlanLoopDetected(t *testing.T) {
	loader := &fakeLoader{metas: map[string]template.Meta{
		"/repo/main/A/template.py": {Pkgver: "1.0", Pkgrel: "0", FullPkgname: "A-1.0-r0"},
	}}
	cache := newCache(t, loader, "/repo/main/A/template.py")

	pm := &fakePM{}
	p := &Planner{Cache: cache, PM: pm, Locks: depcore.NewArchLocks(t.TempDir())}
	bctx := depcore.BuildContext{
		PkgName:     "A",
		DepCheck:    true,
		MakeDepends: []string{"A"},
		BuildRoot:   "/build",
	}

	_, err := p.Plan(context.Background(), bctx, "A")
	if err == nil {
		t.Fatal("want loop-detected error, got none")
	}
	if !depcoreerrors.Is(err, depcore.ErrLoopDetected) {
		t.Errorf("error %v does not wrap ErrLoopDetected", err)
	}
}

func TestPlanVirtualProvider(t *testing.T) {
	loader := &fakeLoader{metas: map[string]template.Meta{}}
	cache := newCache(t, loader)

	pm := &fakePM{results: map[queryKey]struct {
		lines []string
		repos []string
	}{
		{"/build", "x86_64"}: {lines: []string{"xserver-xlibre-core-24.0-r0"}, repos: []string{"main"}},
	}}

	p := &Planner{Cache: cache, PM: pm, Locks: depcore.NewArchLocks(t.TempDir())}
	bctx := depcore.BuildContext{
		PkgName:   "A",
		DepCheck:  true,
		Depends:   []string{"virtual:xserver-abi-input~24!xserver-xlibre-core"},
		BuildRoot: "/build",
		Profile:   depcore.Profile{Arch: "x86_64"},
	}

	res, err := p.Plan(context.Background(), bctx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, e := range res.Events {
		if e.Name == "xserver-xlibre-core" {
			found = true
		}
	}
	if !found {
		t.Errorf("Events = %v, want an event for xserver-xlibre-core", res.Events)
	}
}

func TestPlanSubpackageRdepIgnored(t *testing.T) {
	loader := &fakeLoader{metas: map[string]template.Meta{}}
	cache := newCache(t, loader)
	pm := &fakePM{}

	p := &Planner{Cache: cache, PM: pm, Locks: depcore.NewArchLocks(t.TempDir())}
	bctx := depcore.BuildContext{
		PkgName:     "A",
		DepCheck:    true,
		BuildRoot:   "/build",
		Subpackages: []depcore.Subpackage{{PkgName: "A-dev", Depends: []string{"A"}}},
	}

	res, err := p.Plan(context.Background(), bctx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.TargetMissing) != 0 {
		t.Errorf("TargetMissing = %v, want empty (subpackage->parent rdep is ignored)", res.TargetMissing)
	}
}

func TestPlanNamesOnlyMode(t *testing.T) {
	loader := &fakeLoader{metas: map[string]template.Meta{}}
	cache := newCache(t, loader)
	pm := &fakePM{}

	p := &Planner{Cache: cache, PM: pm, Locks: depcore.NewArchLocks(t.TempDir()), NamesOnly: true}
	bctx := depcore.BuildContext{
		PkgName:         "A",
		HostMakeDepends: []string{"B"},
		MakeDepends:     []string{"C"},
		Depends:         []string{"D>=1.0"},
		BuildRoot:       "/build",
	}

	res, err := p.Plan(context.Background(), bctx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.HostNames) != 1 || res.HostNames[0] != "B" {
		t.Errorf("HostNames = %v, want [B]", res.HostNames)
	}
	if len(res.TargetNames) != 1 || res.TargetNames[0] != "C" {
		t.Errorf("TargetNames = %v, want [C]", res.TargetNames)
	}
	if len(res.RuntimePairs) != 1 || res.RuntimePairs[0] != (NamePair{Origin: "A", Dep: "D>=1.0"}) {
		t.Errorf("RuntimePairs = %v, want [{A D>=1.0}]", res.RuntimePairs)
	}
	if len(res.HostBinpkgDeps) != 0 {
		t.Errorf("HostBinpkgDeps populated in names-only mode: %v", res.HostBinpkgDeps)
	}
}

var _ repo.PackageManager = (*fakePM)(nil)

// Copyright 2025 cbuild Authors.
// All rights reserved

// Package planner implements the dependency planner: the top-level driver
// that partitions a template's declared dependencies into host, target
// and runtime classes, reconciles each against what a repository already
// offers, and collects the set that must be built from source.
package planner

import (
	"context"
	"fmt"
	"sort"

	"github.com/crossplane/crossplane-runtime/pkg/errors"

	"github.com/distrocore/cbuild/internal/depcore"
	"github.com/distrocore/cbuild/internal/depcore/classify"
	"github.com/distrocore/cbuild/internal/depcore/repo"
	"github.com/distrocore/cbuild/internal/depcore/template"
)

// DependsExpander expands a template's shorthand dependency declarations
// (e.g. pkg-config style macros) into concrete atom strings. Planners that
// don't need expansion can pass nil; BuildContext's Depends/MakeDepends/
// HostMakeDepends are then used as-is.
type DependsExpander interface {
	ResolveDepends(ctx context.Context, bctx depcore.BuildContext) (hostMake, make, depends []string, err error)
}

// DepEvent is one structured log line from a planner run, of the form
// "[class] name: status".
type DepEvent struct {
	Class  depcore.DepClass
	Name   string
	Status string
}

func (e DepEvent) String() string {
	return fmt.Sprintf("[%s] %s: %s", e.Class, e.Name, e.Status)
}

// NamePair is a (origin, name-or-constraint) result emitted in names-only
// mode for runtime dependencies.
type NamePair struct {
	Origin string
	Dep    string
}

// Result is the outcome of one Plan call.
type Result struct {
	// HostNames/TargetNames/RuntimePairs are populated only in names-only
	// mode (step 4): raw classified names, no repository query performed.
	HostNames    []string
	TargetNames  []string
	RuntimePairs []NamePair

	HostMissing      []string // full template names to build, host arch
	TargetMissing    []string // full template names to build, target arch
	HostBinpkgDeps   []string // "name=ver" (or raw name when depcheck is off)
	TargetBinpkgDeps []string

	Events []DepEvent
}

// Planner is the dependency planner (spec §4.G). It drives the template
// cache (§4.C) and repository query/availability resolver (§4.D/§4.E) to
// decide which declared dependencies a repository already satisfies and
// which must be built from source.
type Planner struct {
	Cache    *template.Cache
	PM       repo.PackageManager
	Locks    depcore.Locks
	Expander DependsExpander
	// NamesOnly short-circuits Plan after classification, returning raw
	// name lists without any repository query or sub-build.
	NamesOnly bool
}

// crossHostDepFmt names the synthetic host dependency a cross build adds.
const crossHostDepFmt = "base-cross-%s"

// Plan runs one full plan cycle for bctx, whose template is the origin
// build origpkg triggered (origpkg == bctx.PkgName unless this is itself a
// recursive sub-build).
func (p *Planner) Plan(ctx context.Context, bctx depcore.BuildContext, origpkg string) (Result, error) {
	hostMake, makeDeps, rdeps := bctx.HostMakeDepends, bctx.MakeDepends, bctx.Depends
	if p.Expander != nil {
		var err error
		hostMake, makeDeps, rdeps, err = p.Expander.ResolveDepends(ctx, bctx)
		if err != nil {
			return Result{}, errors.Wrap(err, "expanding shorthand depends")
		}
	}

	if bctx.RunCheck && !bctx.Cross {
		// checkdepends behave like hostmakedeps when check is enabled and
		// the build is not cross-compiled.
		hostMake = append(append([]string{}, hostMake...), bctx.CheckDepends...)
	}

	type rdepCandidate struct {
		origin string
		raw    string
	}
	candidates := make([]rdepCandidate, 0, len(rdeps))
	for _, d := range rdeps {
		candidates = append(candidates, rdepCandidate{origin: bctx.PkgName, raw: d})
	}
	for _, s := range bctx.Subpackages {
		for _, d := range s.Depends {
			candidates = append(candidates, rdepCandidate{origin: s.PkgName, raw: d})
		}
	}

	var res Result

	hostAtoms, err := classifyAll(hostMake)
	if err != nil {
		return Result{}, err
	}
	targetAtoms, err := classifyAll(makeDeps)
	if err != nil {
		return Result{}, err
	}

	type rdepAtom struct {
		origin string
		atom   depcore.PackageAtom
	}
	rdepAtoms := make([]rdepAtom, 0, len(candidates))
	for _, c := range candidates {
		a, ok, err := classify.Classify(c.raw)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			continue
		}
		rdepAtoms = append(rdepAtoms, rdepAtom{origin: c.origin, atom: a})
	}

	if p.NamesOnly {
		for _, a := range hostAtoms {
			res.HostNames = append(res.HostNames, a.Name)
		}
		for _, a := range targetAtoms {
			res.TargetNames = append(res.TargetNames, a.Name)
		}
		for _, r := range rdepAtoms {
			res.RuntimePairs = append(res.RuntimePairs, NamePair{Origin: r.origin, Dep: atomString(r.atom)})
		}
		return res, nil
	}

	type expected struct {
		sver  string
		name  string
		full  string
		found bool
	}
	resolveExpected := func(atoms []depcore.PackageAtom) ([]expected, error) {
		out := make([]expected, 0, len(atoms))
		for _, a := range atoms {
			sver, full, found, err := p.Cache.Lookup(ctx, a.Name, bctx)
			if err != nil {
				return nil, err
			}
			out = append(out, expected{sver: sver, name: a.Name, full: full, found: found})
		}
		return out, nil
	}

	ihdeps, err := resolveExpected(hostAtoms)
	if err != nil {
		return Result{}, err
	}
	itdeps, err := resolveExpected(targetAtoms)
	if err != nil {
		return Result{}, err
	}

	if bctx.Cross {
		ihdeps = append(ihdeps, expected{name: fmt.Sprintf(crossHostDepFmt, bctx.Arch)})
	}

	if len(ihdeps) == 0 && len(itdeps) == 0 && len(rdepAtoms) == 0 {
		return res, nil
	}

	hostRoot := bctx.BuildRoot
	targetRoot := bctx.Sysroot
	if targetRoot == "" {
		targetRoot = bctx.BuildRoot
	}

	hostNames := make([]string, 0, len(ihdeps))
	for _, e := range ihdeps {
		hostNames = append(hostNames, e.name)
	}
	targetNames := make([]string, 0, len(itdeps))
	for _, e := range itdeps {
		targetNames = append(targetNames, e.name)
	}
	rdepNames := make([]string, 0, len(rdepAtoms))
	for _, r := range rdepAtoms {
		rdepNames = append(rdepNames, r.atom.Name)
	}

	// The host query passes arch="" (apk's implicit native-arch search) but
	// locks under bctx.Arch, matching the lock key the host install call
	// uses (§5): a bare "" lock key would let a host search run unserialized
	// against a concurrent host add/fix.
	hostSnap, hostRepos, err := repo.QueryVersions(ctx, p.PM, p.Locks, hostNames, hostRoot, "", bctx.Arch)
	if err != nil {
		return Result{}, err
	}
	targetSnap, targetRepos, err := repo.QueryVersions(ctx, p.PM, p.Locks, targetNames, targetRoot, bctx.Arch, bctx.Arch)
	if err != nil {
		return Result{}, err
	}
	rdepSnap, rdepRepos, err := repo.QueryVersions(ctx, p.PM, p.Locks, rdepNames, targetRoot, bctx.Arch, bctx.Arch)
	if err != nil {
		return Result{}, err
	}

	for _, e := range ihdeps {
		if !bctx.DepCheck {
			res.HostBinpkgDeps = append(res.HostBinpkgDeps, e.name)
			continue
		}

		if e.sver == "" {
			aver, ok, err := repo.IsAvailable(ctx, p.PM, e.name, depcore.OpNone, "", hostSnap, hostRepos, hostRoot, "")
			if err != nil {
				return Result{}, err
			}
			if !ok {
				return Result{}, errors.Wrapf(depcore.ErrUnsatisfiable, "host dependency %q does not exist", e.name)
			}
			res.HostBinpkgDeps = append(res.HostBinpkgDeps, e.name+"="+aver)
			res.Events = append(res.Events, DepEvent{Class: depcore.DepHost, Name: e.name, Status: fmt.Sprintf("found (%s)", aver)})
			continue
		}

		aver, ok, err := repo.IsAvailable(ctx, p.PM, e.name, depcore.OpEQ, e.sver, hostSnap, hostRepos, hostRoot, "")
		if err != nil {
			return Result{}, err
		}
		if ok {
			res.HostBinpkgDeps = append(res.HostBinpkgDeps, e.name+"="+aver)
			res.Events = append(res.Events, DepEvent{Class: depcore.DepHost, Name: e.name, Status: fmt.Sprintf("found (%s)", aver)})
			continue
		}

		if !bctx.Cross && (e.name == origpkg || e.name == bctx.PkgName) {
			return Result{}, errors.Wrapf(depcore.ErrLoopDetected, "build loop detected: %s <-> %s", e.name, e.name)
		}
		res.HostMissing = append(res.HostMissing, e.full)
		res.HostBinpkgDeps = append(res.HostBinpkgDeps, e.name+"="+e.sver)
		res.Events = append(res.Events, DepEvent{Class: depcore.DepHost, Name: e.name, Status: "not found"})
	}

	for _, e := range itdeps {
		if !bctx.DepCheck {
			res.TargetBinpkgDeps = append(res.TargetBinpkgDeps, e.name)
			continue
		}

		if e.sver == "" {
			aver, ok, err := repo.IsAvailable(ctx, p.PM, e.name, depcore.OpNone, "", targetSnap, targetRepos, targetRoot, bctx.Arch)
			if err != nil {
				return Result{}, err
			}
			if !ok {
				return Result{}, errors.Wrapf(depcore.ErrUnsatisfiable, "target dependency %q does not exist", e.name)
			}
			res.TargetBinpkgDeps = append(res.TargetBinpkgDeps, e.name+"="+aver)
			res.Events = append(res.Events, DepEvent{Class: depcore.DepTarget, Name: e.name, Status: fmt.Sprintf("found (%s)", aver)})
			continue
		}

		aver, ok, err := repo.IsAvailable(ctx, p.PM, e.name, depcore.OpEQ, e.sver, targetSnap, targetRepos, targetRoot, bctx.Arch)
		if err != nil {
			return Result{}, err
		}
		if ok {
			res.TargetBinpkgDeps = append(res.TargetBinpkgDeps, e.name+"="+aver)
			res.Events = append(res.Events, DepEvent{Class: depcore.DepTarget, Name: e.name, Status: fmt.Sprintf("found (%s)", aver)})
			continue
		}

		// Loop-check is always active for target deps, cross or not.
		if e.name == origpkg || e.name == bctx.PkgName {
			return Result{}, errors.Wrapf(depcore.ErrLoopDetected, "build loop detected: %s <-> %s", e.name, e.name)
		}
		res.TargetMissing = append(res.TargetMissing, e.full)
		res.TargetBinpkgDeps = append(res.TargetBinpkgDeps, e.name+"="+e.sver)
		res.Events = append(res.Events, DepEvent{Class: depcore.DepTarget, Name: e.name, Status: "not found"})
	}

	subpkgNames := make(map[string]bool, len(bctx.Subpackages))
	for _, s := range bctx.Subpackages {
		subpkgNames[s.PkgName] = true
	}

	for _, r := range rdepAtoms {
		if !bctx.DepCheck {
			continue
		}
		name := r.atom.Name
		origin := r.origin

		if name != origin && name == bctx.PkgName {
			res.Events = append(res.Events, DepEvent{Class: depcore.DepRuntime, Name: name, Status: "subpackage (ignored)"})
			continue
		}
		if name != origin && subpkgNames[name] {
			res.Events = append(res.Events, DepEvent{Class: depcore.DepRuntime, Name: name, Status: "subpackage (ignored)"})
			continue
		}
		if name == origin {
			return Result{}, errors.Wrapf(depcore.ErrLoopDetected, "runtime build loop: %s <-> %s", name, name)
		}
		if name == origpkg && bctx.PkgName != origpkg {
			return Result{}, errors.Wrapf(depcore.ErrLoopDetected, "runtime build loop: %s <-> %s", name, name)
		}

		aver, ok, err := repo.IsAvailable(ctx, p.PM, name, r.atom.Op, r.atom.Version, rdepSnap, rdepRepos, targetRoot, bctx.Arch)
		if err != nil {
			return Result{}, err
		}
		if ok {
			res.Events = append(res.Events, DepEvent{Class: depcore.DepRuntime, Name: name, Status: fmt.Sprintf("found (%s)", aver)})
			continue
		}

		sver, full, found, err := p.Cache.Lookup(ctx, name, bctx)
		if err != nil {
			return Result{}, err
		}
		if !found {
			return Result{}, errors.Wrapf(depcore.ErrUnresolvedTemplate, "no template resolves runtime dependency %q", name)
		}
		if r.atom.Op != depcore.OpNone {
			if sver == "" {
				return Result{}, errors.Wrapf(depcore.ErrUnsatisfiable, "template for %q has no determined version to check against %s", name, atomString(r.atom))
			}
			matched, err := depcore.PkgMatch(name+"-"+sver, name+string(r.atom.Op)+r.atom.Version)
			if err != nil {
				return Result{}, err
			}
			if !matched {
				return Result{}, errors.Wrapf(depcore.ErrUnsatisfiable, "template-produced version %s-%s does not satisfy %s", name, sver, atomString(r.atom))
			}
		}

		res.TargetMissing = append(res.TargetMissing, full)
		res.Events = append(res.Events, DepEvent{Class: depcore.DepRuntime, Name: name, Status: "unresolved build dependency"})
	}

	sort.Strings(res.HostMissing)
	sort.Strings(res.TargetMissing)
	return res, nil
}

func classifyAll(raws []string) ([]depcore.PackageAtom, error) {
	out := make([]depcore.PackageAtom, 0, len(raws))
	for _, raw := range raws {
		a, ok, err := classify.Classify(raw)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func atomString(a depcore.PackageAtom) string {
	if a.Op == depcore.OpNone {
		return a.Name
	}
	return a.Name + string(a.Op) + a.Version
}

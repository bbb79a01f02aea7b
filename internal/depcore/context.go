// Copyright 2025 cbuild Authors.
// All rights reserved

package depcore

// DepClass tags where a dependency was declared and what it is needed for.
type DepClass int

// The three dependency classes a declared atom can be placed in.
const (
	// DepHost is a tool needed to run the build, installed at the host arch.
	DepHost DepClass = iota
	// DepTarget is needed at build time for the package being produced.
	DepTarget
	// DepRuntime is needed when the built package is used, not installed
	// pre-build.
	DepRuntime
)

func (c DepClass) String() string {
	switch c {
	case DepHost:
		return "host"
	case DepTarget:
		return "target"
	case DepRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Profile describes where a build's output is targeted.
type Profile struct {
	// Arch is the target architecture (e.g. "x86_64", "aarch64").
	Arch string
	// Cross is true when Arch differs from the host's native architecture.
	Cross bool
	// Sysroot is the root under which target-arch dependencies are
	// installed when Cross is true.
	Sysroot string
}

// Subpackage is a secondary binary package produced by the same template as
// the parent package under build.
type Subpackage struct {
	PkgName string
	Depends []string
}

// BuildContext is the immutable bag of inputs threaded through one
// resolve/install cycle: one is constructed per in-flight build request.
type BuildContext struct {
	// PkgName is the package currently under build (may differ from the
	// top-of-stack origin package when a sub-build is triggered).
	PkgName string
	// Stage is the bootstrap phase index; stage 0 uses a different install
	// path than later stages.
	Stage int
	Profile

	// RunCheck is true when the template's check() function will run,
	// pulling CheckDepends into the host dependency set (unless Cross).
	RunCheck        bool
	CheckDepends    []string
	HostMakeDepends []string
	MakeDepends     []string
	Depends         []string
	Subpackages     []Subpackage

	// DepCheck disables version-constrained resolution against the
	// repository when false (stage-0 bootstrap passes deps through as
	// raw names).
	DepCheck bool

	// StateDir roots the per-architecture lock files (see Locks).
	StateDir string
	// BuildRoot is the chroot/sysroot being converged.
	BuildRoot string
}

// RuntimeOrigin pairs a runtime dependency atom with the package (parent or
// subpackage) that declared it.
type RuntimeOrigin struct {
	Origin string
	Dep    string
}

// Copyright 2025 cbuild Authors.
// All rights reserved

package depcore

import "github.com/crossplane/crossplane-runtime/pkg/errors"

// Sentinel errors for the taxonomy in the core's error handling design.
// Fatal kinds terminate the current top-level build; none are retried
// inside the core. Wrap these with errors.Wrap/Wrapf so errors.Is still
// matches through added context.
var (
	// ErrConfig signals a virtual dependency without a provider, or an
	// unparseable atom. User-addressable.
	ErrConfig = errors.New("config error")
	// ErrLoopDetected signals a self- or cycle-depending build.
	ErrLoopDetected = errors.New("build loop detected")
	// ErrUnresolvedTemplate signals a missing template for a host/target
	// dependency.
	ErrUnresolvedTemplate = errors.New("unresolved template")
	// ErrUnsatisfiable signals a version constraint that no repository or
	// template can meet.
	ErrUnsatisfiable = errors.New("unsatisfiable dependency constraint")
	// ErrInstallFailed signals a non-zero package manager exit.
	ErrInstallFailed = errors.New("install failed")
	// ErrBootstrapFailed signals a failed static package-manager
	// fetch/extract.
	ErrBootstrapFailed = errors.New("toolchain bootstrap failed")
	// ErrSkipped signals a child build that asked to be skipped; recovered
	// locally by the orchestrator.
	ErrSkipped = errors.New("build skipped")
	// ErrTransientIO signals a subprocess I/O or network error. Not
	// retried at this layer.
	ErrTransientIO = errors.New("transient I/O error")
)

// DiagSink receives diagnostics from the resolve/install cycle. Fatal
// diagnostics abort the current top-level build; the concrete
// implementation decides how (os.Exit, panic/recover, returning up a
// call stack).
type DiagSink interface {
	// Error reports a fatal diagnostic. hint, if non-empty, is displayed
	// alongside msg as user-facing remediation guidance.
	Error(err error, hint string)
	// Log reports a non-fatal structured log line, e.g.
	// "[host] foo: found (1.2-r0)".
	Log(line string)
}

// Copyright 2025 cbuild Authors.
// All rights reserved

// Package classify distinguishes runtime dependency atoms from the
// non-runtime prefixed forms (so:, pc:, cmd:, alt:, virtual:, soname:) and
// rewrites virtual/alt atoms to the concrete provider a build must install.
package classify

import (
	"strings"

	"github.com/crossplane/crossplane-runtime/pkg/errors"

	"github.com/distrocore/cbuild/internal/depcore"
)

// nonRuntimePrefixes are the reserved atom-name prefixes that mark a
// dependency as non-runtime: a capability rather than a concrete package.
var nonRuntimePrefixes = []string{"so:", "pc:", "cmd:", "alt:", "virtual:", "soname:"}

// IsRuntime reports whether atom names an ordinary installable package
// rather than a virtual/so/pc/cmd/alt capability.
func IsRuntime(atom string) bool {
	for _, p := range nonRuntimePrefixes {
		if strings.HasPrefix(atom, p) {
			return false
		}
	}
	return true
}

const noProviderHint = "specify a provider by appending '!provider'"

// ResolveVirtual rewrites a non-runtime atom to the concrete package name it
// requires. alt: atoms rewrite "alt:NAME!CHOICE" to "NAME-CHOICE-default".
// Other non-runtime atoms require an explicit "!provider" suffix; its
// absence is a ConfigError carrying noProviderHint.
func ResolveVirtual(atom string) (string, error) {
	if IsRuntime(atom) {
		return atom, nil
	}

	bang := strings.IndexByte(atom, '!')
	if bang == -1 {
		return "", errors.Wrapf(depcore.ErrConfig, "non-runtime dependency %q has no provider", atom)
	}

	if name, ok := strings.CutPrefix(atom, "alt:"); ok {
		excl := strings.IndexByte(name, '!')
		base, choice := name[:excl], name[excl+1:]
		return base + "-" + choice + "-default", nil
	}

	return atom[bang+1:], nil
}

// Hint returns the remediation text ConfigError should display when
// ResolveVirtual fails for a missing '!'.
func Hint() string { return noProviderHint }

// Classify splits a raw candidate rdep/makedep/hostmakedep string into its
// runtime-ready PackageAtom, resolving any virtual/alt indirection first.
// Atoms beginning with "!" (conflict declarations, not dependencies) are
// reported via ok=false so callers can drop them silently.
func Classify(raw string) (atom depcore.PackageAtom, ok bool, err error) {
	if strings.HasPrefix(raw, "!") {
		return depcore.PackageAtom{}, false, nil
	}

	resolved, err := ResolveVirtual(raw)
	if err != nil {
		return depcore.PackageAtom{}, false, err
	}

	a, err := depcore.Split(resolved)
	if err != nil {
		return depcore.PackageAtom{}, false, err
	}
	return a, true, nil
}

// Copyright 2025 cbuild Authors.
// All rights reserved

// Package depcore holds the types shared by every stage of dependency
// resolution: version atoms and their comparator, the build context a
// resolve cycle is threaded through, and the per-architecture lock
// registry that guards package-manager state.
package depcore

import (
	"strconv"
	"strings"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
)

// Op is a version constraint operator.
type Op string

// The set of operators a PackageAtom may carry. OpNone means the atom names
// a package with no version constraint.
const (
	OpNone  Op = ""
	OpEQ    Op = "="
	OpLT    Op = "<"
	OpLE    Op = "<="
	OpGT    Op = ">"
	OpGE    Op = ">="
	OpFuzzy Op = "~"
)

// ops in greedy-match order: longer operators must be tried before their
// prefixes (<= before <, >= before >).
var ops = []Op{OpLE, OpGE, OpLT, OpGT, OpEQ, OpFuzzy}

const errInvalidAtomFmt = "invalid dependency atom %q"

// PackageAtom is a parsed "name[op]version" dependency specifier. Either Op
// and Version are both set, or both are empty.
type PackageAtom struct {
	Name    string
	Op      Op
	Version string
}

func isNameByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '_' || b == '+' || b == '.' || b == '-' || b == ':':
		return true
	}
	return false
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for i := range len(s) {
		if !isNameByte(s[i]) {
			return false
		}
	}
	return true
}

// Split parses a "name[op]version" specifier. The name regex is
// [A-Za-z0-9_+.:-]+ (the ':' admits so:/pc:/cmd: non-runtime prefixes); op
// is greedy-matched against {<=, >=, <, >, =, ~}.
func Split(spec string) (PackageAtom, error) {
	idx := strings.IndexAny(spec, "<>=~")
	if idx == -1 {
		if !validName(spec) {
			return PackageAtom{}, errors.Errorf(errInvalidAtomFmt, spec)
		}
		return PackageAtom{Name: spec}, nil
	}

	name := spec[:idx]
	if !validName(name) {
		return PackageAtom{}, errors.Errorf(errInvalidAtomFmt, spec)
	}

	rest := spec[idx:]
	for _, op := range ops {
		if s, ok := strings.CutPrefix(rest, string(op)); ok {
			if s == "" {
				return PackageAtom{}, errors.Errorf(errInvalidAtomFmt, spec)
			}
			return PackageAtom{Name: name, Op: op, Version: s}, nil
		}
	}
	return PackageAtom{}, errors.Errorf(errInvalidAtomFmt, spec)
}

// GetNamever splits a "name-version" token at the last hyphen that precedes
// a version token (one starting with a digit). ok is false if no such
// hyphen exists, in which case tok is returned whole as the name.
func GetNamever(tok string) (name, version string, ok bool) {
	for i := len(tok) - 1; i >= 0; i-- {
		if tok[i] == '-' && i+1 < len(tok) && tok[i+1] >= '0' && tok[i+1] <= '9' {
			return tok[:i], tok[i+1:], true
		}
	}
	return tok, "", false
}

// PkgMatch reports whether "name-ver" (nameVer) satisfies the constraint
// atom "name<op>reqver" (constraint). The two names must match exactly; if
// the constraint carries no operator, any version of the same name matches.
func PkgMatch(nameVer, constraint string) (bool, error) {
	n, v, ok := GetNamever(nameVer)
	if !ok {
		return false, errors.Errorf("%q is not a name-version token", nameVer)
	}

	atom, err := Split(constraint)
	if err != nil {
		return false, err
	}
	if n != atom.Name {
		return false, nil
	}
	if atom.Op == OpNone {
		return true, nil
	}

	cmp := CompareVersions(v, atom.Version)
	switch atom.Op {
	case OpEQ, OpFuzzy:
		return cmp == 0, nil
	case OpLT:
		return cmp < 0, nil
	case OpLE:
		return cmp <= 0, nil
	case OpGT:
		return cmp > 0, nil
	case OpGE:
		return cmp >= 0, nil
	default:
		return false, errors.Errorf("unsupported operator %q", atom.Op)
	}
}

var prereleaseRank = map[string]int{"alpha": 0, "beta": 1, "pre": 2, "rc": 3}

type parsedVersion struct {
	main     string
	hasPre   bool
	preName  string
	preNum   int
	rel      int
	relKnown bool
}

func parseVersion(v string) parsedVersion {
	var p parsedVersion
	p.main = v

	if i := strings.LastIndex(p.main, "-r"); i != -1 {
		if n, err := strconv.Atoi(p.main[i+2:]); err == nil {
			p.rel = n
			p.relKnown = true
			p.main = p.main[:i]
		}
	}

	for name, rank := range prereleaseRank {
		marker := "_" + name
		if i := strings.Index(p.main, marker); i != -1 {
			p.hasPre = true
			p.preName = name
			_ = rank
			numStart := i + len(marker)
			j := numStart
			for j < len(p.main) && p.main[j] >= '0' && p.main[j] <= '9' {
				j++
			}
			if n, err := strconv.Atoi(p.main[numStart:j]); err == nil {
				p.preNum = n
			}
			p.main = p.main[:i]
			break
		}
	}

	return p
}

// splitRuns breaks a dotted version component into alternating numeric and
// non-numeric runs, e.g. "10b2" -> ["10", "b", "2"].
func splitRuns(component string) []string {
	var runs []string
	start := 0
	digit := func(b byte) bool { return b >= '0' && b <= '9' }
	for i := 1; i <= len(component); i++ {
		if i == len(component) || digit(component[i]) != digit(component[start]) {
			runs = append(runs, component[start:i])
			start = i
		}
	}
	return runs
}

func compareRuns(a, b string) int {
	aDigit := len(a) > 0 && a[0] >= '0' && a[0] <= '9'
	bDigit := len(b) > 0 && b[0] >= '0' && b[0] <= '9'
	if aDigit && bDigit {
		an, _ := strconv.Atoi(a)
		bn, _ := strconv.Atoi(b)
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	// A numeric run outranks a missing (empty) run, and a non-numeric run
	// compares lexicographically against another non-numeric run.
	return strings.Compare(a, b)
}

func compareMain(a, b string) int {
	aComps := strings.Split(a, ".")
	bComps := strings.Split(b, ".")
	n := len(aComps)
	if len(bComps) > n {
		n = len(bComps)
	}
	for i := range n {
		var ac, bc string
		if i < len(aComps) {
			ac = aComps[i]
		}
		if i < len(bComps) {
			bc = bComps[i]
		}
		aRuns := splitRuns(ac)
		bRuns := splitRuns(bc)
		m := len(aRuns)
		if len(bRuns) > m {
			m = len(bRuns)
		}
		for j := range m {
			var ar, br string
			if j < len(aRuns) {
				ar = aRuns[j]
			}
			if j < len(bRuns) {
				br = bRuns[j]
			}
			if c := compareRuns(ar, br); c != 0 {
				return c
			}
		}
	}
	return 0
}

// CompareVersions orders two distribution version strings: a dotted
// numeric base (optionally with trailing letter runs compared
// lexicographically), a pre-release suffix (_alpha|_beta|_pre|_rc, ordered
// below the bare version) and a rightmost -rN package revision.
// It returns -1, 0 or 1 as a is less than, equal to, or greater than b.
func CompareVersions(a, b string) int {
	pa := parseVersion(a)
	pb := parseVersion(b)

	if c := compareMain(pa.main, pb.main); c != 0 {
		return c
	}

	switch {
	case pa.hasPre && !pb.hasPre:
		return -1
	case !pa.hasPre && pb.hasPre:
		return 1
	case pa.hasPre && pb.hasPre:
		if c := prereleaseRank[pa.preName] - prereleaseRank[pb.preName]; c != 0 {
			if c < 0 {
				return -1
			}
			return 1
		}
		if pa.preNum != pb.preNum {
			if pa.preNum < pb.preNum {
				return -1
			}
			return 1
		}
	}

	switch {
	case pa.rel < pb.rel:
		return -1
	case pa.rel > pb.rel:
		return 1
	default:
		return 0
	}
}

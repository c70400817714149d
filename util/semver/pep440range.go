// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package semver

// This file extends the PyPI extension with a half-open interval view of
// PEP 440 version specifiers, used to decide whether two specifier sets
// (e.g. two halves of the same dependency graph) can ever be satisfied by
// the same version. It sits next to interval.go/span.go, which solve the
// same problem for the Constraint/Set machinery used during matching, but
// speaks PEP 440's own specifier vocabulary instead of the shared token
// grammar, and exposes the bound versions and their inclusivity rather than
// folding straight into a boolean match.

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator is a PEP 440 version comparison operator, as used in a single
// clause of a version specifier (e.g. the ">=" in ">=1.0").
type Operator int

const (
	OpEqual          Operator = iota // ==1.2.3
	OpEqualStar                      // ==1.2.*
	OpArbitraryEqual                 // ===1.2.3
	OpNotEqual                       // !=1.2.3
	OpNotEqualStar                   // !=1.2.*
	OpCompatible                     // ~=1.2.3
	OpLess                           // <1.2.3
	OpLessEqual                      // <=1.2.3
	OpGreater                        // >1.2.3
	OpGreaterEqual                   // >=1.2.3
)

func (o Operator) String() string {
	switch o {
	case OpEqual:
		return "=="
	case OpEqualStar:
		return "==*"
	case OpArbitraryEqual:
		return "==="
	case OpNotEqual:
		return "!="
	case OpNotEqualStar:
		return "!=*"
	case OpCompatible:
		return "~="
	case OpLess:
		return "<"
	case OpLessEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEqual:
		return ">="
	default:
		return "?"
	}
}

// pep440Operators lists the recognized prefixes, longest first so that a
// naive prefix scan never stops short (e.g. "===" must be tried before "==").
var pep440Operators = []struct {
	prefix string
	op     Operator
}{
	{"===", OpArbitraryEqual},
	{"~=", OpCompatible},
	{"==", OpEqual}, // OpEqualStar is disambiguated after parsing the version.
	{"!=", OpNotEqual},
	{"<=", OpLessEqual},
	{">=", OpGreaterEqual},
	{"<", OpLess},
	{">", OpGreater},
}

// VersionSpecifier is a single PEP 440 specifier clause: an operator and
// the version literal it is compared against.
type VersionSpecifier struct {
	Op      Operator
	Version *Version
}

func (s VersionSpecifier) String() string {
	return s.Op.String() + s.Version.String()
}

// VersionSpecifiers is a conjunction of specifier clauses, as in
// "deps.dev/foo>=1.0,!=1.5,<2.0" (the comma is an implicit AND).
type VersionSpecifiers []VersionSpecifier

func (s VersionSpecifiers) String() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

// ParseSpecifier parses a single PEP 440 specifier clause, such as ">=1.0"
// or "==1.2.*".
func ParseSpecifier(s string) (VersionSpecifier, error) {
	s = strings.TrimSpace(s)
	for _, cand := range pep440Operators {
		if !strings.HasPrefix(s, cand.prefix) {
			continue
		}
		rest := strings.TrimSpace(s[len(cand.prefix):])
		op := cand.op
		if (op == OpEqual || op == OpNotEqual) && strings.HasSuffix(rest, ".*") {
			if op == OpEqual {
				op = OpEqualStar
			} else {
				op = OpNotEqualStar
			}
			rest = strings.TrimSuffix(rest, ".*")
		}
		if rest == "" {
			return VersionSpecifier{}, fmt.Errorf("pep440: missing version in specifier %q", s)
		}
		v, err := PyPI.Parse(rest)
		if err != nil {
			return VersionSpecifier{}, fmt.Errorf("pep440: invalid version in specifier %q: %w", s, err)
		}
		return VersionSpecifier{Op: op, Version: v}, nil
	}
	return VersionSpecifier{}, fmt.Errorf("pep440: unrecognized operator in specifier %q", s)
}

// ParseSpecifiers parses a comma-separated conjunction of PEP 440
// specifiers, e.g. ">=1.0,!=1.5,<2.0". An empty or all-whitespace string
// parses to an empty (always-satisfiable) VersionSpecifiers.
func ParseSpecifiers(s string) (VersionSpecifiers, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	clauses := strings.Split(s, ",")
	out := make(VersionSpecifiers, 0, len(clauses))
	for _, c := range clauses {
		spec, err := ParseSpecifier(c)
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}

// VersionRange is a half-open (or closed, or unbounded) interval of
// versions. A nil Min means unbounded below; a nil Max means unbounded
// above. It mirrors the interval notation from
// https://en.wikipedia.org/wiki/Interval_(mathematics)#Terminology.
type VersionRange struct {
	Min          *Version
	MinInclusive bool
	Max          *Version
	MaxInclusive bool
}

// allVersions is the range matching every version: used as the fold seed in
// SpecifiersToRanges.
var allVersions = VersionRange{MinInclusive: true, MaxInclusive: true}

func (r VersionRange) String() string {
	var b strings.Builder
	if r.MinInclusive {
		b.WriteByte('[')
	} else {
		b.WriteByte('(')
	}
	if r.Min != nil {
		b.WriteString(r.Min.String())
	} else {
		b.WriteString("-inf")
	}
	b.WriteString(", ")
	if r.Max != nil {
		b.WriteString(r.Max.String())
	} else {
		b.WriteString("inf")
	}
	if r.MaxInclusive {
		b.WriteByte(']')
	} else {
		b.WriteByte(')')
	}
	return b.String()
}

// cmpOptVersion orders possibly-absent version bounds, treating a nil
// Version as smaller than any concrete one (matching Option<Version>'s
// derived Ord, where None < Some(_)).
func cmpOptVersion(a, b *Version) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(b)
	}
}

// IsDisjoint reports whether r and o share no version.
func (r VersionRange) IsDisjoint(o VersionRange) bool {
	overlapping1 := true
	if r.Max != nil && o.Min != nil {
		switch {
		case r.Max.Compare(o.Min) > 0:
			overlapping1 = true
		case r.Max.Compare(o.Min) == 0:
			overlapping1 = r.MaxInclusive && o.MinInclusive
		default:
			overlapping1 = false
		}
	}
	overlapping2 := true
	if o.Max != nil && r.Min != nil {
		switch {
		case o.Max.Compare(r.Min) > 0:
			overlapping2 = true
		case o.Max.Compare(r.Min) == 0:
			overlapping2 = r.MinInclusive && o.MaxInclusive
		default:
			overlapping2 = false
		}
	}
	return !(overlapping1 && overlapping2)
}

// Intersect returns the range covered by both r and o, assuming they are
// known to overlap (callers should check IsDisjoint first).
func (r VersionRange) Intersect(o VersionRange) VersionRange {
	var min *Version
	var minIncl bool
	switch cmpOptVersion(r.Min, o.Min) {
	case 1:
		min, minIncl = r.Min, r.MinInclusive
	case 0:
		min, minIncl = r.Min, r.MinInclusive && o.MinInclusive
	default:
		min, minIncl = o.Min, o.MinInclusive
	}
	var max *Version
	var maxIncl bool
	switch {
	case r.Max == nil && o.Max == nil:
		max, maxIncl = nil, true
	case r.Max == nil:
		max, maxIncl = o.Max, o.MaxInclusive
	case o.Max == nil:
		max, maxIncl = r.Max, r.MaxInclusive
	default:
		switch r.Max.Compare(o.Max) {
		case -1:
			max, maxIncl = r.Max, r.MaxInclusive
		case 0:
			max, maxIncl = r.Max, r.MaxInclusive && o.MaxInclusive
		default:
			max, maxIncl = o.Max, o.MaxInclusive
		}
	}
	return VersionRange{Min: min, MinInclusive: minIncl, Max: max, MaxInclusive: maxIncl}
}

// HasLocal reports whether v carries a PEP 440 local version segment
// ("+local" in "1.0+local"). A literal with a local segment can't be
// reasonably inverted into a specifier on a marker field, since PEP 440
// specifiers never compare local segments against anything but another
// exact local segment.
func (v *Version) HasLocal() bool {
	return v.isPyPILocal()
}

// releaseOf returns the release segment the user actually wrote (unpadded),
// e.g. [1, 2] for "1.2", not the zero-padded 3-element internal buffer.
func releaseOf(v *Version) []int64 {
	n := int(v.userNumCount)
	if n <= 0 || n > len(v.num) {
		n = len(v.num)
	}
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		out[i] = int64(v.num[i])
	}
	return out
}

// bumpLast returns a copy of release with its final component incremented,
// the standard PEP 440 trick for turning a prefix match into an exclusive
// upper bound ("1.2.*" matches up to, but not including, "1.3").
func bumpLast(release []int64) []int64 {
	out := append([]int64(nil), release...)
	out[len(out)-1]++
	return out
}

// releaseVersion builds a Version out of a bare release segment (and
// optional epoch), with no pre/post/dev/local part. It is used to
// synthesize the bound versions PEP 440's star and compatible-release
// operators imply but never spell out literally.
func releaseVersion(epoch int, release []int64) (*Version, error) {
	parts := make([]string, len(release))
	for i, n := range release {
		parts[i] = strconv.FormatInt(n, 10)
	}
	s := strings.Join(parts, ".")
	if epoch != 0 {
		s = strconv.Itoa(epoch) + "!" + s
	}
	return PyPI.Parse(s)
}

// SpecifierToRanges converts a single specifier into the range(s) of
// versions it matches. Every operator maps to exactly one range except !=
// and !=X.*, which exclude a single point or prefix from the middle of the
// version line and so need two ranges, one on either side of the gap.
//
// GreaterThan deliberately returns max_inclusive = true alongside max = nil:
// the inclusivity flag is meaningless when there is no upper bound, and this
// mirrors the range this was ported from rather than "fixing" it to false.
func SpecifierToRanges(s VersionSpecifier) (VersionRange, *VersionRange, error) {
	v := s.Version
	epoch, _ := v.Epoch()
	switch s.Op {
	case OpEqual, OpArbitraryEqual:
		return VersionRange{Min: v, MinInclusive: true, Max: v, MaxInclusive: true}, nil, nil

	case OpEqualStar:
		release := releaseOf(v)
		if len(release) == 0 {
			return VersionRange{}, nil, fmt.Errorf("pep440: %s has no release segment", s)
		}
		max, err := releaseVersion(epoch, bumpLast(release))
		if err != nil {
			return VersionRange{}, nil, err
		}
		return VersionRange{Min: v, MinInclusive: true, Max: max, MaxInclusive: false}, nil, nil

	case OpNotEqual:
		r1 := VersionRange{Min: nil, MinInclusive: true, Max: v, MaxInclusive: false}
		r2 := VersionRange{Min: v, MinInclusive: false, Max: nil, MaxInclusive: true}
		return r1, &r2, nil

	case OpNotEqualStar:
		release := releaseOf(v)
		if len(release) == 0 {
			return VersionRange{}, nil, fmt.Errorf("pep440: %s has no release segment", s)
		}
		larger, err := releaseVersion(epoch, bumpLast(release))
		if err != nil {
			return VersionRange{}, nil, err
		}
		r1 := VersionRange{Min: nil, MinInclusive: true, Max: v, MaxInclusive: false}
		r2 := VersionRange{Min: larger, MinInclusive: true, Max: nil, MaxInclusive: true}
		return r1, &r2, nil

	case OpCompatible:
		release := releaseOf(v)
		if len(release) < 2 {
			return VersionRange{}, nil, fmt.Errorf("pep440: %s needs at least two release numbers", s)
		}
		trunc := release[:len(release)-1]
		max, err := releaseVersion(epoch, bumpLast(trunc))
		if err != nil {
			return VersionRange{}, nil, err
		}
		return VersionRange{Min: v, MinInclusive: true, Max: max, MaxInclusive: false}, nil, nil

	case OpLess:
		return VersionRange{Min: nil, MinInclusive: true, Max: v, MaxInclusive: false}, nil, nil

	case OpLessEqual:
		// The plain mapping of <= v. The "literal <= variable" inversion
		// quirk is applied earlier, by the normalize package.
		return VersionRange{Min: nil, MinInclusive: true, Max: v, MaxInclusive: true}, nil, nil

	case OpGreater:
		return VersionRange{Min: v, MinInclusive: false, Max: nil, MaxInclusive: true}, nil, nil

	case OpGreaterEqual:
		return VersionRange{Min: v, MinInclusive: true, Max: nil, MaxInclusive: true}, nil, nil

	default:
		return VersionRange{}, nil, fmt.Errorf("pep440: unhandled operator %v", s.Op)
	}
}

// SpecifiersToRanges folds a conjunction of specifiers down to the (at most
// a handful of) disjoint ranges that satisfy every clause at once. Each new
// specifier's range(s) are intersected into every range surviving so far;
// a specifier that carves a version out of the middle of the line (!=,
// !=X.*) can split one surviving range into two.
func SpecifiersToRanges(specs VersionSpecifiers) ([]VersionRange, error) {
	merged := []VersionRange{allVersions}
	for _, spec := range specs {
		r1, r2, err := SpecifierToRanges(spec)
		if err != nil {
			return nil, err
		}
		var next []VersionRange
		for _, existing := range merged {
			if !existing.IsDisjoint(r1) {
				next = append(next, existing.Intersect(r1))
			}
			if r2 != nil && !existing.IsDisjoint(*r2) {
				next = append(next, existing.Intersect(*r2))
			}
		}
		merged = next
	}
	return merged, nil
}

// DisjointSpecifier reports whether two individual specifier clauses can
// never both be satisfied by the same version.
func DisjointSpecifier(left, right VersionSpecifier) (bool, error) {
	left1, left2, err := SpecifierToRanges(left)
	if err != nil {
		return false, err
	}
	right1, right2, err := SpecifierToRanges(right)
	if err != nil {
		return false, err
	}
	if !left1.IsDisjoint(right1) {
		return false, nil
	}
	if left2 != nil && !left2.IsDisjoint(right1) {
		return false, nil
	}
	if right2 != nil && !right2.IsDisjoint(left1) {
		return false, nil
	}
	if left2 != nil && right2 != nil && !left2.IsDisjoint(*right2) {
		return false, nil
	}
	return true, nil
}

// DisjointSpecifiers reports whether there is no version that can satisfy
// both conjunctions of specifiers at once.
func DisjointSpecifiers(left, right VersionSpecifiers) (bool, error) {
	leftRanges, err := SpecifiersToRanges(left)
	if err != nil {
		return false, err
	}
	rightRanges, err := SpecifiersToRanges(right)
	if err != nil {
		return false, err
	}
	for _, l := range leftRanges {
		for _, r := range rightRanges {
			if !l.IsDisjoint(r) {
				return false, nil
			}
		}
	}
	return true, nil
}

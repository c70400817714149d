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

// Package normalize reduces a single marker expression (marker.Expression)
// to one of three canonical shapes a disjointness checker can reason about:
// a version constraint against a known version-valued variable, a string
// equality/inequality/ordering against a known string-valued variable, or an
// extra equality. Expressions that don't reduce soundly (comparing two
// variables, comparing two literals, "~=" against a string, and similar
// nonsense) are reported through the caller-supplied reporter and dropped.
package normalize

import (
	"fmt"
	"strings"

	"deps.dev/util/semver"
	"github.com/google/pep440intersect/marker"
)

// versionFields are the marker variables whose value is a PEP 440 version.
var versionFields = map[string]bool{
	"python_version":         true,
	"python_full_version":    true,
	"implementation_version": true,
}

// StringOp is the comparison used by a StringEquality atom. Only Equal and
// NotEqual are decidable for disjointness purposes; the others are kept
// purely so the atom can still be displayed and is conservatively treated
// as overlapping. The ordering operators are reported with a warning at
// normalization time; in and not in are accepted without one.
type StringOp int

const (
	StringEqual StringOp = iota
	StringNotEqual
	StringGreaterThan
	StringGreaterEqual
	StringLessThan
	StringLessEqual
	StringIn
	StringNotIn
)

func (o StringOp) String() string {
	switch o {
	case StringEqual:
		return "=="
	case StringNotEqual:
		return "!="
	case StringGreaterThan:
		return ">"
	case StringGreaterEqual:
		return ">="
	case StringLessThan:
		return "<"
	case StringLessEqual:
		return "<="
	case StringIn:
		return "in"
	case StringNotIn:
		return "not in"
	default:
		return "?"
	}
}

// ExtraOp is the comparison used by an ExtraEquality atom.
type ExtraOp int

const (
	ExtraEqual ExtraOp = iota
	ExtraNotEqual
)

func (o ExtraOp) String() string {
	if o == ExtraNotEqual {
		return "!="
	}
	return "=="
}

// Atom is one of VersionConstraint, StringEquality or ExtraEquality: the
// normalized, disjointness-testable form of a marker expression.
type Atom interface {
	String() string
	atomNode()
}

// VersionConstraint pins down a version-valued field with a conjunction of
// PEP 440 specifiers, e.g. python_version >= "3.7" normalizes to
// {Field: "python_version", Specifiers: [">=3.7"]}.
type VersionConstraint struct {
	Field      string
	Specifiers semver.VersionSpecifiers
}

func (v VersionConstraint) atomNode() {}
func (v VersionConstraint) String() string {
	return fmt.Sprintf("%s%s", v.Field, v.Specifiers)
}

// StringEquality compares a string-valued field against a literal.
type StringEquality struct {
	Field string
	Op    StringOp
	Value string
}

func (s StringEquality) atomNode() {}
func (s StringEquality) String() string {
	return fmt.Sprintf("%s %s %q", s.Field, s.Op, s.Value)
}

// ExtraEquality compares the extra field against a literal extra name.
type ExtraEquality struct {
	Op    ExtraOp
	Value string
}

func (e ExtraEquality) atomNode() {}
func (e ExtraEquality) String() string {
	return fmt.Sprintf("extra %s %q", e.Op, e.Value)
}

// WarningKind classifies why an expression was reported as unsound.
type WarningKind int

const (
	WarnMarkerMarkerComparison WarningKind = iota
	WarnStringStringComparison
	WarnExtraInvalidComparison
	WarnLexicographicComparison
	WarnPep440Error
)

// Reporter receives a warning produced while normalizing an expression. It
// may be nil, in which case warnings are silently dropped.
type Reporter func(kind WarningKind, msg string, expr marker.Expression)

func warn(r Reporter, kind WarningKind, msg string, expr marker.Expression) {
	if r != nil {
		r(kind, msg, expr)
	}
}

// Normalize reduces a single marker expression to an Atom, reporting (and
// returning ok=false for) anything that cannot be normalized soundly.
func Normalize(expr marker.Expression, reporter Reporter) (atom Atom, ok bool) {
	l, op, r := expr.Left, expr.Op, expr.Right

	switch {
	case l.IsVariable() && versionFields[l.Var]:
		return normalizeVersionLeft(expr, l.Var, op, r, reporter)

	case l.IsVariable() && l.Var == "extra":
		return normalizeExtraLeft(expr, op, r, reporter)

	case l.IsVariable(): // string-valued field
		return normalizeStringLeft(expr, l.Var, op, r, reporter)

	default: // l is a quoted literal
		return normalizeLiteralLeft(expr, l.Literal, op, r, reporter)
	}
}

func normalizeVersionLeft(expr marker.Expression, field string, op marker.Operator, r marker.Value, reporter Reporter) (Atom, bool) {
	if r.IsVariable() {
		warn(reporter, WarnMarkerMarkerComparison, "comparing two markers with each other doesn't make any sense", expr)
		return nil, false
	}
	// A trailing ".*" is only meaningful for == and !=; strip it before
	// parsing so the resulting Version's release segment is the clean,
	// unpadded release the user wrote, not a wildcard sentinel. Mirrors
	// semver.ParseSpecifier, which does the same before calling PyPI.Parse.
	lit := r.Literal
	star := (op == marker.OpEqual || op == marker.OpNotEqual) && strings.HasSuffix(lit, ".*")
	if star {
		lit = strings.TrimSuffix(lit, ".*")
	}
	v, err := semver.PyPI.Parse(lit)
	if err != nil {
		warn(reporter, WarnPep440Error, fmt.Sprintf("expected PEP 440 version to compare with %s, found %q: %v", field, r.Literal, err), expr)
		return nil, false
	}
	semverOp, ok := toSpecifierOp(op, star)
	if !ok {
		warn(reporter, WarnPep440Error, fmt.Sprintf("expected PEP 440 version operator to compare %s with %q, found %q", field, r.Literal, op), expr)
		return nil, false
	}
	return VersionConstraint{Field: field, Specifiers: semver.VersionSpecifiers{{Op: semverOp, Version: v}}}, true
}

// toSpecifierOp maps a marker operator to the corresponding semver.Operator
// for a version-key-left comparison: a direct, non-inverting mapping. star
// reports whether the literal carried a trailing ".*", already stripped from
// the Version passed alongside the result; in/not in and === are invalid
// here.
func toSpecifierOp(op marker.Operator, star bool) (semver.Operator, bool) {
	switch op {
	case marker.OpEqual:
		if star {
			return semver.OpEqualStar, true
		}
		return semver.OpEqual, true
	case marker.OpNotEqual:
		if star {
			return semver.OpNotEqualStar, true
		}
		return semver.OpNotEqual, true
	case marker.OpGreater:
		return semver.OpGreater, true
	case marker.OpGreaterEqual:
		return semver.OpGreaterEqual, true
	case marker.OpLess:
		return semver.OpLess, true
	case marker.OpLessEqual:
		return semver.OpLessEqual, true
	case marker.OpTildeEqual:
		return semver.OpCompatible, true
	default:
		return 0, false
	}
}

func normalizeStringLeft(expr marker.Expression, field string, op marker.Operator, r marker.Value, reporter Reporter) (Atom, bool) {
	if r.IsVariable() {
		warn(reporter, WarnMarkerMarkerComparison, "comparing two markers with each other doesn't make any sense", expr)
		return nil, false
	}
	sop, ok := toStringOp(expr, field, r.Literal, op, reporter)
	if !ok {
		return nil, false
	}
	return StringEquality{Field: field, Op: sop, Value: r.Literal}, true
}

func toStringOp(expr marker.Expression, field, value string, op marker.Operator, reporter Reporter) (StringOp, bool) {
	switch op {
	case marker.OpEqual:
		return StringEqual, true
	case marker.OpNotEqual:
		return StringNotEqual, true
	case marker.OpGreater:
		warn(reporter, WarnLexicographicComparison, fmt.Sprintf("comparing %s and %q lexicographically", field, value), expr)
		return StringGreaterThan, true
	case marker.OpGreaterEqual:
		warn(reporter, WarnLexicographicComparison, fmt.Sprintf("comparing %s and %q lexicographically", field, value), expr)
		return StringGreaterEqual, true
	case marker.OpLess:
		warn(reporter, WarnLexicographicComparison, fmt.Sprintf("comparing %s and %q lexicographically", field, value), expr)
		return StringLessThan, true
	case marker.OpLessEqual:
		warn(reporter, WarnLexicographicComparison, fmt.Sprintf("comparing %s and %q lexicographically", field, value), expr)
		return StringLessEqual, true
	case marker.OpIn:
		return StringIn, true
	case marker.OpNotIn:
		return StringNotIn, true
	case marker.OpTildeEqual:
		warn(reporter, WarnLexicographicComparison, fmt.Sprintf("can't compare %s and %q with ~=", field, value), expr)
		return 0, false
	default:
		warn(reporter, WarnPep440Error, fmt.Sprintf("invalid operator %q for string field %s", op, field), expr)
		return 0, false
	}
}

func normalizeExtraLeft(expr marker.Expression, op marker.Operator, r marker.Value, reporter Reporter) (Atom, bool) {
	if r.IsVariable() {
		warn(reporter, WarnExtraInvalidComparison, "comparing extra with something other than a quoted string is wrong", expr)
		return nil, false
	}
	eop, ok := toExtraOp(expr, op, reporter)
	if !ok {
		return nil, false
	}
	return ExtraEquality{Op: eop, Value: r.Literal}, true
}

func toExtraOp(expr marker.Expression, op marker.Operator, reporter Reporter) (ExtraOp, bool) {
	switch op {
	case marker.OpEqual:
		return ExtraEqual, true
	case marker.OpNotEqual:
		return ExtraNotEqual, true
	default:
		warn(reporter, WarnExtraInvalidComparison, "comparing extra with something other than equal (==) or unequal (!=) is wrong", expr)
		return 0, false
	}
}

// normalizeLiteralLeft handles the four "<quoted literal> <op> <var>" cases,
// inverting the comparison so the variable ends up on the left wherever
// that is sound.
func normalizeLiteralLeft(expr marker.Expression, lit string, op marker.Operator, r marker.Value, reporter Reporter) (Atom, bool) {
	if !r.IsVariable() {
		warn(reporter, WarnStringStringComparison, fmt.Sprintf("comparing two quoted strings with each other doesn't make sense: %s", expr), expr)
		return nil, false
	}

	switch {
	case versionFields[r.Var]:
		lv, err := semver.PyPI.Parse(lit)
		if err != nil {
			warn(reporter, WarnPep440Error, fmt.Sprintf("expected double quoted PEP 440 version to compare with %s, found %q: %v", r.Var, lit, err), expr)
			return nil, false
		}
		epoch, _ := lv.Epoch()
		if epoch != 0 {
			warn(reporter, WarnPep440Error, fmt.Sprintf("a PEP 440 version with epoch %d compared with %s will always evaluate to false", epoch, r.Var), expr)
			return nil, false
		}
		if lv.HasLocal() {
			warn(reporter, WarnPep440Error, fmt.Sprintf("a PEP 440 version %s with a local version compared with %s can not be reasonably represented", lv, r.Var), expr)
			return nil, false
		}
		specs, ok := invertVersionOperator(op, lv)
		if !ok {
			warn(reporter, WarnPep440Error, fmt.Sprintf("expected PEP 440 version operator to compare %q with %s, found %q", lit, r.Var, op), expr)
			return nil, false
		}
		return VersionConstraint{Field: r.Var, Specifiers: specs}, true

	case r.Var == "extra":
		eop, ok := toExtraOp(expr, op, reporter)
		if !ok {
			return nil, false
		}
		return ExtraEquality{Op: eop, Value: lit}, true

	default: // r.Var is a string field
		// The reference implementation this is ported from hardcodes the
		// resulting operator to equality here regardless of the original
		// marker operator; kept verbatim rather than "fixed" to handle !=
		// or in/not in, since nothing downstream has ever relied on it
		// doing otherwise.
		return StringEquality{Field: r.Var, Op: StringEqual, Value: lit}, true
	}
}

// invertVersionOperator flips "<literal> <op> <version field>" into one or
// two specifiers on the field, i.e. "<field> <op'> <literal>".
//
// The <= case is deliberately NOT flipped to >=: "1.0 <= python_version"
// becomes the specifier "<=1.0" rather than ">=1.0". This reproduces a
// genuine asymmetry in the source this was ported from (every other
// invertible operator flips correctly) and is preserved rather than
// corrected, since nothing about normalization depends on fixing it and
// doing so would silently change behavior the reference relies on.
func invertVersionOperator(op marker.Operator, lv *semver.Version) (semver.VersionSpecifiers, bool) {
	single := func(o semver.Operator) semver.VersionSpecifiers {
		return semver.VersionSpecifiers{{Op: o, Version: lv}}
	}
	switch op {
	case marker.OpEqual:
		return single(semver.OpEqual), true
	case marker.OpNotEqual:
		return single(semver.OpNotEqual), true
	case marker.OpGreater:
		return single(semver.OpLessEqual), true
	case marker.OpGreaterEqual:
		return single(semver.OpLess), true
	case marker.OpLess:
		return single(semver.OpGreaterEqual), true
	case marker.OpLessEqual:
		return single(semver.OpLessEqual), true // verbatim asymmetry, see doc comment.
	case marker.OpTildeEqual:
		// "2.3.4 ~= python_full_version" means python_full_version must be
		// both a "compatible release" floor and share 2's major version:
		// inverted, that is "<=2.3.4" and ">2" (exclusive major truncation).
		upper, err := majorOnly(lv)
		if err != nil {
			return nil, false
		}
		return semver.VersionSpecifiers{
			{Op: semver.OpLessEqual, Version: lv},
			{Op: semver.OpGreater, Version: upper},
		}, true
	default:
		return nil, false
	}
}

// majorOnly builds a bare release-only Version out of just v's first
// release component, e.g. major(2.3.4) = 2.
func majorOnly(v *semver.Version) (*semver.Version, error) {
	major, ok := v.Major()
	if !ok {
		return nil, fmt.Errorf("normalize: %s has no release segment", v)
	}
	return semver.PyPI.Parse(fmt.Sprintf("%d", major))
}

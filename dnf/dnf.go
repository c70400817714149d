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

// Package dnf reduces a marker.Tree to disjunctive normal form — an Or of
// Ands, i.e. (A and B and ...) or (C and D and ...) or ... — canonicalizing
// away duplicate clauses and pruning any conjunction that contains a
// provably contradictory pair of expressions. An empty DNF means the tree
// can never be true for any environment, which is exactly the condition two
// marker trees being disjoint reduces to: their conjunction has an empty
// DNF.
package dnf

import (
	"sort"
	"strings"

	"github.com/google/pep440intersect/marker"
	"github.com/google/pep440intersect/normalize"
	"deps.dev/util/semver"
)

// Reporter receives warnings surfaced while normalizing the expressions
// inside a conjunction, e.g. a lexicographic version comparison.
type Reporter = normalize.Reporter

// Conjunction is one AND-clause of a DNF: a canonicalized (deduplicated,
// sorted) list of marker expressions that must all hold at once.
type Conjunction []marker.Expression

func (c Conjunction) String() string {
	parts := make([]string, len(c))
	for i, e := range c {
		parts[i] = e.String()
	}
	return strings.Join(parts, " and ")
}

// DNF is a disjunction of conjunctions: a marker tree in disjunctive normal
// form. A nil/empty DNF represents a tree that can never be satisfied.
type DNF []Conjunction

func (d DNF) String() string {
	parts := make([]string, len(d))
	for i, c := range d {
		if len(c) > 1 {
			parts[i] = "(" + c.String() + ")"
		} else {
			parts[i] = c.String()
		}
	}
	return strings.Join(parts, " or ")
}

// Tree rebuilds a marker.Tree equivalent to the DNF: And(Expr...) for a
// single surviving conjunction, Or(And(Expr...), ...) for several. A
// conjunction of one atom becomes a bare Expr rather than a one-element And.
func (d DNF) Tree() marker.Tree {
	if len(d) == 0 {
		return nil
	}
	toTree := func(c Conjunction) marker.Tree {
		var t marker.Tree = marker.Expr{Expression: c[0]}
		for _, e := range c[1:] {
			t = marker.And{Left: t, Right: marker.Expr{Expression: e}}
		}
		return t
	}
	t := toTree(d[0])
	for _, c := range d[1:] {
		t = marker.Or{Left: t, Right: toTree(c)}
	}
	return t
}

// ToDNF converts a marker tree to disjunctive normal form.
//
// (A or B) and C      => (A and C) or (B and C)
// (A and B) or C       => (A and B) or C
// (A or B) or C         => A or B or C    (flattened)
// (A and B) and C       => A and B and C  (flattened)
//
// Every intermediate conjunction/disjunction is deduplicated, and any
// conjunction containing a pair of expressions provably disjoint from each
// other (after normalization) is dropped as a contradiction.
func ToDNF(t marker.Tree, reporter Reporter) DNF {
	switch n := t.(type) {
	case nil:
		return nil
	case marker.Expr:
		return DNF{Conjunction{n.Expression}}
	case marker.And:
		return andDNF(ToDNF(n.Left, reporter), ToDNF(n.Right, reporter), reporter)
	case marker.Or:
		return orDNF(ToDNF(n.Left, reporter), ToDNF(n.Right, reporter))
	default:
		return nil
	}
}

func andDNF(left, right DNF, reporter Reporter) DNF {
	var next DNF
	for _, l := range left {
		for _, r := range right {
			merged := mergeConjunction(l, r)
			if isContradictory(merged, reporter) {
				continue
			}
			if !containsConjunction(next, merged) {
				next = append(next, merged)
			}
		}
	}
	sortDNF(next)
	return next
}

func orDNF(left, right DNF) DNF {
	var flattened DNF
	for _, c := range left {
		if !containsConjunction(flattened, c) {
			flattened = append(flattened, c)
		}
	}
	for _, c := range right {
		if !containsConjunction(flattened, c) {
			flattened = append(flattened, c)
		}
	}
	sortDNF(flattened)
	return flattened
}

// mergeConjunction unions two conjunctions, deduplicating expressions and
// sorting the result so it can be compared and deduplicated itself.
func mergeConjunction(a, b Conjunction) Conjunction {
	acc := make(Conjunction, 0, len(a)+len(b))
	for _, e := range a {
		if !containsExpr(acc, e) {
			acc = append(acc, e)
		}
	}
	for _, e := range b {
		if !containsExpr(acc, e) {
			acc = append(acc, e)
		}
	}
	sort.Slice(acc, func(i, j int) bool { return acc[i].String() < acc[j].String() })
	return acc
}

func containsExpr(c Conjunction, e marker.Expression) bool {
	for _, x := range c {
		if x == e {
			return true
		}
	}
	return false
}

func containsConjunction(d DNF, c Conjunction) bool {
	for _, x := range d {
		if len(x) != len(c) {
			continue
		}
		equal := true
		for i := range x {
			if x[i] != c[i] {
				equal = false
				break
			}
		}
		if equal {
			return true
		}
	}
	return false
}

// isContradictory reports whether any two expressions in the conjunction
// (possibly the same expression twice) are provably disjoint, which makes
// the whole conjunction unsatisfiable.
func isContradictory(c Conjunction, reporter Reporter) bool {
	for _, l := range c {
		for _, r := range c {
			if DisjointExpressions(l, r, reporter) {
				return true
			}
		}
	}
	return false
}

func sortDNF(d DNF) {
	sort.Slice(d, func(i, j int) bool {
		if len(d[i]) != len(d[j]) {
			return len(d[i]) < len(d[j])
		}
		return d[i].String() < d[j].String()
	})
}

// DisjointExpressions reports whether two raw marker expressions are
// provably disjoint once normalized. Expressions that fail to normalize are
// treated as possibly-overlapping (false), matching the soft-invalid
// handling in the normalize package.
func DisjointExpressions(left, right marker.Expression, reporter Reporter) bool {
	la, ok := normalize.Normalize(left, reporter)
	if !ok {
		return false
	}
	ra, ok := normalize.Normalize(right, reporter)
	if !ok {
		return false
	}
	return DisjointAtoms(la, ra)
}

// DisjointAtoms reports whether two normalized atoms can never both hold.
// Only a handful of shapes are decidable: two version constraints on the
// same field (delegated to the range engine), two string (in)equalities on
// the same field with matching/differing literal values, and two extra
// (in)equalities with matching values. Everything else — different fields,
// lexicographic/in/not-in comparisons, atoms of different kinds — is
// conservatively treated as possibly overlapping.
func DisjointAtoms(left, right normalize.Atom) bool {
	switch l := left.(type) {
	case normalize.VersionConstraint:
		r, ok := right.(normalize.VersionConstraint)
		if !ok || l.Field != r.Field {
			return false
		}
		disjoint, err := semver.DisjointSpecifiers(l.Specifiers, r.Specifiers)
		if err != nil {
			return false
		}
		return disjoint

	case normalize.StringEquality:
		r, ok := right.(normalize.StringEquality)
		if !ok || l.Field != r.Field {
			return false
		}
		if l.Op == normalize.StringEqual && r.Op == normalize.StringEqual && l.Value != r.Value {
			return true
		}
		disjointOps := (l.Op == normalize.StringNotEqual && r.Op == normalize.StringEqual) ||
			(l.Op == normalize.StringEqual && r.Op == normalize.StringNotEqual)
		return l.Value == r.Value && disjointOps

	case normalize.ExtraEquality:
		r, ok := right.(normalize.ExtraEquality)
		if !ok {
			return false
		}
		disjointOps := (l.Op == normalize.ExtraNotEqual && r.Op == normalize.ExtraEqual) ||
			(l.Op == normalize.ExtraEqual && r.Op == normalize.ExtraNotEqual)
		return l.Value == r.Value && disjointOps

	default:
		return false
	}
}

// Disjoint reports whether left and right can never both hold for the same
// environment: equivalently, whether (left and right)'s DNF is empty.
func Disjoint(left, right marker.Tree, reporter Reporter) bool {
	combined := marker.And{Left: left, Right: right}
	return len(ToDNF(combined, reporter)) == 0
}

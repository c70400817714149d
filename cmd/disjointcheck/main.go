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

/*
disjointcheck is an example program that decides whether two PEP 508
environment-marker strings, two PEP 440 version-specifier-set strings, or
two full PEP 508 requirement strings (name, constraint and environment
together) can ever both hold at once. It prints "disjoint" or "overlapping"
and exits non-zero on a parse error.
*/
package main

import (
	"flag"
	"fmt"
	"log"

	"deps.dev/util/pypi"
	"deps.dev/util/semver"

	"github.com/google/pep440intersect/dnf"
	"github.com/google/pep440intersect/marker"
	"github.com/google/pep440intersect/normalize"
)

const usage = `Usage:
  disjointcheck -marker "<marker1>" "<marker2>"
  disjointcheck -specifiers "<specifiers1>" "<specifiers2>"
  disjointcheck -requirement "<requirement1>" "<requirement2>"`

func main() {
	log.SetFlags(0)
	markerMode := flag.Bool("marker", false, "treat the two arguments as PEP 508 environment markers")
	specifierMode := flag.Bool("specifiers", false, "treat the two arguments as PEP 440 specifier sets")
	requirementMode := flag.Bool("requirement", false, "treat the two arguments as full PEP 508 requirement strings")
	flag.Usage = func() { fmt.Println(usage) }
	flag.Parse()

	modes := 0
	for _, m := range []bool{*markerMode, *specifierMode, *requirementMode} {
		if m {
			modes++
		}
	}
	if modes != 1 {
		log.Fatal("exactly one of -marker, -specifiers or -requirement must be set")
	}
	if flag.NArg() != 2 {
		log.Fatal(usage)
	}
	left, right := flag.Arg(0), flag.Arg(1)

	var disjoint bool
	switch {
	case *markerMode:
		lt, err := marker.Parse(left)
		if err != nil {
			log.Fatalf("parsing marker %q: %v", left, err)
		}
		rt, err := marker.Parse(right)
		if err != nil {
			log.Fatalf("parsing marker %q: %v", right, err)
		}
		disjoint = markersDisjoint(lt, rt)
	case *specifierMode:
		ls, err := semver.ParseSpecifiers(left)
		if err != nil {
			log.Fatalf("parsing specifiers %q: %v", left, err)
		}
		rs, err := semver.ParseSpecifiers(right)
		if err != nil {
			log.Fatalf("parsing specifiers %q: %v", right, err)
		}
		disjoint, err = semver.DisjointSpecifiers(ls, rs)
		if err != nil {
			log.Fatalf("comparing specifiers: %v", err)
		}
	case *requirementMode:
		ld, err := pypi.ParseDependencyLenient(left)
		if err != nil {
			log.Fatalf("parsing requirement %q: %v", left, err)
		}
		rd, err := pypi.ParseDependencyLenient(right)
		if err != nil {
			log.Fatalf("parsing requirement %q: %v", right, err)
		}
		disjoint, err = requirementsDisjoint(ld, rd)
		if err != nil {
			log.Fatalf("comparing requirements: %v", err)
		}
	}

	if disjoint {
		fmt.Println("disjoint")
	} else {
		fmt.Println("overlapping")
	}
}

// markersDisjoint reports whether two marker trees are disjoint, logging
// any normalization warnings raised along the way.
func markersDisjoint(lt, rt marker.Tree) bool {
	var warnings []string
	reporter := func(kind normalize.WarningKind, msg string, e marker.Expression) {
		warnings = append(warnings, msg)
	}
	disjoint := dnf.Disjoint(lt, rt, reporter)
	for _, w := range warnings {
		log.Printf("warning: %s", w)
	}
	return disjoint
}

// requirementsDisjoint reports whether two parsed PEP 508 requirements can
// never both apply to the same version in the same environment: that holds
// as soon as either their version constraints or their environment markers
// are disjoint, since both must be satisfiable together for the requirement
// pair to overlap.
func requirementsDisjoint(l, r pypi.Dependency) (bool, error) {
	if l.Constraint != "" && r.Constraint != "" {
		ls, err := semver.ParseSpecifiers(l.Constraint)
		if err != nil {
			return false, fmt.Errorf("parsing constraint %q: %w", l.Constraint, err)
		}
		rs, err := semver.ParseSpecifiers(r.Constraint)
		if err != nil {
			return false, fmt.Errorf("parsing constraint %q: %w", r.Constraint, err)
		}
		disjoint, err := semver.DisjointSpecifiers(ls, rs)
		if err != nil {
			return false, fmt.Errorf("comparing constraints: %w", err)
		}
		if disjoint {
			return true, nil
		}
	}
	if l.Environment != "" && r.Environment != "" {
		lt, err := marker.Parse(l.Environment)
		if err != nil {
			return false, fmt.Errorf("parsing environment %q: %w", l.Environment, err)
		}
		rt, err := marker.Parse(r.Environment)
		if err != nil {
			return false, fmt.Errorf("parsing environment %q: %w", r.Environment, err)
		}
		if markersDisjoint(lt, rt) {
			return true, nil
		}
	}
	return false, nil
}

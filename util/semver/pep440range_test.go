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

import (
	"strings"
	"testing"
)

func mustSpecifier(t *testing.T, s string) VersionSpecifier {
	t.Helper()
	spec, err := ParseSpecifier(s)
	if err != nil {
		t.Fatalf("ParseSpecifier(%q): %v", s, err)
	}
	return spec
}

func mustSpecifiers(t *testing.T, s string) VersionSpecifiers {
	t.Helper()
	specs, err := ParseSpecifiers(s)
	if err != nil {
		t.Fatalf("ParseSpecifiers(%q): %v", s, err)
	}
	return specs
}

func TestDisjointSpecifierPythonStable(t *testing.T) {
	cases := [][2]string{
		{">= 3.8", "< 3.8"},
		{">= 3.8", "< 3.7"},
		{"> 3.8", "<= 3.8"},
		{"> 3.8", "<= 3.7"},
		{"== 3.8", "!= 3.8"},
		{"== 3.8.*", ">= 3.9"},
		{"== 3.8.*", "< 3.8"},
	}
	for _, c := range cases {
		left, right := mustSpecifier(t, c[0]), mustSpecifier(t, c[1])
		got, err := DisjointSpecifier(left, right)
		if err != nil {
			t.Fatalf("DisjointSpecifier(%q, %q): %v", c[0], c[1], err)
		}
		if !got {
			t.Errorf("DisjointSpecifier(%q, %q) = false, want true", c[0], c[1])
		}
	}
}

func TestDisjointSpecifierPythonPostfix(t *testing.T) {
	cases := [][2]string{
		{">= 3.8b1", "< 3.8b1"},
		{">= 3.8b1.post1", "< 3.8b1.post1"},
		{">= 3.8.post1", "< 3.8.post1"},
	}
	for _, c := range cases {
		left, right := mustSpecifier(t, c[0]), mustSpecifier(t, c[1])
		got, err := DisjointSpecifier(left, right)
		if err != nil {
			t.Fatalf("DisjointSpecifier(%q, %q): %v", c[0], c[1], err)
		}
		if !got {
			t.Errorf("DisjointSpecifier(%q, %q) = false, want true", c[0], c[1])
		}
	}
}

func TestIntersectingSpecifierPythonStable(t *testing.T) {
	cases := [][2]string{
		{"== 3.8", "== 3.8.*"},
		{"<= 3.9", "> 3.8"},
		{"< 3.9", ">= 3.8"},
		{"<= 3.9", ">= 3.8"},
		{"<= 3.8", ">= 3.8"},
		{"== 3.8.*", "> 3.8"},
		{"== 3.8.*", ">= 3.8"},
	}
	for _, c := range cases {
		left, right := mustSpecifier(t, c[0]), mustSpecifier(t, c[1])
		got, err := DisjointSpecifier(left, right)
		if err != nil {
			t.Fatalf("DisjointSpecifier(%q, %q): %v", c[0], c[1], err)
		}
		if got {
			t.Errorf("DisjointSpecifier(%q, %q) = true, want false", c[0], c[1])
		}
	}
}

func TestIntersectingSpecifierPythonPostfix(t *testing.T) {
	cases := [][2]string{
		{"== 3.8.*", "> 3.8b1"},
		{"== 3.8.*", "> 3.8.post1"},
		{"< 3.8.1b1", "== 3.8.*"},
		{"< 3.8.post1", "== 3.8.*"},
	}
	for _, c := range cases {
		left, right := mustSpecifier(t, c[0]), mustSpecifier(t, c[1])
		got, err := DisjointSpecifier(left, right)
		if err != nil {
			t.Fatalf("DisjointSpecifier(%q, %q): %v", c[0], c[1], err)
		}
		if got {
			t.Errorf("DisjointSpecifier(%q, %q) = true, want false", c[0], c[1])
		}
	}
}

func TestDisjointSpecifiersSets(t *testing.T) {
	cases := []struct {
		left, right string
		disjoint    bool
	}{
		{">= 3.7, != 3.8.0, < 3.11", "> 3.10, < 3.12", false},
		{"== 3.10.*, != 3.10.2", ">= 3.11, < 3.12", true},
		{"> 1", "< 1, > 2", true},
	}
	for _, c := range cases {
		left, right := mustSpecifiers(t, c.left), mustSpecifiers(t, c.right)
		got, err := DisjointSpecifiers(left, right)
		if err != nil {
			t.Fatalf("DisjointSpecifiers(%q, %q): %v", c.left, c.right, err)
		}
		if got != c.disjoint {
			t.Errorf("DisjointSpecifiers(%q, %q) = %v, want %v", c.left, c.right, got, c.disjoint)
		}
	}
}

func TestSpecifiersToRangesBounds(t *testing.T) {
	cases := []struct {
		specifiers string
		want       string
	}{
		{">= 3.7, != 3.8.0, < 3.11", "[3.7, 3.8.0) (3.8.0, 3.11)"},
		{"> 3.10, < 3.12", "(3.10, 3.12)"},
		{"== 3.10.*, != 3.10.2", "[3.10, 3.10.2) (3.10.2, 3.11)"},
		{">=3.11, <3.12", "[3.11, 3.12)"},
		{"<1, >2", ""},
	}
	for _, c := range cases {
		specs := mustSpecifiers(t, c.specifiers)
		ranges, err := SpecifiersToRanges(specs)
		if err != nil {
			t.Fatalf("SpecifiersToRanges(%q): %v", c.specifiers, err)
		}
		strs := make([]string, len(ranges))
		for i, r := range ranges {
			strs[i] = r.String()
		}
		got := strings.Join(strs, " ")
		if got != c.want {
			t.Errorf("SpecifiersToRanges(%q) = %q, want %q", c.specifiers, got, c.want)
		}
	}
}

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

package dnf

import (
	"testing"

	"github.com/google/pep440intersect/marker"
)

func mustTree(t *testing.T, s string) marker.Tree {
	t.Helper()
	tree, err := marker.Parse(s)
	if err != nil {
		t.Fatalf("marker.Parse(%q): %v", s, err)
	}
	return tree
}

func TestToDNFSQLAlchemy(t *testing.T) {
	tree := mustTree(t, `python_version >= "3" and `+
		`(platform_machine == "aarch64" or `+
		`(platform_machine == "ppc64le" or `+
		`(platform_machine == "x86_64" or `+
		`(platform_machine == "amd64" or `+
		`(platform_machine == "AMD64" or `+
		`(platform_machine == "win32" or platform_machine == "WIN32")`+
		`)))))`)
	got := ToDNF(tree, nil)
	want := `(platform_machine == "AMD64" and python_version >= "3") or ` +
		`(platform_machine == "WIN32" and python_version >= "3") or ` +
		`(platform_machine == "aarch64" and python_version >= "3") or ` +
		`(platform_machine == "amd64" and python_version >= "3") or ` +
		`(platform_machine == "ppc64le" and python_version >= "3") or ` +
		`(platform_machine == "win32" and python_version >= "3") or ` +
		`(platform_machine == "x86_64" and python_version >= "3")`
	if got.String() != want {
		t.Errorf("ToDNF sqlalchemy marker =\n%s\nwant\n%s", got.String(), want)
	}
}

func TestDisjointGrpcio(t *testing.T) {
	markers := []string{
		`python_version < "3.10" and sys_platform != "darwin"`,
		`python_version < "3.10" and sys_platform == "darwin"`,
		`python_version >= "3.10" and sys_platform != "darwin"`,
		`python_version >= "3.10" and sys_platform == "darwin"`,
	}
	for _, left := range markers {
		for _, right := range markers {
			if left == right {
				continue
			}
			l, r := mustTree(t, left), mustTree(t, right)
			if !Disjoint(l, r, nil) {
				t.Errorf("Disjoint(%q, %q) = false, want true", left, right)
			}
		}
	}
}

func TestDuplicateElimination(t *testing.T) {
	tree := mustTree(t, `(os_name == "A" or os_name == "A" or os_name == "A") and `+
		`(os_name == "A" or os_name == "A")`)
	got := ToDNF(tree, nil)
	want := `os_name == "A"`
	if got.String() != want {
		t.Errorf("ToDNF duplicate-elimination marker = %q, want %q", got.String(), want)
	}
}

func TestContradictionElimination(t *testing.T) {
	cases := []string{
		`platform_machine == "x86_64" and platform_machine != "x86_64"`,
		`os_name == "posix" and os_name == "nt"`,
	}
	for _, marker := range cases {
		tree := mustTree(t, marker)
		got := ToDNF(tree, nil)
		if len(got) != 0 {
			t.Errorf("ToDNF(%q) = %q, want empty", marker, got.String())
		}
	}
}

func TestIntersectingIdenticalPythonStable(t *testing.T) {
	tree := mustTree(t, `python_version == "3.8" and python_version == "3.8"`)
	got := ToDNF(tree, nil)
	want := `python_version == "3.8"`
	if got.String() != want {
		t.Errorf("ToDNF = %q, want %q", got.String(), want)
	}
}

func TestDisjointPythonStable(t *testing.T) {
	tree := mustTree(t, `python_version == "3.8" and python_version != "3.8"`)
	got := ToDNF(tree, nil)
	if len(got) != 0 {
		t.Errorf("ToDNF = %q, want empty", got.String())
	}
}

func TestNotDisjointVersionStar(t *testing.T) {
	// "3.8.*" must behave as the range [3.8, 3.9), so a marker pinning the
	// exact version 3.8.5 overlaps with it rather than being wrongly
	// reported disjoint (3.8.5 falls inside [3.8, 3.9)).
	left := mustTree(t, `python_version == "3.8.*"`)
	right := mustTree(t, `python_version == "3.8.5"`)
	if Disjoint(left, right, nil) {
		t.Errorf(`Disjoint(python_version == "3.8.*" ; python_version == "3.8.5") = true, want false`)
	}
}

func TestDisjointSynthetic(t *testing.T) {
	// python_version >= "3.7" is always true alongside itself; check two
	// trees built from disjoint ranges are reported disjoint end to end.
	left := mustTree(t, `python_version >= "3.7" and python_version < "3.8"`)
	right := mustTree(t, `python_version >= "3.8"`)
	if !Disjoint(left, right, nil) {
		t.Errorf("Disjoint(>=3.7,<3.8 ; >=3.8) = false, want true")
	}
}

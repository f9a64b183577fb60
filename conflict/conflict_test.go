// Copyright 2024 The Deptrast Authors
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

package conflict

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/planetlevel/deptrast/resolve"
)

func newPkg(g *resolve.Graph, name, version string) resolve.NodeID {
	p := resolve.NewPackage(resolve.NewCoordinate(resolve.Maven, name, version), resolve.ScopeCompile)
	return g.GetOrAddNode(p)
}

// root -> a -> lib@1.0
// root -> b -> lib@2.0
// Nearest-wins (maven): both are at depth 2, so the tie is broken by the
// version-comparison rule — the strictly higher version, lib@2.0, wins —
// not by which was discovered first.
func TestResolveMavenNearestWinsTieBreaksOnHigherVersion(t *testing.T) {
	g := resolve.NewGraph()
	root := newPkg(g, "com.example:root", "1.0")
	g.MarkRoot(root)
	a := newPkg(g, "com.example:a", "1.0")
	b := newPkg(g, "com.example:b", "1.0")
	lib1 := newPkg(g, "com.example:lib", "1.0")
	lib2 := newPkg(g, "com.example:lib", "2.0")
	g.AddEdge(root, a)
	g.AddEdge(root, b)
	g.AddEdge(a, lib1)
	g.AddEdge(b, lib2)

	New(resolve.StrategyMaven).Resolve(g)

	if g.Package(lib2).Scope == resolve.ScopeExcluded {
		t.Fatal("expected lib@2.0 (strictly higher version) to win the depth tie-break")
	}
	if g.Package(lib1).Scope != resolve.ScopeExcluded || g.Package(lib1).ScopeReason != resolve.ReasonLoser {
		t.Fatalf("expected lib@1.0 to lose, got scope=%s reason=%s", g.Package(lib1).Scope, g.Package(lib1).ScopeReason)
	}
	if diff := cmp.Diff([]resolve.NodeID{lib2}, g.Nodes[b].Children); diff != "" {
		t.Fatalf("expected b to still point only at lib2 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]resolve.NodeID{lib1, lib2}, g.Nodes[a].Children); diff != "" {
		t.Fatalf("expected a to keep its edge to lib1 and gain one to lib2 (-want +got):\n%s", diff)
	}
}

func TestResolveHighestWins(t *testing.T) {
	g := resolve.NewGraph()
	root := newPkg(g, "com.example:root", "1.0")
	g.MarkRoot(root)
	lib1 := newPkg(g, "com.example:lib", "1.0")
	lib2 := newPkg(g, "com.example:lib", "2.0")
	g.AddEdge(root, lib1)
	g.AddEdge(root, lib2)

	New(resolve.StrategyHighest).Resolve(g)

	if g.Package(lib2).Scope == resolve.ScopeExcluded {
		t.Fatal("expected the higher version to win")
	}
	if g.Package(lib1).Scope != resolve.ScopeExcluded {
		t.Fatal("expected the lower version to lose")
	}
}

func TestResolvePropagatesOrphanExclusion(t *testing.T) {
	g := resolve.NewGraph()
	root := newPkg(g, "com.example:root", "1.0")
	g.MarkRoot(root)
	lib1 := newPkg(g, "com.example:lib", "1.0")
	lib2 := newPkg(g, "com.example:lib", "2.0")
	orphan := newPkg(g, "com.example:orphan", "1.0")
	g.AddEdge(root, lib1)
	g.AddEdge(root, lib2)
	g.AddEdge(lib1, orphan) // only reachable through the losing node

	New(resolve.StrategyHighest).Resolve(g)

	if g.Package(orphan).Scope != resolve.ScopeExcluded || g.Package(orphan).ScopeReason != resolve.ReasonConflictSubtree {
		t.Fatalf("expected orphan to be excluded as ReasonConflictSubtree, got scope=%s reason=%s", g.Package(orphan).Scope, g.Package(orphan).ScopeReason)
	}
}

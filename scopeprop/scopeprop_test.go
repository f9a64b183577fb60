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

package scopeprop

import (
	"testing"

	"github.com/planetlevel/deptrast/resolve"
)

func newNode(g *resolve.Graph, name, version string, scope resolve.MavenScope) resolve.NodeID {
	return g.GetOrAddNode(resolve.NewPackage(resolve.NewCoordinate(resolve.Maven, name, version), scope))
}

func TestPropagateDemotesTestOnlyReachable(t *testing.T) {
	g := resolve.NewGraph()
	root := newNode(g, "com.example:root", "1.0", resolve.ScopeCompile)
	g.MarkRoot(root)
	testDep := newNode(g, "com.example:test-dep", "1.0", resolve.ScopeTest)
	onlyViaTest := newNode(g, "com.example:only-via-test", "1.0", resolve.ScopeCompile)
	g.AddEdge(root, testDep)
	g.AddEdge(testDep, onlyViaTest)

	New().Propagate(g)

	if got := g.Package(onlyViaTest).Scope; got != resolve.ScopeExcluded {
		t.Fatalf("expected exclusion as a test-only dependency, got %s", got)
	}
	if got := g.Package(onlyViaTest).ScopeReason; got != resolve.ReasonTestDependency {
		t.Fatalf("expected ReasonTestDependency, got %s", got)
	}
}

func TestPropagateRequiredOverridesTestPath(t *testing.T) {
	g := resolve.NewGraph()
	root := newNode(g, "com.example:root", "1.0", resolve.ScopeCompile)
	g.MarkRoot(root)
	testDep := newNode(g, "com.example:test-dep", "1.0", resolve.ScopeTest)
	shared := newNode(g, "com.example:shared", "1.0", resolve.ScopeCompile)
	// shared is reachable both via the test-only path and directly via a
	// default-build edge from root: the default path must win.
	g.AddEdge(root, testDep)
	g.AddEdge(testDep, shared)
	g.AddEdge(root, shared)

	New().Propagate(g)

	if got := g.Package(shared).Scope; got != resolve.ScopeCompile {
		t.Fatalf("expected shared to keep its default scope, got %s", got)
	}
}

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

package graphbuild

import (
	"context"
	"testing"

	"github.com/planetlevel/deptrast/client"
	"github.com/planetlevel/deptrast/resolve"
)

func vk(system, name, version string) client.RawVersionKey {
	return client.RawVersionKey{System: system, Name: name, Version: version}
}

func TestBuildDependencyTreesStitchesChildren(t *testing.T) {
	fake := client.NewFakeClient()
	fake.AddGraph("maven", "com.example:root", "1.0", &client.RawGraph{
		Nodes: []client.RawNode{
			{VersionKey: vk("maven", "com.example:root", "1.0"), Relation: "SELF"},
			{VersionKey: vk("maven", "com.example:lib", "2.0")},
		},
		Edges: []client.RawEdge{{FromNode: 0, ToNode: 1, Requirement: "2.0"}},
	})
	fake.AddGraph("maven", "com.example:lib", "2.0", &client.RawGraph{
		Nodes: []client.RawNode{
			{VersionKey: vk("maven", "com.example:lib", "2.0"), Relation: "SELF"},
		},
	})

	b := NewBuilder(fake, nil)
	g, err := b.BuildDependencyTrees(context.Background(), []RootInput{
		{System: resolve.Maven, Name: "com.example:root", Version: "1.0", Scope: resolve.ScopeCompile},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Len() != 2 {
		t.Fatalf("expected 2 nodes, got %d", g.Len())
	}
	roots := g.Roots()
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	if got := g.Package(roots[0]).FullName(); got != "maven:com.example:root:1.0" {
		t.Fatalf("unexpected root: %s", got)
	}
}

func TestBuildDependencyTreesSharesCommonDependency(t *testing.T) {
	fake := client.NewFakeClient()
	fake.AddGraph("maven", "com.example:a", "1.0", &client.RawGraph{
		Nodes: []client.RawNode{
			{VersionKey: vk("maven", "com.example:a", "1.0"), Relation: "SELF"},
			{VersionKey: vk("maven", "com.example:shared", "1.0")},
		},
		Edges: []client.RawEdge{{FromNode: 0, ToNode: 1}},
	})
	fake.AddGraph("maven", "com.example:b", "1.0", &client.RawGraph{
		Nodes: []client.RawNode{
			{VersionKey: vk("maven", "com.example:b", "1.0"), Relation: "SELF"},
			{VersionKey: vk("maven", "com.example:shared", "1.0")},
		},
		Edges: []client.RawEdge{{FromNode: 0, ToNode: 1}},
	})
	fake.AddGraph("maven", "com.example:shared", "1.0", &client.RawGraph{
		Nodes: []client.RawNode{{VersionKey: vk("maven", "com.example:shared", "1.0"), Relation: "SELF"}},
	})

	b := NewBuilder(fake, nil)
	g, err := b.BuildDependencyTrees(context.Background(), []RootInput{
		{System: resolve.Maven, Name: "com.example:a", Version: "1.0", Scope: resolve.ScopeCompile},
		{System: resolve.Maven, Name: "com.example:b", Version: "1.0", Scope: resolve.ScopeCompile},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Len() != 3 {
		t.Fatalf("expected 3 distinct nodes (a, b, shared), got %d", g.Len())
	}
	sharedID, ok := g.NodeByIdentity("maven:com.example:shared:1.0")
	if !ok {
		t.Fatal("expected shared node to exist")
	}
	if got := len(g.Parents(sharedID)); got != 2 {
		t.Fatalf("expected shared node to have 2 parents, got %d", got)
	}
}

type fakeExcluder struct {
	excluded map[resolve.PackageKey]map[resolve.PackageKey]bool
}

func (f fakeExcluder) IsExcluded(owner, child resolve.PackageKey) bool {
	return f.excluded[owner][child]
}

func TestBuildDependencyTreesRespectsExclusions(t *testing.T) {
	fake := client.NewFakeClient()
	fake.AddGraph("maven", "com.example:root", "1.0", &client.RawGraph{
		Nodes: []client.RawNode{
			{VersionKey: vk("maven", "com.example:root", "1.0"), Relation: "SELF"},
			{VersionKey: vk("maven", "com.example:excluded-me", "1.0")},
		},
		Edges: []client.RawEdge{{FromNode: 0, ToNode: 1}},
	})

	rootKey := resolve.PackageKey{System: resolve.Maven, Name: "com.example:root"}
	excludedKey := resolve.PackageKey{System: resolve.Maven, Name: "com.example:excluded-me"}
	excl := fakeExcluder{excluded: map[resolve.PackageKey]map[resolve.PackageKey]bool{
		rootKey: {excludedKey: true},
	}}

	b := NewBuilder(fake, excl)
	g, err := b.BuildDependencyTrees(context.Background(), []RootInput{
		{System: resolve.Maven, Name: "com.example:root", Version: "1.0", Scope: resolve.ScopeCompile},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rootID, _ := g.NodeByIdentity("maven:com.example:root:1.0")
	if got := len(g.Nodes[rootID].Children); got != 0 {
		t.Fatalf("expected excluded child to not be wired, got %d children", got)
	}
}

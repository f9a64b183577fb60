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

package override

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/planetlevel/deptrast/client"
	"github.com/planetlevel/deptrast/graphbuild"
	"github.com/planetlevel/deptrast/resolve"
)

func TestApplyManagedOverridesRedirectsAndExcludes(t *testing.T) {
	fake := client.NewFakeClient()
	fake.AddGraph("maven", "com.example:root", "1.0", &client.RawGraph{
		Nodes: []client.RawNode{
			{VersionKey: client.RawVersionKey{System: "maven", Name: "com.example:root", Version: "1.0"}, Relation: "SELF"},
			{VersionKey: client.RawVersionKey{System: "maven", Name: "com.example:lib", Version: "1.0"}},
		},
		Edges: []client.RawEdge{{FromNode: 0, ToNode: 1}},
	})
	fake.AddGraph("maven", "com.example:lib", "2.0", &client.RawGraph{
		Nodes: []client.RawNode{
			{VersionKey: client.RawVersionKey{System: "maven", Name: "com.example:lib", Version: "2.0"}, Relation: "SELF"},
		},
	})

	b := graphbuild.NewBuilder(fake, nil)
	g, err := b.BuildDependencyTrees(context.Background(), []graphbuild.RootInput{
		{System: resolve.Maven, Name: "com.example:root", Version: "1.0", Scope: resolve.ScopeCompile},
	})
	if err != nil {
		t.Fatalf("unexpected error building graph: %v", err)
	}

	applier := NewApplier(b)
	managed := map[resolve.PackageKey]string{
		{System: resolve.Maven, Name: "com.example:lib"}: "2.0",
	}
	if err := applier.ApplyManagedOverrides(context.Background(), g, managed); err != nil {
		t.Fatalf("unexpected error applying overrides: %v", err)
	}

	rootID, _ := g.NodeByIdentity("maven:com.example:root:1.0")
	loserID, _ := g.NodeByIdentity("maven:com.example:lib:1.0")
	winnerID, ok := g.NodeByIdentity("maven:com.example:lib:2.0")
	if !ok {
		t.Fatal("expected forced version node to have been fetched in")
	}

	if diff := cmp.Diff([]resolve.NodeID{loserID, winnerID}, g.Nodes[rootID].Children); diff != "" {
		t.Fatalf("expected root to keep its edge to the loser and gain one to the forced winner (-want +got):\n%s", diff)
	}
	loser := g.Package(loserID)
	if loser.Scope != resolve.ScopeExcluded || loser.ScopeReason != resolve.ReasonOverrideLoser {
		t.Fatalf("expected loser to be excluded with ReasonOverrideLoser, got scope=%s reason=%s", loser.Scope, loser.ScopeReason)
	}
	if !g.Package(winnerID).IsOverrideWinner {
		t.Fatal("expected winner to be marked IsOverrideWinner")
	}
}

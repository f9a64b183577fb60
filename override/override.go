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

/*
Package override forces package versions onto a resolve.Graph according to
a project's dependency-management entries (a Maven <dependencyManagement>
block, an npm "overrides" stanza, or similar), independent of ordinary
version conflict resolution.

A forced version always wins, whether or not it would have won an ordinary
nearest/highest conflict: the loser keeps its node and its incoming edges
(for provenance), and every parent that pointed at it gains an edge to the
forced version, which is fetched into the graph if it isn't already present.
*/
package override

import (
	"context"
	"fmt"

	"github.com/planetlevel/deptrast/graphbuild"
	"github.com/planetlevel/deptrast/resolve"
)

// Applier forces dependency-management overrides onto a graph, pulling in
// whatever subtree the forced version needs via builder.
type Applier struct {
	builder *graphbuild.Builder
}

// NewApplier returns an Applier that uses builder to fetch any forced
// version not already present in the graph.
func NewApplier(builder *graphbuild.Builder) *Applier {
	return &Applier{builder: builder}
}

// ApplyManagedOverrides rewrites every node whose base key has a managed
// version different from its current version: the managed version's node
// becomes the override winner, and every parent of the superseded node
// gains an edge to it while keeping its edge to the superseded node.
func (a *Applier) ApplyManagedOverrides(ctx context.Context, g *resolve.Graph, managed map[resolve.PackageKey]string) error {
	// Snapshot the node count: fetching a forced version can append new
	// nodes, which must not also be visited by this same pass.
	n := g.Len()
	for i := 0; i < n; i++ {
		id := resolve.NodeID(i)
		pkg := g.Package(id)
		if pkg.Scope == resolve.ScopeExcluded {
			continue
		}
		forced, ok := managed[pkg.BaseKey()]
		if !ok || forced == pkg.Version {
			continue
		}

		winnerCoord := resolve.NewCoordinate(pkg.System, pkg.Name, forced)
		winnerID, existed := g.NodeByIdentity(winnerCoord.String())
		if !existed {
			winnerPkg := resolve.NewPackage(winnerCoord, pkg.OriginalMavenScope)
			winnerID = g.GetOrAddNode(winnerPkg)
		}
		if !g.Nodes[winnerID].Fetched {
			if err := a.builder.FetchOne(ctx, winnerID); err != nil {
				return fmt.Errorf("override: fetching forced version %s: %w", winnerCoord, err)
			}
		}
		if winnerID == id {
			continue
		}

		winner := g.Package(winnerID)
		winner.MarkOverrideWinner()
		winner.RecordDefeat(pkg.Version)

		pkg.WinningVersion = forced
		pkg.Exclude(resolve.ReasonOverrideLoser, resolve.StrategyNone)

		g.RedirectEdge(id, winnerID)
	}
	return nil
}

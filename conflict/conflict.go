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
Package conflict resolves version conflicts on an already-built
resolve.Graph: when two or more nodes share a base key (same system and
name, different version), exactly one becomes the winner and every edge
into the others is redirected to it.

Losing nodes are never deleted, and their incoming edges are never
removed either: every parent that pointed at a loser gains a parallel
edge to the winner, but keeps its original edge too, so provenance ("what
version did we originally see here, and who beat it") survives into the
final bill of materials. A node whose every parent ends up excluded this
way is itself transitively excluded with ReasonConflictSubtree.
*/
package conflict

import (
	"sort"

	"github.com/planetlevel/deptrast/resolve"
)

// Resolver resolves version conflicts using a single resolve.Strategy.
type Resolver struct {
	Strategy resolve.Strategy
}

// New returns a Resolver using the given strategy.
func New(strategy resolve.Strategy) *Resolver {
	return &Resolver{Strategy: strategy}
}

// Resolve picks one winning version per base key across g, redirects
// every loser's incoming edges to the winner, and then transitively
// excludes any node left with no non-excluded parent.
func (r *Resolver) Resolve(g *resolve.Graph) {
	groups := groupByBaseKey(g)

	var depths map[resolve.NodeID]int
	if r.Strategy == resolve.StrategyMaven {
		depths = bfsDepths(g)
	}

	keys := make([]resolve.PackageKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })

	for _, key := range keys {
		ids := groups[key]
		if len(ids) <= 1 {
			continue
		}
		winner := r.pickWinner(g, ids, depths)
		winnerPkg := g.Package(winner)
		for _, loser := range ids {
			if loser == winner {
				continue
			}
			loserPkg := g.Package(loser)
			winnerPkg.RecordDefeat(loserPkg.Version)
			loserPkg.WinningVersion = winnerPkg.Version
			loserPkg.Exclude(resolve.ReasonLoser, r.Strategy)
			g.RedirectEdge(loser, winner)
		}
	}

	propagateOrphanExclusions(g)
}

// groupByBaseKey partitions every not-yet-excluded node by its base key.
// Nodes already excluded (e.g. by an override applied earlier in the
// pipeline) are left out: that conflict is already decided.
func groupByBaseKey(g *resolve.Graph) map[resolve.PackageKey][]resolve.NodeID {
	groups := make(map[resolve.PackageKey][]resolve.NodeID)
	for i := range g.Nodes {
		id := resolve.NodeID(i)
		pkg := g.Package(id)
		if pkg.Scope == resolve.ScopeExcluded {
			continue
		}
		key := pkg.BaseKey()
		groups[key] = append(groups[key], id)
	}
	return groups
}

// pickWinner chooses the surviving node among ids per the resolver's
// strategy. Maven breaks a depth tie by strictly-higher version, then by
// the lowest NodeID; highest breaks a version tie by the lowest NodeID.
func (r *Resolver) pickWinner(g *resolve.Graph, ids []resolve.NodeID, depths map[resolve.NodeID]int) resolve.NodeID {
	best := ids[0]
	for _, id := range ids[1:] {
		if r.beats(g, id, best, depths) {
			best = id
		}
	}
	return best
}

// beats reports whether candidate should replace current as the winner.
func (r *Resolver) beats(g *resolve.Graph, candidate, current resolve.NodeID, depths map[resolve.NodeID]int) bool {
	switch r.Strategy {
	case resolve.StrategyMaven:
		cd, okC := depths[candidate]
		bd, okB := depths[current]
		if !okC {
			return false
		}
		if !okB {
			return true
		}
		if cd != bd {
			return cd < bd
		}
		if cmp := resolve.CompareVersions(g.Package(candidate).Version, g.Package(current).Version); cmp != 0 {
			return cmp > 0
		}
		return candidate < current
	default: // StrategyHighest
		cmp := resolve.CompareVersions(g.Package(candidate).Version, g.Package(current).Version)
		if cmp != 0 {
			return cmp > 0
		}
		return candidate < current
	}
}

// bfsDepths computes, for every node reachable from a root, the length of
// the shortest path from any root to that node, via breadth-first
// traversal in child-slice order for determinism. Grounded on the
// queue-of-NodeID BFS shape used to canonicalize a shared-node graph.
func bfsDepths(g *resolve.Graph) map[resolve.NodeID]int {
	depths := make(map[resolve.NodeID]int)
	var queue []resolve.NodeID
	for _, root := range g.Roots() {
		if _, seen := depths[root]; !seen {
			depths[root] = 0
			queue = append(queue, root)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		d := depths[id]
		for _, child := range g.Nodes[id].Children {
			if _, seen := depths[child]; seen {
				continue
			}
			depths[child] = d + 1
			queue = append(queue, child)
		}
	}
	return depths
}

// propagateOrphanExclusions repeatedly excludes, with ReasonConflictSubtree,
// any non-root node whose every parent is already excluded, until no
// further node qualifies.
func propagateOrphanExclusions(g *resolve.Graph) {
	for changed := true; changed; {
		changed = false
		for i := range g.Nodes {
			id := resolve.NodeID(i)
			n := &g.Nodes[id]
			if n.IsRoot || n.Package.Scope == resolve.ScopeExcluded {
				continue
			}
			parents := g.Parents(id)
			if len(parents) == 0 {
				continue
			}
			allExcluded := true
			for _, p := range parents {
				if g.Package(p).Scope != resolve.ScopeExcluded {
					allExcluded = false
					break
				}
			}
			if allExcluded {
				n.Package.Exclude(resolve.ReasonConflictSubtree, resolve.StrategyNone)
				changed = true
			}
		}
	}
}

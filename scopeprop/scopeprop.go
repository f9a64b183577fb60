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
Package scopeprop reconciles a node's final Maven scope against how it is
actually reached from the graph's roots, after conflict resolution has
settled every version.

Two reachability sweeps are run from the roots: one that starts only from
roots whose original scope is reachable by a default build
(compile/runtime/required) and only follows edges into packages whose
original scope is too, and one that starts from every root and follows
every non-excluded edge. A package reachable only through the second sweep
is excluded as a test-only dependency — it never ships outside the test
tree — unless the first sweep also reaches it, in which case the
default-build path wins and the package keeps its scope: a required
reachability always overrides a test-only one. A package already excluded
earlier in the pipeline stays excluded.
*/
package scopeprop

import "github.com/planetlevel/deptrast/resolve"

// Propagator reconciles Scope/ScopeReason across a resolved graph.
type Propagator struct{}

// New returns a Propagator.
func New() *Propagator { return &Propagator{} }

// Propagate walks g from its roots and rewrites the scope of every
// non-excluded, non-root node according to how it is actually reached.
func (p *Propagator) Propagate(g *resolve.Graph) {
	required := reachable(g, func(pkg *resolve.Package) bool {
		return pkg.OriginalMavenScope.IsReachableByDefault()
	})
	anyPath := reachable(g, func(*resolve.Package) bool { return true })

	for i := range g.Nodes {
		id := resolve.NodeID(i)
		if g.Nodes[id].IsRoot {
			continue
		}
		pkg := g.Package(id)
		if pkg.Scope == resolve.ScopeExcluded {
			continue
		}
		if required[id] {
			// Reachable through a default build path: required overrides
			// any test-only or excluded status this package might
			// otherwise have been given.
			continue
		}
		if anyPath[id] {
			if pkg.Scope.IsReachableByDefault() {
				pkg.Exclude(resolve.ReasonTestDependency, resolve.StrategyNone)
			}
			continue
		}
		// Not reachable via any non-excluded path from a root: every
		// parent that could have carried it in was itself excluded
		// earlier in the pipeline.
		pkg.Exclude(resolve.ReasonConflictSubtree, resolve.StrategyNone)
	}
}

// reachable returns the set of nodes reachable from the roots of g that
// include accepts, by following edges into children accepted by include,
// never descending into an already-excluded node.
func reachable(g *resolve.Graph, include func(*resolve.Package) bool) map[resolve.NodeID]bool {
	visited := make(map[resolve.NodeID]bool)
	var queue []resolve.NodeID
	for _, root := range g.Roots() {
		if !include(g.Package(root)) {
			continue
		}
		visited[root] = true
		queue = append(queue, root)
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range g.Nodes[id].Children {
			childPkg := g.Package(child)
			if childPkg.Scope == resolve.ScopeExcluded {
				continue
			}
			if visited[child] {
				continue
			}
			if !include(childPkg) {
				continue
			}
			visited[child] = true
			queue = append(queue, child)
		}
	}
	return visited
}

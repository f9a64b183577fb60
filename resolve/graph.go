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

package resolve

import (
	"fmt"
	"sort"
)

// NodeID is an index into Graph.Nodes. It identifies a node for the
// lifetime of the Graph that produced it; NodeIDs are not portable across
// Graphs.
type NodeID int32

const noNodeID NodeID = -1

// Node is one vertex of the dependency graph: a package identity plus the
// IDs of its direct dependencies. Node never embeds the Package data
// directly so that every reference to a given identity shares the same
// *Package pointer and so sees the same mutations.
type Node struct {
	Package  *Package
	Children []NodeID
	IsRoot   bool

	// Fetched reports whether this node's Children list has been filled
	// in from a complete dependency fetch. Once Fetched is true,
	// Children may only be merged (unioned), never replaced, because an
	// upstream metadata source can return different incomplete subgraphs
	// for the same coordinate depending on the calling context.
	Fetched bool
}

// Graph is the shared-node dependency DAG: one Node per distinct package
// identity, addressed by NodeID, with edges recorded as membership in a
// parent's Children slice. Graph is the arena every stage of the pipeline
// (graphbuild, override, conflict, scopeprop) mutates in place.
type Graph struct {
	Nodes []Node

	index   map[string]NodeID // identity string -> NodeID
	parents map[NodeID]map[NodeID]bool
}

// NewGraph returns an empty Graph ready for use.
func NewGraph() *Graph {
	return &Graph{
		index:   make(map[string]NodeID),
		parents: make(map[NodeID]map[NodeID]bool),
	}
}

// GetOrAddNode returns the NodeID for pkg's identity, creating a new Node
// if this is the first time that identity has been seen. The *Package
// stored on the node is always the one passed the first time; callers
// must mutate through the returned pointer (via Package), not
// by constructing new *Package values for an identity already in the
// graph.
func (g *Graph) GetOrAddNode(pkg *Package) NodeID {
	key := pkg.FullName()
	if id, ok := g.index[key]; ok {
		return id
	}
	id := NodeID(len(g.Nodes))
	g.Nodes = append(g.Nodes, Node{Package: pkg})
	g.index[key] = id
	return id
}

// NodeByIdentity looks up a node by its "{system}:{name}:{version}"
// identity string, returning ok=false if no such node exists.
func (g *Graph) NodeByIdentity(identity string) (NodeID, bool) {
	id, ok := g.index[identity]
	return id, ok
}

// Package returns the package data for id.
func (g *Graph) Package(id NodeID) *Package {
	return g.Nodes[id].Package
}

// AddEdge records that parent depends directly on child, deduplicating
// repeat calls for the same pair. Self-edges are rejected; the caller is
// expected to have already resolved cycles to "already visited" before
// calling AddEdge (see graphbuild's visited-path tracking).
func (g *Graph) AddEdge(parent, child NodeID) {
	if parent == child {
		return
	}
	for _, c := range g.Nodes[parent].Children {
		if c == child {
			return
		}
	}
	g.Nodes[parent].Children = append(g.Nodes[parent].Children, child)
	if g.parents[child] == nil {
		g.parents[child] = make(map[NodeID]bool)
	}
	g.parents[child][parent] = true
}

// RedirectEdge adds, for every parent with an edge into from, a parallel
// edge into to (deduplicated if that parent already points at to). The
// parent->from edge is left in place: from's own node, its Children, and
// every incoming edge into it remain untouched and still present in the
// graph, so the losing version stays fully reconstructable from the graph
// alone, visible as an excluded component rather than an unlinked one.
func (g *Graph) RedirectEdge(from, to NodeID) {
	for parent := range g.parents[from] {
		hasTo := false
		for _, c := range g.Nodes[parent].Children {
			if c == to {
				hasTo = true
				break
			}
		}
		if !hasTo {
			g.Nodes[parent].Children = append(g.Nodes[parent].Children, to)
		}
		if g.parents[to] == nil {
			g.parents[to] = make(map[NodeID]bool)
		}
		g.parents[to][parent] = true
	}
}

// Parents returns the set of NodeIDs with an edge into id, in no
// particular order.
func (g *Graph) Parents(id NodeID) []NodeID {
	out := make([]NodeID, 0, len(g.parents[id]))
	for p := range g.parents[id] {
		out = append(out, p)
	}
	return out
}

// MarkRoot flags id as a root of the graph (a package that was an input,
// not merely discovered as someone else's transitive dependency).
func (g *Graph) MarkRoot(id NodeID) {
	g.Nodes[id].IsRoot = true
}

// Roots returns the NodeIDs flagged as roots, in insertion order.
func (g *Graph) Roots() []NodeID {
	var roots []NodeID
	for id := range g.Nodes {
		if g.Nodes[id].IsRoot {
			roots = append(roots, NodeID(id))
		}
	}
	return roots
}

// AllIdentities returns every node's identity string, sorted, for
// deterministic iteration in tests and rendering.
func (g *Graph) AllIdentities() []string {
	ids := make([]string, 0, len(g.index))
	for id := range g.index {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len reports the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.Nodes)
}

// ValidateInvariants checks the structural invariants spec.md §3 requires
// and returns the first violation found, or nil. It is intended for tests
// and for the InternalInvariantViolation panic path, not for the hot path.
func (g *Graph) ValidateInvariants() error {
	for id := range g.Nodes {
		n := &g.Nodes[id]
		if n.Package == nil {
			return fmt.Errorf("resolve: node %d has no package", id)
		}
		if n.Package.Scope == ScopeExcluded && n.Package.ScopeReason == ReasonNone {
			return fmt.Errorf("resolve: node %d (%s) is excluded with no reason", id, n.Package.FullName())
		}
		if n.Package.Scope != ScopeExcluded && n.Package.ScopeReason != ReasonNone {
			return fmt.Errorf("resolve: node %d (%s) has reason %s but scope %s", id, n.Package.FullName(), n.Package.ScopeReason, n.Package.Scope)
		}
		seen := make(map[NodeID]bool, len(n.Children))
		for _, c := range n.Children {
			if seen[c] {
				return fmt.Errorf("resolve: node %d (%s) has duplicate child edge to %d", id, n.Package.FullName(), c)
			}
			seen[c] = true
			if int(c) < 0 || int(c) >= len(g.Nodes) {
				return fmt.Errorf("resolve: node %d (%s) has out-of-range child %d", id, n.Package.FullName(), c)
			}
		}
	}
	return nil
}

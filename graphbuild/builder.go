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
Package graphbuild stitches the per-version RawGraphs a client.MetadataClient
returns into a single shared resolve.Graph.

Fetches for the same coordinate can be triggered from many places in a large
tree; a node's Children are only ever merged into, never replaced, once that
node has a complete fetch recorded, because the upstream metadata source can
answer the same coordinate differently depending on what else was in the
request. This mirrors the "don't clear children for a node already fetched
as a complete tree" rule observed in the source this behavior was distilled
from.
*/
package graphbuild

import (
	"context"
	"fmt"

	"github.com/planetlevel/deptrast/client"
	"github.com/planetlevel/deptrast/resolve"
)

// InvariantError marks an InternalInvariantViolation: a bug in the
// pipeline, not a recoverable condition. When raised as a panic it is only
// ever recovered at the cmd/deptrast boundary. The builder itself returns
// one as an ordinary error for a fetched graph with no SELF node.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "graphbuild: invariant violation: " + e.Msg }

// RootInput is one input package the caller wants resolved: typically a
// project's direct dependencies.
type RootInput struct {
	System  resolve.System
	Name    string
	Version string
	Scope   resolve.MavenScope
}

// Excluder decides whether a child package should be excluded from the
// subtree owned by a given parent package, per Maven <exclusions>
// semantics. A nil Excluder excludes nothing.
type Excluder interface {
	IsExcluded(owner, child resolve.PackageKey) bool
}

// Builder constructs a resolve.Graph by walking a client.MetadataClient
// starting from a set of root inputs.
type Builder struct {
	client   client.MetadataClient
	excluder Excluder

	graph   *resolve.Graph
	visited map[resolve.NodeID]bool // nodes whose fetch is in progress on the current call stack
}

// NewBuilder returns a Builder that fetches dependency graphs through c.
// excluder may be nil.
func NewBuilder(c client.MetadataClient, excluder Excluder) *Builder {
	return &Builder{
		client:   c,
		excluder: excluder,
		graph:    resolve.NewGraph(),
		visited:  make(map[resolve.NodeID]bool),
	}
}

// BuildDependencyTrees fetches and stitches the complete dependency trees
// for every root input, returning the shared graph. Roots are registered
// before any fetch happens (phase 1), so a root that also appears as a
// transitive dependency of another root is recognized and shared rather
// than duplicated (phase 3: only packages that never appear as someone
// else's child remain graph roots).
func (b *Builder) BuildDependencyTrees(ctx context.Context, roots []RootInput) (*resolve.Graph, error) {
	rootIDs := make([]resolve.NodeID, 0, len(roots))
	for _, r := range roots {
		pkg := resolve.NewPackage(resolve.NewCoordinate(r.System, r.Name, r.Version), r.Scope)
		id := b.graph.GetOrAddNode(pkg)
		rootIDs = append(rootIDs, id)
	}

	for _, id := range rootIDs {
		if err := b.fetchComplete(ctx, id); err != nil {
			return nil, err
		}
	}

	// Phase 3: a root is a true root only if nothing else in the graph
	// points at it.
	for _, id := range rootIDs {
		if len(b.graph.Parents(id)) == 0 {
			b.graph.MarkRoot(id)
		}
	}

	return b.graph, nil
}

// FetchOne fetches the complete dependency subtree for a single node
// already present in the builder's graph, stitching it in exactly as
// BuildDependencyTrees would. It lets later pipeline stages (such as
// applying a dependency-management override to a version not otherwise
// reachable) pull in a node's subtree without re-running the whole build.
func (b *Builder) FetchOne(ctx context.Context, id resolve.NodeID) error {
	return b.fetchComplete(ctx, id)
}

// Graph returns the graph this builder has been accumulating.
func (b *Builder) Graph() *resolve.Graph {
	return b.graph
}

// fetchComplete fetches id's dependency graph (unless it was already
// fetched as a complete tree) and recurses into its children.
func (b *Builder) fetchComplete(ctx context.Context, id resolve.NodeID) error {
	if b.graph.Nodes[id].Fetched {
		return nil
	}
	if b.visited[id] {
		// Already being fetched higher up this call stack: a cycle in
		// the upstream metadata, not an error condition to surface.
		return nil
	}
	b.visited[id] = true
	defer delete(b.visited, id)

	pkg := b.graph.Package(id)
	queryVersion := resolve.QueryVersion(pkg.Version)

	raw, err := b.client.FetchGraph(ctx, pkg.System.String(), pkg.Name, queryVersion)
	if err != nil {
		return fmt.Errorf("graphbuild: fetching %s: %w", pkg.FullName(), err)
	}
	if raw == nil {
		// UpstreamUnknown or UpstreamTransient: leave this node childless
		// but mark it complete so we don't keep retrying it within this
		// build.
		b.graph.Nodes[id].Fetched = true
		return nil
	}

	selfIdx := raw.SelfIndex()
	if selfIdx < 0 {
		return &InvariantError{Msg: fmt.Sprintf("response for %s has no SELF node", pkg.FullName())}
	}

	// Map each raw node index to the shared graph's NodeID, attaching
	// HeroDevs metadata back onto the self node if this was a vendor
	// version.
	localIDs := make([]resolve.NodeID, len(raw.Nodes))
	for i, n := range raw.Nodes {
		if i == selfIdx {
			localIDs[i] = id
			if nes, ok := resolve.ParseHeroDevsVersion(pkg.Version); ok {
				pkg.SetHeroDevsMetadata(nes.UpstreamVersion, nes.PatchedVersion, nes.Artifact, "HeroDevs")
			}
			continue
		}
		childPkg := resolve.NewPackage(
			resolve.NewCoordinate(resolve.System(n.VersionKey.System), n.VersionKey.Name, n.VersionKey.Version),
			resolve.ScopeCompile,
		)
		localIDs[i] = b.graph.GetOrAddNode(childPkg)
	}

	// The response describes the whole transitive subgraph for this
	// coordinate, not just its direct children: wire every edge it
	// contains, not only those leaving the SELF node.
	for _, e := range raw.Edges {
		fromID := localIDs[e.FromNode]
		toID := localIDs[e.ToNode]
		ownerKey := b.graph.Package(fromID).BaseKey()
		childKey := b.graph.Package(toID).BaseKey()
		if b.excluder != nil && b.excluder.IsExcluded(ownerKey, childKey) {
			continue
		}
		b.graph.AddEdge(fromID, toID)
	}

	b.graph.Nodes[id].Fetched = true

	// Recurse into every node this fetch introduced, not just id's direct
	// children: deps.dev's response contains the whole transitive graph
	// for this coordinate, and grandchildren must be stitched in too.
	for i, localID := range localIDs {
		if i == selfIdx {
			continue
		}
		if err := b.fetchComplete(ctx, localID); err != nil {
			return err
		}
	}
	return nil
}

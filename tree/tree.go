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
Package tree renders a resolve.Graph as a text dependency tree, the way
"mvn dependency:tree" or a graph's own debug String method would: one line
per node, indented under its parent, with excluded packages annotated by
why and a cycle back to an ancestor flagged rather than followed.
*/
package tree

import (
	"fmt"
	"strings"

	"github.com/planetlevel/deptrast/resolve"
)

// Style selects the line-drawing characters used to render the tree.
type Style int

const (
	Unicode Style = iota
	ASCII
	Maven
)

type connectors struct {
	mid, last, vert, space string
}

func (s Style) connectors() connectors {
	switch s {
	case ASCII:
		return connectors{mid: "+-- ", last: "\\-- ", vert: "|   ", space: "    "}
	case Maven:
		return connectors{mid: "+- ", last: "\\- ", vert: "|  ", space: "   "}
	default:
		return connectors{mid: "├── ", last: "└── ", vert: "│   ", space: "    "}
	}
}

// Render writes every root of g and its full subtree to a string, one line
// per node. Diamonds (a node reached by more than one path) are rendered
// once per path; a true cycle (a node that is its own ancestor) is
// rendered once more with a "(cycle)" marker and not followed again.
func Render(g *resolve.Graph, style Style) string {
	var b strings.Builder
	conn := style.connectors()
	for _, root := range g.Roots() {
		writeLabel(&b, g, root, nil)
		writeChildren(&b, g, root, []resolve.NodeID{root}, "", conn)
	}
	return b.String()
}

// writeLabel writes id's own line, with no indentation: used for a root,
// whose connector prefix is empty.
func writeLabel(b *strings.Builder, g *resolve.Graph, id resolve.NodeID, ancestors []resolve.NodeID) {
	b.WriteString(label(g, id, ancestors))
	b.WriteByte('\n')
}

// writeChildren writes id's children, each preceded by its connector and
// recursing into its own children.
func writeChildren(b *strings.Builder, g *resolve.Graph, id resolve.NodeID, ancestors []resolve.NodeID, prefix string, conn connectors) {
	children := g.Nodes[id].Children
	for i, child := range children {
		last := i == len(children)-1
		connector, childPrefix := conn.mid, prefix+conn.vert
		if last {
			connector, childPrefix = conn.last, prefix+conn.space
		}
		b.WriteString(prefix + connector)
		b.WriteString(label(g, child, ancestors))
		b.WriteByte('\n')

		if contains(ancestors, child) {
			continue // cycle: already flagged in label, do not descend
		}
		writeChildren(b, g, child, append(append([]resolve.NodeID{}, ancestors...), child), childPrefix, conn)
	}
}

func label(g *resolve.Graph, id resolve.NodeID, ancestors []resolve.NodeID) string {
	pkg := g.Package(id)
	l := fmt.Sprintf("%s:%s:%s", pkg.System, pkg.Name, pkg.Version)
	switch {
	case pkg.Scope == resolve.ScopeExcluded:
		l += fmt.Sprintf(" [excluded: %s]", pkg.ScopeReason)
	case pkg.Scope == resolve.ScopeTest:
		l += " [test]"
	}
	if contains(ancestors, id) {
		l += " (cycle)"
	}
	return l
}

func contains(ids []resolve.NodeID, id resolve.NodeID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

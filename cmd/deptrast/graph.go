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

package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/planetlevel/deptrast/resolve"
)

// graphNode is the JSON shape of one resolve.Graph node, for tooling that
// wants the raw resolved graph rather than a rendered tree or a SBOM.
type graphNode struct {
	ID       int    `json:"id"`
	Identity string `json:"identity"`
	Scope    string `json:"scope"`
	Reason   string `json:"reason,omitempty"`
	IsRoot   bool   `json:"isRoot"`
	Children []int  `json:"children"`
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Resolve the project's dependency graph and dump it as JSON nodes/edges",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer recoverInvariantViolation()

		g, err := runPipeline(cmd.Context(), configPath)
		if err != nil {
			return err
		}

		nodes := make([]graphNode, g.Len())
		for i := range g.Nodes {
			id := resolve.NodeID(i)
			pkg := g.Package(id)
			children := make([]int, len(g.Nodes[id].Children))
			for j, c := range g.Nodes[id].Children {
				children[j] = int(c)
			}
			nodes[i] = graphNode{
				ID:       i,
				Identity: pkg.FullName(),
				Scope:    pkg.Scope.String(),
				Reason:   pkg.ScopeReason.String(),
				IsRoot:   g.Nodes[id].IsRoot,
				Children: children,
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(nodes)
	},
}

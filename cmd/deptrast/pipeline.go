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
	"context"
	"fmt"

	"github.com/planetlevel/deptrast/client"
	"github.com/planetlevel/deptrast/config"
	"github.com/planetlevel/deptrast/conflict"
	"github.com/planetlevel/deptrast/graphbuild"
	"github.com/planetlevel/deptrast/override"
	"github.com/planetlevel/deptrast/resolve"
	"github.com/planetlevel/deptrast/scopeprop"
)

const defaultAPIBase = "https://api.deps.dev/v3"

// runPipeline loads the project at configPath and runs it through every
// stage: fetch, stitch, apply managed overrides, resolve conflicts,
// reconcile scopes. It returns the final graph.
func runPipeline(ctx context.Context, configPath string) (*resolve.Graph, error) {
	proj, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	httpClient := client.NewHTTPClient(defaultAPIBase)
	builder := graphbuild.NewBuilder(httpClient, proj)

	roots := make([]graphbuild.RootInput, 0, len(proj.Roots))
	for _, r := range proj.Roots {
		roots = append(roots, graphbuild.RootInput{
			System:  resolve.NewSystem(r.System),
			Name:    r.Name,
			Version: r.Version,
			Scope:   resolve.ParseMavenScope(r.Scope),
		})
	}

	g, err := builder.BuildDependencyTrees(ctx, roots)
	if err != nil {
		return nil, fmt.Errorf("building dependency graph: %w", err)
	}

	applier := override.NewApplier(builder)
	if err := applier.ApplyManagedOverrides(ctx, g, proj.ManagedVersions()); err != nil {
		return nil, fmt.Errorf("applying managed overrides: %w", err)
	}

	conflict.New(proj.ResolveStrategy()).Resolve(g)
	scopeprop.New().Propagate(g)

	if err := g.ValidateInvariants(); err != nil {
		panic(&graphbuild.InvariantError{Msg: err.Error()})
	}

	return g, nil
}

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
Package config loads the small project-level seam the resolution pipeline
depends on: which root packages to resolve, which versions are forced by
dependency management, and which transitive dependencies are excluded.

Parsing an actual Maven POM, a Gradle build file, an npm package-lock.json
or an existing SBOM into this shape is out of scope here; this package only
defines the shape itself and loads it from a YAML/JSON project file via
viper, the way a caller who has already parsed one of those formats (or
simply hand-writes a deptrast project file) would feed the pipeline.
*/
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/planetlevel/deptrast/resolve"
)

// RootEntry is one input package to resolve.
type RootEntry struct {
	System  string `mapstructure:"system"`
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Scope   string `mapstructure:"scope"`
}

// ManagedEntry forces a base key onto a specific version, the way a Maven
// <dependencyManagement> block or an npm "overrides" stanza does.
type ManagedEntry struct {
	System  string `mapstructure:"system"`
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// ExclusionEntry excludes Excluded from the subtree owned by Owner, the
// way a Maven <exclusion> nested under a specific dependency does.
type ExclusionEntry struct {
	OwnerSystem    string `mapstructure:"owner_system"`
	OwnerName      string `mapstructure:"owner_name"`
	ExcludedSystem string `mapstructure:"excluded_system"`
	ExcludedName   string `mapstructure:"excluded_name"`
}

// Project is the project-level configuration the pipeline is driven from.
type Project struct {
	Roots      []RootEntry      `mapstructure:"roots"`
	Managed    []ManagedEntry   `mapstructure:"managed_versions"`
	Exclusions []ExclusionEntry `mapstructure:"exclusions"`
	Strategy   string           `mapstructure:"strategy"`
}

// Load reads a Project from path using viper, inferring the config format
// (YAML, JSON, TOML, ...) from its extension.
func Load(path string) (*Project, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("strategy", "maven")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var p Project
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &p, nil
}

// ManagedVersions returns the project's forced versions keyed by base
// package identity.
func (p *Project) ManagedVersions() map[resolve.PackageKey]string {
	out := make(map[resolve.PackageKey]string, len(p.Managed))
	for _, m := range p.Managed {
		out[resolve.PackageKey{System: resolve.NewSystem(m.System), Name: m.Name}] = m.Version
	}
	return out
}

// IsExcluded implements graphbuild.Excluder: it reports whether child is
// excluded from the subtree owned by owner.
func (p *Project) IsExcluded(owner, child resolve.PackageKey) bool {
	for _, e := range p.Exclusions {
		ownerKey := resolve.PackageKey{System: resolve.NewSystem(e.OwnerSystem), Name: e.OwnerName}
		excludedKey := resolve.PackageKey{System: resolve.NewSystem(e.ExcludedSystem), Name: e.ExcludedName}
		if ownerKey == owner && excludedKey == child {
			return true
		}
	}
	return false
}

// ResolveStrategy maps the project's configured strategy name onto a
// resolve.Strategy, defaulting to StrategyMaven.
func (p *Project) ResolveStrategy() resolve.Strategy {
	return resolve.ParseStrategy(p.Strategy)
}

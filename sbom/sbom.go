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
Package sbom assembles a resolved resolve.Graph into a CycloneDX 1.6
document.

Every node in the graph becomes a component, including excluded ones: their
CycloneDX scope reflects why they were excluded, so the document still
records "we saw this version, here's why it isn't part of the effective
build" rather than silently dropping it.
*/
package sbom

import (
	"fmt"
	"sort"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/google/uuid"
	"github.com/package-url/packageurl-go"
	"k8s.io/utils/clock"

	"github.com/planetlevel/deptrast/resolve"
)

// toolVersion is reported in the document's metadata.tools entry and
// embedded in the tool's own purl.
const toolVersion = "0.1.0"

// timeLayout matches the RFC 3339 subset CycloneDX metadata timestamps
// use.
const timeLayout = "2006-01-02T15:04:05Z07:00"

// Assembler builds CycloneDX documents from a resolve.Graph.
type Assembler struct {
	clock   clock.Clock
	newUUID func() uuid.UUID
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock overrides the clock used for the document's metadata
// timestamp, so tests can pin it.
func WithClock(c clock.Clock) Option {
	return func(a *Assembler) { a.clock = c }
}

// WithNewUUID overrides how the document's serial number is generated.
func WithNewUUID(f func() uuid.UUID) Option {
	return func(a *Assembler) { a.newUUID = f }
}

// NewAssembler returns an Assembler with a real clock and random UUIDs,
// overridable via opts.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		clock:   clock.RealClock{},
		newUUID: uuid.New,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble renders every node of g into a CycloneDX 1.6 BOM, components
// sorted by purl for deterministic output.
func (a *Assembler) Assemble(g *resolve.Graph) (*cdx.BOM, error) {
	bom := cdx.NewBOM()
	bom.SerialNumber = a.newUUID().URN()
	bom.Metadata = &cdx.Metadata{
		Timestamp: a.clock.Now().UTC().Format(timeLayout),
		Tools: &[]cdx.Tool{
			{
				Vendor:  "planetlevel",
				Name:    "deptrast",
				Version: toolVersion,
			},
		},
	}

	components := make([]cdx.Component, 0, g.Len())
	purls := make([]string, g.Len())
	for i := range g.Nodes {
		pkg := g.Package(resolve.NodeID(i))
		comp, err := packageComponent(pkg)
		if err != nil {
			return nil, fmt.Errorf("sbom: building component for %s: %w", pkg.FullName(), err)
		}
		components = append(components, comp)
		purls[i] = comp.PackageURL
	}
	sort.Slice(components, func(i, j int) bool {
		return components[i].PackageURL < components[j].PackageURL
	})
	bom.Components = &components

	dependencies := make([]cdx.Dependency, 0, g.Len())
	for i := range g.Nodes {
		children := g.Nodes[i].Children
		var dependsOn *[]string
		if len(children) > 0 {
			refs := make([]string, len(children))
			for j, c := range children {
				refs[j] = purls[c]
			}
			sort.Strings(refs)
			dependsOn = &refs
		}
		dependencies = append(dependencies, cdx.Dependency{
			Ref:          purls[i],
			Dependencies: dependsOn,
		})
	}
	sort.Slice(dependencies, func(i, j int) bool {
		return dependencies[i].Ref < dependencies[j].Ref
	})
	bom.Dependencies = &dependencies

	return bom, nil
}

// packageComponent builds the CycloneDX component for a single resolved
// package: type, bom-ref, group, name, version, scope and purl, plus a
// supplier for vendor-patched versions. Tags are carried as properties
// named "deptrast:tag".
func packageComponent(pkg *resolve.Package) (cdx.Component, error) {
	group, name := splitGroupName(pkg.System, pkg.Name)
	version := pkg.Version
	if patched, ok := pkg.VersionMetadata.GetAttr(resolve.AttrPatchedVersion); ok {
		version = patched
	}

	purl := packageurl.NewPackageURL(purlType(pkg.System), group, name, version, nil, "")

	comp := cdx.Component{
		Type:       cdx.ComponentTypeLibrary,
		BOMRef:     purl.ToString(),
		Group:      group,
		Name:       name,
		Version:    version,
		Scope:      mavenScopeToCycloneDX(pkg.Scope),
		PackageURL: purl.ToString(),
	}

	if supplier, ok := pkg.VersionMetadata.GetAttr(resolve.AttrSupplier); ok {
		comp.Supplier = &cdx.OrganizationalEntity{Name: supplier}
	}

	if tags := buildTags(pkg); len(tags) > 0 {
		props := make([]cdx.Property, 0, len(tags))
		for _, t := range tags {
			props = append(props, cdx.Property{Name: "deptrast:tag", Value: t})
		}
		comp.Properties = &props
	}

	return comp, nil
}

// splitGroupName separates a Maven "group:artifact" name into CycloneDX's
// group and name fields. Other ecosystems have no group component.
func splitGroupName(system resolve.System, name string) (group, artifact string) {
	if system != resolve.Maven {
		return "", name
	}
	if g, a, ok := strings.Cut(name, ":"); ok {
		return g, a
	}
	return "", name
}

func purlType(system resolve.System) string {
	switch system {
	case resolve.Maven:
		return "maven"
	case resolve.NPM:
		return "npm"
	case resolve.PyPI:
		return "pypi"
	default:
		return string(system)
	}
}

// mavenScopeToCycloneDX maps a resolved Maven scope onto the three
// CycloneDX dependency scopes: optional dependencies stay optional,
// anything excluded (by conflict, override or scope propagation) or
// test/provided/system-scoped is marked excluded, and everything else —
// compile, runtime and required — ships as required.
func mavenScopeToCycloneDX(scope resolve.MavenScope) cdx.Scope {
	switch scope {
	case resolve.ScopeOptional:
		return cdx.ScopeOptional
	case resolve.ScopeTest, resolve.ScopeProvided, resolve.ScopeSystem, resolve.ScopeExcluded:
		return cdx.ScopeExcluded
	default:
		return cdx.ScopeRequired
	}
}

// buildTags renders the provenance annotations the spec's tree/SBOM
// output carries: why a package was excluded, who it lost to, and any
// vendor-patched-version metadata.
func buildTags(pkg *resolve.Package) []string {
	var tags []string
	if pkg.Scope == resolve.ScopeExcluded && pkg.ScopeReason != resolve.ReasonNone {
		tags = append(tags, "scope:"+pkg.ScopeReason.String())
	}
	if pkg.WinningVersion != "" {
		tags = append(tags, "winner:"+pkg.WinningVersion)
	}
	if pkg.IsOverrideWinner {
		tags = append(tags, "override-winner")
	}
	if pkg.IsHeroDevsNES() {
		tags = append(tags, "herodevs:nes")
		if v, ok := pkg.VersionMetadata.GetAttr(resolve.AttrUpstreamVersion); ok {
			tags = append(tags, "herodevs:upstream-version:"+v)
		}
		if v, ok := pkg.VersionMetadata.GetAttr(resolve.AttrArtifact); ok {
			tags = append(tags, "herodevs:artifact:"+v)
		}
	}
	return tags
}

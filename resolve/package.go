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

import "github.com/planetlevel/deptrast/resolve/internal/attr"

// Attribute keys stored in a Package's VersionMetadata set. Only packages
// resolved from a vendor-patched version (HeroDevs NES and similar) carry
// any of these.
const (
	AttrHeroDevsNES       uint8 = iota // presence-only; value is always "true"
	AttrUpstreamVersion                // the semver deps.dev was queried with
	AttrPatchedVersion                 // the vendor-patched semver shown in the SBOM
	AttrArtifact                       // the vendor artifact identifier, e.g. "spring-core"
	AttrSupplier                       // the vendor name, e.g. "HeroDevs"
)

// Package is a single resolved node's business data: its identity, its
// current Maven scope and why, and the bookkeeping a conflict resolution
// pass leaves behind. Package identity (System, Name, Version) is
// immutable once constructed; Scope, ScopeReason, WinningVersion,
// DefeatedVersions, IsOverrideWinner and ScopeStrategy are mutated in
// place as the pipeline runs, which is why Graph always hands out a
// pointer to one canonical Package per identity rather than copies.
type Package struct {
	Coordinate

	// Scope is the package's current Maven scope. It starts as whatever
	// the graph builder observed on the edge that first discovered this
	// package and may be rewritten to ScopeExcluded by conflict
	// resolution or scope propagation.
	Scope MavenScope

	// OriginalMavenScope is the scope first observed for this package and
	// is never modified after construction, regardless of what Scope
	// becomes later.
	OriginalMavenScope MavenScope

	// ScopeReason explains a ScopeExcluded Scope. It must be ReasonNone
	// whenever Scope != ScopeExcluded.
	ScopeReason Reason

	// ScopeStrategy records which conflict strategy produced ScopeReason,
	// when ScopeReason came from conflict resolution rather than scope
	// propagation.
	ScopeStrategy Strategy

	// WinningVersion is the version of the sibling package that won a
	// version conflict against this one. Empty unless ScopeReason is
	// ReasonLoser or ReasonOverrideLoser.
	WinningVersion string

	// DefeatedVersions lists the versions of sibling packages this
	// package's version defeated in conflict resolution. Empty unless
	// this package won at least one conflict.
	DefeatedVersions []string

	// IsOverrideWinner reports whether this package's version was forced
	// by a dependency-management / override entry rather than won
	// through ordinary conflict resolution.
	IsOverrideWinner bool

	// VersionMetadata carries vendor-patched-version annotations
	// (HeroDevs NES and similar) that ride along with this version
	// without being part of its identity.
	VersionMetadata attr.Set
}

// NewPackage constructs a Package with its identity and originally
// observed scope; ScopeReason starts at ReasonNone and Scope equals
// OriginalMavenScope until something rewrites it.
func NewPackage(coord Coordinate, originalScope MavenScope) *Package {
	return &Package{
		Coordinate:         coord,
		Scope:              originalScope,
		OriginalMavenScope: originalScope,
		ScopeReason:        ReasonNone,
	}
}

// FullName is the identity string used for equality, hashing and graph
// node sharing: "{system}:{name}:{version}".
func (p *Package) FullName() string {
	return p.Coordinate.String()
}

// BaseKey is the version-less identity used to detect conflicting
// versions of "the same" package: "{system}:{name}".
func (p *Package) BaseKey() PackageKey {
	return p.PackageKey
}

// Exclude marks the package excluded for the given reason, which must not
// be ReasonNone.
func (p *Package) Exclude(reason Reason, strategy Strategy) {
	if reason == ReasonNone {
		panic("resolve: Exclude called with ReasonNone")
	}
	p.Scope = ScopeExcluded
	p.ScopeReason = reason
	p.ScopeStrategy = strategy
}

// MarkOverrideWinner records that an override/dependency-management entry
// forced this package's version over any conflicting sibling version.
func (p *Package) MarkOverrideWinner() {
	p.IsOverrideWinner = true
}

// RecordDefeat appends a defeated sibling version if not already present.
func (p *Package) RecordDefeat(version string) {
	for _, v := range p.DefeatedVersions {
		if v == version {
			return
		}
	}
	p.DefeatedVersions = append(p.DefeatedVersions, version)
}

// SetHeroDevsMetadata records the HeroDevs NES vendor-patched-version
// annotations for this package.
func (p *Package) SetHeroDevsMetadata(upstreamVersion, patchedVersion, artifact, supplier string) {
	p.VersionMetadata.SetAttr(AttrHeroDevsNES, "true")
	p.VersionMetadata.SetAttr(AttrUpstreamVersion, upstreamVersion)
	p.VersionMetadata.SetAttr(AttrPatchedVersion, patchedVersion)
	p.VersionMetadata.SetAttr(AttrArtifact, artifact)
	p.VersionMetadata.SetAttr(AttrSupplier, supplier)
}

// IsHeroDevsNES reports whether this package was resolved from a HeroDevs
// Never-Ending Support vendor-patched version.
func (p *Package) IsHeroDevsNES() bool {
	_, ok := p.VersionMetadata.GetAttr(AttrHeroDevsNES)
	return ok
}

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
	"regexp"
	"strconv"
	"strings"
)

// CompareVersions orders two version strings the way Maven nearest/highest
// conflict resolution does: split on '.' and '-', compare each part
// numerically when both sides parse as integers, else lexicographically: a
// version with more parts than another wins when the shared prefix is
// equal. Returns -1, 0 or 1.
func CompareVersions(a, b string) int {
	ap, bp := splitVersion(a), splitVersion(b)
	for i := 0; i < len(ap) && i < len(bp); i++ {
		if c := compareVersionPart(ap[i], bp[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(ap) < len(bp):
		return -1
	case len(ap) > len(bp):
		return 1
	default:
		return 0
	}
}

func splitVersion(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool {
		return r == '.' || r == '-'
	})
}

func compareVersionPart(a, b string) int {
	an, aerr := strconv.Atoi(a)
	bn, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// herodevsPattern matches HeroDevs Never-Ending Support vendor version
// strings: "<upstream-semver>-<artifact>-<patched-semver>", e.g.
// "5.3.39-spring-core-5.3.39.1".
var herodevsPattern = regexp.MustCompile(`^(\d+\.\d+\.\d+)-([a-zA-Z][a-zA-Z0-9._-]*?)-(\d+\.\d+\.\d+(?:\.\d+)?)$`)

// HeroDevsNES describes a HeroDevs Never-Ending Support vendor version
// that has been split into its queryable upstream semver and its
// SBOM-displayed patched semver.
type HeroDevsNES struct {
	UpstreamVersion string
	Artifact        string
	PatchedVersion  string
}

// ParseHeroDevsVersion detects whether version is a HeroDevs NES
// vendor-patched version and, if so, splits it into the upstream version
// (used to query the metadata client, since deps.dev has never heard of
// the vendor suffix) and the patched version (the one shown in the SBOM).
func ParseHeroDevsVersion(version string) (HeroDevsNES, bool) {
	m := herodevsPattern.FindStringSubmatch(version)
	if m == nil {
		return HeroDevsNES{}, false
	}
	return HeroDevsNES{
		UpstreamVersion: m[1],
		Artifact:        m[2],
		PatchedVersion:  m[3],
	}, true
}

// QueryVersion returns the version that should be used to query package
// metadata: the upstream semver for a HeroDevs NES version, or the version
// unchanged otherwise.
func QueryVersion(version string) string {
	if nes, ok := ParseHeroDevsVersion(version); ok {
		return nes.UpstreamVersion
	}
	return version
}

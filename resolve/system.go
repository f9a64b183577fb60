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
Package resolve holds the shared data model for the dependency graph: package
coordinates, the graph arena, and the scope/reason sum types that describe
why a node is or isn't part of the final bill of materials.
*/
package resolve

import "strings"

// System nominates a packaging ecosystem. Unlike a closed enum, any
// lower-cased string is a valid System: the spec leaves the set of
// ecosystems open ("maven, npm, pypi, …").
type System string

// Well-known systems. Others may be constructed with NewSystem.
const (
	Maven System = "maven"
	NPM   System = "npm"
	PyPI  System = "pypi"
)

// NewSystem normalizes a raw system string the way Package.__post_init__
// does in the source this was distilled from: lower-cased, nothing else.
func NewSystem(s string) System {
	return System(strings.ToLower(s))
}

func (s System) String() string { return string(s) }

// PackageKey uniquely identifies a package (without a version) within a
// System. It is the "base_key" of the spec: "{system}:{name}".
type PackageKey struct {
	System System
	Name   string
}

func (k PackageKey) String() string {
	return k.System.String() + ":" + k.Name
}

// Compare orders PackageKeys by System then Name, returning -1, 0 or 1.
func (k PackageKey) Compare(o PackageKey) int {
	if k.System != o.System {
		if k.System < o.System {
			return -1
		}
		return 1
	}
	if k.Name != o.Name {
		if k.Name < o.Name {
			return -1
		}
		return 1
	}
	return 0
}

// Coordinate is the immutable (system, name, version) triple identifying a
// specific package release. Its String form, "{system}:{name}:{version}",
// is the identity used for equality, hashing and graph node sharing.
type Coordinate struct {
	PackageKey
	Version string
}

// NewCoordinate builds a Coordinate, normalizing the system the way
// Package does.
func NewCoordinate(system System, name, version string) Coordinate {
	return Coordinate{
		PackageKey: PackageKey{System: NewSystem(string(system)), Name: name},
		Version:    version,
	}
}

func (c Coordinate) String() string {
	return c.PackageKey.String() + ":" + c.Version
}

// Compare orders Coordinates by PackageKey then Version, returning -1, 0 or 1.
func (c Coordinate) Compare(o Coordinate) int {
	if cmp := c.PackageKey.Compare(o.PackageKey); cmp != 0 {
		return cmp
	}
	if c.Version != o.Version {
		if c.Version < o.Version {
			return -1
		}
		return 1
	}
	return 0
}

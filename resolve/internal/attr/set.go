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
Package attr provides a small set of keyed string annotations.

It backs Package.VersionMetadata: the vendor-patched-version annotations
(HeroDevs NES upstream/patched version pairs and similar) that ride along
with a resolved package without being part of its identity. This package is
an implementation detail of the resolve package.
*/
package attr

// Set is a small map of uint8 keys to string values. The zero value is an
// empty set ready to use.
type Set struct {
	attrs map[uint8]string
}

// SetAttr adds an attribute to the Set, replacing any existing one of the
// same key.
func (s *Set) SetAttr(key uint8, value string) {
	if s.attrs == nil {
		s.attrs = make(map[uint8]string)
	}
	s.attrs[key] = value
}

// GetAttr gets an attribute from the Set.
func (s Set) GetAttr(key uint8) (value string, ok bool) {
	value, ok = s.attrs[key]
	return
}

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

import "testing"

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.2.0", "1.10.0", -1},
		{"1.0.0", "1.0", 1},
		{"2.0.0", "1.9.9", 1},
		{"1.0-beta", "1.0-alpha", 1},
	}
	for _, tt := range tests {
		if got := CompareVersions(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestParseHeroDevsVersion(t *testing.T) {
	nes, ok := ParseHeroDevsVersion("5.3.39-spring-core-5.3.39.1")
	if !ok {
		t.Fatal("expected HeroDevs version to be recognized")
	}
	if nes.UpstreamVersion != "5.3.39" || nes.Artifact != "spring-core" || nes.PatchedVersion != "5.3.39.1" {
		t.Fatalf("unexpected split: %+v", nes)
	}
	if _, ok := ParseHeroDevsVersion("1.2.3"); ok {
		t.Fatal("plain semver must not be recognized as a HeroDevs version")
	}
	if got := QueryVersion("5.3.39-spring-core-5.3.39.1"); got != "5.3.39" {
		t.Fatalf("QueryVersion = %q, want 5.3.39", got)
	}
	if got := QueryVersion("1.2.3"); got != "1.2.3" {
		t.Fatalf("QueryVersion passthrough = %q, want 1.2.3", got)
	}
}

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

package client

import "context"

// FakeClient is an in-memory MetadataClient for tests, analogous to
// deps.dev/util/resolve's LocalClient: a fixed universe of graphs keyed by
// coordinate, with no network access.
type FakeClient struct {
	graphs map[string]*RawGraph
}

// NewFakeClient returns an empty FakeClient.
func NewFakeClient() *FakeClient {
	return &FakeClient{graphs: make(map[string]*RawGraph)}
}

// AddGraph registers the RawGraph to be returned for the given coordinate.
func (f *FakeClient) AddGraph(system, name, version string, graph *RawGraph) {
	f.graphs[system+":"+name+":"+version] = graph
}

// FetchGraph implements MetadataClient by looking up the fixed universe.
// An unregistered coordinate returns (nil, nil), matching the real
// client's UpstreamUnknown behavior.
func (f *FakeClient) FetchGraph(_ context.Context, system, name, version string) (*RawGraph, error) {
	return f.graphs[system+":"+name+":"+version], nil
}

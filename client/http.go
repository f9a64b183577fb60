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

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"golang.org/x/sync/singleflight"
)

// defaultTimeout bounds a single dependency-graph fetch. A fetch that
// exceeds it is treated as UpstreamTransient, not as an error.
const defaultTimeout = 30 * time.Second

// defaultCacheSize bounds the number of distinct (system, name, version)
// fetches kept in memory at once.
const defaultCacheSize = 4096

// Debug gates verbose per-fetch logging, in the style of
// deps.dev/util/resolve/maven/resolve.go's package-level debug switch.
var Debug = false

// HTTPClient is a MetadataClient backed by a deps.dev-shaped HTTP API. It
// coalesces concurrent fetches of the same coordinate with a
// singleflight.Group and caches completed fetches in a bounded LRU, so a
// graph builder that revisits the same package many times across a large
// dependency tree pays for the network round trip once.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	group *singleflight.Group
	mu    sync.Mutex // guards cache; lru.Cache is not safe for concurrent use
	cache *lru.Cache
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient overrides the *http.Client used for requests, e.g. to
// inject a transport with custom TLS settings or a test round tripper.
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

// WithCacheSize overrides the number of cached fetch results kept.
func WithCacheSize(n int) Option {
	return func(c *HTTPClient) { c.cache = lru.New(n) }
}

// NewHTTPClient builds an HTTPClient against baseURL, e.g.
// "https://api.deps.dev/v3".
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		group:   new(singleflight.Group),
		cache:   lru.New(defaultCacheSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchGraph implements MetadataClient. It queries
// "{baseURL}/systems/{system}/packages/{name}/versions/{version}:dependencies",
// where version is the query version (the upstream semver for a HeroDevs
// vendor-patched version, the raw version otherwise — callers are
// responsible for that translation via resolve.QueryVersion, since only
// they know whether the returned graph's versions need re-tagging).
func (c *HTTPClient) FetchGraph(ctx context.Context, system, name, version string) (*RawGraph, error) {
	key := system + ":" + name + ":" + version
	c.mu.Lock()
	cached, ok := c.cache.Get(key)
	c.mu.Unlock()
	if ok {
		if cached == nil {
			return nil, nil
		}
		return cached.(*RawGraph), nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A fetch for key may have completed between the cache check
		// above and joining the group.
		c.mu.Lock()
		cached, ok := c.cache.Get(key)
		c.mu.Unlock()
		if ok {
			return cached, nil
		}
		g, ferr := c.fetch(ctx, system, name, version)
		if ferr == nil {
			c.mu.Lock()
			c.cache.Add(key, g)
			c.mu.Unlock()
		}
		return g, ferr
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.(*RawGraph), nil
}

func (c *HTTPClient) fetch(ctx context.Context, system, name, version string) (*RawGraph, error) {
	reqURL := fmt.Sprintf("%s/systems/%s/packages/%s/versions/%s:dependencies",
		c.baseURL, url.PathEscape(system), url.PathEscape(name), url.PathEscape(version))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("client: building request for %s: %w", reqURL, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if Debug {
			log.Printf("client: transient fetch failure for %s %s@%s: %v", system, name, version, err)
		}
		return nil, nil // UpstreamTransient
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil // UpstreamUnknown
	}
	if resp.StatusCode != http.StatusOK {
		if Debug {
			log.Printf("client: non-200 response for %s %s@%s: %s", system, name, version, resp.Status)
		}
		return nil, nil // UpstreamTransient
	}

	var graph RawGraph
	if err := json.NewDecoder(resp.Body).Decode(&graph); err != nil {
		return nil, fmt.Errorf("client: decoding response for %s %s@%s: %w", system, name, version, err)
	}
	if graph.Error != "" && Debug {
		log.Printf("client: graph error for %s %s@%s: %s", system, name, version, graph.Error)
	}
	return &graph, nil
}

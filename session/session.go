// Copyright 2026 The Millstone Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package session holds the per-session execution context shared by the
// query pipelines of one client: configuration, the catalog and the result
// cache. A Session outlives the pipelines created from it.
package session

import (
	"github.com/millstonedb/millstone/catalog"
	"github.com/millstonedb/millstone/query/cache"
	"sync"
)

// Config contains the session settings read during planning and plan
// preparation.
type Config struct {
	// BatchSize is the fetch granularity applied to scans by the
	// prepare-for-execution pass.
	BatchSize int
	// UseIndexes allows the planner to propose index scans.
	UseIndexes bool
	// CodegenEnabled marks whether operator code generation would be used.
	// Millstone interprets plans, so today this only shows up in explain
	// output.
	CodegenEnabled bool
}

// DefaultConfig returns the settings a fresh session starts with.
func DefaultConfig() Config {
	return Config{
		BatchSize:  1024,
		UseIndexes: true,
	}
}

// Session is the execution context for one client. It is shared, read-mostly
// state: many pipelines may hold the same Session concurrently.
type Session struct {
	mu      sync.RWMutex
	cfg     Config
	catalog *catalog.Catalog
	cache   *cache.Manager
}

// New creates a Session with default configuration.
func New(cat *catalog.Catalog, cache *cache.Manager) *Session {
	return &Session{
		cfg:     DefaultConfig(),
		catalog: cat,
		cache:   cache,
	}
}

// Config returns a copy of the session's current settings.
func (s *Session) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SetConfig replaces the session's settings. Pipelines that already memoized
// a stage keep the results computed under the old settings.
func (s *Session) SetConfig(cfg Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// Catalog returns the catalog this session runs against.
func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// Cache returns the session's result cache manager.
func (s *Session) Cache() *cache.Manager {
	return s.cache
}

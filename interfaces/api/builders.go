package api

import (
	"time"

	"github.com/felixgeelhaar/checkwise/domain/cache"
	"github.com/felixgeelhaar/checkwise/domain/rule"
	"github.com/felixgeelhaar/checkwise/infrastructure/registry"
	"github.com/felixgeelhaar/checkwise/infrastructure/rulestore"
	"github.com/felixgeelhaar/checkwise/infrastructure/storage/memory"
)

// Infrastructure types reachable without importing the packages directly.
type (
	// Registry is the pattern-matching handler registry.
	Registry = registry.Registry

	// MemoryHistoryStore keeps history records in memory.
	MemoryHistoryStore = memory.HistoryStore

	// MemoryCache is an in-process LRU cache with TTL support.
	MemoryCache = memory.Cache

	// RuleClient talks to the monitoring backend's rule API.
	RuleClient = rulestore.Client

	// RuleClientConfig configures a RuleClient.
	RuleClientConfig = rulestore.Config

	// CachedRuleStore reads rules through a cache.
	CachedRuleStore = rulestore.CachedStore
)

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return registry.New()
}

// DefaultRegistry returns the process-wide registry with the built-in
// handlers registered.
func DefaultRegistry() *Registry {
	return registry.Default()
}

// NewMemoryHistoryStore creates an in-memory history store. A positive
// maxRecords caps retention; zero keeps everything.
func NewMemoryHistoryStore(maxRecords int) *MemoryHistoryStore {
	if maxRecords > 0 {
		return memory.NewHistoryStore(memory.WithMaxRecords(maxRecords))
	}
	return memory.NewHistoryStore()
}

// NewMemoryCache creates an in-process cache with a background janitor.
// Close it to stop the janitor.
func NewMemoryCache() *MemoryCache {
	return memory.NewCache(memory.WithJanitor(time.Minute))
}

// DefaultRuleClientConfig returns the rule client defaults: timeouts,
// retry, circuit breaker and concurrency limits.
func DefaultRuleClientConfig() RuleClientConfig {
	return rulestore.DefaultConfig()
}

// NewRuleClient creates a rule store backed by the monitoring backend's
// HTTP API.
func NewRuleClient(config RuleClientConfig) (*RuleClient, error) {
	return rulestore.New(config)
}

// NewCachedRuleStore wraps a rule store with read-through caching.
func NewCachedRuleStore(store rule.Store, c cache.Cache, ttl time.Duration) *CachedRuleStore {
	return rulestore.NewCachedStore(store, c, ttl)
}

package rulestore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/felixgeelhaar/checkwise/domain/cache"
	"github.com/felixgeelhaar/checkwise/domain/rule"
	"github.com/felixgeelhaar/checkwise/infrastructure/logging"
)

// CachedStore wraps a rule.Store with a read-through cache.
//
// Reads are served from the cache when present and fresh; misses fall
// through to the backend and populate the cache with the configured
// TTL. Mutations clear the whole cache rather than track which
// entries a rule affects; rule writes are rare next to reads.
type CachedStore struct {
	store rule.Store
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedStore creates a caching decorator around a rule store.
func NewCachedStore(store rule.Store, c cache.Cache, ttl time.Duration) *CachedStore {
	return &CachedStore{
		store: store,
		cache: c,
		ttl:   ttl,
	}
}

// lookup reads a cached value into out. It reports whether the entry
// was present and decodable.
func (s *CachedStore) lookup(ctx context.Context, key string, out any) bool {
	data, found, err := s.cache.Get(ctx, key)
	if err != nil || !found {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		// Treat undecodable entries as misses.
		return false
	}
	return true
}

// save writes a value to the cache. Failures are logged, not returned;
// a cold cache only costs a backend round trip.
func (s *CachedStore) save(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, cache.SetOptions{TTL: s.ttl}); err != nil {
		logging.Debug().
			Add(logging.Str("key", key)).
			Add(logging.ErrorField(err)).
			Msg("rule cache set failed")
	}
}

// invalidate clears the cache after a mutation.
func (s *CachedStore) invalidate(ctx context.Context) {
	if err := s.cache.Clear(ctx); err != nil {
		logging.Warn().
			Add(logging.ErrorField(err)).
			Msg("rule cache clear failed")
	}
}

// ListRulesets returns all rulesets known to the backend.
func (s *CachedStore) ListRulesets(ctx context.Context) ([]rule.Ruleset, error) {
	var cached []rule.Ruleset
	if s.lookup(ctx, "rulesets", &cached) {
		return cached, nil
	}

	rulesets, err := s.store.ListRulesets(ctx)
	if err != nil {
		return nil, err
	}

	s.save(ctx, "rulesets", rulesets)
	return rulesets, nil
}

// GetRuleset retrieves a ruleset by name.
func (s *CachedStore) GetRuleset(ctx context.Context, name string) (*rule.Ruleset, error) {
	key := "ruleset:" + name

	var cached rule.Ruleset
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	rs, err := s.store.GetRuleset(ctx, name)
	if err != nil {
		return nil, err
	}

	s.save(ctx, key, rs)
	return rs, nil
}

// ListRules returns the rules of a ruleset.
func (s *CachedStore) ListRules(ctx context.Context, ruleset string) ([]rule.Rule, error) {
	key := "rules:" + ruleset

	var cached []rule.Rule
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	rules, err := s.store.ListRules(ctx, ruleset)
	if err != nil {
		return nil, err
	}

	s.save(ctx, key, rules)
	return rules, nil
}

// GetRule retrieves a rule by ID.
func (s *CachedStore) GetRule(ctx context.Context, id string) (*rule.Rule, error) {
	key := "rule:" + id

	var cached rule.Rule
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	r, err := s.store.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}

	s.save(ctx, key, r)
	return r, nil
}

// CreateRule persists a new rule and returns its backend ID.
func (s *CachedStore) CreateRule(ctx context.Context, r *rule.Rule) (string, error) {
	id, err := s.store.CreateRule(ctx, r)
	if err != nil {
		return "", err
	}

	s.invalidate(ctx)
	return id, nil
}

// UpdateRule replaces an existing rule's value and conditions.
func (s *CachedStore) UpdateRule(ctx context.Context, r *rule.Rule) error {
	if err := s.store.UpdateRule(ctx, r); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// DeleteRule removes a rule.
func (s *CachedStore) DeleteRule(ctx context.Context, id string) error {
	if err := s.store.DeleteRule(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// Ensure CachedStore implements rule.Store
var _ rule.Store = (*CachedStore)(nil)

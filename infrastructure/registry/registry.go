// Package registry implements handler registration and dispatch: priority
// ordered lookup, lazy singleton construction, and memoized service and
// ruleset matching.
package registry

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/felixgeelhaar/checkwise/domain/handler"
	"github.com/felixgeelhaar/checkwise/infrastructure/logging"
)

// ChangeRecorder observes registry membership changes.
type ChangeRecorder interface {
	RecordChange(ctx context.Context, handlerName string, registered bool)
}

// matchKey keys the memoized lookup caches by input and limit.
type matchKey struct {
	input string
	limit int
}

// entry is the registry's record for one registration. The live instance
// is constructed lazily and cached only on success.
type entry struct {
	reg         handler.Registration
	rawPatterns []string
	patterns    []*regexp.Regexp
	rulesets    []string
	instance    handler.Handler
}

// Registry dispatches service names and rulesets to parameter handlers.
// A single lock guards registrations, live instances and both match
// caches; cache population racing cache invalidation is unsafe otherwise.
type Registry struct {
	mu           sync.RWMutex
	entries      map[string]*entry
	serviceCache map[matchKey][]string
	rulesetCache map[matchKey][]string
	recorder     ChangeRecorder
}

var _ handler.Registry = (*Registry)(nil)

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries:      make(map[string]*entry),
		serviceCache: make(map[matchKey][]string),
		rulesetCache: make(map[matchKey][]string),
	}
}

// Register adds a handler registration. The constructor runs once here, to
// read the handler's stable name and matching surface; the probe instance
// is then discarded so Get still constructs lazily. Replacing an existing
// name logs a warning. Both match caches are invalidated.
func (r *Registry) Register(reg handler.Registration) error {
	if reg.Constructor == nil {
		return handler.ErrNoConstructor
	}
	probe, err := reg.Constructor()
	if err != nil {
		return fmt.Errorf("%w: %v", handler.ErrConstructionFailed, err)
	}
	if probe == nil {
		return fmt.Errorf("%w: constructor returned no handler", handler.ErrConstructionFailed)
	}
	name := probe.Name()
	if name == "" {
		return handler.ErrEmptyName
	}
	reg.Name = name

	rawPatterns := append([]string(nil), probe.ServicePatterns()...)
	patterns := make([]*regexp.Regexp, 0, len(rawPatterns))
	for _, p := range rawPatterns {
		// Service matching is case-insensitive and unanchored.
		compiled, err := regexp.Compile("(?i)" + p)
		if err != nil {
			logging.Warn().
				Add(logging.HandlerName(name)).
				Add(logging.Pattern(p)).
				Add(logging.ErrorField(err)).
				Msg("skipping invalid service pattern")
			continue
		}
		patterns = append(patterns, compiled)
	}
	rulesets := append([]string(nil), probe.SupportedRulesets()...)

	r.mu.Lock()
	if _, exists := r.entries[name]; exists {
		logging.Warn().
			Add(logging.HandlerName(name)).
			Add(logging.Priority(reg.Priority)).
			Msg("replacing existing handler registration")
	}
	r.entries[name] = &entry{
		reg:         reg,
		rawPatterns: rawPatterns,
		patterns:    patterns,
		rulesets:    rulesets,
	}
	r.invalidateLocked()
	rec := r.recorder
	r.mu.Unlock()

	if rec != nil {
		rec.RecordChange(context.Background(), name, true)
	}
	return nil
}

// Unregister removes a registration and its cached instance. It reports
// whether the name was registered.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	if _, ok := r.entries[name]; !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.entries, name)
	r.invalidateLocked()
	rec := r.recorder
	r.mu.Unlock()

	if rec != nil {
		rec.RecordChange(context.Background(), name, false)
	}
	return true
}

// Get returns the live handler instance, constructing and caching it on
// first use. Unknown and disabled names yield nil, as does a failing
// constructor; construction errors are logged and never propagated.
func (r *Registry) Get(name string) handler.Handler {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(name)
}

func (r *Registry) getLocked(name string) handler.Handler {
	e, ok := r.entries[name]
	if !ok || !e.reg.Enabled {
		return nil
	}
	if e.instance != nil {
		return e.instance
	}
	instance, err := e.reg.Constructor()
	if err != nil || instance == nil {
		logging.Warn().
			Add(logging.HandlerName(name)).
			Add(logging.ErrorField(err)).
			Msg("handler construction failed")
		return nil
	}
	e.instance = instance
	return instance
}

// HandlersForService returns up to limit enabled handlers whose service
// patterns match, ordered by ascending priority with the handler name as
// tie-break. A non-positive limit uses DefaultMatchLimit. Results are
// memoized per (service, limit) until the next registration mutation.
func (r *Registry) HandlersForService(service string, limit int) []handler.Handler {
	if limit <= 0 {
		limit = handler.DefaultMatchLimit
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.instancesLocked(r.serviceMatchesLocked(service, limit))
}

// HandlersForRuleset returns up to limit enabled handlers that support the
// ruleset by exact name, ordered like HandlersForService.
func (r *Registry) HandlersForRuleset(ruleset string, limit int) []handler.Handler {
	if limit <= 0 {
		limit = handler.DefaultMatchLimit
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.instancesLocked(r.rulesetMatchesLocked(ruleset, limit))
}

// BestHandler resolves the single best handler. With both inputs the full
// candidate sets are intersected and the lowest-priority member wins,
// names breaking ties; an empty intersection or a single input falls back
// to the best service match, then the best ruleset match. Nil when
// nothing matches.
func (r *Registry) BestHandler(service, ruleset string) handler.Handler {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := len(r.entries)
	if all == 0 {
		return nil
	}

	if service != "" && ruleset != "" {
		serviceNames := r.serviceMatchesLocked(service, all)
		rulesetNames := r.rulesetMatchesLocked(ruleset, all)
		inRuleset := make(map[string]struct{}, len(rulesetNames))
		for _, name := range rulesetNames {
			inRuleset[name] = struct{}{}
		}
		// serviceNames is already ordered by (priority, name).
		for _, name := range serviceNames {
			if _, ok := inRuleset[name]; ok {
				if h := r.getLocked(name); h != nil {
					return h
				}
			}
		}
	}
	if service != "" {
		for _, name := range r.serviceMatchesLocked(service, 1) {
			if h := r.getLocked(name); h != nil {
				return h
			}
		}
	}
	if ruleset != "" {
		for _, name := range r.rulesetMatchesLocked(ruleset, 1) {
			if h := r.getLocked(name); h != nil {
				return h
			}
		}
	}
	return nil
}

// List returns registration metadata ordered by priority, then name. It is
// a diagnostic view and never used for dispatch.
func (r *Registry) List(enabledOnly bool) []handler.View {
	r.mu.RLock()
	defer r.mu.RUnlock()

	views := make([]handler.View, 0, len(r.entries))
	for name, e := range r.entries {
		if enabledOnly && !e.reg.Enabled {
			continue
		}
		views = append(views, handler.View{
			Name:              name,
			Priority:          e.reg.Priority,
			Description:       e.reg.Description,
			Enabled:           e.reg.Enabled,
			ServicePatterns:   append([]string(nil), e.rawPatterns...),
			SupportedRulesets: append([]string(nil), e.rulesets...),
		})
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].Priority != views[j].Priority {
			return views[i].Priority < views[j].Priority
		}
		return views[i].Name < views[j].Name
	})
	return views
}

// Enable marks a handler as eligible for dispatch.
func (r *Registry) Enable(name string) bool {
	return r.setEnabled(name, true)
}

// Disable removes a handler from dispatch without unregistering it.
func (r *Registry) Disable(name string) bool {
	return r.setEnabled(name, false)
}

func (r *Registry) setEnabled(name string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return false
	}
	e.reg.Enabled = enabled
	r.invalidateLocked()
	return true
}

// SetPriority overrides a registration's priority. Lower values win
// dispatch. It reports whether the name was registered.
func (r *Registry) SetPriority(name string, priority int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return false
	}
	e.reg.Priority = priority
	r.invalidateLocked()
	return true
}

// SetRecorder installs a recorder notified after every Register and
// Unregister. A nil recorder turns notifications off. Changes made before
// the call are not replayed.
func (r *Registry) SetRecorder(rec ChangeRecorder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorder = rec
}

// invalidateLocked drops both match caches. Every registration mutation
// must call it.
func (r *Registry) invalidateLocked() {
	r.serviceCache = make(map[matchKey][]string)
	r.rulesetCache = make(map[matchKey][]string)
}

func (r *Registry) serviceMatchesLocked(service string, limit int) []string {
	key := matchKey{input: service, limit: limit}
	if names, ok := r.serviceCache[key]; ok {
		return names
	}
	names := r.matchLocked(limit, func(e *entry) bool {
		for _, p := range e.patterns {
			if p.MatchString(service) {
				return true
			}
		}
		return false
	})
	r.serviceCache[key] = names
	return names
}

func (r *Registry) rulesetMatchesLocked(ruleset string, limit int) []string {
	key := matchKey{input: ruleset, limit: limit}
	if names, ok := r.rulesetCache[key]; ok {
		return names
	}
	names := r.matchLocked(limit, func(e *entry) bool {
		for _, rs := range e.rulesets {
			if rs == ruleset {
				return true
			}
		}
		return false
	})
	r.rulesetCache[key] = names
	return names
}

// matchLocked returns enabled registration names satisfying pred, sorted
// by ascending priority with the name as tie-break, truncated to limit.
func (r *Registry) matchLocked(limit int, pred func(*entry) bool) []string {
	type candidate struct {
		name     string
		priority int
	}
	var matches []candidate
	for name, e := range r.entries {
		if !e.reg.Enabled || !pred(e) {
			continue
		}
		matches = append(matches, candidate{name: name, priority: e.reg.Priority})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].priority != matches[j].priority {
			return matches[i].priority < matches[j].priority
		}
		return matches[i].name < matches[j].name
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.name
	}
	return names
}

// instancesLocked resolves names to live instances, skipping any whose
// construction fails.
func (r *Registry) instancesLocked(names []string) []handler.Handler {
	out := make([]handler.Handler, 0, len(names))
	for _, name := range names {
		if h := r.getLocked(name); h != nil {
			out = append(out, h)
		}
	}
	return out
}

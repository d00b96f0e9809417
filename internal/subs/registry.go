package subs

import (
	"sync"

	"deployScope/internal/model"
)

// ScopeSubscriptions pairs one chat scope with its filters.
type ScopeSubscriptions struct {
	Scope         model.Scope
	Subscriptions []model.Subscription
}

// Registry maps chat scopes to filter sets. It is process-resident only and
// must be safe under concurrent mutation from command handlers and iteration
// from multiple chain workers.
type Registry struct {
	mu     sync.RWMutex
	scopes map[model.Scope][]model.Subscription
	order  []model.Scope
}

// NewRegistry creates an empty subscription registry.
func NewRegistry() *Registry {
	return &Registry{scopes: make(map[model.Scope][]model.Subscription)}
}

// Add inserts a subscription into the scope's set and returns the new set
// size. Ticker is normalized on insert. Adding an already-present triple is
// a no-op.
func (r *Registry) Add(scope model.Scope, sub model.Subscription) int {
	sub.Ticker = model.NormalizeTicker(sub.Ticker)

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, known := r.scopes[scope]
	for _, have := range existing {
		if have.Equal(sub) {
			return len(existing)
		}
	}

	if !known {
		r.order = append(r.order, scope)
	}
	r.scopes[scope] = append(existing, sub)
	return len(existing) + 1
}

// Remove deletes the exact matching subscription and reports whether it was
// found. All three fields must match; an empty ticker only matches an empty
// ticker.
func (r *Registry) Remove(scope model.Scope, sub model.Subscription) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.scopes[scope]
	for i, have := range existing {
		if have.Equal(sub) {
			r.scopes[scope] = append(existing[:i:i], existing[i+1:]...)
			return true
		}
	}
	return false
}

// List returns the scope's subscriptions in insertion order.
func (r *Registry) List(scope model.Scope) []model.Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	existing := r.scopes[scope]
	out := make([]model.Subscription, len(existing))
	copy(out, existing)
	return out
}

// Scopes returns a snapshot of every scope with at least one subscription,
// for the matching engine to enumerate per event.
func (r *Registry) Scopes() []ScopeSubscriptions {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ScopeSubscriptions, 0, len(r.order))
	for _, scope := range r.order {
		subs := r.scopes[scope]
		if len(subs) == 0 {
			continue
		}
		copied := make([]model.Subscription, len(subs))
		copy(copied, subs)
		out = append(out, ScopeSubscriptions{Scope: scope, Subscriptions: copied})
	}
	return out
}

// Package keel - override operations for temporary active-set substitution.
//
// Overrides restrict or replace the installed component set without touching
// the record store, which keeps every record ever registered. Pushes and
// restores must balance; both kinds share one stack and are single-writer
// operations meant for setup/teardown phases such as test harness boundaries.
package keel

import (
	"fmt"

	"github.com/go-keel/keel/log"
)

// SetAvailable restricts the installed set to the components whose qualified
// names are listed, preserving installation order. The previous set is pushed
// onto the override stack; UnsetAvailable restores it.
//
// Every requested name must belong to a currently installed component;
// otherwise a SubsetError listing the unknown names is returned and nothing
// changes. This operation never triggers loads.
func (r *Registry) SetAvailable(qualifiedNames ...string) error {
	if err := r.CheckReady(); err != nil {
		return err
	}

	keep := make(map[string]bool, len(qualifiedNames))
	for _, name := range qualifiedNames {
		keep[name] = true
	}

	r.mu.Lock()
	var unknown []string
	for name := range keep {
		if !r.active.hasQualified(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		r.mu.Unlock()
		return &SubsetError{Unknown: unknown}
	}

	r.stored = append(r.stored, r.active)
	r.active = r.active.restrict(keep)
	depth := len(r.stored)
	r.mu.Unlock()

	r.clearCache()
	log.Debugf("registry %s restricted to %d components (override depth %d)", r.id, len(keep), depth)
	return nil
}

// UnsetAvailable cancels a previous SetAvailable, restoring the saved set.
// Returns ErrUnbalancedStack if there is no override to cancel.
func (r *Registry) UnsetAvailable() error {
	return r.popStored(false)
}

// SetInstalled replaces the installed set with a freshly populated one built
// from the given entries. The current set is pushed onto the override stack,
// the registry drops back to not-ready, and the full population protocol runs
// with the new entries.
//
// Unlike SetAvailable this can load new component code and register brand-new
// records; those records persist in the store even after UnsetInstalled.
// Must be balanced with UnsetInstalled, even when it returns an error.
func (r *Registry) SetInstalled(entries ...Entry) error {
	if err := r.CheckReady(); err != nil {
		return err
	}

	r.mu.Lock()
	r.stored = append(r.stored, r.active)
	r.active = newActiveSet()
	r.mu.Unlock()

	r.ready.Store(false)
	r.clearCache()

	log.Debugf("registry %s replacing installed components (%d entries)", r.id, len(entries))
	return r.Populate(entries...)
}

// UnsetInstalled cancels a previous SetInstalled, restoring the saved set and
// forcing the registry back to ready without re-running population. The
// record store already holds everything the restored components registered,
// so no loads are needed; the restored set is not re-validated against the
// store.
func (r *Registry) UnsetInstalled() error {
	return r.popStored(true)
}

// popStored pops the override stack into the active set. forceReady
// additionally restores readiness, which is what the SetInstalled inverse
// needs after the replacement population left ready in an arbitrary state.
func (r *Registry) popStored(forceReady bool) error {
	r.mu.Lock()
	n := len(r.stored)
	if n == 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: no active-set override to cancel", ErrUnbalancedStack)
	}
	r.active = r.stored[n-1]
	r.stored = r.stored[:n-1]
	depth := n - 1
	r.mu.Unlock()

	if forceReady {
		r.ready.Store(true)
	}
	r.clearCache()
	log.Debugf("registry %s restored active set (override depth %d)", r.id, depth)
	return nil
}

// OverrideDepth returns the number of saved active sets on the override
// stack. Zero means no override is in effect.
func (r *Registry) OverrideDepth() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stored)
}

// Package keel provides a process-wide component registry.
//
// This file (registry.go) contains the Registry structure, its population
// protocol, and its query operations.
package keel

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/go-keel/keel/cache"
	"github.com/go-keel/keel/component"
	"github.com/go-keel/keel/loader"
	"github.com/go-keel/keel/log"
)

// Entry identifies one installed component: either a Name resolved through
// the loader, or a pre-built Component descriptor used as-is.
type Entry struct {
	Name      string
	Component component.Component
}

// ByName returns an Entry resolved through the loader during population.
func ByName(name string) Entry {
	return Entry{Name: name}
}

// ByComponent returns an Entry wrapping a pre-built descriptor.
func ByComponent(c component.Component) Entry {
	return Entry{Component: c}
}

// RecordOptions selects which record kinds an aggregate query includes.
// The zero value excludes auto-created, deferred, and swapped records, which
// is what most callers want. The struct is comparable and doubles as the
// memoization key for Records.
type RecordOptions struct {
	// IncludeAutoCreated includes implicitly generated junction records
	IncludeAutoCreated bool

	// IncludeDeferred includes partial proxy records
	IncludeDeferred bool

	// IncludeSwapped includes records marked as replaced by another
	IncludeSwapped bool
}

// match reports whether a record passes the filter.
func (o RecordOptions) match(rec component.Record) bool {
	if rec.AutoCreated() && !o.IncludeAutoCreated {
		return false
	}
	if rec.Deferred() && !o.IncludeDeferred {
		return false
	}
	if rec.Swapped() && !o.IncludeSwapped {
		return false
	}
	return true
}

// Stats is a point-in-time snapshot of registry state, consumed by the
// metrics collector.
type Stats struct {
	ID               string
	Ready            bool
	ActiveComponents int
	StoredRecords    int
	OverrideDepth    int
	CacheHits        uint64
	CacheMisses      uint64
}

// Registry stores the configuration of installed components and the records
// they contribute.
//
// The registry is a shared, long-lived object. Its first population is
// serialized by the process-wide load lock (see the loader package). After
// population completes, query operations are safe for unsynchronized
// concurrent use; mutating operations (RegisterRecord and the override
// operations in override.go) are single-writer and belong in setup or
// teardown phases such as test harness boundaries.
type Registry struct {
	// id is a unique instance identifier used in logs and metric labels
	id string

	// ready flips false -> true exactly once per population cycle.
	// Read lock-free by queries, including mid-population.
	ready atomic.Bool

	// mu guards store, active, and stored below
	mu sync.RWMutex

	// store keeps every record ever registered, independent of activation.
	// Append-only; survives override push/pop cycles.
	store *recordStore

	// active is the ordered set of currently installed components
	active *activeSet

	// stored is the override stack: previously active sets saved by
	// SetAvailable/SetInstalled, restored by their Unset counterparts
	stored []*activeSet

	// queryCache memoizes Records results keyed by RecordOptions.
	// Cleared wholesale at every mutation site.
	queryCache *cache.Memo
}

// New creates an unpopulated registry.
func New() *Registry {
	return &Registry{
		id:         uuid.NewString(),
		store:      newRecordStore(),
		active:     newActiveSet(),
		queryCache: cache.New(cache.DefaultSize),
	}
}

// ID returns the registry's unique instance identifier.
func (r *Registry) ID() string {
	return r.id
}

// Ready reports whether population has completed.
func (r *Registry) Ready() bool {
	return r.ready.Load()
}

// CheckReady returns ErrNotReady if population has not completed.
func (r *Registry) CheckReady() error {
	if !r.ready.Load() {
		return fmt.Errorf("%w; call Populate or keel.Setup first", ErrNotReady)
	}
	return nil
}

// Populate resolves the given entries into component descriptors, installs
// them in order, and loads the records each one contributes.
//
// It is idempotent (a ready registry returns immediately) and safe for
// concurrent first use, but not reentrant: a component whose Load calls back
// into Populate on the same registry gets ErrReentrantPopulate.
//
// On a load or setup failure the registry stays non-ready and keeps every
// record registered so far; there is no rollback, because unwinding load side
// effects is not possible. A later Populate with a corrected entry list is
// accepted and faults with ErrRecordConflict where the retained records
// collide with re-loaded ones.
func (r *Registry) Populate(entries ...Entry) error {
	if r.ready.Load() {
		return nil
	}

	// One process-wide lock, shared with the loader, so that two goroutines
	// populating registries whose components load each other cannot deadlock
	// on two independent locks. The lock may already be held: by another
	// goroutine populating some registry (wait for it), or by this very
	// goroutine via a Load callback re-entering Populate (blocking would
	// deadlock). Mid-population state on this registry disambiguates the two.
	if !loader.TryLockLoading() {
		if err := r.checkReentrant(); err != nil {
			return err
		}
		loader.LockLoading()
	}
	defer loader.UnlockLoading()

	// Double-checked: another goroutine may have finished while we waited.
	if r.ready.Load() {
		return nil
	}
	if err := r.checkReentrant(); err != nil {
		return err
	}

	log.Infof("registry %s populating %d components", r.id, len(entries))

	set := newActiveSet()
	for _, entry := range entries {
		c := entry.Component
		if c == nil {
			resolved, err := loader.Resolve(entry.Name)
			if err != nil {
				return fmt.Errorf("failed to resolve component %q: %w", entry.Name, err)
			}
			c = resolved
		}
		if !set.insert(c) {
			return fmt.Errorf("%w: %q", ErrDuplicateComponent, c.Label())
		}
	}

	// Install the set before loading; HasComponent and RegisteredRecord must
	// work while component code runs, and reentrancy detection relies on the
	// set being visible.
	r.mu.Lock()
	r.active = set
	r.mu.Unlock()

	if err := r.loadComponents(set); err != nil {
		r.abandonPopulation()
		return err
	}

	r.clearCache()
	r.ready.Store(true)

	// Setup runs only after every component is loaded, so components may
	// reference each other's records here.
	for _, c := range set.components() {
		if err := c.Setup(); err != nil {
			r.ready.Store(false)
			r.abandonPopulation()
			return fmt.Errorf("failed to set up component %q: %w", c.Label(), err)
		}
	}

	log.Infof("registry %s ready: %d components, %d records", r.id, set.len(), r.storeSize())
	return nil
}

// loadComponents invokes Load on each descriptor in installation order and
// merges the produced records into the store. The registry's own lock is not
// held across Load calls; component code may call RegisterRecord and the
// loading-safe queries while it runs.
func (r *Registry) loadComponents(set *activeSet) error {
	for _, c := range set.components() {
		recs, err := c.Load()
		if err != nil {
			return fmt.Errorf("failed to load component %q: %w", c.Label(), err)
		}
		for _, rec := range recs {
			if err := r.RegisterRecord(c.Label(), rec); err != nil {
				return err
			}
		}
		log.Debugf("registry %s loaded component %s (%d records)", r.id, c.Label(), len(recs))
	}
	return nil
}

// checkReentrant returns ErrReentrantPopulate if a population is in progress:
// the active set is non-empty but the registry is not ready.
func (r *Registry) checkReentrant() error {
	r.mu.RLock()
	n := r.active.len()
	r.mu.RUnlock()
	if n > 0 {
		return ErrReentrantPopulate
	}
	return nil
}

// abandonPopulation clears the active set after a failed population so that a
// corrected Populate is accepted instead of tripping the reentrancy guard.
// The record store is deliberately left as is.
func (r *Registry) abandonPopulation() {
	r.mu.Lock()
	r.active = newActiveSet()
	r.mu.Unlock()
	r.clearCache()
}

// RegisterRecord adds one record under the given component label.
//
// Callable at any time, even before population completes or for a component
// that is not installed; every record ever registered stays in the store.
// Registering a second record whose lowercased name collides within the same
// label returns a ConflictError. This is a fatal configuration error, not
// user input to recover from.
//
// The method touches only the record store. It must never resolve labels
// through the active set or trigger loads, since it is called from component
// code that is itself mid-load.
func (r *Registry) RegisterRecord(label string, rec component.Record) error {
	r.mu.Lock()
	conflict := r.store.insert(label, rec)
	r.mu.Unlock()
	if conflict != nil {
		return conflict
	}
	r.clearCache()
	return nil
}

// Components returns the installed component descriptors in installation
// order. Returns ErrNotReady before population completes.
func (r *Registry) Components() ([]component.Component, error) {
	if err := r.CheckReady(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active.components(), nil
}

// Component returns the installed component with the given label.
// Returns ErrNotReady before population completes and ErrComponentNotFound
// for labels that are not installed.
func (r *Registry) Component(label string) (component.Component, error) {
	if err := r.CheckReady(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	c, ok := r.active.get(label)
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no installed component with label %q", ErrComponentNotFound, label)
	}
	return c, nil
}

// Records returns the records of all installed components, in component
// installation order and record registration order within each component.
// The filter defaults exclude auto-created, deferred, and swapped records.
//
// Results are memoized per RecordOptions value until the next mutation
// (record registration, override push/pop, repopulation); two identical calls
// between mutations return the same slice.
func (r *Registry) Records(opts RecordOptions) ([]component.Record, error) {
	if err := r.CheckReady(); err != nil {
		return nil, err
	}

	if v, err := r.queryCache.Get(opts); err == nil {
		return v.([]component.Record), nil
	}

	r.mu.RLock()
	result := make([]component.Record, 0)
	for _, c := range r.active.components() {
		for _, rec := range r.store.recordsFor(c.Label()) {
			if opts.match(rec) {
				result = append(result, rec)
			}
		}
	}
	r.mu.RUnlock()

	if err := r.queryCache.Set(opts, result); err != nil {
		log.Warnf("registry %s failed to cache records query: %v", r.id, err)
	}
	return result, nil
}

// ComponentRecords returns the records of one installed component in
// registration order, applying the same filter defaults as Records.
func (r *Registry) ComponentRecords(label string, opts RecordOptions) ([]component.Record, error) {
	if _, err := r.Component(label); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]component.Record, 0)
	for _, rec := range r.store.recordsFor(label) {
		if opts.match(rec) {
			result = append(result, rec)
		}
	}
	return result, nil
}

// Record returns the record matching the given component label and record
// name. The name is matched case-insensitively. The registry must be ready
// and the component installed; use RegisteredRecord for lookups during
// loading.
func (r *Registry) Record(label, name string) (component.Record, error) {
	if err := r.CheckReady(); err != nil {
		return nil, err
	}
	if _, err := r.Component(label); err != nil {
		return nil, err
	}
	r.mu.RLock()
	rec, ok := r.store.get(label, name)
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: record %q isn't registered in component %q", ErrRecordNotFound, name, label)
	}
	return rec, nil
}

// RegisteredRecord is like Record but operates directly on the record store,
// ignoring whether the component is installed or the registry is ready.
// It is the safe lookup to use from component code during loading.
func (r *Registry) RegisteredRecord(label, name string) (component.Record, error) {
	r.mu.RLock()
	rec, ok := r.store.get(label, name)
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: record %q isn't registered in component %q", ErrRecordNotFound, name, label)
	}
	return rec, nil
}

// HasComponent reports whether a component with the given qualified name is
// installed. It is safe to call at any time, including while the registry is
// being populated, and returns false rather than an error for unpopulated
// registries.
func (r *Registry) HasComponent(qualifiedName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active.hasQualified(qualifiedName)
}

// ClearCache clears the memoized query results. Mutating operations call it
// internally; it is exported for tests that mutate records directly.
func (r *Registry) ClearCache() {
	r.clearCache()
}

func (r *Registry) clearCache() {
	r.queryCache.Purge()
}

// Stats returns a snapshot of registry state for the metrics collector.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{
		ID:               r.id,
		Ready:            r.ready.Load(),
		ActiveComponents: r.active.len(),
		StoredRecords:    r.store.size(),
		OverrideDepth:    len(r.stored),
		CacheHits:        r.queryCache.HitCount(),
		CacheMisses:      r.queryCache.MissCount(),
	}
}

func (r *Registry) storeSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.size()
}

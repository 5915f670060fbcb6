package component

import (
	"sync"

	"github.com/go-kratos/kratos/v2/config"
)

// Base provides a reusable Component implementation. Component authors embed
// it (or use it directly) and supply the record-producing and setup functions
// at construction time.
//
// Identity fields are fixed at construction. The record list is a lazily
// populated derived field: Load runs the records function at most once and
// caches the result for later access through Records.
type Base struct {
	// Basic component metadata
	label         string // Short unique identifier
	qualifiedName string // Full identifier, may differ from label

	// recordsFn produces the component's records; nil means the component
	// contributes no records.
	recordsFn func() ([]Record, error)

	// setupFn runs after all installed components have been loaded;
	// nil means no setup work.
	setupFn func() error

	// Lazily populated state
	loadOnce sync.Once
	records  []Record
	loadErr  error
	loaded   bool

	// Component-specific configuration, set through Configure
	mu  sync.RWMutex
	cfg config.Config
}

// Option configures a Base during construction.
type Option func(*Base)

// WithRecords sets the function that produces the component's records.
func WithRecords(fn func() ([]Record, error)) Option {
	return func(b *Base) {
		b.recordsFn = fn
	}
}

// WithSetup sets the post-load setup hook.
func WithSetup(fn func() error) Option {
	return func(b *Base) {
		b.setupFn = fn
	}
}

// NewBase creates a new Base descriptor with the provided identity.
// An empty qualifiedName defaults to the label.
func NewBase(label, qualifiedName string, opts ...Option) *Base {
	if qualifiedName == "" {
		qualifiedName = label
	}
	b := &Base{
		label:         label,
		qualifiedName: qualifiedName,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Label returns the component's short unique identifier.
func (b *Base) Label() string {
	return b.label
}

// QualifiedName returns the component's full identifier.
func (b *Base) QualifiedName() string {
	return b.qualifiedName
}

// Load runs the records function at most once and caches the produced
// records. A second call returns ErrAlreadyLoaded; re-executing load side
// effects is unsafe.
func (b *Base) Load() ([]Record, error) {
	ran := false
	b.loadOnce.Do(func() {
		ran = true
		b.loaded = true
		if b.recordsFn == nil {
			return
		}
		b.records, b.loadErr = b.recordsFn()
	})
	if !ran {
		return nil, NewError(b.label, "load", ErrAlreadyLoaded)
	}
	if b.loadErr != nil {
		return nil, NewError(b.label, "load", b.loadErr)
	}
	return b.records, nil
}

// Loaded reports whether Load has run.
func (b *Base) Loaded() bool {
	return b.loaded
}

// Records returns the cached record list produced by Load, in production
// order. It returns nil if the component has not been loaded yet.
func (b *Base) Records() []Record {
	if !b.loaded || b.loadErr != nil {
		return nil
	}
	return b.records
}

// Setup runs the configured setup hook, if any.
func (b *Base) Setup() error {
	if b.setupFn == nil {
		return nil
	}
	if err := b.setupFn(); err != nil {
		return NewError(b.label, "setup", err)
	}
	return nil
}

// Configure stores the component's configuration.
// Satisfies the Configurable interface.
func (b *Base) Configure(cfg config.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg = cfg
	return nil
}

// Config returns the configuration applied through Configure, or nil.
func (b *Base) Config() config.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cfg
}

// BaseRecord provides a reusable Record implementation carrying plain
// metadata fields.
type BaseRecord struct {
	Name        string // Record name, matched case-insensitively
	Component   string // Label of the owning component
	Auto        bool   // Implicitly generated junction record
	DeferredRec bool   // Partial proxy record
	SwappedOut  bool   // Replaced by another record
}

// RecordName returns the record's name.
func (r *BaseRecord) RecordName() string { return r.Name }

// ComponentLabel returns the label of the owning component.
func (r *BaseRecord) ComponentLabel() string { return r.Component }

// AutoCreated reports whether the record was generated implicitly.
func (r *BaseRecord) AutoCreated() bool { return r.Auto }

// Deferred reports whether the record is a partial proxy.
func (r *BaseRecord) Deferred() bool { return r.DeferredRec }

// Swapped reports whether the record has been replaced by another.
func (r *BaseRecord) Swapped() bool { return r.SwappedOut }

// Package component defines the contracts between the keel registry and the
// pluggable components it manages.
//
// A Component is the descriptor for one installed unit: it carries stable
// identity (label and qualified name), knows how to load the records it
// contributes, and exposes a post-load setup hook. Base and BaseRecord are
// embeddable default implementations for component authors.
package component

import (
	"github.com/go-kratos/kratos/v2/config"
)

// Component is the descriptor interface every installed component implements.
// Descriptors are constructed once (by the loader or by the caller) and are
// immutable afterwards except for lazily populated derived state such as the
// cached record list.
type Component interface {
	// Label returns the short unique identifier of the component.
	// Labels must be unique within the set of installed components.
	Label() string

	// QualifiedName returns the full identifier of the component.
	// It may differ from the label, e.g. "acme/billing" vs "billing".
	QualifiedName() string

	// Load produces the records contributed by this component.
	// It may have side effects and is called at most once per descriptor
	// instance; the registry invokes it during population.
	Load() ([]Record, error)

	// Setup runs after every installed component has been loaded, in
	// installation order. Components may look up each other's records here.
	Setup() error
}

// Configurable is an optional interface for components that accept
// configuration. The boot layer scans the component's registered config
// prefix out of the bootstrap configuration and hands it over before
// population.
type Configurable interface {
	// Configure applies the given configuration to the component.
	Configure(cfg config.Config) error
}

// Record is a typed data-definition entity contributed by a component.
// A record belongs to exactly one component and is identified within it by a
// case-insensitive name.
type Record interface {
	// RecordName returns the record's name. Lookups normalize names to
	// lower case, so "Widget" and "widget" address the same record.
	RecordName() string

	// ComponentLabel returns the label of the owning component.
	ComponentLabel() string

	// AutoCreated reports whether the record was generated implicitly,
	// e.g. a junction record backing a many-to-many relation.
	AutoCreated() bool

	// Deferred reports whether the record is a partial proxy created to
	// satisfy partial-field queries.
	Deferred() bool

	// Swapped reports whether the record has been replaced by another and
	// should normally be hidden from aggregate queries.
	Swapped() bool
}

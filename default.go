package keel

import (
	"sync"
)

// Process-wide default registry.
// Constructed unpopulated on first access and populated exactly once through
// Setup; it stays populated for the process lifetime except while temporarily
// overridden.
var (
	defaultRegistry *Registry
	defaultMu       sync.RWMutex
)

// Default returns the process-wide registry instance, constructing it
// unpopulated on first use.
func Default() *Registry {
	defaultMu.RLock()
	r := defaultRegistry
	defaultMu.RUnlock()
	if r != nil {
		return r
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = New()
	}
	return defaultRegistry
}

// Setup populates the process-wide registry with the given ordered entries.
// It is the explicit initialization entry point: call it once during process
// startup before issuing queries. Calling it again after a successful setup
// is a no-op, per the population idempotence contract.
func Setup(entries ...Entry) error {
	return Default().Populate(entries...)
}

// ResetDefault discards the process-wide registry so the next Default call
// builds a fresh one. Intended for test teardown only; concurrent users of
// the old instance keep whatever reference they already hold.
func ResetDefault() {
	defaultMu.Lock()
	defaultRegistry = nil
	defaultMu.Unlock()
}

// Package loader resolves component names to descriptor instances.
//
// Components register a creator function under their name, typically from an
// init function in the component's package. The registry resolves each entry
// of the installed list through Resolve during population.
//
// The package also owns the process-wide load lock. Population and component
// loading share this single lock so that two goroutines populating registries
// whose components cross-reference each other cannot deadlock on two
// independent locks; see LockLoading.
package loader

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-keel/keel/component"
)

// ErrUnknownComponent indicates that a name could not be resolved to a
// registered component creator.
var ErrUnknownComponent = errors.New("unknown component")

// UnknownComponentError carries the unresolved name for diagnostics.
type UnknownComponentError struct {
	// Name is the identifier that could not be resolved
	Name string
}

// Error implements the error interface.
func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("unknown component: no creator registered for %q", e.Name)
}

// Unwrap returns ErrUnknownComponent so callers can match with errors.Is.
func (e *UnknownComponentError) Unwrap() error {
	return ErrUnknownComponent
}

var (
	// loadMu is the single process-wide load lock. It guards the
	// first-population critical section of every registry in the process.
	// Deliberately one lock, not one per registry: with per-registry locks,
	// two goroutines populating two registries whose components load each
	// other's code could acquire the locks in opposite orders and deadlock.
	loadMu sync.Mutex

	// mu protects the creator and prefix tables
	mu sync.RWMutex
	// creators maps component names to their creation functions
	creators = make(map[string]func() component.Component)
	// configPrefixes maps component names to their config prefixes
	configPrefixes = make(map[string]string)
)

// LockLoading acquires the process-wide load lock.
// Must be balanced with UnlockLoading.
func LockLoading() {
	loadMu.Lock()
}

// TryLockLoading attempts to acquire the process-wide load lock without
// blocking and reports whether it succeeded. The registry uses it to tell a
// blocked concurrent population apart from a reentrant one: a goroutine that
// already holds the lock must never block on it again.
func TryLockLoading() bool {
	return loadMu.TryLock()
}

// UnlockLoading releases the process-wide load lock.
func UnlockLoading() {
	loadMu.Unlock()
}

// Register registers a component creator under the given name, together with
// the configuration prefix the boot layer uses to locate the component's
// config section. Panics if a creator with the same name is already
// registered; duplicate registration is a programming error surfaced at
// startup.
func Register(name string, configPrefix string, creator func() component.Component) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := creators[name]; exists {
		panic(fmt.Errorf("component already registered: %s", name))
	}
	if creator == nil {
		panic(fmt.Errorf("component %s registered with nil creator", name))
	}

	creators[name] = creator
	if configPrefix != "" {
		configPrefixes[name] = configPrefix
	}
}

// Unregister removes a component creator. Intended for test teardown.
func Unregister(name string) {
	mu.Lock()
	defer mu.Unlock()
	delete(creators, name)
	delete(configPrefixes, name)
}

// Resolve creates a descriptor instance for the given component name.
// Returns an UnknownComponentError if no creator is registered.
func Resolve(name string) (component.Component, error) {
	mu.RLock()
	creator, exists := creators[name]
	mu.RUnlock()

	if !exists {
		return nil, &UnknownComponentError{Name: name}
	}
	return creator(), nil
}

// Registered reports whether a creator is registered under the given name.
func Registered(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, exists := creators[name]
	return exists
}

// ConfigPrefix returns the configuration prefix registered for the component,
// or the empty string if none was supplied.
func ConfigPrefix(name string) string {
	mu.RLock()
	defer mu.RUnlock()
	return configPrefixes[name]
}

// Names returns the registered component names. Order is unspecified.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(creators))
	for name := range creators {
		names = append(names, name)
	}
	return names
}

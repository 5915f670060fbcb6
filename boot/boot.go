// Package boot wires configuration, logging, and the loader into a populated
// registry. It is the recommended process startup path:
//
//	cfg, err := boot.LoadConfig("configs/keel.yaml")
//	// handle err
//	reg, err := boot.Init(cfg)
package boot

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"

	"github.com/go-keel/keel"
	"github.com/go-keel/keel/component"
	"github.com/go-keel/keel/loader"
	"github.com/go-keel/keel/log"
	"github.com/go-keel/keel/metrics"
)

// Option customizes Init.
type Option func(*options)

type options struct {
	registry      *keel.Registry
	enableMetrics bool
}

// WithRegistry populates the given registry instead of the process-wide
// default. Used by tests and by processes running multiple registries.
func WithRegistry(r *keel.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithMetrics registers a Prometheus collector for the populated registry.
func WithMetrics() Option {
	return func(o *options) {
		o.enableMetrics = true
	}
}

// LoadConfig loads the bootstrap configuration from a file or directory path.
func LoadConfig(path string) (config.Config, error) {
	c := config.New(
		config.WithSource(file.NewSource(path)),
	)
	if err := c.Load(); err != nil {
		return nil, fmt.Errorf("failed to load bootstrap configuration from %s: %w", path, err)
	}
	return c, nil
}

// Init initializes logging from the bootstrap configuration, resolves the
// installed component list, applies per-component configuration, and
// populates the registry. Returns the populated registry.
func Init(cfg config.Config, opts ...Option) (*keel.Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	registry := o.registry
	if registry == nil {
		registry = keel.Default()
	}

	var bc Bootstrap
	if err := cfg.Scan(&bc); err != nil {
		return nil, fmt.Errorf("failed to parse bootstrap configuration: %w", err)
	}
	if bc.Keel == nil {
		return nil, fmt.Errorf("invalid bootstrap configuration: missing keel section")
	}

	initLogger(bc.Keel.Log)

	st := time.Now()
	appName := ""
	if bc.Keel.Application != nil {
		appName = bc.Keel.Application.Name
	}
	log.Infof("keel registry is starting up (application=%s)", appName)

	names := bc.Keel.Components
	if len(names) == 0 {
		names = discoverComponents(cfg)
		log.Infof("no component list configured, discovered %d components from configuration", len(names))
	}

	entries := make([]keel.Entry, 0, len(names))
	for _, name := range names {
		c, err := loader.Resolve(name)
		if err != nil {
			return nil, err
		}
		if configurable, ok := c.(component.Configurable); ok {
			if err := configurable.Configure(cfg); err != nil {
				return nil, fmt.Errorf("failed to configure component %q: %w", name, err)
			}
		}
		entries = append(entries, keel.ByComponent(c))
	}

	if err := registry.Populate(entries...); err != nil {
		return nil, err
	}

	if o.enableMetrics {
		collector := metrics.NewRegistryCollector(registry.ID(), func() metrics.Stats {
			s := registry.Stats()
			return metrics.Stats{
				ID:               s.ID,
				Ready:            s.Ready,
				ActiveComponents: s.ActiveComponents,
				StoredRecords:    s.StoredRecords,
				OverrideDepth:    s.OverrideDepth,
				CacheHits:        s.CacheHits,
				CacheMisses:      s.CacheMisses,
			}
		})
		if err := metrics.RegisterCollector(collector); err != nil {
			log.Warnf("failed to register registry metrics collector: %v", err)
		}
	}

	elapsed := time.Since(st).Milliseconds()
	log.Infof("keel registry started successfully, elapsed time: %v ms", elapsed)
	return registry, nil
}

// discoverComponents returns the registered component names whose config
// prefix has a section present in the configuration, sorted by name for a
// stable installation order.
func discoverComponents(cfg config.Config) []string {
	var names []string
	for _, name := range loader.Names() {
		prefix := loader.ConfigPrefix(name)
		if prefix == "" {
			continue
		}
		var section map[string]any
		if err := cfg.Value(prefix).Scan(&section); err != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// initLogger installs the zerolog-backed logger and applies the configured
// level.
func initLogger(lc *Log) {
	log.InitDefault()
	if lc == nil {
		return
	}
	switch lc.Level {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "", "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.Warnf("unknown log level %q, using info", lc.Level)
		log.SetLevel(log.InfoLevel)
	}
}

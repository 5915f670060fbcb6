// Package keel provides a process-wide registry of pluggable components and
// the typed records they contribute.
//
// A component is a unit of the system identified by a short label and a full
// qualified name. During population the registry resolves an ordered list of
// component entries, loads each component's records, and exposes a read-only
// cached view of the composed system. The record store is append-only for the
// process lifetime; the active component set can be temporarily overridden
// through a balanced push/restore stack (see override.go), which is how test
// harnesses isolate themselves without losing registered records.
//
// # File Organization
//
// The root package contains the following files:
//
//   - registry.go: Registry core structure, population protocol, and queries
//   - store.go: append-only record store
//   - active.go: ordered active component set
//   - override.go: active-set override stack operations
//   - errors.go: fault taxonomy for registry operations
//   - default.go: process-wide default registry and Setup entry point
//
// # Quick Start
//
// Basic usage:
//
//	package main
//
//	import (
//	    "github.com/go-keel/keel"
//	    "github.com/go-keel/keel/boot"
//	)
//
//	func main() {
//	    cfg, err := boot.LoadConfig("configs/keel.yaml")
//	    if err != nil {
//	        panic(err)
//	    }
//	    reg, err := boot.Init(cfg)
//	    if err != nil {
//	        panic(err)
//	    }
//	    recs, err := reg.Records(keel.RecordOptions{})
//	    // ...
//	    _ = recs
//	    _ = err
//	}
//
// Components register a creator with the loader, typically from init:
//
//	func init() {
//	    loader.Register("billing", "billing", func() component.Component {
//	        return component.NewBase("billing", "acme/billing",
//	            component.WithRecords(loadBillingRecords))
//	    })
//	}
package keel

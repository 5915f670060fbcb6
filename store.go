package keel

import (
	"strings"

	"github.com/go-keel/keel/component"
)

// recordStore is the two-level component-label -> record-name -> record
// mapping. Record names are lowercased on insert and lookup.
//
// The store is append-only for the lifetime of the process: once a
// (label, name) pair is registered it is never removed or overwritten, even
// when the owning component drops out of the active set. Records are produced
// as side effects of loading component code, and re-running a load to rebuild
// them is unsafe, so the store keeps history independent of activation.
type recordStore struct {
	byLabel map[string]*recordSet
}

// recordSet holds one component's records in registration order.
type recordSet struct {
	order  []string
	byName map[string]component.Record
}

func newRecordStore() *recordStore {
	return &recordStore{
		byLabel: make(map[string]*recordSet),
	}
}

// insert adds a record under the given component label.
// Returns a ConflictError if the lowercased name is already taken.
func (rs *recordStore) insert(label string, rec component.Record) *ConflictError {
	name := strings.ToLower(rec.RecordName())
	set := rs.byLabel[label]
	if set == nil {
		set = &recordSet{byName: make(map[string]component.Record)}
		rs.byLabel[label] = set
	}
	if existing, exists := set.byName[name]; exists {
		return &ConflictError{
			Label:    label,
			Name:     name,
			Existing: existing,
			Incoming: rec,
		}
	}
	set.order = append(set.order, name)
	set.byName[name] = rec
	return nil
}

// get returns the record registered under (label, name); name matching is
// case-insensitive.
func (rs *recordStore) get(label, name string) (component.Record, bool) {
	set := rs.byLabel[label]
	if set == nil {
		return nil, false
	}
	rec, ok := set.byName[strings.ToLower(name)]
	return rec, ok
}

// recordsFor returns the records of one component in registration order.
func (rs *recordStore) recordsFor(label string) []component.Record {
	set := rs.byLabel[label]
	if set == nil {
		return nil
	}
	out := make([]component.Record, 0, len(set.order))
	for _, name := range set.order {
		out = append(out, set.byName[name])
	}
	return out
}

// size returns the total number of stored records across all labels.
func (rs *recordStore) size() int {
	n := 0
	for _, set := range rs.byLabel {
		n += len(set.order)
	}
	return n
}

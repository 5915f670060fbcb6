package keel

import (
	"errors"
	"testing"

	"github.com/go-keel/keel/component"
)

func newOverrideRegistry(t *testing.T) *Registry {
	t.Helper()
	r := New()
	mustPopulate(t, r,
		ByComponent(newTestComponent("alpha", "acme/alpha", newTestRecord("alpha", "A1"))),
		ByComponent(newTestComponent("bravo", "acme/bravo", newTestRecord("bravo", "B1"))),
	)
	return r
}

func TestSetAvailable_RestrictAndRestore(t *testing.T) {
	r := newOverrideRegistry(t)

	if err := r.SetAvailable("acme/alpha"); err != nil {
		t.Fatalf("SetAvailable failed: %v", err)
	}
	if got := componentLabels(t, r); len(got) != 1 || got[0] != "alpha" {
		t.Errorf("expected restricted set [alpha], got %v", got)
	}
	if r.HasComponent("acme/bravo") {
		t.Error("bravo should be inactive while restricted")
	}
	if _, err := r.Record("bravo", "b1"); !errors.Is(err, ErrComponentNotFound) {
		t.Errorf("record of an inactive component: expected ErrComponentNotFound, got %v", err)
	}
	// The store still holds bravo's records.
	if _, err := r.RegisteredRecord("bravo", "b1"); err != nil {
		t.Errorf("store lookup should survive the restriction: %v", err)
	}
	if r.OverrideDepth() != 1 {
		t.Errorf("expected override depth 1, got %d", r.OverrideDepth())
	}

	if err := r.UnsetAvailable(); err != nil {
		t.Fatalf("UnsetAvailable failed: %v", err)
	}
	if got := componentLabels(t, r); len(got) != 2 || got[0] != "alpha" || got[1] != "bravo" {
		t.Errorf("expected restored set [alpha bravo], got %v", got)
	}
	if r.OverrideDepth() != 0 {
		t.Errorf("expected override depth 0 after restore, got %d", r.OverrideDepth())
	}
}

func TestSetAvailable_OrderPreserved(t *testing.T) {
	r := newOverrideRegistry(t)

	// Request order must not matter; installation order wins.
	if err := r.SetAvailable("acme/bravo", "acme/alpha"); err != nil {
		t.Fatalf("SetAvailable failed: %v", err)
	}
	got := componentLabels(t, r)
	if len(got) != 2 || got[0] != "alpha" || got[1] != "bravo" {
		t.Errorf("expected installation order [alpha bravo], got %v", got)
	}
}

func TestSetAvailable_UnknownName(t *testing.T) {
	r := newOverrideRegistry(t)

	err := r.SetAvailable("acme/alpha", "acme/ghost")
	if !errors.Is(err, ErrInvalidSubset) {
		t.Fatalf("expected ErrInvalidSubset, got %v", err)
	}
	var subset *SubsetError
	if !errors.As(err, &subset) {
		t.Fatalf("expected *SubsetError, got %T", err)
	}
	if len(subset.Unknown) != 1 || subset.Unknown[0] != "acme/ghost" {
		t.Errorf("expected unknown [acme/ghost], got %v", subset.Unknown)
	}
	// Nothing changed.
	if r.OverrideDepth() != 0 {
		t.Error("a rejected restriction must not push the stack")
	}
	if got := componentLabels(t, r); len(got) != 2 {
		t.Errorf("active set must be untouched, got %v", got)
	}
}

func TestSetAvailable_NotReady(t *testing.T) {
	r := New()
	if err := r.SetAvailable("acme/alpha"); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady, got %v", err)
	}
}

func TestUnsetAvailable_Unbalanced(t *testing.T) {
	r := newOverrideRegistry(t)
	if err := r.UnsetAvailable(); !errors.Is(err, ErrUnbalancedStack) {
		t.Errorf("expected ErrUnbalancedStack, got %v", err)
	}
	if err := r.UnsetInstalled(); !errors.Is(err, ErrUnbalancedStack) {
		t.Errorf("expected ErrUnbalancedStack, got %v", err)
	}
}

func TestSetInstalled_ReplaceAndRestore(t *testing.T) {
	r := newOverrideRegistry(t)

	charlie := newTestComponent("charlie", "acme/charlie", newTestRecord("charlie", "C1"))
	if err := r.SetInstalled(ByComponent(charlie)); err != nil {
		t.Fatalf("SetInstalled failed: %v", err)
	}
	if got := componentLabels(t, r); len(got) != 1 || got[0] != "charlie" {
		t.Errorf("expected replacement set [charlie], got %v", got)
	}
	if _, err := r.Record("charlie", "c1"); err != nil {
		t.Errorf("replacement record lookup failed: %v", err)
	}

	if err := r.UnsetInstalled(); err != nil {
		t.Fatalf("UnsetInstalled failed: %v", err)
	}
	if !r.Ready() {
		t.Fatal("UnsetInstalled must restore readiness")
	}
	if got := componentLabels(t, r); len(got) != 2 || got[0] != "alpha" || got[1] != "bravo" {
		t.Errorf("expected restored set [alpha bravo], got %v", got)
	}

	// Records registered during the replacement persist in the store.
	if _, err := r.RegisteredRecord("charlie", "c1"); err != nil {
		t.Errorf("replacement-era record should persist after restore: %v", err)
	}
	// But charlie is no longer installed.
	if _, err := r.Component("charlie"); !errors.Is(err, ErrComponentNotFound) {
		t.Errorf("expected ErrComponentNotFound for charlie, got %v", err)
	}
}

func TestSetInstalled_RequiresReady(t *testing.T) {
	r := New()
	if err := r.SetInstalled(ByComponent(newTestComponent("alpha", "acme/alpha"))); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady, got %v", err)
	}
}

func TestSetInstalled_FailureStillBalanced(t *testing.T) {
	r := newOverrideRegistry(t)

	boom := errors.New("boom")
	broken := component.NewBase("broken", "acme/broken", component.WithRecords(func() ([]component.Record, error) {
		return nil, boom
	}))
	if err := r.SetInstalled(ByComponent(broken)); !errors.Is(err, boom) {
		t.Fatalf("expected replacement load failure, got %v", err)
	}
	if r.Ready() {
		t.Error("registry must not be ready after a failed replacement")
	}

	// The failed replacement still pushed the stack; callers unwind it.
	if r.OverrideDepth() != 1 {
		t.Fatalf("expected override depth 1, got %d", r.OverrideDepth())
	}
	if err := r.UnsetInstalled(); err != nil {
		t.Fatalf("UnsetInstalled failed: %v", err)
	}
	if !r.Ready() {
		t.Error("restore must recover readiness")
	}
	if got := componentLabels(t, r); len(got) != 2 {
		t.Errorf("expected the original two components back, got %v", got)
	}
}

func TestOverrides_Nested(t *testing.T) {
	r := newOverrideRegistry(t)

	if err := r.SetAvailable("acme/alpha", "acme/bravo"); err != nil {
		t.Fatal(err)
	}
	if err := r.SetAvailable("acme/alpha"); err != nil {
		t.Fatal(err)
	}
	if r.OverrideDepth() != 2 {
		t.Fatalf("expected depth 2, got %d", r.OverrideDepth())
	}
	if got := componentLabels(t, r); len(got) != 1 || got[0] != "alpha" {
		t.Errorf("inner restriction should leave [alpha], got %v", got)
	}

	if err := r.UnsetAvailable(); err != nil {
		t.Fatal(err)
	}
	if got := componentLabels(t, r); len(got) != 2 {
		t.Errorf("expected the outer restriction back, got %v", got)
	}
	if err := r.UnsetAvailable(); err != nil {
		t.Fatal(err)
	}
	if r.OverrideDepth() != 0 {
		t.Errorf("expected empty stack, got depth %d", r.OverrideDepth())
	}
}

func TestOverrides_InvalidateQueryCache(t *testing.T) {
	r := newOverrideRegistry(t)

	before, err := r.Records(RecordOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(before) != 2 {
		t.Fatalf("expected 2 records, got %d", len(before))
	}

	if err := r.SetAvailable("acme/alpha"); err != nil {
		t.Fatal(err)
	}
	during, err := r.Records(RecordOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(during) != 1 || during[0].RecordName() != "A1" {
		t.Errorf("restriction must be visible through Records, got %d records", len(during))
	}

	if err := r.UnsetAvailable(); err != nil {
		t.Fatal(err)
	}
	after, err := r.Records(RecordOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != 2 {
		t.Errorf("restore must be visible through Records, got %d records", len(after))
	}
}

func TestSetInstalled_ReusesStoredRecordsOnRestore(t *testing.T) {
	r := newOverrideRegistry(t)

	if err := r.SetInstalled(); err != nil {
		t.Fatalf("empty replacement failed: %v", err)
	}
	if got := componentLabels(t, r); len(got) != 0 {
		t.Errorf("expected an empty active set, got %v", got)
	}
	if err := r.UnsetInstalled(); err != nil {
		t.Fatal(err)
	}
	// Restoration takes no loads: the original descriptors were already
	// loaded once and would refuse a second Load.
	if _, err := r.Record("alpha", "a1"); err != nil {
		t.Errorf("restored record lookup failed: %v", err)
	}
}

package loader

import (
	"errors"
	"sort"
	"testing"

	"github.com/go-keel/keel/component"
)

func testCreator(label string) func() component.Component {
	return func() component.Component {
		return component.NewBase(label, "acme/"+label)
	}
}

func TestRegisterAndResolve(t *testing.T) {
	Register("loader_test_alpha", "alpha", testCreator("loader_test_alpha"))
	defer Unregister("loader_test_alpha")

	if !Registered("loader_test_alpha") {
		t.Fatal("expected component to be registered")
	}
	c, err := Resolve("loader_test_alpha")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if c.Label() != "loader_test_alpha" {
		t.Errorf("expected label loader_test_alpha, got %q", c.Label())
	}
	if ConfigPrefix("loader_test_alpha") != "alpha" {
		t.Errorf("expected config prefix alpha, got %q", ConfigPrefix("loader_test_alpha"))
	}
}

func TestResolve_Unknown(t *testing.T) {
	_, err := Resolve("loader_test_ghost")
	if !errors.Is(err, ErrUnknownComponent) {
		t.Fatalf("expected ErrUnknownComponent, got %v", err)
	}
	var uerr *UnknownComponentError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected *UnknownComponentError, got %T", err)
	}
	if uerr.Name != "loader_test_ghost" {
		t.Errorf("error carries name %q, expected loader_test_ghost", uerr.Name)
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	Register("loader_test_dup", "", testCreator("loader_test_dup"))
	defer Unregister("loader_test_dup")

	defer func() {
		if recover() == nil {
			t.Error("expected duplicate registration to panic")
		}
	}()
	Register("loader_test_dup", "", testCreator("loader_test_dup"))
}

func TestRegister_NilCreatorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected nil creator registration to panic")
		}
	}()
	Register("loader_test_nil", "", nil)
}

func TestUnregister(t *testing.T) {
	Register("loader_test_gone", "", testCreator("loader_test_gone"))
	Unregister("loader_test_gone")
	if Registered("loader_test_gone") {
		t.Error("component should be gone after Unregister")
	}
	// Unregistering an unknown name is a no-op.
	Unregister("loader_test_gone")
}

func TestNames(t *testing.T) {
	Register("loader_test_n1", "", testCreator("loader_test_n1"))
	Register("loader_test_n2", "", testCreator("loader_test_n2"))
	defer Unregister("loader_test_n1")
	defer Unregister("loader_test_n2")

	names := Names()
	sort.Strings(names)
	found := 0
	for _, name := range names {
		if name == "loader_test_n1" || name == "loader_test_n2" {
			found++
		}
	}
	if found != 2 {
		t.Errorf("expected both registered names in %v", names)
	}
}

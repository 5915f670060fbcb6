package boot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kratos/kratos/v2/config"

	"github.com/go-keel/keel"
	"github.com/go-keel/keel/component"
	"github.com/go-keel/keel/loader"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keel.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config failed: %v", err)
	}
	return path
}

func loadConfig(t *testing.T, content string) config.Config {
	t.Helper()
	cfg, err := LoadConfig(writeConfig(t, content))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	t.Cleanup(func() { cfg.Close() })
	return cfg
}

func registerComponent(t *testing.T, name, prefix string) {
	t.Helper()
	loader.Register(name, prefix, func() component.Component {
		return component.NewBase(name, "acme/"+name, component.WithRecords(func() ([]component.Record, error) {
			return []component.Record{&component.BaseRecord{Name: name + "Rec", Component: name}}, nil
		}))
	})
	t.Cleanup(func() { loader.Unregister(name) })
}

func TestInit_ExplicitComponentList(t *testing.T) {
	registerComponent(t, "boot_test_alpha", "")
	registerComponent(t, "boot_test_bravo", "")

	cfg := loadConfig(t, `
keel:
  application:
    name: boot-test
    version: v0.0.1
  log:
    level: error
  components:
    - boot_test_bravo
    - boot_test_alpha
`)

	reg, err := Init(cfg, WithRegistry(keel.New()))
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if !reg.Ready() {
		t.Fatal("registry should be ready after Init")
	}

	comps, err := reg.Components()
	if err != nil {
		t.Fatal(err)
	}
	if len(comps) != 2 || comps[0].Label() != "boot_test_bravo" || comps[1].Label() != "boot_test_alpha" {
		t.Errorf("configured order must be preserved, got %d components", len(comps))
	}
	if _, err := reg.Record("boot_test_alpha", "boot_test_alphaRec"); err != nil {
		t.Errorf("record lookup after boot failed: %v", err)
	}
}

func TestInit_DiscoversComponentsFromConfig(t *testing.T) {
	registerComponent(t, "boot_test_db", "database")
	registerComponent(t, "boot_test_mq", "queue")
	registerComponent(t, "boot_test_off", "disabled_section")

	cfg := loadConfig(t, `
keel:
  log:
    level: error
database:
  dsn: localhost
queue:
  broker: localhost
`)

	reg, err := Init(cfg, WithRegistry(keel.New()))
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	comps, err := reg.Components()
	if err != nil {
		t.Fatal(err)
	}
	// Discovery installs only components whose config section is present,
	// sorted by name.
	if len(comps) != 2 || comps[0].Label() != "boot_test_db" || comps[1].Label() != "boot_test_mq" {
		labels := make([]string, 0, len(comps))
		for _, c := range comps {
			labels = append(labels, c.Label())
		}
		t.Errorf("expected [boot_test_db boot_test_mq], got %v", labels)
	}
}

func TestInit_ConfiguresConfigurableComponents(t *testing.T) {
	var received config.Config
	loader.Register("boot_test_cfg", "", func() component.Component {
		b := component.NewBase("boot_test_cfg", "acme/cfg")
		return &configProbe{Base: b, sink: &received}
	})
	t.Cleanup(func() { loader.Unregister("boot_test_cfg") })

	cfg := loadConfig(t, `
keel:
  log:
    level: error
  components:
    - boot_test_cfg
`)

	if _, err := Init(cfg, WithRegistry(keel.New())); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if received == nil {
		t.Error("configurable component should receive the bootstrap configuration")
	}
}

// configProbe records the configuration handed to Configure.
type configProbe struct {
	*component.Base
	sink *config.Config
}

func (p *configProbe) Configure(cfg config.Config) error {
	*p.sink = cfg
	return p.Base.Configure(cfg)
}

func TestInit_UnknownComponent(t *testing.T) {
	cfg := loadConfig(t, `
keel:
  log:
    level: error
  components:
    - boot_test_missing
`)

	_, err := Init(cfg, WithRegistry(keel.New()))
	if !errors.Is(err, loader.ErrUnknownComponent) {
		t.Fatalf("expected ErrUnknownComponent, got %v", err)
	}
}

func TestInit_NilAndInvalidConfig(t *testing.T) {
	if _, err := Init(nil); err == nil {
		t.Error("expected an error for nil configuration")
	}

	cfg := loadConfig(t, `
other:
  section: true
`)
	if _, err := Init(cfg, WithRegistry(keel.New())); err == nil {
		t.Error("expected an error for configuration without a keel section")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing configuration file")
	}
}

package fleet

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	f, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if len(f.List()) == 0 {
		t.Fatal("built-in fleet is empty")
	}
	p, found := f.Get("feeder")
	if !found {
		t.Fatal("no 'feeder' preset in the built-in fleet")
	}
	if p.Ship().TurningRadius != 300 {
		t.Errorf("feeder turning radius = %f; want 300", p.Ship().TurningRadius)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.yaml")
	content := `
- name: barge
  length: 60
  beam: 11
  turningRadius: 120
- name: broken
  length: 0
  beam: 5
  turningRadius: 50
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if _, found := f.Get("barge"); !found {
		t.Error("barge preset not loaded")
	}
	// invalid presets are skipped, not fatal
	if _, found := f.Get("broken"); found {
		t.Error("invalid preset should have been skipped")
	}
	if len(f.List()) != 1 {
		t.Errorf("fleet size = %d; want 1", len(f.List()))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing fleet file")
	}
}

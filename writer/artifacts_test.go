package writer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestArtifactsSaveLoadRoundTrip(t *testing.T) {
	store := NewArtifacts(filepath.Join(t.TempDir(), "models"))

	in := map[string][]string{"columns": {"a", "b", "c"}}
	if err := store.SaveJSON("manifest.json", in); err != nil {
		t.Fatal(err)
	}
	if !store.Exists("manifest.json") {
		t.Fatal("saved artifact should exist")
	}

	var out map[string][]string
	if err := store.LoadJSON("manifest.json", &out); err != nil {
		t.Fatal(err)
	}
	if len(out["columns"]) != 3 || out["columns"][0] != "a" {
		t.Errorf("round trip = %v", out)
	}
}

func TestArtifactsNoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	store := NewArtifacts(dir)
	if err := store.SaveJSON("m.json", []int{1, 2}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestArtifactsLoadMissing(t *testing.T) {
	store := NewArtifacts(t.TempDir())
	var v interface{}
	if err := store.LoadJSON("missing.json", &v); err == nil {
		t.Fatal("expected error for missing artifact")
	}
	if store.Exists("missing.json") {
		t.Fatal("Exists should be false for missing artifact")
	}
}

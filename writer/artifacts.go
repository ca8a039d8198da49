// Package writer persists pipeline outputs: feature/training parquet
// tables, model artifacts, column manifests and metrics, with optional
// shipping to S3.
package writer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Artifacts is a directory-backed JSON store for everything a training
// run persists next to its models.
type Artifacts struct {
	dir string
}

func NewArtifacts(dir string) *Artifacts {
	return &Artifacts{dir: dir}
}

func (a *Artifacts) Dir() string { return a.dir }

// Path returns the absolute location of a named artifact.
func (a *Artifacts) Path(name string) string {
	return filepath.Join(a.dir, name)
}

// Exists reports whether a named artifact is present.
func (a *Artifacts) Exists(name string) bool {
	_, err := os.Stat(a.Path(name))
	return err == nil
}

// SaveJSON writes v as indented JSON under name. The write goes through
// a temp file and rename so a crashed run never leaves a torn artifact.
func (a *Artifacts) SaveJSON(name string, v interface{}) error {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir %s: %w", a.dir, err)
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(a.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write artifact %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close artifact %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), a.Path(name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename artifact %s: %w", name, err)
	}
	return nil
}

// LoadJSON reads a named artifact into v.
func (a *Artifacts) LoadJSON(name string, v interface{}) error {
	raw, err := os.ReadFile(a.Path(name))
	if err != nil {
		return fmt.Errorf("read artifact %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse artifact %s: %w", name, err)
	}
	return nil
}

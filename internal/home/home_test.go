package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaultsToUserHome(t *testing.T) {
	d, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no user home available: %v", err)
	}
	want := filepath.Join(userHome, DefaultDirName)
	if d.Path() != want {
		t.Errorf("Path() = %q, want %q", d.Path(), want)
	}
}

func TestPaths(t *testing.T) {
	root := t.TempDir()
	d, err := New(root)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if got, want := d.ScratchPath(), filepath.Join(root, ScratchDirName); got != want {
		t.Errorf("ScratchPath() = %q, want %q", got, want)
	}
	if got, want := d.ConfigPath(), filepath.Join(root, ConfigFileName); got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}
}

func TestEnsureExists(t *testing.T) {
	root := filepath.Join(t.TempDir(), "binder-home")
	d, err := New(root)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if d.Exists() {
		t.Fatal("Exists() = true before EnsureExists")
	}
	if err := d.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}
	if !d.Exists() {
		t.Error("Exists() = false after EnsureExists")
	}
	if _, err := os.Stat(d.ScratchPath()); err != nil {
		t.Errorf("scratch dir not created: %v", err)
	}
	if d.ConfigExists() {
		t.Error("ConfigExists() = true with no config file written")
	}
}

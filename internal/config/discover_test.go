package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiscover_EnvVar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PLAYHEAD_CONFIG", path)

	found, err := Discover()
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if found != path {
		t.Errorf("expected %q, got %q", path, found)
	}
}

func TestDiscover_EnvVarMissingFile(t *testing.T) {
	t.Setenv("PLAYHEAD_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))

	if _, err := Discover(); err == nil {
		t.Fatal("expected error when PLAYHEAD_CONFIG points at a missing file")
	}
}

func TestDiscover_NotFoundListsPaths(t *testing.T) {
	t.Setenv("PLAYHEAD_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, err := Discover()
	if err == nil {
		t.Skip("a config exists in the search path on this machine")
	}
	if !strings.Contains(err.Error(), "config not found") {
		t.Errorf("expected search paths in error, got %v", err)
	}
}

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harness.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewConfigDefaults(t *testing.T) {
	config := NewConfig()
	if config.Port != 8001 {
		t.Errorf("expected port 8001, got %d", config.Port)
	}
	if time.Duration(config.ReadTimeout) != 10*time.Second {
		t.Errorf("expected read timeout 10s, got %v",
			time.Duration(config.ReadTimeout))
	}
	if len(config.Directories) != 0 {
		t.Errorf("expected no directories, got %v", config.Directories)
	}
}

func TestReadConfigFile(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"port: 9000",
		"read_timeout: 2s",
		"directories: [web, lib]",
		"responses: responses",
	}, "\n"))
	config := NewConfig()
	if err := ReadConfigFile(path, config); err != nil {
		t.Fatal(err)
	}
	if config.Port != 9000 {
		t.Errorf("expected port 9000, got %d", config.Port)
	}
	if time.Duration(config.ReadTimeout) != 2*time.Second {
		t.Errorf("expected read timeout 2s, got %v",
			time.Duration(config.ReadTimeout))
	}
	if len(config.Directories) != 2 || config.Directories[0] != "web" ||
		config.Directories[1] != "lib" {
		t.Errorf("unexpected directories %v", config.Directories)
	}
	if config.Responses != "responses" {
		t.Errorf("unexpected responses directory %q", config.Responses)
	}
}

func TestReadConfigFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "directories: [site]\n")
	config := NewConfig()
	if err := ReadConfigFile(path, config); err != nil {
		t.Fatal(err)
	}
	if config.Port != 8001 {
		t.Errorf("expected default port to survive, got %d", config.Port)
	}
	if time.Duration(config.ReadTimeout) != 10*time.Second {
		t.Errorf("expected default read timeout to survive, got %v",
			time.Duration(config.ReadTimeout))
	}
	if len(config.Directories) != 1 || config.Directories[0] != "site" {
		t.Errorf("unexpected directories %v", config.Directories)
	}
}

func TestReadConfigFileMissing(t *testing.T) {
	config := NewConfig()
	err := ReadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"), config)
	if err == nil {
		t.Error("expected an error for a missing configuration file")
	}
}

func TestReadConfigFileBadDuration(t *testing.T) {
	path := writeConfig(t, "read_timeout: banana\n")
	config := NewConfig()
	if err := ReadConfigFile(path, config); err == nil {
		t.Error("expected an error for an unparseable duration")
	}
}

func TestFindLibraryOverride(t *testing.T) {
	dir := t.TempDir()
	found, err := findLibrary(dir)
	if err != nil {
		t.Fatal(err)
	}
	if found != dir {
		t.Errorf("expected %q, got %q", dir, found)
	}

	if _, err := findLibrary(filepath.Join(dir, "nope")); err == nil {
		t.Error("expected an error for a missing override directory")
	}
}

func TestFindLibrarySearchesUpward(t *testing.T) {
	root := t.TempDir()
	library := filepath.Join(root, filepath.FromSlash(libraryDir))
	if err := os.MkdirAll(library, 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "forAndroid", "app")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	previous, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(nested); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(previous) })

	found, err := findLibrary("")
	if err != nil {
		t.Fatal(err)
	}
	// TempDir may come back through a symlink, so compare resolved paths.
	wantResolved, err := filepath.EvalSymlinks(library)
	if err != nil {
		t.Fatal(err)
	}
	foundResolved, err := filepath.EvalSymlinks(found)
	if err != nil {
		t.Fatal(err)
	}
	if foundResolved != wantResolved {
		t.Errorf("expected %q, got %q", wantResolved, foundResolved)
	}
}

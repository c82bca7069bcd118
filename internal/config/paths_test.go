package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDefaultPaths(t *testing.T) {
	paths := DefaultPaths()

	if paths.ConfigDir == "" {
		t.Error("ConfigDir is empty")
	}
	if paths.DataDir == "" {
		t.Error("DataDir is empty")
	}
	if !filepath.IsAbs(paths.ConfigDir) {
		t.Errorf("ConfigDir should be absolute: %s", paths.ConfigDir)
	}
	if !filepath.IsAbs(paths.DataDir) {
		t.Errorf("DataDir should be absolute: %s", paths.DataDir)
	}
}

func TestDefaultPaths_XDG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG test not applicable on Windows")
	}

	origConfigHome := os.Getenv("XDG_CONFIG_HOME")
	origDataHome := os.Getenv("XDG_DATA_HOME")
	defer func() {
		os.Setenv("XDG_CONFIG_HOME", origConfigHome)
		os.Setenv("XDG_DATA_HOME", origDataHome)
	}()

	os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	os.Setenv("XDG_DATA_HOME", "/custom/data")

	paths := DefaultPaths()

	if !strings.HasPrefix(paths.ConfigDir, "/custom/config") {
		t.Errorf("ConfigDir should respect XDG_CONFIG_HOME: %s", paths.ConfigDir)
	}
	if !strings.HasPrefix(paths.DataDir, "/custom/data") {
		t.Errorf("DataDir should respect XDG_DATA_HOME: %s", paths.DataDir)
	}
}

func TestPaths_ConfigFile(t *testing.T) {
	paths := &Paths{ConfigDir: "/tmp/fall.vim"}
	want := filepath.Join("/tmp/fall.vim", "config.yaml")
	if got := paths.ConfigFile(); got != want {
		t.Errorf("ConfigFile() = %s, want %s", got, want)
	}
}

func TestPaths_LogFile(t *testing.T) {
	paths := &Paths{DataDir: "/tmp/fall.vim"}
	want := filepath.Join("/tmp/fall.vim", "logs", "fallpicker.log")
	if got := paths.LogFile(); got != want {
		t.Errorf("LogFile() = %s, want %s", got, want)
	}
}

func TestPaths_SessionsFile(t *testing.T) {
	paths := &Paths{DataDir: "/tmp/fall.vim"}
	want := filepath.Join("/tmp/fall.vim", "sessions.json")
	if got := paths.SessionsFile(); got != want {
		t.Errorf("SessionsFile() = %s, want %s", got, want)
	}
}

func TestPaths_EnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	paths := &Paths{
		ConfigDir: filepath.Join(dir, "config"),
		DataDir:   filepath.Join(dir, "data"),
	}

	if err := paths.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories() error = %v", err)
	}
	for _, d := range []string{paths.ConfigDir, paths.DataDir, paths.LogDir()} {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s to exist", d)
		}
	}
}

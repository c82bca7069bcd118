package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Paths holds the path configuration for the engine, following the XDG
// Base Directory spec on Unix-like systems.
type Paths struct {
	// ConfigDir is the directory for configuration files (~/.config/fall.vim).
	ConfigDir string

	// DataDir is the directory for data files (~/.local/share/fall.vim).
	DataDir string
}

// DefaultPaths returns the default paths based on the XDG Base
// Directory spec. On Windows, it uses %APPDATA% instead.
func DefaultPaths() *Paths {
	home := homeDir()

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(home, "AppData", "Local")
		}

		return &Paths{
			ConfigDir: filepath.Join(appData, "fall.vim"),
			DataDir:   filepath.Join(localAppData, "fall.vim"),
		}
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}

	return &Paths{
		ConfigDir: filepath.Join(configHome, "fall.vim"),
		DataDir:   filepath.Join(dataHome, "fall.vim"),
	}
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// SessionsFile returns the path where fallpicker persists its session
// history between invocations.
func (p *Paths) SessionsFile() string {
	return filepath.Join(p.DataDir, "sessions.json")
}

// LogDir returns the path to the log directory.
func (p *Paths) LogDir() string {
	return filepath.Join(p.DataDir, "logs")
}

// LogFile returns the path <DataDir>/logs/fallpicker.log. The CLI does
// not fall back to it: an unset logging.file logs to stderr.
func (p *Paths) LogFile() string {
	return filepath.Join(p.LogDir(), "fallpicker.log")
}

// EnsureDirectories creates all necessary directories.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.ConfigDir, p.DataDir, p.LogDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		if runtime.GOOS == "windows" {
			return os.Getenv("USERPROFILE")
		}
		return os.Getenv("HOME")
	}
	return home
}

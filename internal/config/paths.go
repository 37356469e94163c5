package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "NETINVENTORY_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "netinventory.yaml"
	// ConfigDirName is the directory under the XDG, home and /etc roots
	ConfigDirName = "netinventory"
)

// SearchPath is one location Load considers
type SearchPath struct {
	Source string `json:"source" yaml:"source"`
	Path   string `json:"path" yaml:"path"`
	Exists bool   `json:"exists" yaml:"exists"`
}

// SearchPaths lists the config locations in lookup order: env, workdir, xdg,
// home, system. Unset environment variables contribute no entry.
func SearchPaths() []SearchPath {
	var paths []SearchPath
	add := func(source, path string) {
		paths = append(paths, SearchPath{Source: source, Path: path, Exists: fileExists(path)})
	}

	if path := os.Getenv(EnvConfigPath); path != "" {
		add("env", path)
	}

	local := ConfigFileName
	if abs, err := filepath.Abs(local); err == nil {
		local = abs
	}
	add("workdir", local)

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		add("xdg", filepath.Join(xdgHome, ConfigDirName, "config.yaml"))
	}
	if home := os.Getenv("HOME"); home != "" {
		add("home", filepath.Join(home, ".config", ConfigDirName, "config.yaml"))
	}
	add("system", filepath.Join("/etc", ConfigDirName, "config.yaml"))

	return paths
}

// FindConfigPath returns the first existing entry of SearchPaths, or "".
func FindConfigPath() string {
	for _, p := range SearchPaths() {
		if p.Exists {
			return p.Path
		}
	}
	return ""
}

// DefaultConfigPath is where `config init` writes when no path is given
func DefaultConfigPath() string {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, ConfigDirName, "config.yaml")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", ConfigDirName, "config.yaml")
	}
	return ConfigFileName
}

// EnsureConfigDir creates the parent directory of configPath
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

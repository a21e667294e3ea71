package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigFile is the config file looked up in the working directory.
const DefaultConfigFile = "weft.yaml"

// WorkDirName is the directory holding sandboxes, docs output, and history.
const WorkDirName = ".weft"

// ResolveConfigPath resolves the config file path.
// Precedence: flag > WEFT_CONFIG env > ./weft.yaml.
func ResolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("WEFT_CONFIG"); env != "" {
		return env
	}
	return DefaultConfigFile
}

// WorkDir returns the work directory next to the given config file.
func WorkDir(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), WorkDirName)
}

// EnvDir returns the sandbox directory for a named environment.
func EnvDir(workDir, env string) string {
	return filepath.Join(workDir, "envs", env)
}

// HistoryPath returns the run-history database path.
func HistoryPath(workDir string) string {
	return filepath.Join(workDir, "history.db")
}

// DistDir returns the release artifact directory under the project root.
func DistDir(projectDir string) string {
	return filepath.Join(projectDir, "dist")
}

// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"sort"
	"strings"

	oerrors "github.com/weftci/weft/internal/errors"
)

// DefaultPasswordEnv is the environment variable consulted for the package
// index password when the config does not name one.
const DefaultPasswordEnv = "WEFT_INDEX_PASSWORD"

// Config is the top-level weft.yaml schema.
type Config struct {
	Project  Project           `mapstructure:"project"`
	Pins     map[string]string `mapstructure:"pins"`
	Matrix   Matrix            `mapstructure:"matrix"`
	Runtimes map[string]string `mapstructure:"runtimes"`
	Install  Install           `mapstructure:"install"`
	Test     Test              `mapstructure:"test"`
	Lint     Lint              `mapstructure:"lint"`
	Docs     Docs              `mapstructure:"docs"`
	Release  Release           `mapstructure:"release"`
}

// Project identifies the project under orchestration.
type Project struct {
	// Name is the package name, used for artifact file names.
	Name string `mapstructure:"name"`

	// VersionCommand prints the declared package version on stdout.
	VersionCommand string `mapstructure:"version_command"`
}

// Matrix declares the runtime x pin cross product.
type Matrix struct {
	Runtimes []string `mapstructure:"runtimes"`
	Pins     []string `mapstructure:"pins"`
	Exclude  []string `mapstructure:"exclude"`
}

// Install configures dependency installation inside a sandbox.
type Install struct {
	// Command is a template run once per environment; "{packages}" expands
	// to the environment's pinned dependency set. Empty disables the step.
	Command string `mapstructure:"command"`
}

// Test configures the per-environment test run.
type Test struct {
	// Command is the test command run in every matrix environment.
	Command string `mapstructure:"command"`

	// Deps are extra packages installed in every matrix environment,
	// in addition to the environment's pin.
	Deps []string `mapstructure:"deps"`
}

// Lint configures the dedicated check-only environment.
type Lint struct {
	// Dirs are the source directories the checkers run over.
	Dirs []string `mapstructure:"dirs"`

	// Checks are command templates; "{dir}" expands to each directory in
	// Dirs. Style and import-order checkers both go here.
	Checks []string `mapstructure:"checks"`

	// Deps are packages installed into the lint sandbox.
	Deps []string `mapstructure:"deps"`
}

// Docs configures the dedicated documentation environment.
type Docs struct {
	// Source is the documentation source directory.
	Source string `mapstructure:"source"`

	// Builder is a command template; "{out}" expands to the isolated
	// output directory. Empty skips the build and validates Source only.
	Builder string `mapstructure:"builder"`

	// Deps are packages installed into the docs sandbox.
	Deps []string `mapstructure:"deps"`
}

// Release configures the gated publish stage.
type Release struct {
	// Branch is the only branch releases publish from.
	Branch string `mapstructure:"branch"`

	// Index is the upload target: an https:// package index or an
	// s3://bucket/prefix object store.
	Index string `mapstructure:"index"`

	// Username authenticates against the index.
	Username string `mapstructure:"username"`

	// PasswordEnv names the environment variable holding the password.
	PasswordEnv string `mapstructure:"password_env"`

	// Build overrides the built-in sdist/bdist packing with explicit
	// commands. Each command must leave its artifacts in dist/.
	Build []string `mapstructure:"build"`

	// Region is the object store region (s3 indexes only).
	Region string `mapstructure:"region"`
}

// WithDefaults returns a copy of the config with defaults applied.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.Release.Branch == "" {
		cfg.Release.Branch = "main"
	}
	if cfg.Release.PasswordEnv == "" {
		cfg.Release.PasswordEnv = DefaultPasswordEnv
	}
	if cfg.Release.Region == "" {
		cfg.Release.Region = "us-east-1"
	}
	return &cfg
}

// Validate checks the semantic invariants of the configuration.
func (c *Config) Validate() error {
	if c.Project.Name == "" {
		return oerrors.NewConfigError("project.name is required", "", "Set project.name in weft.yaml")
	}

	// Every pin label referenced by the matrix must exist.
	for _, label := range c.Matrix.Pins {
		if _, ok := c.Pins[label]; !ok {
			return oerrors.NewConfigError(
				fmt.Sprintf("matrix references undefined pin %q", label),
				"matrix.pins",
				"Declare the pin under the top-level pins: mapping",
			)
		}
	}

	if len(c.Matrix.Pins) > 0 && len(c.Matrix.Runtimes) == 0 {
		return oerrors.NewConfigError("matrix.pins declared without matrix.runtimes", "matrix", "")
	}
	for _, rt := range c.Matrix.Runtimes {
		if strings.TrimSpace(rt) == "" {
			return oerrors.NewConfigError("matrix runtime labels must be non-empty", "matrix.runtimes", "")
		}
	}

	// Exclusions must refer to names the matrix actually generates.
	names := make(map[string]bool)
	for _, rt := range c.Matrix.Runtimes {
		if len(c.Matrix.Pins) == 0 {
			names[rt] = true
			continue
		}
		for _, pin := range c.Matrix.Pins {
			names[rt+"-"+pin] = true
		}
	}
	for _, ex := range c.Matrix.Exclude {
		if !names[ex] {
			known := make([]string, 0, len(names))
			for n := range names {
				known = append(known, n)
			}
			sort.Strings(known)
			return oerrors.NewConfigError(
				fmt.Sprintf("exclude entry %q matches no generated environment", ex),
				"matrix.exclude",
				"Known environments: "+strings.Join(known, ", "),
			)
		}
	}

	if c.Docs.Builder != "" && c.Docs.Source == "" {
		return oerrors.NewConfigError("docs.builder declared without docs.source", "docs", "")
	}

	if len(c.Lint.Checks) > 0 && len(c.Lint.Dirs) == 0 {
		return oerrors.NewConfigError("lint.checks declared without lint.dirs", "lint", "List the source directories the checkers run over")
	}

	if c.Release.Index != "" {
		if !strings.HasPrefix(c.Release.Index, "https://") && !strings.HasPrefix(c.Release.Index, "s3://") {
			return oerrors.NewConfigError(
				fmt.Sprintf("release.index must be an https:// or s3:// URL, got %q", c.Release.Index),
				"release.index",
				"",
			)
		}
	}

	return nil
}

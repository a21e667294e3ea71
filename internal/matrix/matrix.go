// Package matrix expands the declared environment matrix into descriptors.
package matrix

import (
	"fmt"

	"github.com/weftci/weft/internal/config"
	oerrors "github.com/weftci/weft/internal/errors"
)

// Kind classifies what an environment runs.
type Kind string

const (
	// KindTest environments install pins and run the test command.
	KindTest Kind = "test"

	// KindLint environments run check-only style and import-order checkers.
	KindLint Kind = "lint"

	// KindDocs environments build and validate documentation.
	KindDocs Kind = "docs"
)

// Reserved names for the dedicated environments.
const (
	LintEnvName = "lint"
	DocsEnvName = "docs"
)

// Descriptor is one isolated job: a runtime label, an optional pin label,
// and a purpose. Every descriptor maps to exactly one reproducible command
// set.
type Descriptor struct {
	// Name uniquely identifies the environment (e.g. "py36-django20").
	Name string

	// Runtime is the interpreter/runtime label ("" for lint and docs).
	Runtime string

	// Pin is the dependency pin label ("" when the matrix has no pins).
	Pin string

	// Kind is the environment purpose.
	Kind Kind
}

// Expand produces the full declared environment list: the runtime x pin
// cross product minus exclusions, plus the dedicated lint and docs
// environments when configured.
func Expand(cfg *config.Config) []Descriptor {
	excluded := make(map[string]bool, len(cfg.Matrix.Exclude))
	for _, ex := range cfg.Matrix.Exclude {
		excluded[ex] = true
	}

	var envs []Descriptor
	for _, rt := range cfg.Matrix.Runtimes {
		if len(cfg.Matrix.Pins) == 0 {
			if !excluded[rt] {
				envs = append(envs, Descriptor{Name: rt, Runtime: rt, Kind: KindTest})
			}
			continue
		}
		for _, pin := range cfg.Matrix.Pins {
			name := rt + "-" + pin
			if excluded[name] {
				continue
			}
			envs = append(envs, Descriptor{Name: name, Runtime: rt, Pin: pin, Kind: KindTest})
		}
	}

	if len(cfg.Lint.Checks) > 0 {
		envs = append(envs, Descriptor{Name: LintEnvName, Kind: KindLint})
	}
	if cfg.Docs.Builder != "" || cfg.Docs.Source != "" {
		envs = append(envs, Descriptor{Name: DocsEnvName, Kind: KindDocs})
	}

	return envs
}

// Select filters descriptors down to a single named environment.
// An empty name selects everything.
func Select(envs []Descriptor, name string) ([]Descriptor, error) {
	if name == "" {
		return envs, nil
	}
	for _, env := range envs {
		if env.Name == name {
			return []Descriptor{env}, nil
		}
	}
	return nil, oerrors.NewNotFoundError(
		fmt.Sprintf("environment %q is not declared", name),
		"",
		"Run 'weft list' to see declared environments",
	)
}

// Names returns the descriptor names in declaration order.
func Names(envs []Descriptor) []string {
	names := make([]string, len(envs))
	for i, env := range envs {
		names[i] = env.Name
	}
	return names
}

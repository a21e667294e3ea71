// Package release implements the gated publish stage.
package release

import (
	"context"
	"fmt"
	"os"

	"github.com/weftci/weft/internal/config"
	oerrors "github.com/weftci/weft/internal/errors"
	"github.com/weftci/weft/internal/shell"
)

// GateState is the computed release gate for one pipeline run.
type GateState struct {
	// Branch is the current branch.
	Branch string

	// Tag is the current tag ("" when the commit is untagged).
	Tag string

	// Version is the declared package version from the version command.
	Version string

	// Publish is true iff a tag is present, the tag equals the declared
	// version exactly, and the branch is the release branch.
	Publish bool

	// Reason explains a false Publish.
	Reason string
}

// Evaluate computes the release gate for the project rooted at projectDir.
// Branch and tag come from WEFT_BRANCH and WEFT_TAG when set (CI platforms
// export these), falling back to git. The declared version comes from the
// configured version command, run inside projectDir.
func Evaluate(ctx context.Context, cfg *config.Config, projectDir string) (GateState, error) {
	state := GateState{}

	state.Branch = os.Getenv("WEFT_BRANCH")
	if state.Branch == "" {
		branch, err := shell.Output(ctx, projectDir, "git rev-parse --abbrev-ref HEAD")
		if err != nil {
			return state, fmt.Errorf("resolving branch: %w", err)
		}
		state.Branch = branch
	}

	if tag, ok := os.LookupEnv("WEFT_TAG"); ok {
		state.Tag = tag
	} else {
		// An untagged commit is not an error, just a closed gate.
		tag, err := shell.Output(ctx, projectDir, "git describe --exact-match --tags 2>/dev/null")
		if err == nil {
			state.Tag = tag
		}
	}

	if cfg.Project.VersionCommand == "" {
		return state, oerrors.NewConfigError(
			"project.version_command is required for releases",
			"project.version_command",
			"Configure a command that prints the declared package version",
		)
	}
	version, err := shell.Output(ctx, projectDir, cfg.Project.VersionCommand)
	if err != nil {
		return state, fmt.Errorf("querying declared version: %w", err)
	}
	state.Version = version

	switch {
	case state.Tag == "":
		state.Reason = "no tag on the current commit"
	case state.Branch != cfg.Release.Branch:
		state.Reason = fmt.Sprintf("branch %q is not the release branch %q", state.Branch, cfg.Release.Branch)
	case state.Tag != state.Version:
		state.Reason = fmt.Sprintf("tag %q does not equal declared version %q", state.Tag, state.Version)
	default:
		state.Publish = true
	}

	return state, nil
}

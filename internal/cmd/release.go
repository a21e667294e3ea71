package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/weftci/weft/internal/config"
	"github.com/weftci/weft/internal/output"
	"github.com/weftci/weft/internal/release"
)

var dryRunFlag bool

// NewReleaseCmd creates the release command.
func NewReleaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Build and publish release artifacts when the gate holds",
		Long: `Evaluate the release gate and, when it holds, build and upload the
release artifacts.

The gate holds only when all of these are true:
  - the current commit carries a tag
  - the tag string equals the declared package version exactly
  - the current branch is the configured release branch

A closed gate is an intentional skip and exits 0. A missing index password
once the gate holds is a failure; nothing is uploaded.`,
		RunE: runRelease,
	}

	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "build artifacts but skip the upload")

	return cmd
}

func runRelease(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadAndValidate(configFlag)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	configPath := config.ResolveConfigPath(configFlag)
	projectDir := filepath.Dir(configPath)

	gate, err := release.Evaluate(ctx, cfg, projectDir)
	if err != nil {
		return err
	}

	output.Debug("release gate",
		"branch", gate.Branch,
		"tag", gate.Tag,
		"version", gate.Version,
		"publish", gate.Publish,
	)

	if !gate.Publish {
		output.Warn("skipping release", "reason", gate.Reason)
		return nil
	}

	files, err := release.BuildArtifacts(ctx, cfg, projectDir, gate.Version)
	if err != nil {
		return err
	}
	for _, file := range files {
		output.Info("built artifact", "file", filepath.Base(file))
	}

	if dryRunFlag {
		output.Println(output.FormatCheckmark("dry run: artifacts built, upload skipped"))
		return nil
	}

	if err := release.Upload(ctx, cfg, gate.Version, files); err != nil {
		return err
	}

	output.Println(output.FormatCheckmark("released " + cfg.Project.Name + " " + gate.Version))
	return nil
}

package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/weftci/weft/internal/config"
	"github.com/weftci/weft/internal/docs"
	"github.com/weftci/weft/internal/matrix"
	"github.com/weftci/weft/internal/output"
	"github.com/weftci/weft/internal/shell"
)

// Manifest records what was installed into a sandbox. Each environment gets
// its own manifest; pins never leak between sandboxes.
type Manifest struct {
	Env      string   `yaml:"env"`
	Runtime  string   `yaml:"runtime,omitempty"`
	Pin      string   `yaml:"pin,omitempty"`
	Packages []string `yaml:"packages,omitempty"`
}

// provision creates a fresh sandbox directory for the environment, installs
// its pinned dependency set, and writes the manifest.
func (r *Runner) provision(ctx context.Context, env matrix.Descriptor) (string, error) {
	envDir := config.EnvDir(r.WorkDir, env.Name)
	if err := os.RemoveAll(envDir); err != nil {
		return "", fmt.Errorf("clearing sandbox: %w", err)
	}
	if err := os.MkdirAll(envDir, 0o755); err != nil {
		return "", fmt.Errorf("creating sandbox: %w", err)
	}

	packages := r.packagesFor(env)
	if r.Config.Install.Command != "" && len(packages) > 0 {
		cmdline := shell.Expand(r.Config.Install.Command, map[string]string{
			"packages": strings.Join(packages, " "),
		})
		output.Debug("installing dependencies", "env", env.Name, "command", cmdline)
		if err := shell.Run(ctx, r.ProjectDir, cmdline, r.sandboxEnv(env.Name, envDir)); err != nil {
			return "", fmt.Errorf("dependency installation failed: %w", err)
		}
	}

	manifest := Manifest{
		Env:      env.Name,
		Runtime:  env.Runtime,
		Pin:      env.Pin,
		Packages: packages,
	}
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(envDir, "manifest.yaml"), data, 0o644); err != nil {
		return "", fmt.Errorf("writing sandbox manifest: %w", err)
	}

	return envDir, nil
}

// packagesFor resolves the dependency set for a descriptor: the matrix pin
// plus the kind's extra deps.
func (r *Runner) packagesFor(env matrix.Descriptor) []string {
	var packages []string
	switch env.Kind {
	case matrix.KindLint:
		packages = append(packages, r.Config.Lint.Deps...)
	case matrix.KindDocs:
		packages = append(packages, r.Config.Docs.Deps...)
	default:
		if env.Pin != "" {
			packages = append(packages, r.Config.Pins[env.Pin])
		}
		packages = append(packages, r.Config.Test.Deps...)
	}
	return packages
}

// sandboxEnv is the extra process environment every sandboxed command gets.
func (r *Runner) sandboxEnv(name, envDir string) []string {
	return []string{
		"WEFT_ENV=" + name,
		"WEFT_ENV_DIR=" + envDir,
	}
}

// runTest executes the test command inside a provisioned sandbox.
func (r *Runner) runTest(ctx context.Context, env matrix.Descriptor, envDir string) error {
	if r.Config.Test.Command == "" {
		return fmt.Errorf("test.command is not configured")
	}

	runtimeCmd := env.Runtime
	if mapped, ok := r.Config.Runtimes[env.Runtime]; ok {
		runtimeCmd = mapped
	}

	cmdline := shell.Expand(r.Config.Test.Command, map[string]string{
		"runtime": runtimeCmd,
		"env":     env.Name,
		"envdir":  envDir,
	})
	return shell.Run(ctx, r.ProjectDir, cmdline, r.sandboxEnv(env.Name, envDir))
}

// runLint executes every checker over every configured directory in
// check-only mode, guarded against source mutation.
func (r *Runner) runLint(ctx context.Context, env matrix.Descriptor, envDir string) error {
	dirs := make([]string, len(r.Config.Lint.Dirs))
	for i, d := range r.Config.Lint.Dirs {
		dirs[i] = filepath.Join(r.ProjectDir, d)
	}

	snap, err := Snapshot(dirs)
	if err != nil {
		return err
	}

	var checkErr error
	for _, check := range r.Config.Lint.Checks {
		for i, dir := range dirs {
			cmdline := shell.Expand(check, map[string]string{
				"dir":    dir,
				"envdir": envDir,
			})
			output.Debug("running check", "env", env.Name, "dir", r.Config.Lint.Dirs[i], "command", cmdline)
			if err := shell.Run(ctx, r.ProjectDir, cmdline, r.sandboxEnv(env.Name, envDir)); err != nil {
				checkErr = fmt.Errorf("check %q failed on %s: %w", check, r.Config.Lint.Dirs[i], err)
				break
			}
		}
		if checkErr != nil {
			break
		}
	}

	// The guard failure takes precedence: a checker that rewrites files is
	// broken even when it reports success.
	if err := snap.Verify(dirs); err != nil {
		return err
	}
	return checkErr
}

// runDocs builds the documentation into an isolated output directory and
// validates cross references over source and generated trees.
func (r *Runner) runDocs(ctx context.Context, env matrix.Descriptor, envDir string) error {
	outDir, err := docs.Build(ctx, r.Config, r.ProjectDir, r.WorkDir)
	if err != nil {
		return err
	}

	srcDir := r.Config.Docs.Source
	if srcDir != "" && !filepath.IsAbs(srcDir) {
		srcDir = filepath.Join(r.ProjectDir, srcDir)
	}
	return docs.ValidateLinks(srcDir, outDir)
}

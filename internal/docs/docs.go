// Package docs builds documentation and validates cross references.
package docs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/weftci/weft/internal/config"
	"github.com/weftci/weft/internal/output"
	"github.com/weftci/weft/internal/shell"
)

// Build runs the configured docs builder into a fresh isolated output
// directory and returns that directory. With no builder configured it
// returns "" and the validation pass covers the source tree only.
func Build(ctx context.Context, cfg *config.Config, projectDir, workDir string) (string, error) {
	if cfg.Docs.Builder == "" {
		return "", nil
	}

	outDir := filepath.Join(workDir, "docs-out")
	if err := os.RemoveAll(outDir); err != nil {
		return "", fmt.Errorf("clearing docs output dir: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating docs output dir: %w", err)
	}

	cmdline := shell.Expand(cfg.Docs.Builder, map[string]string{
		"src": cfg.Docs.Source,
		"out": outDir,
	})
	output.Debug("building docs", "command", cmdline, "out", outDir)

	if err := shell.Run(ctx, projectDir, cmdline, nil); err != nil {
		return "", fmt.Errorf("docs build failed: %w", err)
	}
	return outDir, nil
}

package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/weftci/weft/internal/config"
	oerrors "github.com/weftci/weft/internal/errors"
	"github.com/weftci/weft/internal/history"
	"github.com/weftci/weft/internal/matrix"
	"github.com/weftci/weft/internal/output"
	"github.com/weftci/weft/internal/runner"
)

var (
	envFlag      string
	parallelFlag int
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the declared environment matrix",
		Long: `Run every declared environment, or a single one selected with -e.

Each environment gets an isolated sandbox under .weft/envs/<name>/ with its
own installed dependency set. Environments run in parallel; one failure
never aborts siblings. The exit code is 0 only if every selected
environment passes.

Examples:
  # Run the full matrix plus lint and docs
  weft run

  # Run a single environment
  weft run -e py36-django20

  # Bound parallelism
  weft run --parallel 2`,
		RunE: runRun,
	}

	cmd.Flags().StringVarP(&envFlag, "env", "e", "", "run a single named environment (env: WEFT_ENV)")
	cmd.Flags().IntVarP(&parallelFlag, "parallel", "p", 0, "maximum concurrent environments (0 = unbounded)")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadAndValidate(configFlag)
	if err != nil {
		return err
	}

	selected := envFlag
	if selected == "" {
		selected = os.Getenv("WEFT_ENV")
	}

	envs, err := matrix.Select(matrix.Expand(cfg), selected)
	if err != nil {
		return err
	}
	if len(envs) == 0 {
		return oerrors.NewConfigError("no environments declared", "matrix", "Declare matrix.runtimes, lint, or docs in weft.yaml")
	}

	configPath := config.ResolveConfigPath(configFlag)
	projectDir := filepath.Dir(configPath)
	workDir := config.WorkDir(configPath)

	r := &runner.Runner{
		Config:     cfg,
		ProjectDir: projectDir,
		WorkDir:    workDir,
		Parallel:   parallelFlag,
	}

	output.Debug("selected environments", "envs", matrix.Names(envs), "parallel", parallelFlag)

	var results []runner.Result
	err = output.RunWithSpinner(cmd.Context(), func() error {
		results = r.Run(cmd.Context(), envs)
		return nil
	}, output.WithTitle("Running environments..."))
	if err != nil {
		return err
	}

	appendHistory(cmd.Context(), workDir, results)

	output.Println(runner.RenderSummary(results))

	if runner.AnyFailed(results) {
		return oerrors.Wrap(oerrors.ErrEnvFailed, "one or more environments failed")
	}
	output.Println(output.FormatCheckmark("all environments passed"))
	return nil
}

// appendHistory records results; history is best effort and never fails a run.
func appendHistory(ctx context.Context, workDir string, results []runner.Result) {
	store, err := history.Open(config.HistoryPath(workDir))
	if err != nil {
		output.Warn("could not open run history", "error", err)
		return
	}
	defer store.Close()

	records := make([]history.Record, len(results))
	for i, res := range results {
		records[i] = history.Record{
			Env:       res.Env,
			Status:    res.Status,
			Duration:  res.Duration,
			StartedAt: res.StartedAt,
		}
		if res.Err != nil {
			records[i].Error = res.Err.Error()
		}
	}
	if err := store.Append(ctx, records); err != nil {
		output.Warn("could not record run history", "error", err)
	}
}

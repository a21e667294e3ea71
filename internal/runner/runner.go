// Package runner provisions isolated environments and executes their
// command sets.
package runner

import (
	"context"
	"sync"
	"time"

	"github.com/weftci/weft/internal/config"
	"github.com/weftci/weft/internal/matrix"
	"github.com/weftci/weft/internal/output"
)

// Runner orchestrates a set of environment descriptors.
type Runner struct {
	// Config is the validated matrix configuration.
	Config *config.Config

	// ProjectDir is the repository checkout root.
	ProjectDir string

	// WorkDir holds sandboxes and docs output.
	WorkDir string

	// Parallel bounds concurrent environments; 0 means all at once.
	Parallel int
}

// Run executes every descriptor. Environments are independent: each gets its
// own sandbox, a failure never aborts siblings, and results come back in
// descriptor order.
func (r *Runner) Run(ctx context.Context, envs []matrix.Descriptor) []Result {
	sem := make(chan struct{}, workerCount(r.Parallel, len(envs)))
	results := make([]Result, len(envs))
	var wg sync.WaitGroup

	for i, env := range envs {
		wg.Add(1)
		go func(i int, env matrix.Descriptor) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = r.runOne(ctx, env)
		}(i, env)
	}
	wg.Wait()

	return results
}

// runOne provisions and executes a single environment.
func (r *Runner) runOne(ctx context.Context, env matrix.Descriptor) Result {
	start := time.Now()
	output.Info("running environment", "env", env.Name, "kind", string(env.Kind))

	err := func() error {
		envDir, err := r.provision(ctx, env)
		if err != nil {
			return err
		}
		switch env.Kind {
		case matrix.KindLint:
			return r.runLint(ctx, env, envDir)
		case matrix.KindDocs:
			return r.runDocs(ctx, env, envDir)
		default:
			return r.runTest(ctx, env, envDir)
		}
	}()

	result := Result{
		Env:       env.Name,
		Duration:  time.Since(start),
		StartedAt: start,
		Err:       err,
	}
	if err != nil {
		result.Status = output.StatusFailed
		output.Error("environment failed", "env", env.Name, "error", err)
	} else {
		result.Status = output.StatusPassed
		output.Info("environment passed", "env", env.Name, "duration", result.Duration.Round(time.Millisecond))
	}
	return result
}

func workerCount(parallel, jobs int) int {
	if parallel <= 0 || parallel > jobs {
		if jobs < 1 {
			return 1
		}
		return jobs
	}
	return parallel
}

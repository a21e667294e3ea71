package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/weftci/weft/internal/config"
	"github.com/weftci/weft/internal/matrix"
	"github.com/weftci/weft/internal/output"
)

func newTestRunner(t *testing.T, cfg *config.Config) *Runner {
	t.Helper()
	projectDir := t.TempDir()
	return &Runner{
		Config:     cfg.WithDefaults(),
		ProjectDir: projectDir,
		WorkDir:    filepath.Join(projectDir, config.WorkDirName),
	}
}

func readManifest(t *testing.T, r *Runner, env string) Manifest {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(config.EnvDir(r.WorkDir, env), "manifest.yaml"))
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, yaml.Unmarshal(data, &m))
	return m
}

func TestRun_AllPass(t *testing.T) {
	cfg := &config.Config{
		Project: config.Project{Name: "demo"},
		Pins: map[string]string{
			"a": "pkg-a==1.0",
			"b": "pkg-b==2.0",
		},
		Matrix: config.Matrix{
			Runtimes: []string{"rt"},
			Pins:     []string{"a", "b"},
		},
		Test: config.Test{Command: "true"},
	}
	r := newTestRunner(t, cfg)

	results := r.Run(context.Background(), matrix.Expand(cfg))

	require.Len(t, results, 2)
	for _, res := range results {
		assert.Equal(t, output.StatusPassed, res.Status)
		assert.NoError(t, res.Err)
	}
	assert.False(t, AnyFailed(results))
}

func TestRun_SandboxesAreIsolated(t *testing.T) {
	cfg := &config.Config{
		Project: config.Project{Name: "demo"},
		Pins: map[string]string{
			"a": "pkg-a==1.0",
			"b": "pkg-b==2.0",
		},
		Matrix: config.Matrix{
			Runtimes: []string{"rt"},
			Pins:     []string{"a", "b"},
		},
		Test: config.Test{Command: "true", Deps: []string{"testdep"}},
	}
	r := newTestRunner(t, cfg)

	results := r.Run(context.Background(), matrix.Expand(cfg))
	require.Len(t, results, 2)

	// Each sandbox records exactly its own pin; nothing leaks across.
	ma := readManifest(t, r, "rt-a")
	assert.Equal(t, []string{"pkg-a==1.0", "testdep"}, ma.Packages)
	assert.NotContains(t, ma.Packages, "pkg-b==2.0")

	mb := readManifest(t, r, "rt-b")
	assert.Equal(t, []string{"pkg-b==2.0", "testdep"}, mb.Packages)
	assert.NotContains(t, mb.Packages, "pkg-a==1.0")
}

func TestRun_FailureDoesNotAbortSiblings(t *testing.T) {
	cfg := &config.Config{
		Project: config.Project{Name: "demo"},
		Pins: map[string]string{
			"good": "pkg==1",
			"bad":  "pkg==2",
		},
		Matrix: config.Matrix{
			Runtimes: []string{"rt"},
			Pins:     []string{"good", "bad"},
		},
		Test: config.Test{Command: `test "$WEFT_ENV" != "rt-bad"`},
	}
	r := newTestRunner(t, cfg)

	results := r.Run(context.Background(), matrix.Expand(cfg))
	require.Len(t, results, 2)

	byEnv := make(map[string]Result)
	for _, res := range results {
		byEnv[res.Env] = res
	}
	assert.Equal(t, output.StatusPassed, byEnv["rt-good"].Status)
	assert.Equal(t, output.StatusFailed, byEnv["rt-bad"].Status)
	assert.True(t, AnyFailed(results))
}

func TestRun_InstallFailureFailsEnv(t *testing.T) {
	cfg := &config.Config{
		Project: config.Project{Name: "demo"},
		Pins:    map[string]string{"a": "pkg==1"},
		Matrix: config.Matrix{
			Runtimes: []string{"rt"},
			Pins:     []string{"a"},
		},
		Install: config.Install{Command: "false"},
		Test:    config.Test{Command: "true"},
	}
	r := newTestRunner(t, cfg)

	results := r.Run(context.Background(), matrix.Expand(cfg))
	require.Len(t, results, 1)
	assert.Equal(t, output.StatusFailed, results[0].Status)
	assert.Contains(t, results[0].Err.Error(), "installation failed")
}

func TestRun_SandboxEnvironmentExported(t *testing.T) {
	cfg := &config.Config{
		Project: config.Project{Name: "demo"},
		Matrix:  config.Matrix{Runtimes: []string{"rt"}},
		Test:    config.Test{Command: `echo "$WEFT_ENV" > "$WEFT_ENV_DIR/seen.txt"`},
	}
	r := newTestRunner(t, cfg)

	results := r.Run(context.Background(), matrix.Expand(cfg))
	require.Len(t, results, 1)
	require.Equal(t, output.StatusPassed, results[0].Status)

	data, err := os.ReadFile(filepath.Join(config.EnvDir(r.WorkDir, "rt"), "seen.txt"))
	require.NoError(t, err)
	assert.Equal(t, "rt\n", string(data))
}

func TestRun_RuntimeMapping(t *testing.T) {
	cfg := &config.Config{
		Project:  config.Project{Name: "demo"},
		Matrix:   config.Matrix{Runtimes: []string{"py36"}},
		Runtimes: map[string]string{"py36": "echo python3.6"},
		Test:     config.Test{Command: `{runtime} > "$WEFT_ENV_DIR/runtime.txt"`},
	}
	r := newTestRunner(t, cfg)

	results := r.Run(context.Background(), matrix.Expand(cfg))
	require.Len(t, results, 1)
	require.Equal(t, output.StatusPassed, results[0].Status)

	data, err := os.ReadFile(filepath.Join(config.EnvDir(r.WorkDir, "py36"), "runtime.txt"))
	require.NoError(t, err)
	assert.Equal(t, "python3.6\n", string(data))
}

func TestWorkerCount(t *testing.T) {
	assert.Equal(t, 4, workerCount(0, 4))
	assert.Equal(t, 2, workerCount(2, 4))
	assert.Equal(t, 3, workerCount(8, 3))
	assert.Equal(t, 1, workerCount(0, 0))
}

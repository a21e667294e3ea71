package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftci/weft/internal/config"
	oerrors "github.com/weftci/weft/internal/errors"
	"github.com/weftci/weft/internal/testutil"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	return root.Execute()
}

func writeProject(t *testing.T, weftYAML string) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "weft.yaml", weftYAML)
	return filepath.Join(dir, "weft.yaml")
}

func TestRun_AllEnvironmentsPass(t *testing.T) {
	path := writeProject(t, `
project:
  name: demo
pins:
  a: "pkg-a==1"
  b: "pkg-b==2"
matrix:
  runtimes: [rt]
  pins: [a, b]
test:
  command: "true"
`)

	require.NoError(t, execute(t, "run", "--config", path))

	// Both sandboxes provisioned with their manifests.
	workDir := config.WorkDir(path)
	for _, env := range []string{"rt-a", "rt-b"} {
		_, err := os.Stat(filepath.Join(config.EnvDir(workDir, env), "manifest.yaml"))
		assert.NoError(t, err, env)
	}
}

func TestRun_FailingEnvironmentExitsNonZero(t *testing.T) {
	path := writeProject(t, `
project:
  name: demo
matrix:
  runtimes: [rt]
test:
  command: "false"
`)

	err := execute(t, "run", "--config", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrEnvFailed))
	assert.Equal(t, ExitEnvFailed, ExitCodeFromError(err))
}

func TestRun_SelectSingleEnvironment(t *testing.T) {
	path := writeProject(t, `
project:
  name: demo
pins:
  a: "pkg-a==1"
  b: "pkg-b==2"
matrix:
  runtimes: [rt]
  pins: [a, b]
test:
  command: "test \"$WEFT_ENV\" = \"rt-a\""
`)

	// rt-b would fail, but selecting rt-a skips it entirely.
	require.NoError(t, execute(t, "run", "--config", path, "-e", "rt-a"))

	workDir := config.WorkDir(path)
	_, err := os.Stat(config.EnvDir(workDir, "rt-b"))
	assert.True(t, os.IsNotExist(err), "unselected environment must not be provisioned")
}

func TestRun_SelectionViaEnvVar(t *testing.T) {
	path := writeProject(t, `
project:
  name: demo
pins:
  a: "pkg-a==1"
  b: "pkg-b==2"
matrix:
  runtimes: [rt]
  pins: [a, b]
test:
  command: "test \"$WEFT_ENV\" = \"rt-b\""
`)

	t.Setenv("WEFT_ENV", "rt-b")
	require.NoError(t, execute(t, "run", "--config", path))
}

func TestRun_UnknownEnvironment(t *testing.T) {
	path := writeProject(t, `
project:
  name: demo
matrix:
  runtimes: [rt]
test:
  command: "true"
`)

	err := execute(t, "run", "--config", path, "-e", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCodeFromError(err))
}

func TestRun_RecordsHistory(t *testing.T) {
	path := writeProject(t, `
project:
  name: demo
matrix:
  runtimes: [rt]
test:
  command: "true"
`)

	require.NoError(t, execute(t, "run", "--config", path))

	_, err := os.Stat(config.HistoryPath(config.WorkDir(path)))
	assert.NoError(t, err)
}

func TestNewRunCmd_Metadata(t *testing.T) {
	cmd := NewRunCmd()
	assert.Equal(t, "run", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotNil(t, cmd.Flags().Lookup("env"))
	assert.NotNil(t, cmd.Flags().Lookup("parallel"))
}

package release

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftci/weft/internal/config"
	"github.com/weftci/weft/internal/testutil"
)

func artifactConfig() *config.Config {
	cfg := &config.Config{Project: config.Project{Name: "demo"}}
	return cfg.WithDefaults()
}

func TestBuildArtifacts_BuiltinDistributions(t *testing.T) {
	projectDir := t.TempDir()
	testutil.WriteFile(t, projectDir, "setup.py", "version = '1.0.0'\n")
	testutil.WriteFile(t, projectDir, "demo/module.py", "x = 1\n")
	testutil.WriteFile(t, projectDir, ".git/config", "[core]\n")
	testutil.WriteFile(t, projectDir, ".weft/envs/rt/manifest.yaml", "env: rt\n")
	testutil.WriteFile(t, projectDir, "dist/stale.txt", "old")

	files, err := BuildArtifacts(context.Background(), artifactConfig(), projectDir, "1.0.0")
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "demo-1.0.0.tar.gz", filepath.Base(files[0]))
	assert.Equal(t, "demo-1.0.0.zip", filepath.Base(files[1]))

	names := tarEntries(t, files[0])
	assert.Contains(t, names, "demo-1.0.0/setup.py")
	assert.Contains(t, names, "demo-1.0.0/demo/module.py")
	for _, name := range names {
		assert.NotContains(t, name, ".git")
		assert.NotContains(t, name, ".weft")
		assert.NotContains(t, name, "dist/")
	}

	zr, err := zip.OpenReader(files[1])
	require.NoError(t, err)
	defer zr.Close()
	var zipNames []string
	for _, f := range zr.File {
		zipNames = append(zipNames, f.Name)
	}
	assert.Contains(t, zipNames, "demo-1.0.0/setup.py")
}

func TestBuildArtifacts_ConfiguredCommands(t *testing.T) {
	projectDir := t.TempDir()
	cfg := artifactConfig()
	cfg.Release.Build = []string{"echo wheel > {dist}/demo-{version}.whl"}

	files, err := BuildArtifacts(context.Background(), cfg, projectDir, "2.1.0")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "demo-2.1.0.whl", filepath.Base(files[0]))
}

func TestBuildArtifacts_FailingCommand(t *testing.T) {
	cfg := artifactConfig()
	cfg.Release.Build = []string{"false"}

	_, err := BuildArtifacts(context.Background(), cfg, t.TempDir(), "1.0.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build command failed")
}

func TestBuildArtifacts_EmptyDist(t *testing.T) {
	cfg := artifactConfig()
	cfg.Release.Build = []string{"true"}

	_, err := BuildArtifacts(context.Background(), cfg, t.TempDir(), "1.0.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no artifacts")
}

func tarEntries(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gzr, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gzr)

	var names []string
	for {
		hdr, err := tr.Next()
		if err != nil {
			break
		}
		names = append(names, hdr.Name)
	}
	require.NotEmpty(t, names)
	for _, name := range names {
		require.True(t, strings.HasPrefix(name, "demo-1.0.0/"), "entry %s lacks prefix", name)
	}
	return names
}

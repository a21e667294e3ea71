package matrix

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftci/weft/internal/config"
	oerrors "github.com/weftci/weft/internal/errors"
)

func matrixConfig() *config.Config {
	return &config.Config{
		Project: config.Project{Name: "demo"},
		Pins: map[string]string{
			"django111": "Django>=1.11,<2.0",
			"django20":  "Django>=2.0,<2.1",
			"django21":  "Django>=2.1,<2.2",
		},
		Matrix: config.Matrix{
			Runtimes: []string{"py35", "py36", "py37"},
			Pins:     []string{"django111", "django20", "django21"},
			Exclude:  []string{"py35-django21"},
		},
		Lint: config.Lint{
			Dirs:   []string{"demo", "tests"},
			Checks: []string{"flake8 {dir}"},
		},
		Docs: config.Docs{Source: "docs"},
	}
}

func TestExpand_CrossProduct(t *testing.T) {
	envs := Expand(matrixConfig())

	// 3x3 minus one exclusion, plus lint and docs.
	assert.Len(t, envs, 10)
	assert.Equal(t, "py35-django111", envs[0].Name)
	assert.Equal(t, "py35", envs[0].Runtime)
	assert.Equal(t, "django111", envs[0].Pin)
	assert.Equal(t, KindTest, envs[0].Kind)

	names := Names(envs)
	assert.NotContains(t, names, "py35-django21")
	assert.Contains(t, names, LintEnvName)
	assert.Contains(t, names, DocsEnvName)
}

func TestExpand_EveryDescriptorUnique(t *testing.T) {
	envs := Expand(matrixConfig())

	seen := make(map[string]bool)
	for _, env := range envs {
		assert.False(t, seen[env.Name], "duplicate environment %s", env.Name)
		seen[env.Name] = true
	}
}

func TestExpand_NoPins(t *testing.T) {
	cfg := &config.Config{
		Matrix: config.Matrix{Runtimes: []string{"go122", "go123"}},
	}

	envs := Expand(cfg)
	require.Len(t, envs, 2)
	assert.Equal(t, "go122", envs[0].Name)
	assert.Empty(t, envs[0].Pin)
}

func TestExpand_NoLintWithoutChecks(t *testing.T) {
	cfg := matrixConfig()
	cfg.Lint.Checks = nil
	cfg.Docs = config.Docs{}

	names := Names(Expand(cfg))
	assert.NotContains(t, names, LintEnvName)
	assert.NotContains(t, names, DocsEnvName)
}

func TestSelect_All(t *testing.T) {
	envs := Expand(matrixConfig())

	selected, err := Select(envs, "")
	require.NoError(t, err)
	assert.Equal(t, envs, selected)
}

func TestSelect_Single(t *testing.T) {
	envs := Expand(matrixConfig())

	selected, err := Select(envs, "py36-django20")
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "py36-django20", selected[0].Name)
}

func TestSelect_Unknown(t *testing.T) {
	envs := Expand(matrixConfig())

	_, err := Select(envs, "py99")
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrNotFound))
}

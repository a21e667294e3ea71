package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftci/weft/internal/testutil"
)

func TestSnapshot_VerifyClean(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "a.py", "print('a')\n")
	testutil.WriteFile(t, dir, "sub/b.py", "print('b')\n")

	snap, err := Snapshot([]string{dir})
	require.NoError(t, err)
	require.Len(t, snap, 2)

	require.NoError(t, snap.Verify([]string{dir}))
}

func TestSnapshot_DetectsModification(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "a.py", "print('a')\n")

	snap, err := Snapshot([]string{dir})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("print('changed')\n"), 0o644))

	err = snap.Verify([]string{dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "modified")
}

func TestSnapshot_DetectsCreation(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "a.py", "print('a')\n")

	snap, err := Snapshot([]string{dir})
	require.NoError(t, err)

	testutil.WriteFile(t, dir, "new.py", "")

	err = snap.Verify([]string{dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created")
}

func TestSnapshot_DetectsRemoval(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "a.py", "print('a')\n")

	snap, err := Snapshot([]string{dir})
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	err = snap.Verify([]string{dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), filepath.Base(path))
}

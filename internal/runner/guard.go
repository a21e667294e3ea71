package runner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TreeSnapshot maps file paths to content hashes for a set of directories.
// Check-only environments take one before running checkers and verify it
// after; any difference means a checker mutated the source tree.
type TreeSnapshot map[string]string

// Snapshot hashes every regular file under the given directories.
func Snapshot(dirs []string) (TreeSnapshot, error) {
	snap := make(TreeSnapshot)
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			sum, err := hashFile(path)
			if err != nil {
				return err
			}
			snap[path] = sum
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("snapshotting %s: %w", dir, err)
		}
	}
	return snap, nil
}

// Verify re-hashes the directories and returns an error naming every file
// the checkers created, removed, or modified.
func (snap TreeSnapshot) Verify(dirs []string) error {
	after, err := Snapshot(dirs)
	if err != nil {
		return err
	}

	var changed []string
	for path, sum := range snap {
		got, ok := after[path]
		switch {
		case !ok:
			changed = append(changed, path+" (removed)")
		case got != sum:
			changed = append(changed, path+" (modified)")
		}
	}
	for path := range after {
		if _, ok := snap[path]; !ok {
			changed = append(changed, path+" (created)")
		}
	}

	if len(changed) > 0 {
		return fmt.Errorf("check-only environment mutated the source tree: %s", strings.Join(changed, ", "))
	}
	return nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

package release

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/weftci/weft/internal/config"
	"github.com/weftci/weft/internal/output"
	"github.com/weftci/weft/internal/shell"
)

// BuildArtifacts produces the release artifacts in dist/ and returns their
// paths. Configured build commands take precedence; without them a source
// distribution (tar.gz) and a built distribution (zip) are packed from the
// project tree.
func BuildArtifacts(ctx context.Context, cfg *config.Config, projectDir, version string) ([]string, error) {
	distDir := config.DistDir(projectDir)
	if err := os.RemoveAll(distDir); err != nil {
		return nil, fmt.Errorf("clearing dist dir: %w", err)
	}
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating dist dir: %w", err)
	}

	if len(cfg.Release.Build) > 0 {
		for _, template := range cfg.Release.Build {
			cmdline := shell.Expand(template, map[string]string{
				"version": version,
				"dist":    distDir,
			})
			output.Debug("running build command", "command", cmdline)
			if err := shell.Run(ctx, projectDir, cmdline, nil); err != nil {
				return nil, fmt.Errorf("build command failed: %w", err)
			}
		}
	} else {
		base := cfg.Project.Name + "-" + version
		if err := packTarGz(projectDir, filepath.Join(distDir, base+".tar.gz"), base); err != nil {
			return nil, fmt.Errorf("packing source distribution: %w", err)
		}
		if err := packZip(projectDir, filepath.Join(distDir, base+".zip"), base); err != nil {
			return nil, fmt.Errorf("packing built distribution: %w", err)
		}
	}

	entries, err := os.ReadDir(distDir)
	if err != nil {
		return nil, fmt.Errorf("listing dist dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, filepath.Join(distDir, entry.Name()))
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no artifacts produced in %s", distDir)
	}
	return files, nil
}

// skipEntry filters VCS metadata and transient build products out of
// packed distributions.
func skipEntry(rel string) bool {
	top := rel
	if i := strings.IndexByte(rel, filepath.Separator); i >= 0 {
		top = rel[:i]
	}
	switch top {
	case ".git", ".hg", config.WorkDirName, "dist":
		return true
	}
	return false
}

// walkProject visits every regular file that belongs in a distribution.
func walkProject(projectDir string, fn func(rel string, info fs.FileInfo, path string) error) error {
	return filepath.Walk(projectDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(projectDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if skipEntry(rel) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return fn(rel, info, path)
	})
}

func packTarGz(projectDir, dest, prefix string) error {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	gzw := gzip.NewWriter(f)
	tw := tar.NewWriter(gzw)

	err = walkProject(projectDir, func(rel string, info fs.FileInfo, path string) error {
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = prefix + "/" + filepath.ToSlash(rel)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(tw, src)
		return err
	})
	if err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gzw.Close()
}

func packZip(projectDir, dest, prefix string) error {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	err = walkProject(projectDir, func(rel string, info fs.FileInfo, path string) error {
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = prefix + "/" + filepath.ToSlash(rel)
		hdr.Method = zip.Deflate
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(w, src)
		return err
	})
	if err != nil {
		return err
	}
	return zw.Close()
}

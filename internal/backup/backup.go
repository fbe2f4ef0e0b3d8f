// Package backup snapshots and restores a todozi workspace as a tarred,
// gzipped archive (spec §6.6), with a yaml manifest describing the
// snapshot alongside the file tree, grounded on the teacher's
// internal/config yaml.v3 usage generalized from a single config document
// to an archive-wide descriptor.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/todozi/todozi/internal/apperror"
	"github.com/todozi/todozi/internal/logging"
)

// Manifest is the yaml document embedded at the archive root as
// manifest.yaml, describing what was snapshotted (spec §6.6 names the
// tar.gz of the workspace root; the manifest is the supplemented
// description of that snapshot named in SPEC_FULL.md §3).
type Manifest struct {
	CreatedAt   time.Time `yaml:"created_at"`
	WorkspaceRoot string  `yaml:"workspace_root"`
	FileCount   int       `yaml:"file_count"`
	TotalBytes  int64     `yaml:"total_bytes"`
	ToolVersion string    `yaml:"tool_version"`
}

const manifestName = "manifest.yaml"

// DefaultArchiveName returns the conventional backup filename for a given
// instant, matching spec §4.1's `backups/todozi_backup_<timestamp>.tar.gz`.
func DefaultArchiveName(at time.Time) string {
	return fmt.Sprintf("todozi_backup_%s.tar.gz", at.UTC().Format("20060102_150405"))
}

// Create snapshots workspaceRoot into a tar.gz at destPath, with a
// manifest.yaml entry at the archive root. toolVersion is recorded for
// diagnostic purposes only.
func Create(workspaceRoot, destPath, toolVersion string) (*Manifest, error) {
	timer := logging.StartTimer(logging.CategoryBackup, "Create")
	defer timer.Stop()

	out, err := os.Create(destPath)
	if err != nil {
		return nil, apperror.Wrapf(apperror.Io, err, "create backup file %s", destPath)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	manifest := &Manifest{
		CreatedAt:     time.Now().UTC(),
		WorkspaceRoot: workspaceRoot,
		ToolVersion:   toolVersion,
	}

	err = filepath.WalkDir(workspaceRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(workspaceRoot, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		// Skip any prior backup archives inside the workspace to avoid
		// recursively including them.
		if strings.HasPrefix(rel, "backups"+string(filepath.Separator)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		n, err := io.Copy(tw, f)
		if err != nil {
			return err
		}
		manifest.FileCount++
		manifest.TotalBytes += n
		return nil
	})
	if err != nil {
		tw.Close()
		gz.Close()
		return nil, apperror.Wrapf(apperror.Io, err, "walk workspace %s", workspaceRoot)
	}

	manifestData, err := yaml.Marshal(manifest)
	if err != nil {
		tw.Close()
		gz.Close()
		return nil, apperror.Wrap(apperror.Serialization, "marshal backup manifest", err)
	}
	manifestHdr := &tar.Header{
		Name: manifestName,
		Mode: 0o644,
		Size: int64(len(manifestData)),
		ModTime: manifest.CreatedAt,
	}
	if err := tw.WriteHeader(manifestHdr); err != nil {
		tw.Close()
		gz.Close()
		return nil, apperror.Wrap(apperror.Io, "write manifest header", err)
	}
	if _, err := tw.Write(manifestData); err != nil {
		tw.Close()
		gz.Close()
		return nil, apperror.Wrap(apperror.Io, "write manifest body", err)
	}

	if err := tw.Close(); err != nil {
		return nil, apperror.Wrap(apperror.Io, "finalize tar", err)
	}
	if err := gz.Close(); err != nil {
		return nil, apperror.Wrap(apperror.Io, "finalize gzip", err)
	}

	logging.Get(logging.CategoryBackup).Info("created backup %s: %d files, %d bytes", destPath, manifest.FileCount, manifest.TotalBytes)
	return manifest, nil
}

// Restore extracts archivePath into destRoot, overwriting any existing
// files there (spec §6.6: "Restore overwrites the workspace after
// prompt" — the confirmation prompt is a CLI boundary concern; this
// function performs the overwrite once the caller has confirmed).
func Restore(archivePath, destRoot string) (*Manifest, error) {
	timer := logging.StartTimer(logging.CategoryBackup, "Restore")
	defer timer.Stop()

	f, err := os.Open(archivePath)
	if err != nil {
		return nil, apperror.Wrapf(apperror.Io, err, "open backup archive %s", archivePath)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, apperror.Wrapf(apperror.Serialization, err, "read gzip stream of %s", archivePath)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	var manifest Manifest
	haveManifest := false

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperror.Wrapf(apperror.Io, err, "read tar entry from %s", archivePath)
		}

		if hdr.Name == manifestName {
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, apperror.Wrap(apperror.Io, "read manifest body", err)
			}
			if err := yaml.Unmarshal(data, &manifest); err != nil {
				return nil, apperror.DeserializationError(manifestName, err)
			}
			haveManifest = true
			continue
		}

		target := filepath.Join(destRoot, filepath.FromSlash(hdr.Name))
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, apperror.Wrapf(apperror.Io, err, "create directory %s", target)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return nil, apperror.Wrapf(apperror.Io, err, "create directory %s", filepath.Dir(target))
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return nil, apperror.Wrapf(apperror.Io, err, "write %s", target)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return nil, apperror.Wrapf(apperror.Io, err, "write %s", target)
			}
			out.Close()
		}
	}

	if !haveManifest {
		return nil, apperror.New(apperror.Serialization, "backup archive is missing manifest.yaml")
	}

	logging.Get(logging.CategoryBackup).Info("restored backup %s into %s: %d files", archivePath, destRoot, manifest.FileCount)
	return &manifest, nil
}

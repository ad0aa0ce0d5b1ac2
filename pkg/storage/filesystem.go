package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo describes one file found in a Directory.
type FileInfo struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Fingerprint identifies a specific version of the file.
func (f FileInfo) Fingerprint() string {
	return fmt.Sprintf("%s:%d:%d", f.Name, f.ModTime.UnixNano(), f.Size)
}

// Directory gives read-only access to the regular files directly under a base directory.
type Directory struct {
	baseDir string
}

// NewDirectory returns a handle rooted at baseDir. The directory is not required to exist
// until List is called.
func NewDirectory(baseDir string) *Directory {
	return &Directory{baseDir: baseDir}
}

// Base returns the configured base directory.
func (d *Directory) Base() string {
	return d.baseDir
}

// List returns files whose extension matches one of exts (case-insensitive), sorted by name.
// Hidden files and Office lock files (~$*) are skipped.
func (d *Directory) List(exts ...string) ([]FileInfo, error) {
	entries, err := os.ReadDir(d.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", d.baseDir, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if !hasExtension(name, exts) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		files = append(files, FileInfo{
			Name:    name,
			Path:    filepath.Join(d.baseDir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Open returns a read-only handle for name inside the directory.
func (d *Directory) Open(name string) (*os.File, error) {
	clean := filepath.Base(name)
	file, err := os.Open(filepath.Join(d.baseDir, clean))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", clean, err)
	}
	return file, nil
}

func hasExtension(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, candidate := range exts {
		if ext == strings.ToLower(candidate) {
			return true
		}
	}
	return false
}

package download

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFilename is used when the server gives no usable name
const DefaultFilename = "download"

// Saver writes downloaded artifacts into a target directory. Data is written to
// a temp file first and moved into place once complete, so a failed transfer
// never leaves a truncated file under the final name.
type Saver struct {
	targetDir string
	tempDir   string
}

// NewSaver creates a saver for dir; in-progress files live in dir/.partial
func NewSaver(dir string) *Saver {
	return &Saver{
		targetDir: dir,
		tempDir:   filepath.Join(dir, ".partial"),
	}
}

// EnsureDir creates the target and temp directories if they don't exist
func (s *Saver) EnsureDir() error {
	if err := os.MkdirAll(s.targetDir, 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}
	if err := os.MkdirAll(s.tempDir, 0755); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	return nil
}

// Save copies r into the target directory under a sanitized, unused variant of
// filename and returns the final path
func (s *Saver) Save(filename string, r io.Reader) (string, error) {
	if err := s.EnsureDir(); err != nil {
		return "", err
	}

	name := SanitizeFilename(filename)
	file, err := os.CreateTemp(s.tempDir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := file.Name()

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	targetPath := s.uniquePath(name)
	if err := os.Rename(tempPath, targetPath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to move file to final location: %w", err)
	}
	return targetPath, nil
}

// uniquePath returns dir/name, or dir/"name (n).ext" for the first n that is free
func (s *Saver) uniquePath(name string) string {
	path := filepath.Join(s.targetDir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		path = filepath.Join(s.targetDir, fmt.Sprintf("%s (%d)%s", base, i, ext))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
	}
}

// SanitizeFilename strips directories and characters that are unsafe in file
// names; an empty result becomes DefaultFilename
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(`<>:"|?*`, r) {
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." || name == "/" {
		return DefaultFilename
	}
	return name
}

package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExportArchive keeps a server-side copy of every JSON export
type ExportArchive struct {
	dataPath string
}

// NewExportArchive creates the archive directory if needed
func NewExportArchive(dataPath string) (*ExportArchive, error) {
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	return &ExportArchive{dataPath: dataPath}, nil
}

// Write atomically stores data under filename (temp file → sync → rename)
// and returns the final path
func (a *ExportArchive) Write(filename string, data []byte) (string, error) {
	name := archiveName(filename)
	if name == "" {
		return "", fmt.Errorf("invalid export filename %q", filename)
	}
	filePath := filepath.Join(a.dataPath, name)

	tempPath := filePath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open temp file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	// Sync to disk
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to sync temp file: %w", err)
	}
	file.Close()

	// Atomic rename
	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to rename temp file: %w", err)
	}

	return filePath, nil
}

// archiveName keeps titles with separators inside the archive directory
func archiveName(filename string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(filename)
	name = filepath.Base(name)
	if name == "." || name == ".." {
		return ""
	}
	return name
}

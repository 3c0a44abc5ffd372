// =============================================================================
// Transfer Pricing - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for exports, including:
//   - Export directory management
//   - Export file naming from a placeholder pattern
//   - Writing export files without leaving partial files behind
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager writes export files into a single directory.
type FileManager struct {
	// ExportDir is the directory where export files are placed.
	ExportDir string
}

// NewFileManager creates a new FileManager for the given directory.
func NewFileManager(exportDir string) *FileManager {
	return &FileManager{ExportDir: exportDir}
}

// EnsureDirectories creates the export directory if it doesn't exist.
func (fm *FileManager) EnsureDirectories() error {
	if err := os.MkdirAll(fm.ExportDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.ExportDir, err)
	}
	return nil
}

// WriteFile writes data to name inside the export directory.
//
// The data is written to a temporary file first and renamed into place, so
// an interrupted export never leaves a truncated file with the final name.
//
// RETURNS:
//   - The path of the written file.
//   - An error if the directory cannot be created or the file written.
func (fm *FileManager) WriteFile(name string, data []byte) (string, error) {
	if err := fm.EnsureDirectories(); err != nil {
		return "", err
	}

	target := filepath.Join(fm.ExportDir, filepath.Base(name))

	tmp, err := os.CreateTemp(fm.ExportDir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to sync %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", target, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}

	return target, nil
}

// =============================================================================
// EXPORT FILE NAMING
// =============================================================================

// GenerateExportFileName expands an export file name pattern.
//
// PARAMETERS:
//   - format: The pattern for the file name.
//             Placeholders:
//               {date}      - Export date (YYYY-MM-DD)
//               {timestamp} - Export time (YYYYMMDD_HHMMSS)
//               {uuid}      - A random UUID
//   - ext:    The required extension, e.g. ".csv". Appended when missing,
//             replacing a different extension.
//   - now:    The export time.
//
// EXAMPLE:
//   format: "transfer_pricing_{date}.csv"
//   output: "transfer_pricing_2026-10-16.csv"
func GenerateExportFileName(format, ext string, now time.Time) string {
	replacements := map[string]string{
		"{date}":      now.Format("2006-01-02"),
		"{timestamp}": now.Format("20060102_150405"),
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	if strings.Contains(result, "{uuid}") {
		result = strings.ReplaceAll(result, "{uuid}", uuid.New().String())
	}

	if ext != "" && !strings.EqualFold(filepath.Ext(result), ext) {
		result = strings.TrimSuffix(result, filepath.Ext(result)) + ext
	}
	return result
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// Package atomicfile writes files so that readers never observe partial content.
package atomicfile

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FilePerm and DirPerm are the permissions used for written files and created parent directories.
const (
	FilePerm os.FileMode = 0600
	DirPerm  os.FileMode = 0700
)

// Write persists data to path with atomic write semantics.
// Data goes to a temp file in the same directory which is then renamed over path.
func Write(path string, data []byte) error {
	// Create parent directories with 0700 permissions
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, DirPerm); err != nil {
			return err
		}
	}

	// Generate temp file name in same directory for atomic rename
	tempPath, err := TempName(path)
	if err != nil {
		return err
	}

	// Ensure temp file is cleaned up on any error
	var tempFileCreated bool
	defer func() {
		if tempFileCreated {
			_ = os.Remove(tempPath)
		}
	}()

	f, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, FilePerm)
	if err != nil {
		return err
	}
	tempFileCreated = true

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if err := os.Rename(tempPath, path); err != nil {
		return err
	}

	// Rename succeeded, the temp file is now the target
	tempFileCreated = false

	return nil
}

// TempName generates a unique temporary file name next to targetPath.
// Format: targetPath + ".tmp." + randomHex
func TempName(targetPath string) (string, error) {
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	return targetPath + ".tmp." + hex.EncodeToString(randomBytes), nil
}

// ExpandPathWithTime replaces all {{timestamp}} occurrences with t formatted as 20060102-150405 (UTC).
// Returns the path unchanged if no template variables are present.
func ExpandPathWithTime(template string, t time.Time) string {
	timestamp := t.UTC().Format("20060102-150405")
	return strings.ReplaceAll(template, "{{timestamp}}", timestamp)
}

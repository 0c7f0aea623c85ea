package fileops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const backupSuffix = ".ctsong.bak"

var (
	statFile   = os.Stat
	renameFile = os.Rename
	removeFile = os.Remove
)

// WriteFile writes data next to path and moves it into place. An existing
// file is kept as a backup until the move succeeds and restored otherwise.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return fmt.Errorf("write target path is empty")
	}

	temp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tempPath := temp.Name()
	if _, err := temp.Write(data); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("write %s: %w", tempPath, err)
	}
	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("close %s: %w", tempPath, err)
	}
	if err := os.Chmod(tempPath, perm); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("chmod %s: %w", tempPath, err)
	}

	if err := replace(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}

func replace(temp, target string) error {
	backup := target + backupSuffix
	if _, err := statFile(backup); err == nil {
		if removeErr := removeFile(backup); removeErr != nil {
			return fmt.Errorf("remove stale backup %q: %w", backup, removeErr)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat backup %q: %w", backup, err)
	}

	hadTarget := false
	if info, err := statFile(target); err == nil {
		if info.IsDir() {
			return fmt.Errorf("write target is a directory: %s", target)
		}
		hadTarget = true
		if err := renameFile(target, backup); err != nil {
			return fmt.Errorf("move existing %s to backup: %w", target, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %q: %w", target, err)
	}

	if err := renameFile(temp, target); err != nil {
		if hadTarget {
			if rollbackErr := renameFile(backup, target); rollbackErr != nil {
				return fmt.Errorf("replace failed (%v) and rollback failed (%w)", err, rollbackErr)
			}
		}
		return fmt.Errorf("replace %s: %w", target, err)
	}

	if hadTarget {
		if err := removeFile(backup); err != nil {
			return fmt.Errorf("cleanup backup %q: %w", backup, err)
		}
	}
	return nil
}

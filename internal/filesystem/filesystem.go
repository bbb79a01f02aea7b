// Copyright 2024 Upbound Inc
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package filesystem contains utilities for working with filesystems, used
// by the CLI to seed build roots and find template source trees.
package filesystem

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
)

// CopyFilesBetweenFs copies all files from the source filesystem (fromFS) to the destination filesystem (toFS).
// It traverses through the fromFS filesystem, skipping directories and copying only files.
// File contents are preserved; every file is written to toFS with mode 0o644.
// Returns an error if any file read, write, or traversal operation fails.
func CopyFilesBetweenFs(fromFS, toFS afero.Fs) error {
	err := afero.Walk(fromFS, ".", func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil // Skip directories
		}

		// Ensure the parent directories exist on the destination filesystem
		dir := filepath.Dir(path)
		err = toFS.MkdirAll(dir, 0o755) // Use appropriate permissions for the directories
		if err != nil {
			return err
		}

		// Copy the file contents
		fileData, err := afero.ReadFile(fromFS, path)
		if err != nil {
			return err
		}
		err = afero.WriteFile(toFS, path, fileData, 0o644)
		if err != nil {
			return err
		}

		return nil
	})

	return err
}

// IsFsEmpty checks if the filesystem is empty.
func IsFsEmpty(fs afero.Fs) (bool, error) {
	// Check if the root directory (".") exists
	_, err := fs.Stat(".")
	if err != nil {
		if os.IsNotExist(err) {
			// If the directory doesn't exist, consider it as empty
			return true, nil
		}
		return false, err
	}

	isEmpty, err := afero.IsEmpty(fs, ".")
	if err != nil {
		return false, err
	}

	return isEmpty, nil
}

// CopyFolder recursively copies directory and all its contents from sourceDir to targetDir.
func CopyFolder(fs afero.Fs, sourceDir, targetDir string) error {
	return afero.Walk(fs, sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return errors.Wrapf(err, "failed to determine relative path for %s", path)
		}

		// Define the target path by joining targetDir with the relative path
		destPath := filepath.Join(targetDir, relPath)

		if info.IsDir() {
			return fs.MkdirAll(destPath, 0o755)
		}

		srcFile, err := fs.Open(path)
		if err != nil {
			return errors.Wrapf(err, "failed to open source file %s", path)
		}

		destFile, err := fs.Create(destPath)
		if err != nil {
			return errors.Wrapf(err, "failed to create destination file %s", destPath)
		}

		_, err = io.Copy(destFile, srcFile)
		if err != nil {
			return errors.Wrapf(err, "failed to copy file from %s to %s", path, destPath)
		}

		return nil
	})
}

// CopyFileIfExists copies a file from src to dst if the src file exists.
func CopyFileIfExists(fs afero.Fs, src, dst string) error {
	exists, err := afero.Exists(fs, src)
	if err != nil {
		return err
	}

	if !exists {
		return nil // Skip if the file does not exist
	}

	// Copy the file
	srcFile, err := fs.Open(src)
	if err != nil {
		return errors.Wrapf(err, "failed to open source file %s", src)
	}

	destFile, err := fs.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "failed to create destination file %s", dst)
	}

	_, err = io.Copy(destFile, srcFile)
	if err != nil {
		return errors.Wrapf(err, "failed to copy file from %s to %s", src, dst)
	}

	return nil
}

// FindNestedFoldersWithPattern finds nested folders containing files that match a specified pattern.
func FindNestedFoldersWithPattern(fs afero.Fs, root string, pattern string) ([]string, error) {
	var foldersWithFiles []string

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Only process directories
		if !info.IsDir() {
			return nil
		}

		// Check if this directory contains any files matching the pattern
		files, err := afero.ReadDir(fs, path)
		if err != nil {
			return err
		}

		for _, f := range files {
			if f.IsDir() {
				continue
			}

			// Perform the pattern match check
			match, _ := filepath.Match(pattern, f.Name())
			if match {
				// Only add the directory path (not the file path)
				foldersWithFiles = append(foldersWithFiles, path)
				break
			}
		}

		return nil
	})

	return foldersWithFiles, err
}

// FullPath returns the full path to path within the given filesystem. If fs is
// not an afero.BasePathFs the original path is returned.
func FullPath(fs afero.Fs, path string) string {
	bfs, ok := fs.(*afero.BasePathFs)
	if ok {
		return afero.FullBaseFsPath(bfs, path)
	}
	return path
}

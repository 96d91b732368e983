package util

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/geckorv/hdlbuild/internal/errors"
	homedir "github.com/mitchellh/go-homedir"
)

// FileExists returns true if the given file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir returns true if the path points to a directory.
func IsDir(path string) bool {
	fileInfo, err := os.Stat(path)
	return err == nil && fileInfo.IsDir()
}

// IsFile returns true if the path points to a file.
func IsFile(path string) bool {
	fileInfo, err := os.Stat(path)
	return err == nil && fileInfo.Mode().IsRegular()
}

// EnsureDirectory creates a directory at this path if it does not exist, or error if the path exists and is a file.
func EnsureDirectory(path string) error {
	if FileExists(path) && IsFile(path) {
		return errors.New(PathIsNotDirectory{path})
	} else if !FileExists(path) {
		return errors.New(os.MkdirAll(path, os.ModePerm))
	}

	return nil
}

// CanonicalPath returns the canonical version of the given path, relative to the given base path. That is, if the given path is a
// relative path, assume it is relative to the given base path. A leading ~ is expanded to the home directory.
func CanonicalPath(path string, basePath string) (string, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return "", errors.New(err)
	}

	if !filepath.IsAbs(path) {
		path = JoinPath(basePath, path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", errors.New(err)
	}

	return CleanPath(absPath), nil
}

// GetPathRelativeTo returns the relative path you would have to take to get from basePath to path.
func GetPathRelativeTo(path string, basePath string) (string, error) {
	if path == "" {
		path = "."
	}

	if basePath == "" {
		basePath = "."
	}

	inputFolderAbs, err := filepath.Abs(basePath)
	if err != nil {
		return "", errors.New(err)
	}

	fileAbs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.New(err)
	}

	relPath, err := filepath.Rel(inputFolderAbs, fileAbs)
	if err != nil {
		return "", errors.New(err)
	}

	return filepath.ToSlash(relPath), nil
}

// CopyFile copies a file from source to destination, creating the destination directory if needed.
func CopyFile(source string, destination string) error {
	contents, err := os.ReadFile(source)
	if err != nil {
		return errors.New(err)
	}

	if err := EnsureDirectory(filepath.Dir(destination)); err != nil {
		return err
	}

	return WriteFileWithSamePermissions(source, destination, contents)
}

// WriteFileWithSamePermissions writes a file to the given destination with the given contents using the same permissions as the file at source.
func WriteFileWithSamePermissions(source string, destination string, contents []byte) error {
	fileInfo, err := os.Stat(source)
	if err != nil {
		return errors.New(err)
	}

	return errors.New(os.WriteFile(destination, contents, fileInfo.Mode()))
}

// FilesEqual reports whether both files exist and have identical content.
func FilesEqual(path, otherPath string) (bool, error) {
	if !IsFile(path) || !IsFile(otherPath) {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, errors.New(err)
	}

	otherInfo, err := os.Stat(otherPath)
	if err != nil {
		return false, errors.New(err)
	}

	if info.Size() != otherInfo.Size() {
		return false, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return false, errors.New(err)
	}

	otherContents, err := os.ReadFile(otherPath)
	if err != nil {
		return false, errors.New(err)
	}

	return bytes.Equal(contents, otherContents), nil
}

// Touch creates the file if it does not exist and updates its modification time.
func Touch(path string) error {
	if err := EnsureDirectory(filepath.Dir(path)); err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return errors.New(err)
	}

	if err := file.Close(); err != nil {
		return errors.New(err)
	}

	now := timeNow()

	return errors.New(os.Chtimes(path, now, now))
}

// JoinPath joins the elements and forces / as the path separator.
func JoinPath(elem ...string) string {
	return filepath.ToSlash(filepath.Join(elem...))
}

// CleanPath cleans the path and forces / as the path separator.
func CleanPath(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

// TrimExt returns the path without its extension.
func TrimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// PathIsNotDirectory is returned when a directory was expected but a file was found.
type PathIsNotDirectory struct {
	Path string
}

func (err PathIsNotDirectory) Error() string {
	return fmt.Sprintf("%s is not a directory", err.Path)
}

// filesystem handling
package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotExist is wrapped by GetFile when the file is missing.
var ErrNotExist = errors.New("file does not exist")

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && info.IsDir()
}

// GetFilesWithExtension returns a list of files in a directory with one of the given extensions
func GetFilesWithExtension(dirname string, extensions ...string) ([]string, error) {
	files := []string{}
	err := filepath.Walk(dirname, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		for _, ext := range extensions {
			if strings.HasSuffix(info.Name(), ext) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	return files, err
}

func GetFile(filename string) (*os.File, error) {
	if !FileExists(filename) {
		return nil, fmt.Errorf("%s: %w", filename, ErrNotExist)
	}
	return os.Open(filename)
}

// EnsureParentDir creates the directory that will hold filename.
func EnsureParentDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "." || dir == "" || DirExists(dir) {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

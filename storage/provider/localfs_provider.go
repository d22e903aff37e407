package provider

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultBasePath = "./estfeed-history"

// LocalFSProvider local filesystem storage provider implementation
type LocalFSProvider struct {
	basePath    string
	prefix      string
	createDirs  bool
	permissions fs.FileMode
}

// NewLocalFSProvider creates a new local filesystem storage provider
func NewLocalFSProvider(config *ProviderConfig) (*LocalFSProvider, error) {
	if config.Type != ProviderTypeLocalFS {
		return nil, fmt.Errorf("invalid provider type: %s, expected: %s", config.Type, ProviderTypeLocalFS)
	}

	basePath := ""
	createDirs := true
	permissions := fs.FileMode(0755)

	if config.LocalFS != nil {
		basePath = config.LocalFS.BasePath
		createDirs = config.LocalFS.CreateDirs
		if config.LocalFS.Permissions != "" {
			if perm, err := parseFileMode(config.LocalFS.Permissions); err == nil {
				permissions = perm
			}
		}
	}

	if basePath == "" {
		basePath = defaultBasePath
	}

	if createDirs {
		if err := os.MkdirAll(basePath, permissions); err != nil {
			return nil, fmt.Errorf("failed to create base directory %s: %w", basePath, err)
		}
	}

	return &LocalFSProvider{
		basePath:    basePath,
		prefix:      config.Prefix,
		createDirs:  createDirs,
		permissions: permissions,
	}, nil
}

// parseFileMode parses a permission string like "0755" (octal with leading zero)
func parseFileMode(perm string) (fs.FileMode, error) {
	if strings.HasPrefix(perm, "0") && len(perm) > 1 {
		mode, err := strconv.ParseUint(perm, 8, 32)
		if err != nil {
			return 0755, fmt.Errorf("invalid octal format: %s", perm)
		}
		return fs.FileMode(mode), nil
	}
	return 0755, fmt.Errorf("unsupported permission format: %s", perm)
}

// buildPath builds the complete path with prefix
func (l *LocalFSProvider) buildPath(path string) string {
	if l.prefix != "" {
		prefix := strings.TrimSuffix(l.prefix, string(filepath.Separator))
		path = strings.TrimPrefix(path, string(filepath.Separator))
		path = prefix + string(filepath.Separator) + path
	}
	return filepath.Join(l.basePath, path)
}

// Upload implements ObjectStorageProvider interface. The file is written to a
// temp sibling and renamed into place, so a crash mid-write never leaves a
// truncated snapshot behind.
func (l *LocalFSProvider) Upload(ctx context.Context, path string, data io.Reader) error {
	fullPath := l.buildPath(path)

	dir := filepath.Dir(fullPath)
	if l.createDirs {
		if err := os.MkdirAll(dir, l.permissions); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(fullPath)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write data to %s: %w", tmpPath, err)
	}
	if err := tmp.Chmod(l.permissions); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions on %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move %s into place: %w", tmpPath, err)
	}

	return nil
}

// Download implements ObjectStorageProvider interface
func (l *LocalFSProvider) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	fullPath := l.buildPath(path)

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to open file %s: %w", fullPath, err)
	}

	return file, nil
}

// Delete implements ObjectStorageProvider interface
func (l *LocalFSProvider) Delete(ctx context.Context, path string) error {
	fullPath := l.buildPath(path)

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil // File not existing is considered successful deletion
		}
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}

	return nil
}

// Exists implements ObjectStorageProvider interface
func (l *LocalFSProvider) Exists(ctx context.Context, path string) (bool, error) {
	fullPath := l.buildPath(path)

	_, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence %s: %w", fullPath, err)
	}

	return true, nil
}

// List implements ObjectStorageProvider interface
func (l *LocalFSProvider) List(ctx context.Context, prefix string) ([]string, error) {
	var files []string

	// Build the expected prefix path relative to basePath
	var expectedPrefix string
	if l.prefix != "" {
		providerPrefix := strings.TrimSuffix(l.prefix, string(filepath.Separator))
		requestedPrefix := strings.TrimPrefix(prefix, string(filepath.Separator))
		if requestedPrefix != "" {
			expectedPrefix = providerPrefix + string(filepath.Separator) + requestedPrefix
		} else {
			expectedPrefix = providerPrefix
		}
	} else {
		expectedPrefix = prefix
	}

	// Normalize to forward slashes for comparison
	expectedPrefix = strings.ReplaceAll(expectedPrefix, string(filepath.Separator), "/")

	err := filepath.WalkDir(l.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(l.basePath, path)
		if err != nil {
			return err
		}

		normalizedPath := strings.ReplaceAll(relPath, string(filepath.Separator), "/")
		if expectedPrefix == "" || strings.HasPrefix(normalizedPath, expectedPrefix) {
			files = append(files, normalizedPath)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list files with prefix %s: %w", prefix, err)
	}

	return files, nil
}

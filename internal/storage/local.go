package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	directoryPerms = 0o755
	filePerms      = 0o644
)

var errOutsideRoot = errors.New("path escapes media root")

// LocalStorage writes images below a base directory served under urlPrefix.
type LocalStorage struct {
	baseDir   string
	urlPrefix string
}

var _ Storage = (*LocalStorage)(nil)

// NewLocal creates a filesystem-backed storage.
func NewLocal(baseDir, urlPrefix string) *LocalStorage {
	return &LocalStorage{
		baseDir:   filepath.Clean(baseDir),
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}
}

// Save implements Storage.
func (s *LocalStorage) Save(ctx context.Context, dir string, img *Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref := objectName(dir, img)
	fullpath, err := s.resolve(ref)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullpath), directoryPerms); err != nil {
		return "", fmt.Errorf("creating parent directories: %w", err)
	}
	if err := os.WriteFile(fullpath, img.Data, filePerms); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return ref, nil
}

// Delete implements Storage. Deleting a missing file is not an error.
func (s *LocalStorage) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	fullpath, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(fullpath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}

// URL implements Storage.
func (s *LocalStorage) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return s.urlPrefix + "/" + strings.TrimLeft(ref, "/")
}

func (s *LocalStorage) resolve(ref string) (string, error) {
	fullpath := filepath.Join(s.baseDir, filepath.FromSlash(ref))
	if fullpath != s.baseDir && !strings.HasPrefix(fullpath, s.baseDir+string(filepath.Separator)) {
		return "", errOutsideRoot
	}
	return fullpath, nil
}

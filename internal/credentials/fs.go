package credentials

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"alcyxob/tiktok-uploader/internal/config"
)

// fsStore reads cookie files from a configured directory.
type fsStore struct {
	dir    string
	prefix string
	ext    string
}

// NewFilesystemStore creates a Store backed by a local directory of cookie files.
func NewFilesystemStore(cfg config.CookiesConfig) Store {
	return &fsStore{
		dir:    cfg.Dir,
		prefix: cfg.Prefix,
		ext:    cfg.Ext,
	}
}

func (s *fsStore) path(accountName string) string {
	return filepath.Join(s.dir, FileName(s.prefix, accountName, s.ext))
}

func (s *fsStore) Exists(_ context.Context, accountName string) (bool, error) {
	info, err := os.Stat(s.path(accountName))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat cookie file: %w", err)
	}
	return !info.IsDir(), nil
}

func (s *fsStore) Stage(_ context.Context, accountName string, destPath string) error {
	src, err := os.Open(s.path(accountName))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("open cookie file: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create staged cookie file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(destPath)
		return fmt.Errorf("copy cookie file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("close staged cookie file: %w", err)
	}
	return nil
}

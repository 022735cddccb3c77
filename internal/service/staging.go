package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// staging is the per-request working directory holding the drained video and
// the staged cookie copy. Each request gets its own directory so concurrent
// uploads for the same account never share a cookie slot. The whole directory
// is removed by Cleanup on every exit path.
type staging struct {
	dir string
}

func newStaging(parent string) (*staging, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	dir := filepath.Join(parent, "tiktok-upload-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &staging{dir: dir}, nil
}

func (st *staging) Dir() string {
	return st.dir
}

// VideoPath is where the drained upload stream lands, keeping the original
// container extension for the engine.
func (st *staging) VideoPath(ext string) string {
	return filepath.Join(st.dir, "video"+ext)
}

// CookiePath places the staged cookie copy under its conventional file name.
func (st *staging) CookiePath(fileName string) string {
	return filepath.Join(st.dir, fileName)
}

// WriteVideo drains the upload stream to the staging directory and returns the
// number of bytes written.
func (st *staging) WriteVideo(r io.Reader, ext string) (string, int64, error) {
	path := st.VideoPath(ext)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", 0, fmt.Errorf("create staged video: %w", err)
	}
	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return "", n, fmt.Errorf("write staged video: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", n, fmt.Errorf("close staged video: %w", err)
	}
	return path, n, nil
}

// Cleanup removes the staging directory. Errors are logged and swallowed so
// cleanup can never mask the primary outcome.
func (st *staging) Cleanup(logger *zap.Logger) {
	if err := os.RemoveAll(st.dir); err != nil {
		logger.Error("failed to remove staging dir",
			zap.String("dir", st.dir),
			zap.Error(err),
		)
	}
}

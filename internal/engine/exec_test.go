package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"alcyxob/tiktok-uploader/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func shellEngine(script string) *ExecEngine {
	return NewExecEngine(config.EngineConfig{
		Command: "/bin/sh",
		Args:    []string{"-c", script, "engine"},
	}, zap.NewNop())
}

func TestExecEngineSuccess(t *testing.T) {
	eng := shellEngine("exit 0")
	err := eng.Upload(context.Background(), Job{
		VideoPath:   "clip.mp4",
		AccountName: "alice",
		WorkDir:     t.TempDir(),
	})
	assert.NoError(t, err)
}

func TestExecEngineStderrBecomesError(t *testing.T) {
	eng := shellEngine("echo 'Save draft button was used' >&2; exit 1")
	err := eng.Upload(context.Background(), Job{
		VideoPath:   "clip.mp4",
		AccountName: "alice",
		WorkDir:     t.TempDir(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Save draft")
	assert.Equal(t, ClassDraft, Classify(err))
}

func TestExecEngineRunsInWorkDir(t *testing.T) {
	workDir := t.TempDir()
	eng := shellEngine("touch marker")
	err := eng.Upload(context.Background(), Job{
		VideoPath:   "clip.mp4",
		AccountName: "alice",
		WorkDir:     workDir,
	})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(workDir, "marker"))
	assert.NoError(t, statErr)
}

func TestExecEngineContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := shellEngine("sleep 30")
	err := eng.Upload(ctx, Job{
		VideoPath:   "clip.mp4",
		AccountName: "alice",
		WorkDir:     t.TempDir(),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

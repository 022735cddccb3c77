package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"alcyxob/tiktok-uploader/internal/config"

	"go.uber.org/zap"
)

// ExecEngine runs the browser-automation uploader as an external command.
// The command is expected to pick up the staged cookie file from its working
// directory and to report failures on stderr with a non-zero exit code.
type ExecEngine struct {
	command string
	args    []string
	logger  *zap.Logger
}

// NewExecEngine creates an Engine that shells out to the configured command.
func NewExecEngine(cfg config.EngineConfig, logger *zap.Logger) *ExecEngine {
	return &ExecEngine{
		command: cfg.Command,
		args:    cfg.Args,
		logger:  logger,
	}
}

func (e *ExecEngine) Upload(ctx context.Context, job Job) error {
	args := append([]string{}, e.args...)
	args = append(args,
		"--video", job.VideoPath,
		"--description", job.Description,
		"--account", job.AccountName,
	)
	if len(job.Hashtags) > 0 {
		args = append(args, "--hashtags", strings.Join(job.Hashtags, ","))
	}
	if job.SoundName != "" {
		args = append(args, "--sound-name", job.SoundName)
		args = append(args, "--sound-aud-vol", string(job.SoundMixMode))
	}
	if job.Schedule != "" {
		args = append(args, "--schedule", job.Schedule)
	}
	if job.Day != nil {
		args = append(args, "--day", strconv.Itoa(*job.Day))
	}
	if job.CopyrightCheck {
		args = append(args, "--copyrightcheck")
	}

	cmd := exec.CommandContext(ctx, e.command, args...)
	cmd.Dir = job.WorkDir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	e.logger.Info("invoking automation engine",
		zap.String("command", e.command),
		zap.String("account", job.AccountName),
		zap.String("workDir", job.WorkDir),
	)

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// The engine reports its failure reason on stderr; that text is what the
	// classifier matches against.
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return fmt.Errorf("automation engine: %s", msg)
	}
	return fmt.Errorf("automation engine: %w", err)
}

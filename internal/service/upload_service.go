package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"alcyxob/tiktok-uploader/internal/config"
	"alcyxob/tiktok-uploader/internal/credentials"
	"alcyxob/tiktok-uploader/internal/domain"
	"alcyxob/tiktok-uploader/internal/engine"
	"alcyxob/tiktok-uploader/internal/observability"

	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrAccountRequired    = errors.New("account name is required")
	ErrCredentialNotFound = errors.New("cookie file not found for account")
	ErrInvalidMedia       = errors.New("missing or invalid video file")
	// ErrDraftUnavailable means publishing failed and the draft fallback was
	// impossible too. Almost always an account-state or permissions problem
	// rather than a transient fault, so it surfaces as a client error.
	ErrDraftUnavailable = errors.New("upload failed and no draft could be saved; check the account's upload permissions and the media format")
	ErrAutomationFailed = errors.New("automation upload failed")
)

const (
	msgPosted = "Video uploaded successfully"
	msgDraft  = "Video uploaded but saved as draft"
)

// UploadService orchestrates one upload: validate, stage, invoke the
// automation engine off the request goroutine, classify the result and clean
// up the staged files regardless of outcome.
type UploadService interface {
	Submit(ctx context.Context, req domain.UploadRequest, video io.Reader) (*domain.Outcome, error)
}

type uploadService struct {
	cookies   credentials.Store
	engine    engine.Engine
	uploadCfg config.UploadConfig
	cookieCfg config.CookiesConfig
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewUploadService creates a new instance of uploadService. metrics may be nil.
func NewUploadService(
	cookies credentials.Store,
	eng engine.Engine,
	uploadCfg config.UploadConfig,
	cookieCfg config.CookiesConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) UploadService {
	return &uploadService{
		cookies:   cookies,
		engine:    eng,
		uploadCfg: uploadCfg,
		cookieCfg: cookieCfg,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *uploadService) Submit(ctx context.Context, req domain.UploadRequest, video io.Reader) (*domain.Outcome, error) {
	log := s.logger.With(zap.String("account", req.AccountName))

	// 1. Resolve the account's cookie record before touching the filesystem.
	if strings.TrimSpace(req.AccountName) == "" {
		s.countOutcome("rejected")
		return nil, ErrAccountRequired
	}
	ok, err := s.cookies.Exists(ctx, req.AccountName)
	if err != nil {
		return nil, fmt.Errorf("check cookie record: %w", err)
	}
	if !ok {
		s.countOutcome("rejected")
		return nil, fmt.Errorf("%w: %s", ErrCredentialNotFound, req.AccountName)
	}

	// 2. Extension allow-list check, before draining the stream.
	if video == nil || !domain.ValidVideoFileName(req.VideoFileName) {
		s.countOutcome("rejected")
		return nil, fmt.Errorf("%w: %q", ErrInvalidMedia, req.VideoFileName)
	}

	// 3. Sound mix mode is normalized, never fatal.
	mode, coerced := domain.NormalizeSoundMixMode(string(req.SoundMixMode))
	if coerced {
		log.Warn("invalid sound mix mode, using default",
			zap.String("requested", string(req.SoundMixMode)),
			zap.String("normalized", string(mode)),
		)
	}

	// Stage both artifacts in a request-owned directory; one deferred call
	// releases everything on every exit path, panics included.
	stage, err := newStaging(s.uploadCfg.WorkDir)
	if err != nil {
		return nil, err
	}
	defer stage.Cleanup(log)

	if s.uploadCfg.MaxVideoSize > 0 {
		video = io.LimitReader(video, s.uploadCfg.MaxVideoSize+1)
	}
	videoPath, size, err := stage.WriteVideo(video, strings.ToLower(filepath.Ext(req.VideoFileName)))
	if err != nil {
		return nil, err
	}
	if size == 0 {
		s.countOutcome("rejected")
		return nil, fmt.Errorf("%w: empty video upload", ErrInvalidMedia)
	}
	if s.uploadCfg.MaxVideoSize > 0 && size > s.uploadCfg.MaxVideoSize {
		s.countOutcome("rejected")
		return nil, fmt.Errorf("%w: video exceeds %d bytes", ErrInvalidMedia, s.uploadCfg.MaxVideoSize)
	}

	cookieName := credentials.FileName(s.cookieCfg.Prefix, req.AccountName, s.cookieCfg.Ext)
	if err := s.cookies.Stage(ctx, req.AccountName, stage.CookiePath(cookieName)); err != nil {
		if errors.Is(err, credentials.ErrNotFound) {
			s.countOutcome("rejected")
			return nil, fmt.Errorf("%w: %s", ErrCredentialNotFound, req.AccountName)
		}
		return nil, fmt.Errorf("stage cookie file: %w", err)
	}
	log.Info("staged upload artifacts",
		zap.String("dir", stage.Dir()),
		zap.Int64("videoBytes", size),
	)

	job := engine.Job{
		VideoPath:      videoPath,
		Description:    req.Description,
		AccountName:    req.AccountName,
		Hashtags:       req.Hashtags,
		SoundName:      req.SoundName,
		SoundMixMode:   mode,
		Schedule:       req.Schedule,
		Day:            req.Day,
		CopyrightCheck: req.CopyrightCheck,
		WorkDir:        stage.Dir(),
	}

	start := time.Now()
	outcome, err := s.runAndClassify(ctx, log, job)
	elapsed := time.Since(start)
	if err != nil {
		s.observeOutcome("failed", elapsed)
		return nil, err
	}
	outcome.Elapsed = elapsed
	s.observeOutcome(string(outcome.Status), elapsed)

	if outcome.Status == domain.StatusPosted && s.uploadCfg.GracePeriod > 0 {
		// Give the platform time to finish server-side processing before we
		// report success; checking too early produces false failures.
		select {
		case <-time.After(s.uploadCfg.GracePeriod):
		case <-ctx.Done():
		}
	}
	return outcome, nil
}

// runAndClassify runs the engine and maps its error text to an outcome. When
// the first attempt ends in a draft and a sound was attached, it retries
// exactly once with the sound dropped: sound conflicts are the usual reason
// publishing falls back to a draft.
func (s *uploadService) runAndClassify(ctx context.Context, log *zap.Logger, job engine.Job) (*domain.Outcome, error) {
	runErr := s.runEngine(ctx, job)
	if runErr != nil && engine.Classify(runErr) == engine.ClassDraft && job.SoundName != "" {
		log.Warn("publish fell back to draft, retrying once without sound",
			zap.String("soundName", job.SoundName),
			zap.Error(runErr),
		)
		retryJob := job
		retryJob.SoundName = ""
		runErr = s.runEngine(ctx, retryJob)
	}

	if runErr == nil {
		return &domain.Outcome{Status: domain.StatusPosted, Message: msgPosted}, nil
	}

	switch engine.Classify(runErr) {
	case engine.ClassDraft:
		log.Info("upload saved as draft", zap.Error(runErr))
		return &domain.Outcome{Status: domain.StatusDraft, Message: msgDraft}, nil
	case engine.ClassDraftUnavailable:
		log.Error("draft fallback unavailable", zap.Error(runErr))
		return nil, fmt.Errorf("%w: %v", ErrDraftUnavailable, runErr)
	default:
		log.Error("automation upload failed", zap.Error(runErr))
		// Message preserved verbatim for diagnostics.
		return nil, fmt.Errorf("%w: %v", ErrAutomationFailed, runErr)
	}
}

// runEngine executes the long-running automation call in its own goroutine so
// the request flow only blocks on the completion signal, bounded by the
// configured timeout when one is set.
func (s *uploadService) runEngine(ctx context.Context, job engine.Job) error {
	runCtx := ctx
	if s.uploadCfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.uploadCfg.Timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("automation engine panicked: %v", r)
			}
		}()
		done <- s.engine.Upload(runCtx, job)
	}()

	select {
	case err := <-done:
		return err
	case <-runCtx.Done():
		return fmt.Errorf("automation run aborted: %w", runCtx.Err())
	}
}

func (s *uploadService) countOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.UploadsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *uploadService) observeOutcome(outcome string, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveOutcome(outcome, elapsed.Seconds())
	}
}

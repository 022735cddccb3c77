package engine

import (
	"context"

	"alcyxob/tiktok-uploader/internal/domain"
)

// Job carries everything the automation engine needs for one upload. The
// cookie file for AccountName must already be staged inside WorkDir under the
// conventional name before Upload is called.
type Job struct {
	VideoPath      string
	Description    string
	AccountName    string
	Hashtags       []string
	SoundName      string
	SoundMixMode   domain.SoundMixMode
	Schedule       string
	Day            *int
	CopyrightCheck bool
	WorkDir        string
}

// Engine drives a browser session to perform the actual platform upload.
// The call is synchronous and long-running; a nil error means the video was
// published. Failure modes are signalled through the error text and are
// classified by Classify.
type Engine interface {
	Upload(ctx context.Context, job Job) error
}

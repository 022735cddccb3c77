// internal/domain/upload.go
package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// SoundMixMode selects how an added sound is mixed with the video's own audio.
type SoundMixMode string

const (
	SoundMix        SoundMixMode = "mix"        // blend sound and original audio (default)
	SoundBackground SoundMixMode = "background" // sound quieter than original audio
	SoundMain       SoundMixMode = "main"       // sound louder than original audio
)

// NormalizeSoundMixMode coerces arbitrary input to a valid mode. Unknown or
// empty values fall back to SoundMix; the second return reports whether the
// input had to be coerced so the caller can log a warning.
func NormalizeSoundMixMode(s string) (SoundMixMode, bool) {
	switch SoundMixMode(strings.ToLower(strings.TrimSpace(s))) {
	case SoundMix:
		return SoundMix, false
	case SoundBackground:
		return SoundBackground, false
	case SoundMain:
		return SoundMain, false
	case "":
		return SoundMix, false
	default:
		return SoundMix, true
	}
}

// UploadRequest is the request-scoped description of a single upload.
// The video bytes themselves travel separately as a stream.
type UploadRequest struct {
	AccountName    string
	Description    string
	Hashtags       []string // nil means "no hashtags", distinct from an empty slice
	SoundName      string
	SoundMixMode   SoundMixMode
	Schedule       string
	Day            *int
	CopyrightCheck bool
	VideoFileName  string // original filename, used for the extension check
}

// OutcomeStatus distinguishes a full publish from a saved draft.
type OutcomeStatus string

const (
	StatusPosted OutcomeStatus = "posted"
	StatusDraft  OutcomeStatus = "draft"
)

// Outcome is the result of a completed upload. Failures are errors, not
// outcomes; a draft is a qualified success.
type Outcome struct {
	Status  OutcomeStatus
	Message string
	Elapsed time.Duration
}

// AllowedVideoExtensions is the container allow-list for uploaded videos.
var AllowedVideoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
	".wmv": true,
}

// ValidVideoFileName reports whether name carries an allowed video extension.
func ValidVideoFileName(name string) bool {
	return AllowedVideoExtensions[strings.ToLower(filepath.Ext(name))]
}

// NormalizeHashtags splits a comma-separated hashtag string, trims whitespace,
// drops empty segments and guarantees a single leading '#' per tag. Empty input
// returns nil: the automation engine treats "no hashtags" differently from an
// empty list.
func NormalizeHashtags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		tags = append(tags, tag)
	}
	return tags
}

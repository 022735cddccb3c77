// internal/api/upload_handler.go
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"alcyxob/tiktok-uploader/internal/domain"
	"alcyxob/tiktok-uploader/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UploadHandler struct {
	uploadService service.UploadService
	logger        *zap.Logger
}

func NewUploadHandler(uploadService service.UploadService, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, logger: logger}
}

// --- DTOs ---

// UploadResponse is the JSON body for every upload result, success or not.
type UploadResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Status     string `json:"status,omitempty"`      // "posted" or "draft"
	UploadTime string `json:"upload_time,omitempty"` // wall-clock automation duration
}

// Upload handles POST /upload: multipart form with the video file and its
// metadata. Validation failures and account problems come back as 400;
// automation failures as 500.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "No video file provided")
		return
	}
	description := c.PostForm("description")
	if description == "" {
		abortWithError(c, http.StatusBadRequest, "Description is required")
		return
	}
	accountName := c.PostForm("accountname")
	if accountName == "" {
		abortWithError(c, http.StatusBadRequest, "Account name is required")
		return
	}

	var day *int
	if rawDay := c.PostForm("day"); rawDay != "" {
		d, err := strconv.Atoi(rawDay)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "day must be an integer")
			return
		}
		day = &d
	}

	copyrightCheck := false
	if rawCheck := c.PostForm("copyrightcheck"); rawCheck != "" {
		copyrightCheck, err = strconv.ParseBool(rawCheck)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "copyrightcheck must be a boolean")
			return
		}
	}

	req := domain.UploadRequest{
		AccountName:    accountName,
		Description:    description,
		Hashtags:       domain.NormalizeHashtags(c.PostForm("hashtags")),
		SoundName:      c.PostForm("sound_name"),
		SoundMixMode:   domain.SoundMixMode(c.PostForm("sound_aud_vol")),
		Schedule:       c.PostForm("schedule"),
		Day:            day,
		CopyrightCheck: copyrightCheck,
		VideoFileName:  fileHeader.Filename,
	}

	video, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Unable to read video upload")
		return
	}
	defer video.Close()

	outcome, err := h.uploadService.Submit(c.Request.Context(), req, video)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountRequired),
			errors.Is(err, service.ErrCredentialNotFound),
			errors.Is(err, service.ErrInvalidMedia),
			errors.Is(err, service.ErrDraftUnavailable):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("upload failed",
				zap.String("requestId", c.GetString(ContextRequestIDKey)),
				zap.String("account", accountName),
				zap.Error(err),
			)
			abortWithError(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		Success:    true,
		Message:    outcome.Message,
		Status:     string(outcome.Status),
		UploadTime: outcome.Elapsed.Round(time.Millisecond).String(),
	})
}

// Health handles GET /health. Static by design: the automation engine and
// cookie store are only exercised per-request.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

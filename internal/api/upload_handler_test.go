package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"alcyxob/tiktok-uploader/internal/api"
	"alcyxob/tiktok-uploader/internal/config"
	"alcyxob/tiktok-uploader/internal/credentials"
	"alcyxob/tiktok-uploader/internal/engine"
	"alcyxob/tiktok-uploader/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubEngine struct {
	err error
}

func (s *stubEngine) Upload(_ context.Context, _ engine.Job) error {
	return s.err
}

type testServer struct {
	router    *gin.Engine
	cookieDir string
	workDir   string
}

func newTestServer(t *testing.T, eng engine.Engine, jwtSecret string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cookieCfg := config.CookiesConfig{Dir: t.TempDir(), Prefix: "TK_cookies", Ext: ".json"}
	workDir := t.TempDir()
	svc := service.NewUploadService(
		credentials.NewFilesystemStore(cookieCfg),
		eng,
		config.UploadConfig{WorkDir: workDir, Timeout: 30 * time.Second},
		cookieCfg,
		nil,
		zap.NewNop(),
	)

	router := gin.New()
	api.SetupRoutes(router, jwtSecret, svc, nil, zap.NewNop())
	return &testServer{router: router, cookieDir: cookieCfg.Dir, workDir: workDir}
}

func (ts *testServer) addAccount(t *testing.T, account string) {
	t.Helper()
	path := filepath.Join(ts.cookieDir, "TK_cookies_"+account+".json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o600))
}

type formOpts struct {
	skipVideo bool
	fields    map[string]string
}

func multipartBody(t *testing.T, opts formOpts) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if !opts.skipVideo {
		part, err := writer.CreateFormFile("video", "clip.mp4")
		require.NoError(t, err)
		_, err = io.WriteString(part, "fake video bytes")
		require.NoError(t, err)
	}
	for k, v := range opts.fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func doUpload(ts *testServer, body *bytes.Buffer, contentType string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) api.UploadResponse {
	t.Helper()
	var resp api.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &stubEngine{}, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestUploadHappyPath(t *testing.T) {
	ts := newTestServer(t, &stubEngine{}, "")
	ts.addAccount(t, "alice")

	body, ct := multipartBody(t, formOpts{fields: map[string]string{
		"description":    "my clip",
		"accountname":    "alice",
		"copyrightcheck": "false",
	}})
	w := doUpload(ts, body, ct, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Video uploaded successfully", resp.Message)
	assert.Equal(t, "posted", resp.Status)
	assert.NotEmpty(t, resp.UploadTime)

	entries, err := os.ReadDir(ts.workDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staged files must be gone after the request")
}

func TestUploadMissingVideo(t *testing.T) {
	ts := newTestServer(t, &stubEngine{}, "")

	body, ct := multipartBody(t, formOpts{skipVideo: true, fields: map[string]string{
		"description": "my clip",
		"accountname": "alice",
	}})
	w := doUpload(ts, body, ct, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "No video file provided", resp.Message)
}

func TestUploadMissingRequiredFields(t *testing.T) {
	ts := newTestServer(t, &stubEngine{}, "")

	body, ct := multipartBody(t, formOpts{fields: map[string]string{"accountname": "alice"}})
	w := doUpload(ts, body, ct, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Description is required", decodeResponse(t, w).Message)

	body, ct = multipartBody(t, formOpts{fields: map[string]string{"description": "my clip"}})
	w = doUpload(ts, body, ct, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Account name is required", decodeResponse(t, w).Message)
}

func TestUploadUnknownAccount(t *testing.T) {
	ts := newTestServer(t, &stubEngine{}, "")

	body, ct := multipartBody(t, formOpts{fields: map[string]string{
		"description": "my clip",
		"accountname": "nobody",
	}})
	w := doUpload(ts, body, ct, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "cookie file not found")
}

func TestUploadInvalidDay(t *testing.T) {
	ts := newTestServer(t, &stubEngine{}, "")
	ts.addAccount(t, "alice")

	body, ct := multipartBody(t, formOpts{fields: map[string]string{
		"description": "my clip",
		"accountname": "alice",
		"day":         "tomorrow",
	}})
	w := doUpload(ts, body, ct, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "day must be an integer", decodeResponse(t, w).Message)
}

func TestUploadDraftOutcome(t *testing.T) {
	ts := newTestServer(t, &stubEngine{err: errors.New("fell back to Save draft")}, "")
	ts.addAccount(t, "alice")

	body, ct := multipartBody(t, formOpts{fields: map[string]string{
		"description": "my clip",
		"accountname": "alice",
	}})
	w := doUpload(ts, body, ct, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Video uploaded but saved as draft", resp.Message)
	assert.Equal(t, "draft", resp.Status)
}

func TestUploadDraftButtonMissingIsClientError(t *testing.T) {
	ts := newTestServer(t, &stubEngine{err: errors.New("SAVE AS DRAFT BUTTON NOT FOUND")}, "")
	ts.addAccount(t, "alice")

	body, ct := multipartBody(t, formOpts{fields: map[string]string{
		"description": "my clip",
		"accountname": "alice",
	}})
	w := doUpload(ts, body, ct, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "permissions")
}

func TestUploadAutomationFailureIsServerError(t *testing.T) {
	ts := newTestServer(t, &stubEngine{err: errors.New("timeout waiting for selector")}, "")
	ts.addAccount(t, "alice")

	body, ct := multipartBody(t, formOpts{fields: map[string]string{
		"description": "my clip",
		"accountname": "alice",
	}})
	w := doUpload(ts, body, ct, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "timeout waiting for selector")
}

func TestUploadRequiresTokenWhenAuthConfigured(t *testing.T) {
	const secret = "test-secret"
	ts := newTestServer(t, &stubEngine{}, secret)
	ts.addAccount(t, "alice")

	body, ct := multipartBody(t, formOpts{fields: map[string]string{
		"description": "my clip",
		"accountname": "alice",
	}})
	w := doUpload(ts, body, ct, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "scheduler",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	body, ct = multipartBody(t, formOpts{fields: map[string]string{
		"description": "my clip",
		"accountname": "alice",
	}})
	w = doUpload(ts, body, ct, map[string]string{"Authorization": "Bearer " + signed})
	assert.Equal(t, http.StatusOK, w.Code)
}

package exportmodule

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/openreel/openreel/internal/apperrors"
)

// UploadPayload is everything shipped to the storage backend
type UploadPayload struct {
	Video        []byte
	Filename     string
	Title        string
	Description  string
	Steps        []byte // processing_steps JSON
	TimelineData []byte // timeline_data JSON
	Thumbnail    []byte // optional webp poster
}

// Uploader posts the multipart export payload
type Uploader struct {
	url    string
	client *http.Client
}

// NewUploader builds an uploader for the given endpoint
func NewUploader(url string, client *http.Client) *Uploader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Uploader{url: url, client: client}
}

// Upload ships the payload. A 401 maps to the auth-expired error so
// the caller can trigger re-login; other failures carry the server's
// detail text.
func (u *Uploader) Upload(ctx context.Context, payload UploadPayload) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("video", payload.Filename)
	if err != nil {
		return fmt.Errorf("failed to build upload payload: %w", err)
	}
	if _, err := part.Write(payload.Video); err != nil {
		return fmt.Errorf("failed to build upload payload: %w", err)
	}

	fields := map[string]string{
		"title":            payload.Title,
		"description":      payload.Description,
		"processing_steps": string(payload.Steps),
		"timeline_data":    string(payload.TimelineData),
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("failed to build upload payload: %w", err)
		}
	}
	if len(payload.Thumbnail) > 0 {
		thumb, err := writer.CreateFormFile("thumbnail", "poster.webp")
		if err != nil {
			return fmt.Errorf("failed to build upload payload: %w", err)
		}
		if _, err := thumb.Write(payload.Thumbnail); err != nil {
			return fmt.Errorf("failed to build upload payload: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to build upload payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, &body)
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return apperrors.NewRemoteError("export upload", "network failure", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.NewAuthExpiredError()
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apperrors.NewRemoteError("export upload",
			fmt.Sprintf("status %d: %s", resp.StatusCode, string(detail)), nil)
	}
	return nil
}

package remote

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"

	pkgerrors "github.com/craftline/cartengine/pkg/errors"
)

// UploadService pushes customization artifacts to the remote image store.
type UploadService struct {
	client *Client
	folder string
}

// NewUploadService builds an upload client targeting the given namespace
// folder (the storefront uses "custom" for customization artifacts).
func NewUploadService(client *Client, folder string) *UploadService {
	if folder == "" {
		folder = "custom"
	}
	return &UploadService{client: client, folder: folder}
}

// Upload sends raw image bytes and returns the public URL of the stored
// artifact.
func (s *UploadService) Upload(ctx context.Context, token string, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build multipart body")
	}
	if _, err := part.Write(data); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write multipart body")
	}
	if err := writer.WriteField("folder", s.folder); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write multipart field")
	}
	if err := writer.Close(); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "close multipart body")
	}

	var result struct {
		ImageURL string `json:"image_url"`
	}
	err = s.client.do(ctx, request{
		method:      http.MethodPost,
		path:        "/upload-image",
		token:       token,
		body:        &body,
		contentType: writer.FormDataContentType(),
	}, &result)
	if err != nil {
		return "", err
	}
	if result.ImageURL == "" {
		return "", pkgerrors.New(pkgerrors.CodeUploadFailed, "upload response missing image url")
	}
	return result.ImageURL, nil
}

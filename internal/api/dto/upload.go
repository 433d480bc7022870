package dto

import (
	"path/filepath"
	"strings"

	"github.com/complysense/complysense/internal/domain/upload"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/types"
	"github.com/h2non/filetype"
)

// CreateTextUploadRequest is the JSON body for pasted content
type CreateTextUploadRequest struct {
	Text *string `json:"text"`
}

// CreateUploadRequest carries raw content from either upload form
type CreateUploadRequest struct {
	Filename    string
	Source      types.UploadSource
	ContentType string
	Content     []byte
}

// NewTextUploadRequest converts pasted text into an upload request
func NewTextUploadRequest(req *CreateTextUploadRequest) *CreateUploadRequest {
	var content []byte
	if req.Text != nil {
		content = []byte(*req.Text)
	}
	return &CreateUploadRequest{
		Filename:    types.DefaultTextUploadFilename,
		Source:      types.UploadSourceText,
		ContentType: "application/json",
		Content:     content,
	}
}

// Validate rejects empty, oversized and binary content
func (r *CreateUploadRequest) Validate(maxBytes int64) error {
	if err := r.Source.Validate(); err != nil {
		return err
	}

	if len(r.Content) == 0 {
		hint := "File is empty."
		if r.Source == types.UploadSourceText {
			hint = "Text content is missing."
		}
		return ierr.NewError("upload content is empty").
			WithHint(hint).
			Mark(ierr.ErrValidation)
	}

	if maxBytes > 0 && int64(len(r.Content)) > maxBytes {
		return ierr.NewErrorf("upload of %d bytes exceeds limit of %d", len(r.Content), maxBytes).
			WithHint("Upload is too large").
			WithReportableDetails(map[string]interface{}{
				"size_bytes": len(r.Content),
				"max_bytes":  maxBytes,
			}).
			Mark(ierr.ErrValidation)
	}

	if kind, _ := filetype.Match(r.Content); kind != filetype.Unknown {
		return ierr.NewErrorf("binary upload detected: %s", kind.MIME.Value).
			WithHint("Only JSON or CSV text can be analysed").
			WithReportableDetails(map[string]interface{}{
				"detected_type": kind.MIME.Value,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// ToUpload converts the request to a domain upload
func (r *CreateUploadRequest) ToUpload() *upload.Upload {
	filename := strings.TrimSpace(filepath.Base(r.Filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		filename = types.DefaultTextUploadFilename
	}
	return upload.New(filename, r.Source, r.ContentType, r.Content)
}

// UploadResponse is returned after an upload is stored
type UploadResponse struct {
	UploadID string `json:"uploadId"`
}

package types

import (
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/samber/lo"
)

// UploadSource tells how the raw content reached the service
type UploadSource string

const (
	UploadSourceFile UploadSource = "file"
	UploadSourceText UploadSource = "text"
)

func (s UploadSource) String() string {
	return string(s)
}

func (s UploadSource) Validate() error {
	allowed := []UploadSource{
		UploadSourceFile,
		UploadSourceText,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewErrorf("invalid upload source: %s", s).
			WithHint("Upload source must be file or text").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DefaultTextUploadFilename is recorded for uploads pasted as raw text
const DefaultTextUploadFilename = "pasted_text.json"

// FileType is the format the parser recognised in an upload
type FileType string

const (
	FileTypeJSON FileType = "json"
	FileTypeCSV  FileType = "csv"
	FileTypeNone FileType = "none"
)

func (f FileType) String() string {
	return string(f)
}

// Extension returns the archive file extension for the format
func (f FileType) Extension() string {
	switch f {
	case FileTypeJSON:
		return "json"
	case FileTypeCSV:
		return "csv"
	default:
		return "txt"
	}
}

package upload

import (
	"github.com/complysense/complysense/internal/types"
)

// Upload is the raw content submitted for analysis, either a file or pasted text
type Upload struct {
	ID          string             `json:"id" db:"id"`
	Filename    string             `json:"filename" db:"filename"`
	Source      types.UploadSource `json:"source" db:"source"`
	ContentType string             `json:"content_type" db:"content_type"`
	RawContent  string             `json:"-" db:"raw_content"`
	SizeBytes   int64              `json:"size_bytes" db:"size_bytes"`
	types.BaseModel
}

// New builds an upload with a fresh identifier
func New(filename string, source types.UploadSource, contentType string, content []byte) *Upload {
	return &Upload{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_UPLOAD),
		Filename:    filename,
		Source:      source,
		ContentType: contentType,
		RawContent:  string(content),
		SizeBytes:   int64(len(content)),
		BaseModel:   types.GetDefaultBaseModel(),
	}
}

// Content returns the raw bytes of the upload
func (u *Upload) Content() []byte {
	return []byte(u.RawContent)
}

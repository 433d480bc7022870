package s3

import "github.com/complysense/complysense/internal/types"

type Document struct {
	ID   string       `json:"id"`
	Data []byte       `json:"data"`
	Kind DocumentKind `json:"kind"`
	Type DocumentType `json:"type"`
}

type DocumentKind string

const (
	DocumentKindJSON DocumentKind = "json"
	DocumentKindCSV  DocumentKind = "csv"
	DocumentKindText DocumentKind = "txt"
)

type DocumentType string

const (
	DocumentTypeUpload DocumentType = "upload"
	DocumentTypeReport DocumentType = "report"
)

// NewReportDocument wraps serialised report JSON
func NewReportDocument(id string, data []byte) *Document {
	return &Document{
		ID:   id,
		Data: data,
		Kind: DocumentKindJSON,
		Type: DocumentTypeReport,
	}
}

// NewUploadDocument wraps raw upload content, keyed by the format the parser recognised
func NewUploadDocument(id string, data []byte, format types.FileType) *Document {
	return &Document{
		ID:   id,
		Data: data,
		Kind: DocumentKind(format.Extension()),
		Type: DocumentTypeUpload,
	}
}

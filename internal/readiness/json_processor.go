package readiness

import (
	"bytes"

	"github.com/complysense/complysense/internal/domain/invoice"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/logger"
	jsoniter "github.com/json-iterator/go"
)

// jsonAPI decodes invoices with exact key matching: "ID" does not fill "id"
var jsonAPI = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	CaseSensitive:          true,
}.Froze()

// JSONProcessor decodes a JSON array of invoice objects
type JSONProcessor struct {
	Logger *logger.Logger
}

// NewJSONProcessor creates a new JSON processor
func NewJSONProcessor(logger *logger.Logger) *JSONProcessor {
	return &JSONProcessor{
		Logger: logger,
	}
}

// PrepareJSONReader creates a decoder positioned at the start of the array.
// Content that does not open with '[' is rejected before any decoding.
func (jp *JSONProcessor) PrepareJSONReader(fileContent []byte) (*jsoniter.Decoder, error) {
	fileContent, stripped := stripBOM(fileContent)
	if stripped {
		jp.Logger.Debug("BOM detected and removed from JSON content")
	}

	trimmed := bytes.TrimLeft(fileContent, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ierr.NewError("JSON content must start with an array").
			WithHint("Invalid JSON format").
			Mark(ierr.ErrValidation)
	}

	return jsonAPI.NewDecoder(bytes.NewReader(trimmed)), nil
}

// ReadInvoices decodes every element of the array in order. Only the first
// JSON value is consumed; anything after the closing bracket is ignored.
func (jp *JSONProcessor) ReadInvoices(fileContent []byte) ([]*invoice.Invoice, error) {
	decoder, err := jp.PrepareJSONReader(fileContent)
	if err != nil {
		return nil, err
	}

	var invoices []*invoice.Invoice
	if err := decoder.Decode(&invoices); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid JSON content").
			WithReportableDetails(map[string]interface{}{
				"error": err.Error(),
			}).
			Mark(ierr.ErrValidation)
	}

	for i, inv := range invoices {
		if inv == nil {
			return nil, ierr.NewErrorf("null invoice at index %d", i).
				WithHint("Invalid JSON content").
				Mark(ierr.ErrValidation)
		}
		if inv.Lines == nil {
			inv.Lines = make([]invoice.Line, 0)
		}
		inv.SourceRowNumber = i + 1
	}

	if invoices == nil {
		invoices = make([]*invoice.Invoice, 0)
	}
	return invoices, nil
}

package readiness

import (
	"github.com/complysense/complysense/internal/domain/invoice"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/types"
)

// ParseResult is the outcome of a parse attempt. Format is FileTypeNone when
// neither stage recovered any data and Invoices is then empty.
type ParseResult struct {
	Format   types.FileType
	Invoices []*invoice.Invoice
}

// Parser turns raw upload content into invoices, trying JSON first and
// falling back to CSV
type Parser struct {
	json   *JSONProcessor
	csv    *CSVProcessor
	logger *logger.Logger
}

func NewParser(logger *logger.Logger) *Parser {
	return &Parser{
		json:   NewJSONProcessor(logger),
		csv:    NewCSVProcessor(logger),
		logger: logger,
	}
}

// Parse never fails. Malformed content of either format yields an empty result;
// the reasons are only visible in debug logs.
func (p *Parser) Parse(content []byte) ParseResult {
	invoices, jsonErr := p.json.ReadInvoices(content)
	if jsonErr == nil {
		return ParseResult{Format: types.FileTypeJSON, Invoices: invoices}
	}

	invoices, csvErr := p.csv.ReadInvoices(content)
	if csvErr != nil {
		p.logger.Debugw("content is neither a JSON invoice array nor an invoice CSV",
			"json_error", jsonErr.Error(),
			"csv_error", csvErr.Error(),
			"size_bytes", len(content),
		)
		return emptyResult()
	}

	if len(invoices) == 0 {
		p.logger.Debugw("CSV content has no data rows",
			"json_error", jsonErr.Error(),
			"size_bytes", len(content),
		)
		return emptyResult()
	}

	return ParseResult{Format: types.FileTypeCSV, Invoices: invoices}
}

func emptyResult() ParseResult {
	return ParseResult{Format: types.FileTypeNone, Invoices: make([]*invoice.Invoice, 0)}
}

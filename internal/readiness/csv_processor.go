package readiness

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/complysense/complysense/internal/domain/invoice"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/logger"
	"github.com/shopspring/decimal"
)

// CSV column names
const (
	ColumnInvoiceNumber = "inv_no"
	ColumnIssuedOn      = "issued_on"
	ColumnCurrency      = "curr"
	ColumnSellerName    = "sellerName"
	ColumnSellerTax     = "sellerTax"
	ColumnBuyerName     = "buyerName"
	ColumnBuyerTax      = "buyerTax"
	ColumnTotalNet      = "totalNet"
	ColumnVat           = "vat"
	ColumnGrandTotal    = "grandTotal"
	ColumnLineSku       = "lineSku"
	ColumnLineQty       = "lineQty"
	ColumnLinePrice     = "linePrice"
	ColumnLineTotal     = "lineTotal"
)

// CSVProcessor handles CSV-specific operations
type CSVProcessor struct {
	Logger *logger.Logger
}

// NewCSVProcessor creates a new CSV processor
func NewCSVProcessor(logger *logger.Logger) *CSVProcessor {
	return &CSVProcessor{
		Logger: logger,
	}
}

// PrepareCSVReader creates a configured CSV reader from the file content
func (cp *CSVProcessor) PrepareCSVReader(fileContent []byte) *csv.Reader {
	fileContent, stripped := stripBOM(fileContent)
	if stripped {
		cp.Logger.Debug("BOM detected and removed from CSV content")
	}

	reader := csv.NewReader(bytes.NewReader(fileContent))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	return reader
}

// csvTable is a fully read CSV document with its header index
type csvTable struct {
	rows    [][]string
	columns map[string]int
}

// cell returns the value of the named column in row i
func (t *csvTable) cell(i int, column string) (string, error) {
	idx, ok := t.columns[column]
	if !ok {
		return "", ierr.NewErrorf("missing column %s", column).
			WithHintf("CSV header has no %s column", column).
			Mark(ierr.ErrValidation)
	}

	row := t.rows[i]
	if idx >= len(row) {
		return "", ierr.NewErrorf("row %d has no value for column %s", i+1, column).
			WithHint("CSV row is shorter than its header").
			WithReportableDetails(map[string]interface{}{
				"row":    i + 1,
				"column": column,
			}).
			Mark(ierr.ErrValidation)
	}
	return row[idx], nil
}

func (t *csvTable) text(i int, column string) (*string, error) {
	v, err := t.cell(i, column)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (t *csvTable) amount(i int, column string) (decimal.NullDecimal, error) {
	v, err := t.cell(i, column)
	if err != nil {
		return decimal.NullDecimal{}, err
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NullDecimal{}, ierr.WithError(err).
			WithHintf("Invalid amount %q in column %s", v, column).
			WithReportableDetails(map[string]interface{}{
				"row":    i + 1,
				"column": column,
				"value":  v,
			}).
			Mark(ierr.ErrValidation)
	}
	return decimal.NewNullDecimal(d), nil
}

// ReadInvoices groups data rows into invoices by inv_no. Header fields come
// from the first row of each invoice and every row contributes one line.
// Invoices are returned in order of first appearance.
func (cp *CSVProcessor) ReadInvoices(fileContent []byte) ([]*invoice.Invoice, error) {
	rows, err := cp.PrepareCSVReader(fileContent).ReadAll()
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid CSV content").
			Mark(ierr.ErrValidation)
	}

	if len(rows) < 2 {
		return make([]*invoice.Invoice, 0), nil
	}

	table := &csvTable{rows: rows, columns: make(map[string]int, len(rows[0]))}
	for i, name := range rows[0] {
		table.columns[strings.TrimSpace(name)] = i
	}

	grouped := newInvoiceIndex()
	for i := 1; i < len(rows); i++ {
		invNo, err := table.cell(i, ColumnInvoiceNumber)
		if err != nil {
			return nil, err
		}

		inv, ok := grouped.get(invNo)
		if !ok {
			inv, err = cp.readHeader(table, i, invNo)
			if err != nil {
				return nil, err
			}
			grouped.put(invNo, inv)
		}

		line, err := cp.readLine(table, i)
		if err != nil {
			return nil, err
		}
		inv.AddLine(line)
	}

	return grouped.values(), nil
}

func (cp *CSVProcessor) readHeader(table *csvTable, i int, invNo string) (*invoice.Invoice, error) {
	// row numbers count the header row, so the first data row is 2
	inv := invoice.New(i + 1)
	inv.ID = &invNo

	var err error
	texts := []struct {
		column string
		dst    **string
	}{
		{ColumnIssuedOn, &inv.IssueDate},
		{ColumnCurrency, &inv.Currency},
		{ColumnSellerName, &inv.SellerName},
		{ColumnSellerTax, &inv.SellerTaxID},
		{ColumnBuyerName, &inv.BuyerName},
		{ColumnBuyerTax, &inv.BuyerTaxID},
	}
	for _, f := range texts {
		if *f.dst, err = table.text(i, f.column); err != nil {
			return nil, err
		}
	}

	amounts := []struct {
		column string
		dst    *decimal.NullDecimal
	}{
		{ColumnTotalNet, &inv.TotalExclTax},
		{ColumnVat, &inv.TaxAmount},
		{ColumnGrandTotal, &inv.TotalInclTax},
	}
	for _, f := range amounts {
		if *f.dst, err = table.amount(i, f.column); err != nil {
			return nil, err
		}
	}

	return inv, nil
}

func (cp *CSVProcessor) readLine(table *csvTable, i int) (invoice.Line, error) {
	var (
		line invoice.Line
		err  error
	)

	if line.SKU, err = table.text(i, ColumnLineSku); err != nil {
		return line, err
	}
	if line.Quantity, err = table.amount(i, ColumnLineQty); err != nil {
		return line, err
	}
	if line.UnitPrice, err = table.amount(i, ColumnLinePrice); err != nil {
		return line, err
	}
	if line.LineTotal, err = table.amount(i, ColumnLineTotal); err != nil {
		return line, err
	}
	return line, nil
}

// invoiceIndex is an insertion-ordered map of invoices keyed by inv_no
type invoiceIndex struct {
	keys  []string
	items map[string]*invoice.Invoice
}

func newInvoiceIndex() *invoiceIndex {
	return &invoiceIndex{items: make(map[string]*invoice.Invoice)}
}

func (x *invoiceIndex) get(key string) (*invoice.Invoice, bool) {
	inv, ok := x.items[key]
	return inv, ok
}

func (x *invoiceIndex) put(key string, inv *invoice.Invoice) {
	if _, ok := x.items[key]; !ok {
		x.keys = append(x.keys, key)
	}
	x.items[key] = inv
}

func (x *invoiceIndex) values() []*invoice.Invoice {
	out := make([]*invoice.Invoice, 0, len(x.keys))
	for _, k := range x.keys {
		out = append(out, x.items[k])
	}
	return out
}

// Package csvfile loads ledger records from CSV files.
//
// The reader is deliberately forgiving at the row level: a row with an
// unparseable date or amount becomes an invalid record that flows
// through the pipeline as an exception instead of aborting the load.
// Structural problems (missing required columns, unreadable file) are
// fatal.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Sohaniboston/Smart-Recon/internal/domain/ledger"
)

// Options controls header mapping and value parsing.
type Options struct {
	// Delimiter defaults to comma.
	Delimiter rune

	// DateFormats are tried in order per value.
	DateFormats []string

	// Columns maps canonical field names (date, amount, description,
	// reference) to header names in the file. Unmapped fields use the
	// canonical name as the header.
	Columns map[string]string
}

// DefaultDateFormats covers the layouts seen in bank and GL exports.
var DefaultDateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
	"Jan 2, 2006",
}

const (
	fieldDate        = "date"
	fieldAmount      = "amount"
	fieldDescription = "description"
	fieldReference   = "reference"
)

// Reader parses one CSV source into ledger records.
type Reader struct {
	options Options
	logger  *slog.Logger
}

func NewReader(options Options, logger *slog.Logger) *Reader {
	if options.Delimiter == 0 {
		options.Delimiter = ','
	}
	if len(options.DateFormats) == 0 {
		options.DateFormats = DefaultDateFormats
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{options: options, logger: logger}
}

// ReadFile loads a CSV file from disk.
func (r *Reader) ReadFile(path string, origin ledger.Origin) ([]ledger.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s source: %w", origin, err)
	}
	defer f.Close()
	return r.Read(f, origin)
}

// Read parses CSV content. The first row must be a header containing at
// least the date, amount, and description columns.
func (r *Reader) Read(src io.Reader, origin ledger.Origin) ([]ledger.Record, error) {
	cr := csv.NewReader(src)
	cr.Comma = r.options.Delimiter
	cr.TrimLeadingSpace = true
	// Ragged rows are handled per-cell; missing cells parse as empty.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", origin, err)
	}

	cols, err := r.resolveColumns(header, origin)
	if err != nil {
		return nil, err
	}

	var records []ledger.Record
	invalid := 0
	for index := 0; ; index++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Structurally broken row (bad quoting, wrong field count):
			// absorb it as an invalid record.
			records = append(records, ledger.Record{
				Origin:        origin,
				OriginalIndex: index,
				Description:   fmt.Sprintf("unreadable row: %v", err),
				Invalid:       true,
			})
			invalid++
			continue
		}

		record := r.parseRow(row, cols, origin, index)
		if record.Invalid {
			invalid++
		}
		records = append(records, record)
	}

	r.logger.Debug("csv source loaded",
		slog.String("origin", string(origin)),
		slog.Int("records", len(records)),
		slog.Int("invalid", invalid))
	return records, nil
}

// columnIndices holds resolved header positions; -1 means absent.
type columnIndices struct {
	date, amount, description, reference int
}

func (r *Reader) resolveColumns(header []string, origin ledger.Origin) (columnIndices, error) {
	find := func(field string) int {
		name := field
		if mapped, ok := r.options.Columns[field]; ok && mapped != "" {
			name = mapped
		}
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
		return -1
	}

	cols := columnIndices{
		date:        find(fieldDate),
		amount:      find(fieldAmount),
		description: find(fieldDescription),
		reference:   find(fieldReference),
	}

	var missing []string
	for _, req := range []struct {
		name  string
		index int
	}{
		{fieldDate, cols.date},
		{fieldAmount, cols.amount},
		{fieldDescription, cols.description},
	} {
		if req.index < 0 {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%s source is missing required columns: %s",
			origin, strings.Join(missing, ", "))
	}

	return cols, nil
}

func (r *Reader) parseRow(row []string, cols columnIndices, origin ledger.Origin, index int) ledger.Record {
	record := ledger.Record{
		Origin:        origin,
		OriginalIndex: index,
		Description:   cell(row, cols.description),
	}
	if cols.reference >= 0 {
		record.Reference = cell(row, cols.reference)
	}

	date, dateErr := r.parseDate(cell(row, cols.date))
	amount, amountErr := parseAmount(cell(row, cols.amount))
	if dateErr != nil || amountErr != nil {
		record.Invalid = true
		return record
	}

	record.Date = date
	record.Amount = amount
	return record
}

func (r *Reader) parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range r.options.DateFormats {
		if d, err := time.Parse(layout, value); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

// parseAmount accepts currency symbols, thousands separators, and
// accounting-style parentheses for negatives.
func parseAmount(value string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	cleaned = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "").Replace(cleaned)

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("unparseable amount %q: %w", value, err)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

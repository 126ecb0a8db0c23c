package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Veraticus/finpulse/internal/model"
	"github.com/shopspring/decimal"
)

// Column headers of the bank statement export.
const (
	ColumnDate        = "Date"
	ColumnDescription = "Description"
	ColumnAmount      = "Amount"
	ColumnCategory    = "Category"
	ColumnType        = "Transaction Type"
	ColumnAccount     = "Account Name"
)

// ErrMissingColumn is returned when a required CSV header is absent.
var ErrMissingColumn = errors.New("missing required column")

var dateLayouts = []string{"1/2/2006", "01/02/2006", "2006-01-02", time.RFC3339}

// CSVReader reads bank statement exports.
type CSVReader struct {
	detector *CategoryDetector
	// Account keeps only rows of this account when set.
	Account string
}

// NewCSVReader creates a CSV reader. Rows whose category label is unknown
// fall back to detector when it is not nil.
func NewCSVReader(detector *CategoryDetector) *CSVReader {
	return &CSVReader{detector: detector}
}

// Read parses every row of r into a transaction.
func (c *CSVReader) Read(ctx context.Context, r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if c.Account != "" && !strings.EqualFold(field(record, cols, ColumnAccount), c.Account) {
			continue
		}

		tx, err := c.convert(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		tx.ID = fmt.Sprintf("csv-%d", line)
		transactions = append(transactions, tx)
	}

	return transactions, nil
}

func (c *CSVReader) convert(record []string, cols map[string]int) (model.Transaction, error) {
	raw := strings.NewReplacer(",", "", "$", "").Replace(field(record, cols, ColumnAmount))
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount %q: %w", raw, err)
	}

	date, err := parseDate(field(record, cols, ColumnDate))
	if err != nil {
		return model.Transaction{}, err
	}

	description := field(record, cols, ColumnDescription)
	category := model.ParseCategory(field(record, cols, ColumnCategory))
	if category == model.CategoryOther && c.detector != nil {
		category = c.detector.Detect(description)
	}

	return model.Transaction{
		Date:        date,
		Description: description,
		// Direction lives in the type column; amounts are stored as magnitudes.
		Amount:   amount.Abs(),
		Category: category,
	}, nil
}

func indexColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{ColumnDate, ColumnDescription, ColumnAmount} {
		if _, ok := cols[strings.ToLower(required)]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}
	return cols, nil
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[strings.ToLower(name)]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

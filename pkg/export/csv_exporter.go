package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter renders sheets into a single CSV stream.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render flattens the sheets into one table, prefixing every row with its sheet name.
func (e *CSVExporter) Render(sheets []Sheet) ([]byte, error) {
	headers := firstHeaders(sheets)
	if len(headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(append([]string{"Sheet"}, headers...)); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, sheet := range sheets {
		for _, row := range sheet.Data.Rows {
			record := make([]string, 0, len(headers)+1)
			record = append(record, sheet.Name)
			for _, header := range headers {
				record = append(record, row[header])
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func firstHeaders(sheets []Sheet) []string {
	for _, sheet := range sheets {
		if len(sheet.Data.Headers) > 0 {
			return sheet.Data.Headers
		}
	}
	return nil
}

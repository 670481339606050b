package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXExporter renders sheets into an Excel workbook.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render writes one worksheet per sheet. Names are sanitised and de-duplicated.
func (e *XLSXExporter) Render(sheets []Sheet) ([]byte, error) {
	if len(firstHeaders(sheets)) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}
	file := excelize.NewFile()
	defer file.Close() //nolint:errcheck

	defaultSheet := file.GetSheetName(0)
	used := make(map[string]int)
	created := 0
	for _, sheet := range sheets {
		if len(sheet.Data.Headers) == 0 {
			continue
		}
		name := uniqueSheetName(SanitizeSheetName(sheet.Name), used)
		if _, err := file.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
		if err := writeSheet(file, name, sheet.Data); err != nil {
			return nil, err
		}
		created++
	}
	if created > 0 {
		if _, taken := used[defaultSheet]; !taken {
			if err := file.DeleteSheet(defaultSheet); err != nil {
				return nil, fmt.Errorf("drop default sheet: %w", err)
			}
		}
		file.SetActiveSheet(0)
	}

	buf := &bytes.Buffer{}
	if err := file.Write(buf); err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(file *excelize.File, name string, data Dataset) error {
	header := make([]interface{}, len(data.Headers))
	for i, h := range data.Headers {
		header[i] = h
	}
	if err := file.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header on %s: %w", name, err)
	}
	for r, row := range data.Rows {
		values := make([]interface{}, len(data.Headers))
		for i, h := range data.Headers {
			values[i] = row[h]
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("resolve cell: %w", err)
		}
		if err := file.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("write row on %s: %w", name, err)
		}
	}
	return nil
}

func uniqueSheetName(name string, used map[string]int) string {
	count := used[name]
	used[name] = count + 1
	if count == 0 {
		return name
	}
	suffix := fmt.Sprintf(" (%d)", count+1)
	runes := []rune(name)
	if len(runes)+len([]rune(suffix)) > maxSheetName {
		runes = runes[:maxSheetName-len([]rune(suffix))]
	}
	candidate := string(runes) + suffix
	used[candidate]++
	return candidate
}

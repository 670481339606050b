package export

import (
	"fmt"
	"strings"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Sheet is a named dataset; workbook formats render one tab per sheet.
type Sheet struct {
	Name string
	Data Dataset
}

// Format identifies an export encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// ParseFormat resolves a query value, defaulting to xlsx.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
}

const maxSheetName = 31

var sheetNameReplacer = strings.NewReplacer(
	`\`, "_", "/", "_", "*", "_", "?", "_", ":", "_",
	"[", "_", "]", "_", "<", "_", ">", "_", "|", "_", `"`, "_",
)

// SanitizeSheetName replaces characters spreadsheet tabs reject and truncates to 31 runes.
func SanitizeSheetName(name string) string {
	clean := sheetNameReplacer.Replace(strings.TrimSpace(name))
	if clean == "" {
		clean = "Sheet"
	}
	runes := []rune(clean)
	if len(runes) > maxSheetName {
		runes = runes[:maxSheetName]
	}
	return string(runes)
}
